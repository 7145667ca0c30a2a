package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rozgar/internal/domain"
)

// DocumentStore persists documents and their chunks. A document is never
// mutated: re-ingestion replaces its chunk set in one transaction so there is
// no window where the document has no coverage.
type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) *DocumentStore { return &DocumentStore{db: db} }

// ReplaceDocument upserts the document and swaps its chunk set atomically.
// It returns the IDs of the superseded chunks so the caller can evict them
// from the vector index after the new ones are committed.
func (s *DocumentStore) ReplaceDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) ([]string, error) {
	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldIDs []string
		if err := tx.Model(&chunkRow{}).Where("document_id = ?", doc.ID).Pluck("id", &oldIDs).Error; err != nil {
			return err
		}
		row := documentRow{ID: doc.ID, Text: doc.Text, Language: doc.Language, IngestedAt: doc.IngestedAt}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if len(chunks) > 0 {
			rows := make([]chunkRow, len(chunks))
			for i, c := range chunks {
				rows[i] = chunkFromDomain(c)
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(oldIDs) > 0 {
			if err := tx.Where("id IN ?", oldIDs).Delete(&chunkRow{}).Error; err != nil {
				return err
			}
		}
		removed = oldIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// AllChunks returns every stored chunk across all documents, ordered by
// document then index. Used to refit corpus-dependent embedders over the full
// knowledge base.
func (s *DocumentStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	var rows []chunkRow
	err := s.db.WithContext(ctx).
		Order("document_id ASC, idx ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(rows))
	for i, r := range rows {
		chunks[i] = r.toDomain()
	}
	return chunks, nil
}

// Chunks returns a document's current chunks ordered by index.
func (s *DocumentStore) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var rows []chunkRow
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("idx ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(rows))
	for i, r := range rows {
		chunks[i] = r.toDomain()
	}
	return chunks, nil
}

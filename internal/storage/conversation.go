package storage

import (
	"context"

	"gorm.io/gorm"

	"rozgar/internal/domain"
)

// ConversationStore persists turn history per session. Appends are
// append-only; each session owns a disjoint key range, so no cross-session
// locking is needed here — the orchestrator serializes turns within a session.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore { return &ConversationStore{db: db} }

func (s *ConversationStore) Append(ctx context.Context, turn domain.Turn) error {
	row := turnRow{
		SessionID: turn.SessionID,
		Role:      string(turn.Role),
		Text:      turn.Text,
		Language:  turn.Language,
		CreatedAt: turn.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the session's most recent turns in chronological order.
func (s *ConversationStore) Recent(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	var rows []turnRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, len(rows))
	for i, r := range rows {
		turns[len(rows)-1-i] = r.toDomain()
	}
	return turns, nil
}

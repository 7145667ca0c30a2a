package storage

import (
	"encoding/json"
	"time"

	"rozgar/internal/domain"
)

type turnRow struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	Role      string
	Text      string
	Language  string
	CreatedAt time.Time
}

func (turnRow) TableName() string { return "conversation_turns" }

func (r turnRow) toDomain() domain.Turn {
	return domain.Turn{
		SessionID: r.SessionID,
		Role:      domain.Role(r.Role),
		Text:      r.Text,
		Language:  r.Language,
		CreatedAt: r.CreatedAt,
	}
}

type preferenceRow struct {
	SessionID  string `gorm:"primaryKey"`
	Categories string
	Keywords   string
	Location   string
	Weight     *float64
	UpdatedAt  time.Time
}

func (preferenceRow) TableName() string { return "job_preferences" }

func (r preferenceRow) toDomain() domain.Preferences {
	p := domain.Preferences{
		SessionID: r.SessionID,
		Location:  r.Location,
		Weight:    r.Weight,
		UpdatedAt: r.UpdatedAt,
	}
	_ = json.Unmarshal([]byte(r.Categories), &p.Categories)
	_ = json.Unmarshal([]byte(r.Keywords), &p.Keywords)
	return p
}

func preferenceFromDomain(p domain.Preferences) preferenceRow {
	cats, _ := json.Marshal(p.Categories)
	kws, _ := json.Marshal(p.Keywords)
	return preferenceRow{
		SessionID:  p.SessionID,
		Categories: string(cats),
		Keywords:   string(kws),
		Location:   p.Location,
		Weight:     p.Weight,
		UpdatedAt:  p.UpdatedAt,
	}
}

type documentRow struct {
	ID         string `gorm:"primaryKey"`
	Text       string
	Language   string
	IngestedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

type chunkRow struct {
	ID         string `gorm:"primaryKey"`
	DocumentID string `gorm:"index"`
	Idx        int
	Text       string
	Length     int
	Overlap    int
}

func (chunkRow) TableName() string { return "chunks" }

func (r chunkRow) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Index:      r.Idx,
		Text:       r.Text,
		Length:     r.Length,
		Overlap:    r.Overlap,
	}
}

func chunkFromDomain(c domain.Chunk) chunkRow {
	return chunkRow{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Idx:        c.Index,
		Text:       c.Text,
		Length:     c.Length,
		Overlap:    c.Overlap,
	}
}

type jobRow struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Company     string
	Category    string
	Description string
	Location    string
	PostedAt    time.Time
}

func (jobRow) TableName() string { return "job_listings" }

func (r jobRow) toDomain() domain.JobListing {
	return domain.JobListing{
		ID:          r.ID,
		Title:       r.Title,
		Company:     r.Company,
		Category:    r.Category,
		Description: r.Description,
		Location:    r.Location,
		PostedAt:    r.PostedAt,
	}
}

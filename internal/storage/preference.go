package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rozgar/internal/domain"
)

// PreferenceStore persists one preference record per session with
// last-write-wins semantics.
type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) *PreferenceStore { return &PreferenceStore{db: db} }

func (s *PreferenceStore) Put(ctx context.Context, prefs domain.Preferences) error {
	if prefs.UpdatedAt.IsZero() {
		prefs.UpdatedAt = time.Now()
	}
	row := preferenceFromDomain(prefs)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, UpdateAll: true}).
		Create(&row).Error
}

// Get returns the session's preferences, or a zero value when none are set.
func (s *PreferenceStore) Get(ctx context.Context, sessionID string) (domain.Preferences, error) {
	var row preferenceRow
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Preferences{SessionID: sessionID}, nil
	}
	if err != nil {
		return domain.Preferences{}, err
	}
	return row.toDomain(), nil
}

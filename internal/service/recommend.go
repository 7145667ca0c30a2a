package service

import (
	"context"
	"fmt"
	"time"

	"rozgar/internal/domain"
)

// UpdatePreferences stores a session's job preferences, last write wins.
func (a *Assistant) UpdatePreferences(ctx context.Context, prefs domain.Preferences) error {
	if prefs.SessionID == "" {
		return fmt.Errorf("preferences: session id required")
	}
	prefs.UpdatedAt = time.Now()
	return a.preferences.Put(ctx, prefs)
}

// Preferences returns a session's stored preferences.
func (a *Assistant) Preferences(ctx context.Context, sessionID string) (domain.Preferences, error) {
	return a.preferences.Get(ctx, sessionID)
}

// Recommendations ranks the job catalog against the session's preferences.
// A session with no preferences gets domain.ErrEmptyPreferences, not an
// arbitrary unranked list.
func (a *Assistant) Recommendations(ctx context.Context, sessionID string) ([]domain.MatchResult, error) {
	return a.recommend(ctx, sessionID)
}

func (a *Assistant) recommend(ctx context.Context, sessionID string) ([]domain.MatchResult, error) {
	prefs, err := a.preferences.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if prefs.Empty() {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrEmptyPreferences)
	}
	listings, err := a.catalog.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return a.matcher.Match(prefs, listings, a.opts.MaxRecommendations)
}

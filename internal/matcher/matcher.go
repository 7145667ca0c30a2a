package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"rozgar/internal/domain"
)

// Matcher scores job listings against a session's preferences.
//
// Composite score per listing:
//
//	w*keywordOverlap + (1-w)*categoryMatch
//
// where keywordOverlap is the fraction of preference keywords present in the
// listing description (case-folded, Unicode-aware token match) and
// categoryMatch is 1 when the listing's category is in the preference set.
// Listings scoring zero on both terms are excluded entirely: a listing with
// no relevance is not a recommendation. Ties break by posting recency (newer
// first), then by listing ID.
type Matcher struct {
	weight float64
	folder cases.Caser
	tokens *regexp.Regexp
}

func New(preferenceWeight float64) (*Matcher, error) {
	if preferenceWeight < 0 || preferenceWeight > 1 {
		return nil, fmt.Errorf("matcher: preference weight must be in [0,1], got %g", preferenceWeight)
	}
	return &Matcher{
		weight: preferenceWeight,
		folder: cases.Fold(),
		tokens: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}, nil
}

// Match ranks candidates against prefs and returns at most maxResults.
// Pure given its inputs; safe for concurrent use.
func (m *Matcher) Match(prefs domain.Preferences, candidates []domain.JobListing, maxResults int) ([]domain.MatchResult, error) {
	if prefs.Empty() {
		return nil, fmt.Errorf("session %s: %w", prefs.SessionID, domain.ErrEmptyPreferences)
	}
	weight := m.weight
	if prefs.Weight != nil {
		weight = *prefs.Weight
	}
	categories := make(map[string]struct{}, len(prefs.Categories))
	for _, c := range prefs.Categories {
		categories[m.folder.String(strings.TrimSpace(c))] = struct{}{}
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, listing := range candidates {
		kw := m.keywordOverlap(prefs.Keywords, listing.Description)
		cat := 0.0
		if _, ok := categories[m.folder.String(listing.Category)]; ok {
			cat = 1.0
		}
		if kw == 0 && cat == 0 {
			continue
		}
		results = append(results, domain.MatchResult{
			Listing: listing,
			Score:   weight*kw + (1-weight)*cat,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Listing.PostedAt.Equal(b.Listing.PostedAt) {
			return a.Listing.PostedAt.After(b.Listing.PostedAt)
		}
		return a.Listing.ID < b.Listing.ID
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// keywordOverlap is the fraction of keywords present in the description.
// Single-word keywords match whole tokens; multi-word keywords match as a
// folded substring.
func (m *Matcher) keywordOverlap(keywords []string, description string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	folded := m.folder.String(description)
	tokenSet := make(map[string]struct{})
	for _, t := range m.tokens.FindAllString(folded, -1) {
		tokenSet[t] = struct{}{}
	}
	hits := 0
	for _, kw := range keywords {
		k := m.folder.String(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.ContainsAny(k, " \t") {
			if strings.Contains(folded, k) {
				hits++
			}
			continue
		}
		if _, ok := tokenSet[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

package domain

import "time"

// Document is a source text registered with the assistant's knowledge base.
// Documents are immutable; re-ingesting the same ID supersedes the old version.
type Document struct {
	ID         string
	Text       string
	Language   string
	IngestedAt time.Time
}

// Chunk is a bounded, possibly overlapping substring of a document, the unit
// of indexing. Overlap is the number of runes shared with the previous chunk,
// so joining chunks in index order and dropping each chunk's overlap prefix
// reconstructs the document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	Length     int
	Overlap    int
}

// RetrievedChunk is a chunk paired with its similarity score for a query.
type RetrievedChunk struct {
	Chunk Chunk
	Score float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a session's conversation. Turns are append-only.
type Turn struct {
	SessionID string
	Role      Role
	Text      string
	Language  string
	CreatedAt time.Time
}

// Preferences holds a session's job-matching preferences.
// Weight, when set, overrides the configured preference weight.
type Preferences struct {
	SessionID  string
	Categories []string
	Keywords   []string
	Location   string
	Weight     *float64
	UpdatedAt  time.Time
}

// Empty reports whether there is nothing to rank against.
func (p Preferences) Empty() bool {
	return len(p.Categories) == 0 && len(p.Keywords) == 0
}

// JobListing is an externally sourced job posting, read-only to this core.
type JobListing struct {
	ID          string
	Title       string
	Company     string
	Category    string
	Description string
	Location    string
	PostedAt    time.Time
}

// MatchResult is a listing with its composite recommendation score.
type MatchResult struct {
	Listing JobListing
	Score   float64
}

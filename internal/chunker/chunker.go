package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"rozgar/internal/domain"
)

// BoundaryChunker splits text into chunks of at most chunkSize runes with
// chunkOverlap runes shared with the previous chunk. Within boundaryWindow
// runes before a hard cut it prefers a paragraph break, then a sentence end,
// then whitespace, so chunks do not sever mid-word content. Joining a
// document's chunks in order and dropping each chunk's overlap prefix
// reproduces the original text exactly.
type BoundaryChunker struct {
	chunkSize      int
	chunkOverlap   int
	boundaryWindow int
}

// Sentence-ending runes, including the Devanagari danda used in Hindi and
// Punjabi prose.
const sentenceEnders = ".!?।॥"

func NewBoundaryChunker(chunkSize, chunkOverlap, boundaryWindow int) (*BoundaryChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunker: overlap must be in [0, chunk size), got %d", chunkOverlap)
	}
	if boundaryWindow < 0 || boundaryWindow > chunkSize {
		return nil, fmt.Errorf("chunker: boundary window must be in [0, chunk size], got %d", boundaryWindow)
	}
	return &BoundaryChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap, boundaryWindow: boundaryWindow}, nil
}

func (c *BoundaryChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Text)
	if len(strings.TrimSpace(document.Text)) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	start := 0
	prevEnd := 0
	for idx := 0; ; idx++ {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.cut(runes, start, end)
		}
		overlap := 0
		if idx > 0 {
			overlap = prevEnd - start
		}
		chunks = append(chunks, domain.Chunk{
			ID:         document.ID + ":" + strconv.Itoa(idx),
			DocumentID: document.ID,
			Index:      idx,
			Text:       string(runes[start:end]),
			Length:     end - start,
			Overlap:    overlap,
		})
		if end == len(runes) {
			break
		}
		prevEnd = end
		start = end - c.chunkOverlap
	}
	return chunks, nil
}

// cut picks the split position for a chunk starting at start whose hard cut
// would be at end. It scans backwards through the boundary window for a
// paragraph break, then a sentence end, then whitespace. The cut always stays
// past start+overlap so the next chunk makes progress.
func (c *BoundaryChunker) cut(runes []rune, start, end int) int {
	limit := end - c.boundaryWindow
	if min := start + c.chunkOverlap + 1; limit < min {
		limit = min
	}
	newline, sentence, space := 0, 0, 0
	for i := end - 1; i >= limit; i-- {
		switch {
		case runes[i] == '\n':
			if newline == 0 {
				newline = i + 1
			}
		case strings.ContainsRune(sentenceEnders, runes[i]):
			if sentence == 0 {
				sentence = i + 1
			}
		case runes[i] == ' ' || runes[i] == '\t':
			if space == 0 {
				space = i + 1
			}
		}
		if newline != 0 {
			break
		}
	}
	switch {
	case newline != 0:
		return newline
	case sentence != 0:
		return sentence
	case space != 0:
		return space
	default:
		return end
	}
}

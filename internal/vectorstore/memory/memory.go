package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"rozgar/internal/domain"
)

type entry struct {
	chunk  domain.Chunk
	vector []float64
	seq    uint64
}

// Index is an in-memory vector index using brute-force cosine similarity.
// Vectors are L2-normalized on insert and on query, so similarity reduces to
// a dot product. Mutation takes the write lock; concurrent queries against a
// stable index proceed in parallel under the read lock.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byID      map[string]int
	nextSeq   uint64
}

func NewIndex() *Index { return &Index{byID: make(map[string]int)} }

func (ix *Index) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dimension = dimension
	ix.entries = nil
	ix.byID = make(map[string]int)
	return nil
}

// Add inserts a chunk vector incrementally. Adding an existing ID replaces
// its vector but keeps the original insertion sequence.
func (ix *Index) Add(chunk domain.Chunk, vector []float64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dimension == 0 {
		return errors.New("index not initialized")
	}
	if len(vector) != ix.dimension {
		return fmt.Errorf("add %s: got %d, want %d: %w", chunk.ID, len(vector), ix.dimension, domain.ErrInvalidDimension)
	}
	v := normalize(vector)
	if i, ok := ix.byID[chunk.ID]; ok {
		ix.entries[i].chunk = chunk
		ix.entries[i].vector = v
		return nil
	}
	ix.entries = append(ix.entries, entry{chunk: chunk, vector: v, seq: ix.nextSeq})
	ix.byID[chunk.ID] = len(ix.entries) - 1
	ix.nextSeq++
	return nil
}

// Query returns up to k chunks by non-increasing cosine similarity. Equal
// scores are broken by insertion order, earliest first.
func (ix *Index) Query(vector []float64, k int) ([]domain.RetrievedChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(vector), ix.dimension, domain.ErrInvalidDimension)
	}
	if k <= 0 {
		return nil, nil
	}
	q := normalize(vector)
	type scored struct {
		e     entry
		score float64
	}
	all := make([]scored, len(ix.entries))
	for i, e := range ix.entries {
		all[i] = scored{e: e, score: dot(e.vector, q)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].e.seq < all[j].e.seq
	})
	if k > len(all) {
		k = len(all)
	}
	results := make([]domain.RetrievedChunk, 0, k)
	for _, s := range all[:k] {
		results = append(results, domain.RetrievedChunk{Chunk: s.e.chunk, Score: s.score})
	}
	return results, nil
}

func (ix *Index) Remove(chunkID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	i, ok := ix.byID[chunkID]
	if !ok {
		return nil
	}
	last := len(ix.entries) - 1
	ix.entries[i] = ix.entries[last]
	ix.byID[ix.entries[i].chunk.ID] = i
	ix.entries = ix.entries[:last]
	delete(ix.byID, chunkID)
	return nil
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Rebuild recompacts the index in insertion order. It is an explicit
// maintenance operation; Add never triggers it.
func (ix *Index) Rebuild() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	sort.Slice(ix.entries, func(i, j int) bool { return ix.entries[i].seq < ix.entries[j].seq })
	for i := range ix.entries {
		ix.byID[ix.entries[i].chunk.ID] = i
	}
}

func normalize(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return append([]float64(nil), v...)
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

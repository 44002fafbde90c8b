// ABOUTME: In-memory vector index with brute-force cosine similarity search
// ABOUTME: Bulk-loaded once at startup and read-only afterwards, so searches may run concurrently
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/harper/guia/internal/models"
)

var (
	// ErrNotBuilt is returned when searching an index that has not been loaded
	ErrNotBuilt = errors.New("index has not been built")

	// ErrInvalidK is returned when search is asked for fewer than one result
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrDimensionMismatch is returned when a query vector does not match the index
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// VectorStorage is an in-memory cosine similarity index
type VectorStorage struct {
	mu      sync.RWMutex
	entries []models.IndexEntry
	norms   []float64
	dims    int
	built   bool
}

// NewVectorStorage creates an empty in-memory index
func NewVectorStorage() *VectorStorage {
	return &VectorStorage{}
}

// Index bulk-loads every entry. It may only be called once.
func (vs *VectorStorage) Index(ctx context.Context, entries []models.IndexEntry) error {
	dims, err := ValidateEntries(entries)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &models.IndexBuildError{Reason: "cancelled", Err: err}
	}

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.built {
		return &models.IndexBuildError{Reason: "index already built"}
	}

	vs.entries = make([]models.IndexEntry, len(entries))
	vs.norms = make([]float64, len(entries))
	for i, e := range entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		vs.entries[i] = models.IndexEntry{Chunk: e.Chunk, Vector: vec}
		vs.norms[i] = norm(vec)
	}
	vs.dims = dims
	vs.built = true
	return nil
}

// Search returns up to k entries ordered by descending cosine similarity.
// Ties go to the chunk ingested first.
func (vs *VectorStorage) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidK, k)
	}

	vs.mu.RLock()
	defer vs.mu.RUnlock()

	if !vs.built {
		return nil, ErrNotBuilt
	}
	if len(vector) != vs.dims {
		return nil, fmt.Errorf("%w: index has %d, query has %d", ErrDimensionMismatch, vs.dims, len(vector))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryNorm := norm(vector)
	results := make([]models.ScoredChunk, len(vs.entries))
	for i, e := range vs.entries {
		results[i] = models.ScoredChunk{
			Chunk: e.Chunk,
			Score: cosineSimilarity(vector, e.Vector, queryNorm, vs.norms[i]),
		}
	}

	SortScored(results)

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed entries
func (vs *VectorStorage) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.entries)
}

// ValidateEntries checks an index build input and returns its dimensionality
func ValidateEntries(entries []models.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, &models.IndexBuildError{Reason: "no entries to index"}
	}
	dims := len(entries[0].Vector)
	if dims == 0 {
		return 0, &models.IndexBuildError{Reason: "empty embedding vector"}
	}
	for i, e := range entries {
		if len(e.Vector) != dims {
			return 0, &models.IndexBuildError{
				Reason: fmt.Sprintf("inconsistent dimensions: entry %d has %d, expected %d", i, len(e.Vector), dims),
			}
		}
	}
	return dims, nil
}

// SortScored orders hits by descending score, then by ingestion order
func SortScored(results []models.ScoredChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Order < results[j].Chunk.Order
	})
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity calculates cosine similarity from precomputed norms
func cosineSimilarity(a, b []float32, normA, normB float64) float64 {
	if len(a) != len(b) || normA == 0 || normB == 0 {
		return 0.0
	}

	var dotProduct float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
	}
	return dotProduct / (normA * normB)
}

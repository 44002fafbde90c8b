// ABOUTME: Embedding models for vector indexing and similarity search
// ABOUTME: Defines IndexEntry, ScoredChunk and RetrievalResult
package models

// IndexEntry pairs a chunk with its embedding vector
type IndexEntry struct {
	Chunk  Chunk     `json:"chunk"`
	Vector []float32 `json:"vector"`
}

// ScoredChunk is a search hit with its similarity score
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is the ordered top-k hits for one query
type RetrievalResult struct {
	Query  string        `json:"query"`
	Chunks []ScoredChunk `json:"chunks"`
}

// Contents returns the chunk texts in retrieval order
func (r *RetrievalResult) Contents() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Chunks))
	for _, sc := range r.Chunks {
		out = append(out, sc.Chunk.Content)
	}
	return out
}

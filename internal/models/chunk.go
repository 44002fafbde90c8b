// ABOUTME: Chunk is a bounded substring of a Document used as the unit of retrieval
// ABOUTME: Chunks are created once at ingestion and never mutated
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Chunk represents one indexed piece of a source document
type Chunk struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Position int    `json:"position"` // index within its document
	Order    int    `json:"order"`    // global ingestion order, breaks search ties
}

// ChunkID derives a stable identifier from a chunk's location.
// The result is a valid UUID so vector databases can use it as a point id.
func ChunkID(source string, page, position int) string {
	name := fmt.Sprintf("%s:%d:%d", source, page, position)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Label renders "source p.N #M" for display
func (c Chunk) Label() string {
	return fmt.Sprintf("%s p.%d #%d", c.Source, c.Page, c.Position)
}

// ABOUTME: Capabilities the core consumes from external collaborators
// ABOUTME: Implemented by internal/loader, internal/llm and internal/storage
package core

import (
	"context"

	"github.com/harper/guia/internal/models"
)

// DocumentLoader reads source files into Documents
type DocumentLoader interface {
	Load(ctx context.Context, paths []string) ([]models.Document, error)
}

// Embedder turns text into embedding vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is bulk-loaded once and then searched by similarity
type VectorIndex interface {
	Index(ctx context.Context, entries []models.IndexEntry) error
	Search(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error)
}

// ChatModel produces a reply to a conversation
type ChatModel interface {
	Chat(ctx context.Context, messages []models.Message, opts models.ChatOptions) (string, error)
}

// StructuredChatModel can also constrain a reply to the JSON shape of out
type StructuredChatModel interface {
	ChatModel
	ChatJSON(ctx context.Context, messages []models.Message, opts models.ChatOptions, out any) error
}

// ABOUTME: Tests for Retriever orchestration
// ABOUTME: Covers k validation, error classification and pass-through of overlapping chunks

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/guia/internal/models"
	"github.com/harper/guia/internal/storage"
)

func indexedRetriever(t *testing.T, texts ...string) (*Retriever, *letterEmbedder) {
	t.Helper()
	emb := &letterEmbedder{}
	idx := storage.NewVectorStorage()
	entries := make([]models.IndexEntry, len(texts))
	for i, text := range texts {
		entries[i] = models.IndexEntry{
			Chunk:  models.Chunk{ID: text, Content: text, Order: i},
			Vector: letterVector(text),
		}
	}
	if err := idx.Index(context.Background(), entries); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	return NewRetriever(emb, idx, nil), emb
}

func TestRetriever_Retrieve(t *testing.T) {
	r, emb := indexedRetriever(t, "abc", "xyz", "abd")

	result, err := r.Retrieve(context.Background(), "ab", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Query != "ab" {
		t.Errorf("Query = %q", result.Query)
	}
	if len(result.Chunks) != 2 || result.Chunks[0].Chunk.Content != "abc" || result.Chunks[1].Chunk.Content != "abd" {
		t.Errorf("chunks = %+v, want [abc abd]", result.Chunks)
	}
	if embed, _ := emb.counts(); embed != 1 {
		t.Errorf("Embed called %d times, want 1", embed)
	}
}

func TestRetriever_KeepsDuplicates(t *testing.T) {
	r, _ := indexedRetriever(t, "ab", "ab", "cd")

	result, err := r.Retrieve(context.Background(), "ab", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Chunks[0].Chunk.Content != "ab" || result.Chunks[1].Chunk.Content != "ab" {
		t.Errorf("duplicates should pass through, got %+v", result.Chunks)
	}
}

func TestRetriever_InvalidK(t *testing.T) {
	r, emb := indexedRetriever(t, "ab")

	_, err := r.Retrieve(context.Background(), "ab", 0)
	if !errors.Is(err, models.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
	if embed, _ := emb.counts(); embed != 0 {
		t.Error("embedder must not be called for invalid k")
	}
}

func TestRetriever_EmbeddingError(t *testing.T) {
	r, emb := indexedRetriever(t, "ab")
	emb.embedErr = errors.New("timeout")

	_, err := r.Retrieve(context.Background(), "ab", 1)
	if !errors.Is(err, models.ErrEmbedding) {
		t.Errorf("error = %v, want ErrEmbedding", err)
	}
}

// ABOUTME: Tests for QueryEngine ingestion and question answering
// ABOUTME: Uses the real loader, chunker and in-memory index with stubbed model calls

package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/harper/guia/internal/loader"
	"github.com/harper/guia/internal/models"
	"github.com/harper/guia/internal/storage"
)

type engineFixture struct {
	engine   *QueryEngine
	embedder *letterEmbedder
	model    *recordingModel
}

func newEngineFixture(t *testing.T, size, overlap int, mutate func(*EngineOptions)) *engineFixture {
	t.Helper()
	chunker, err := NewChunkEngine(size, overlap)
	if err != nil {
		t.Fatalf("NewChunkEngine() error = %v", err)
	}
	f := &engineFixture{
		embedder: &letterEmbedder{},
		model:    &recordingModel{reply: "resposta"},
	}
	opts := DefaultEngineOptions()
	if mutate != nil {
		mutate(&opts)
	}
	f.engine, err = NewQueryEngine(Components{
		Loader:   loader.New(),
		Chunker:  chunker,
		Embedder: f.embedder,
		Index:    storage.NewVectorStorage(),
		Model:    f.model,
	}, opts)
	if err != nil {
		t.Fatalf("NewQueryEngine() error = %v", err)
	}
	return f
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fonte.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	return path
}

func sourceContents(chunks []models.ScoredChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Chunk.Content
	}
	return out
}

func TestQueryEngine_EndToEnd(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	ctx := context.Background()

	stats, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B C D E")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Documents != 1 || stats.Chunks != 4 {
		t.Errorf("stats = %+v, want 1 document and 4 chunks", stats)
	}
	if !f.engine.Ready() {
		t.Error("engine should be ready after ingest")
	}

	answer, err := f.engine.Ask(ctx, "C D")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "resposta" {
		t.Errorf("answer = %q, want %q", answer.Text, "resposta")
	}

	// "C D" matches exactly; "B C" and "D E" tie and the earlier chunk wins
	want := []string{"C D", "B C", "D E"}
	if got := sourceContents(answer.Sources); !reflect.DeepEqual(got, want) {
		t.Errorf("sources = %q, want %q", got, want)
	}

	msgs := f.model.lastCall()
	if len(msgs) != 2 {
		t.Fatalf("model got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleSystem || msgs[0].Content != DefaultSystemPrompt {
		t.Errorf("system message = %+v", msgs[0])
	}
	wantUser := "C D\n\nContexto relevante da legislação: \n C D\n\nB C\n\nD E\n\nResposta:"
	if msgs[1].Content != wantUser {
		t.Errorf("user message = %q, want %q", msgs[1].Content, wantUser)
	}
}

func TestQueryEngine_TopKLargerThanIndex(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	ctx := context.Background()

	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B C")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	result, err := f.engine.Retrieve(ctx, "A")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Errorf("len(chunks) = %d, want 2", len(result.Chunks))
	}
}

func TestQueryEngine_ZeroDocuments(t *testing.T) {
	f := newEngineFixture(t, 10, 2, nil)
	ctx := context.Background()

	_, err := f.engine.Ingest(ctx, nil)
	var ibe *models.IndexBuildError
	if !errors.As(err, &ibe) {
		t.Fatalf("Ingest(nil) error = %v, want *models.IndexBuildError", err)
	}
	if f.engine.Ready() {
		t.Error("engine must not be ready after a failed ingest")
	}
	if _, err := f.engine.Ask(ctx, "qualquer"); !errors.Is(err, ErrIndexNotReady) {
		t.Errorf("Ask() error = %v, want ErrIndexNotReady", err)
	}
}

func TestQueryEngine_WhitespaceOnlyDocument(t *testing.T) {
	f := newEngineFixture(t, 10, 2, nil)

	_, err := f.engine.Ingest(context.Background(), []string{writeSource(t, "  \n\n  ")})
	if !errors.Is(err, models.ErrIndexBuild) {
		t.Errorf("Ingest() error = %v, want ErrIndexBuild", err)
	}
}

func TestQueryEngine_MissingSource(t *testing.T) {
	f := newEngineFixture(t, 10, 2, nil)
	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "lei.pdf")

	_, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B"), missing})
	var le *models.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Ingest() error = %v, want *models.LoadError", err)
	}
	if le.Path != missing {
		t.Errorf("LoadError.Path = %q, want %q", le.Path, missing)
	}
	if _, batch := f.embedder.counts(); batch != 0 {
		t.Errorf("embedder called %d times before load failure surfaced", batch)
	}
	if _, err := f.engine.Retrieve(ctx, "A"); !errors.Is(err, ErrIndexNotReady) {
		t.Errorf("Retrieve() error = %v, want ErrIndexNotReady", err)
	}
}

func TestQueryEngine_IngestRunsOnce(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	path := writeSource(t, "A B C D E")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Ingest(context.Background(), []string{path})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Ingest() error = %v", err)
		}
	}
	if _, batch := f.embedder.counts(); batch != 1 {
		t.Errorf("EmbedBatch called %d times, want 1", batch)
	}

	// A later call with different input returns the first outcome
	stats, err := f.engine.Ingest(context.Background(), nil)
	if err != nil || stats.Chunks != 4 {
		t.Errorf("repeat Ingest() = (%+v, %v), want first outcome", stats, err)
	}
}

func TestQueryEngine_EmbedsInBatches(t *testing.T) {
	f := newEngineFixture(t, 3, 1, func(o *EngineOptions) { o.EmbedBatchSize = 3 })

	if _, err := f.engine.Ingest(context.Background(), []string{writeSource(t, "A B C D E")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, batch := f.embedder.counts(); batch != 2 {
		t.Errorf("EmbedBatch called %d times, want 2 for 4 chunks in batches of 3", batch)
	}
}

func TestQueryEngine_BatchEmbeddingFailure(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	f.embedder.batchErr = errors.New("429 too many requests")

	_, err := f.engine.Ingest(context.Background(), []string{writeSource(t, "A B C")})
	if !errors.Is(err, models.ErrEmbedding) {
		t.Errorf("Ingest() error = %v, want ErrEmbedding", err)
	}
}

func TestQueryEngine_QueryEmbeddingFailure(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	ctx := context.Background()
	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B C")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	f.embedder.embedErr = errors.New("connection reset")
	_, err := f.engine.Ask(ctx, "A")
	var ee *models.EmbeddingError
	if !errors.As(err, &ee) {
		t.Fatalf("Ask() error = %v, want *models.EmbeddingError", err)
	}
	if f.model.callCount() != 0 {
		t.Error("chat model must not be called when retrieval fails")
	}

	// The failure aborts only that query
	f.embedder.embedErr = nil
	if _, err := f.engine.Ask(ctx, "A"); err != nil {
		t.Errorf("next Ask() error = %v", err)
	}
}

func TestQueryEngine_GenerationFailure(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	ctx := context.Background()
	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B C")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	cause := context.DeadlineExceeded
	f.model.err = cause

	_, err := f.engine.Ask(ctx, "A")
	var ge *models.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("Ask() error = %v, want *models.GenerationError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("GenerationError should unwrap to the original cause")
	}
	if f.model.callCount() != 1 {
		t.Errorf("chat model called %d times, want 1 (no retry)", f.model.callCount())
	}
}

func TestQueryEngine_RetrievalIsDeterministic(t *testing.T) {
	f := newEngineFixture(t, 20, 5, nil)
	ctx := context.Background()
	text := "O imposto sobre servicos incide sobre a prestacao de servicos.\n\n" +
		"A taxa de coleta de lixo e cobrada anualmente.\n\n" +
		"O contribuinte pode parcelar debitos em ate doze vezes."
	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, text)}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	first, err := f.engine.Retrieve(ctx, "parcelar debitos")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.engine.Retrieve(ctx, "parcelar debitos")
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("retrieval %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestQueryEngine_EmptyQuery(t *testing.T) {
	f := newEngineFixture(t, 3, 1, nil)
	ctx := context.Background()
	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, err := f.engine.Ask(ctx, "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Ask() error = %v, want ErrEmptyQuery", err)
	}
}

func TestQueryEngine_CustomSystemPrompt(t *testing.T) {
	f := newEngineFixture(t, 3, 1, func(o *EngineOptions) { o.SystemPrompt = "Seja breve." })
	ctx := context.Background()
	if _, err := f.engine.Ingest(ctx, []string{writeSource(t, "A B")}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, err := f.engine.Ask(ctx, "A"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got := f.model.lastCall()[0].Content; got != "Seja breve." {
		t.Errorf("system prompt = %q", got)
	}
}

func TestNewQueryEngine_Validation(t *testing.T) {
	chunker, _ := NewChunkEngine(10, 2)
	full := Components{
		Loader:   loader.New(),
		Chunker:  chunker,
		Embedder: &letterEmbedder{},
		Index:    storage.NewVectorStorage(),
		Model:    &recordingModel{},
	}

	tests := []struct {
		name   string
		mutate func(*Components, *EngineOptions)
		match  func(error) bool
	}{
		{"missing loader", func(c *Components, o *EngineOptions) { c.Loader = nil }, func(err error) bool {
			return err != nil && strings.Contains(err.Error(), "loader")
		}},
		{"missing index", func(c *Components, o *EngineOptions) { c.Index = nil }, func(err error) bool {
			return err != nil && strings.Contains(err.Error(), "index")
		}},
		{"zero top_k", func(c *Components, o *EngineOptions) { o.TopK = 0 }, func(err error) bool {
			return errors.Is(err, models.ErrConfig)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full
			o := DefaultEngineOptions()
			tt.mutate(&c, &o)
			if _, err := NewQueryEngine(c, o); !tt.match(err) {
				t.Errorf("NewQueryEngine() error = %v", err)
			}
		})
	}
}

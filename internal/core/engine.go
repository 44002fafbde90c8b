// ABOUTME: QueryEngine runs one-time ingestion and then answers queries over the built index
// ABOUTME: Ingest is guarded so concurrent callers share a single build and its outcome
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// DefaultTopK is how many chunks ground each answer
const DefaultTopK = 3

// DefaultEmbedBatchSize bounds the number of chunks per embedding request
const DefaultEmbedBatchSize = 100

var (
	// ErrIndexNotReady is returned when querying before a successful ingest
	ErrIndexNotReady = errors.New("index not ready: ingest has not completed")

	// ErrEmptyQuery is returned for blank queries
	ErrEmptyQuery = errors.New("query cannot be empty")
)

var tracer = otel.Tracer("github.com/harper/guia/internal/core")

// Components are the collaborators a QueryEngine orchestrates
type Components struct {
	Loader   DocumentLoader
	Chunker  *ChunkEngine
	Embedder Embedder
	Index    VectorIndex
	Model    ChatModel
}

// EngineOptions configures a QueryEngine
type EngineOptions struct {
	TopK           int
	SystemPrompt   string
	PromptTemplate string
	EmbedBatchSize int
	Chat           models.ChatOptions
	Logger         *zap.Logger
}

// DefaultEngineOptions returns options matching the reference behavior
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		TopK:           DefaultTopK,
		SystemPrompt:   DefaultSystemPrompt,
		PromptTemplate: DefaultPromptTemplate,
		EmbedBatchSize: DefaultEmbedBatchSize,
		Chat:           models.ChatOptions{Temperature: models.Temperature(0.7)},
	}
}

// IngestStats summarizes a completed ingestion
type IngestStats struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Duration  time.Duration `json:"duration"`
}

// QueryEngine is the retrieval-augmented query pipeline
type QueryEngine struct {
	loader    DocumentLoader
	chunker   *ChunkEngine
	embedder  Embedder
	index     VectorIndex
	retriever *Retriever
	hydrator  *ContextHydrator
	generator *AnswerGenerator
	opts      EngineOptions
	logger    *zap.Logger

	once      sync.Once
	stats     IngestStats
	ingestErr error
	ready     atomic.Bool
}

// NewQueryEngine wires the pipeline together
func NewQueryEngine(c Components, opts EngineOptions) (*QueryEngine, error) {
	switch {
	case c.Loader == nil:
		return nil, errors.New("query engine: loader is required")
	case c.Chunker == nil:
		return nil, errors.New("query engine: chunker is required")
	case c.Embedder == nil:
		return nil, errors.New("query engine: embedder is required")
	case c.Index == nil:
		return nil, errors.New("query engine: index is required")
	case c.Model == nil:
		return nil, errors.New("query engine: chat model is required")
	}
	if opts.TopK < 1 {
		return nil, models.NewConfigError("top_k", "must be >= 1, got %d", opts.TopK)
	}
	if opts.EmbedBatchSize < 1 {
		opts.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hydrator := NewContextHydrator(opts.PromptTemplate)
	return &QueryEngine{
		loader:    c.Loader,
		chunker:   c.Chunker,
		embedder:  c.Embedder,
		index:     c.Index,
		retriever: NewRetriever(c.Embedder, c.Index, logger),
		hydrator:  hydrator,
		generator: NewAnswerGenerator(c.Model, hydrator, opts.Chat),
		opts:      opts,
		logger:    logger,
	}, nil
}

// Ingest loads, chunks, embeds and indexes the sources. Only the first call
// does any work; later and concurrent calls return the same outcome.
func (e *QueryEngine) Ingest(ctx context.Context, paths []string) (IngestStats, error) {
	e.once.Do(func() {
		e.stats, e.ingestErr = e.ingest(ctx, paths)
		if e.ingestErr == nil {
			e.ready.Store(true)
		}
	})
	return e.stats, e.ingestErr
}

// Ready reports whether ingestion completed successfully
func (e *QueryEngine) Ready() bool {
	return e.ready.Load()
}

func (e *QueryEngine) ingest(ctx context.Context, paths []string) (stats IngestStats, err error) {
	ctx, span := tracer.Start(ctx, "core.Ingest", trace.WithAttributes(attribute.Int("sources", len(paths))))
	defer func() { endSpan(span, err) }()

	began := time.Now()

	docs, err := e.loader.Load(ctx, paths)
	if err != nil {
		return stats, err
	}
	stats.Documents = len(docs)

	chunks := e.chunker.SplitDocuments(docs)
	stats.Chunks = len(chunks)
	if len(chunks) == 0 {
		return stats, &models.IndexBuildError{
			Reason: fmt.Sprintf("no chunks to index from %d documents", len(docs)),
		}
	}

	entries, err := e.embedChunks(ctx, chunks)
	if err != nil {
		return stats, err
	}

	if err := e.index.Index(ctx, entries); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(began)
	e.logger.Info("ingestion complete",
		zap.Int("sources", len(paths)),
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (e *QueryEngine) embedChunks(ctx context.Context, chunks []models.Chunk) ([]models.IndexEntry, error) {
	entries := make([]models.IndexEntry, 0, len(chunks))
	size := e.opts.EmbedBatchSize

	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		began := time.Now()
		vectors, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, &models.EmbeddingError{Err: fmt.Errorf("batch %d-%d: %w", start, end, err)}
		}
		if len(vectors) != len(texts) {
			return nil, &models.EmbeddingError{
				Err: fmt.Errorf("batch %d-%d: got %d vectors for %d chunks", start, end, len(vectors), len(texts)),
			}
		}
		e.logger.Debug("embedded batch",
			zap.Int("start", start),
			zap.Int("size", len(texts)),
			zap.Duration("latency", time.Since(began)))

		for i, v := range vectors {
			entries = append(entries, models.IndexEntry{Chunk: chunks[start+i], Vector: v})
		}
	}
	return entries, nil
}

// Retrieve returns the top-k chunks for query
func (e *QueryEngine) Retrieve(ctx context.Context, query string) (*models.RetrievalResult, error) {
	if !e.ready.Load() {
		return nil, ErrIndexNotReady
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	return e.retriever.Retrieve(ctx, query, e.opts.TopK)
}

// Ask retrieves context for query and generates a grounded answer
func (e *QueryEngine) Ask(ctx context.Context, query string) (answer *models.Answer, err error) {
	ctx, span := tracer.Start(ctx, "core.Ask")
	defer func() { endSpan(span, err) }()

	result, err := e.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	grounding := e.hydrator.BuildContext(result)
	text, err := e.generator.Generate(ctx, e.opts.SystemPrompt, grounding, query)
	if err != nil {
		return nil, err
	}

	return &models.Answer{Query: query, Text: text, Sources: result.Chunks}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

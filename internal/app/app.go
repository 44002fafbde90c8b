// ABOUTME: Builds the runtime shared by the binaries: config, logger, OpenAI client and query engine
// ABOUTME: The vector index backend is chosen from configuration
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/harper/guia/internal/config"
	"github.com/harper/guia/internal/core"
	"github.com/harper/guia/internal/llm"
	"github.com/harper/guia/internal/loader"
	"github.com/harper/guia/internal/models"
	"github.com/harper/guia/internal/storage"
)

// App holds what a command needs to talk to the models
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Client *llm.OpenAIClient

	closers []func() error
}

// New loads .env, configuration and credentials and creates the OpenAI client
func New(configPath string, verbose, quiet bool) (*App, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(verbose, quiet)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		Temperature:    cfg.Temperature,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		EmbedRPS:       cfg.EmbedRPS,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{Config: cfg, Logger: logger, Client: client}, nil
}

// Close releases index connections and flushes the logger
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// ChatOptions are the configured model and temperature
func (a *App) ChatOptions() models.ChatOptions {
	return models.ChatOptions{Model: a.Config.ChatModel, Temperature: models.Temperature(a.Config.Temperature)}
}

// Router creates the travel router. It keeps its own temperature.
func (a *App) Router() *core.Router {
	return core.NewRouter(a.Client, models.ChatOptions{Model: a.Config.ChatModel}, a.Logger)
}

// Planner creates the trip planner
func (a *App) Planner() *core.Planner {
	return core.NewPlanner(a.Client, a.ChatOptions())
}

// Concierge creates the session chat
func (a *App) Concierge() *core.Concierge {
	return core.NewConcierge(a.Client, a.ChatOptions(), a.Logger)
}

func (a *App) newIndex() (core.VectorIndex, error) {
	switch a.Config.Index {
	case config.IndexQdrant:
		q, err := storage.NewQdrantStorage(a.Config.QdrantAddr, a.Config.QdrantCollection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, q.Close)
		return q, nil
	default:
		return storage.NewVectorStorage(), nil
	}
}

// BuildEngine wires the query engine and ingests the configured sources
func (a *App) BuildEngine(ctx context.Context) (*core.QueryEngine, core.IngestStats, error) {
	chunker, err := core.NewChunkEngine(a.Config.ChunkSize, a.Config.ChunkOverlap)
	if err != nil {
		return nil, core.IngestStats{}, err
	}
	index, err := a.newIndex()
	if err != nil {
		return nil, core.IngestStats{}, err
	}

	opts := core.DefaultEngineOptions()
	opts.TopK = a.Config.TopK
	opts.EmbedBatchSize = a.Config.EmbedBatchSize
	opts.Chat = a.ChatOptions()
	opts.Logger = a.Logger
	if a.Config.SystemPrompt != "" {
		opts.SystemPrompt = a.Config.SystemPrompt
	}

	engine, err := core.NewQueryEngine(core.Components{
		Loader:   loader.New(loader.WithLogger(a.Logger)),
		Chunker:  chunker,
		Embedder: a.Client,
		Index:    index,
		Model:    a.Client,
	}, opts)
	if err != nil {
		return nil, core.IngestStats{}, err
	}

	// Ingestion embeds every chunk, so it gets a longer budget than a single call
	ctx, cancel := context.WithTimeout(ctx, 10*a.Config.Timeout)
	defer cancel()

	stats, err := engine.Ingest(ctx, a.Config.Sources)
	if err != nil {
		return nil, stats, fmt.Errorf("ingesting sources: %w", err)
	}
	return engine, stats, nil
}

// CallContext bounds a single interactive request
func (a *App) CallContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.Config.Timeout+5*time.Second)
}

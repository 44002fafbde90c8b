// ABOUTME: OpenAI client for embeddings, chat completions and structured JSON output
// ABOUTME: Calls are never retried; embedding requests are paced by an optional rate limiter
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harper/guia/internal/models"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultTimeout bounds a single HTTP request to the provider
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNoEmbeddings is returned when the provider answers without vectors
	ErrNoEmbeddings = errors.New("no embeddings returned")
	// ErrNoChoices is returned when the provider answers without a completion
	ErrNoChoices = errors.New("no completion choices returned")
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	Temperature    float64
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	EmbedRPS       float64 // 0 disables pacing
	Logger         *zap.Logger
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		Temperature:    0.7,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        DefaultTimeout,
	}
}

// OpenAIClient wraps the OpenAI API client
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	temperature    float64
	embeddingModel openai.EmbeddingModel
	limiter        *rate.Limiter
	inst           *instruments
	logger         *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, models.NewConfigError("OPENAI_API_KEY", "API key is required")
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.EmbedRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.EmbedRPS), 1)
	}

	inst, err := newInstruments()
	if err != nil {
		return nil, fmt.Errorf("creating instruments: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := config.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      chatModel,
		temperature:    config.Temperature,
		embeddingModel: embeddingModel,
		limiter:        limiter,
		inst:           inst,
		logger:         logger,
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// Embed returns the embedding vector for a single text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, "embed", []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one embedding per input text, in input order
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, "embed_batch", texts)
}

func (c *OpenAIClient) embed(ctx context.Context, op string, texts []string) (vectors [][]float32, err error) {
	ctx, done := c.inst.start(ctx, op, attribute.Int("inputs", len(texts)))
	defer func() { done(err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	began := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	c.logger.Debug("embeddings created",
		zap.String("op", op),
		zap.Int("inputs", len(texts)),
		zap.Duration("latency", time.Since(began)))

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d for %d inputs", ErrNoEmbeddings, len(resp.Data), len(texts))
	}

	// The provider reports each vector's input index; do not rely on response order
	vectors = make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("unexpected embedding index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Chat sends a conversation and returns the assistant's reply
func (c *OpenAIClient) Chat(ctx context.Context, messages []models.Message, opts models.ChatOptions) (string, error) {
	return c.complete(ctx, "chat", c.chatRequest(messages, opts))
}

// ChatJSON sends a conversation constrained to the JSON schema of out's type
// and decodes the reply into out, which must be a non-nil pointer to a struct.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []models.Message, opts models.ChatOptions, out any) error {
	t := reflect.TypeOf(out)
	if t == nil || t.Kind() != reflect.Pointer || reflect.ValueOf(out).IsNil() {
		return errors.New("ChatJSON: out must be a non-nil pointer")
	}

	schema, err := jsonschema.GenerateSchemaForType(reflect.New(t.Elem()).Elem().Interface())
	if err != nil {
		return fmt.Errorf("generating schema for %s: %w", t.Elem(), err)
	}

	req := c.chatRequest(messages, opts)
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   schemaName(t.Elem()),
			Schema: schema,
			Strict: true,
		},
	}

	content, err := c.complete(ctx, "chat_json", req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parsing structured reply: %w", err)
	}
	return nil
}

func (c *OpenAIClient) chatRequest(messages []models.Message, opts models.ChatOptions) openai.ChatCompletionRequest {
	model := opts.Model
	if model == "" {
		model = c.chatModel
	}
	temperature := float32(c.temperature)
	if opts.Temperature != nil {
		temperature = float32(*opts.Temperature)
	}
	// go-openai drops a zero temperature (omitempty), which the API reads as 1.0
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
	}
}

func (c *OpenAIClient) complete(ctx context.Context, op string, req openai.ChatCompletionRequest) (content string, err error) {
	ctx, done := c.inst.start(ctx, op, attribute.String("model", req.Model))
	defer func() { done(err) }()

	began := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	c.logger.Debug("chat completion created",
		zap.String("op", op),
		zap.String("model", req.Model),
		zap.Duration("latency", time.Since(began)))

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(r models.Role) string {
	switch r {
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// schemaName derives a response format name from a Go type ([a-z0-9_] only)
func schemaName(t reflect.Type) string {
	var b strings.Builder
	for _, r := range t.Name() {
		switch {
		case r >= 'A' && r <= 'Z':
			if b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "response"
	}
	return b.String()
}

// ABOUTME: Concierge is the multi-turn travel chat that remembers each session's history
// ABOUTME: Turns are only recorded once the model has answered
package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// Concierge answers chat messages in the context of a session
type Concierge struct {
	model  ChatModel
	opts   models.ChatOptions
	logger *zap.Logger
}

// NewConcierge creates a Concierge
func NewConcierge(model ChatModel, opts models.ChatOptions, logger *zap.Logger) *Concierge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Concierge{model: model, opts: opts, logger: logger}
}

// Reply answers text within sessionID, using and extending its history
func (c *Concierge) Reply(ctx context.Context, store *SessionStore, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyQuery
	}

	history, created := store.GetOrCreate(sessionID)
	if created {
		c.logger.Debug("session created", zap.String("session", sessionID))
	}

	past := history.Messages()
	messages := make([]models.Message, 0, len(past)+2)
	messages = append(messages, models.SystemMessage(conciergePersona))
	messages = append(messages, past...)
	messages = append(messages, models.UserMessage(text))

	reply, err := c.model.Chat(ctx, messages, c.opts)
	if err != nil {
		return "", &models.GenerationError{Err: err}
	}

	history.Append(models.UserMessage(text), models.AssistantMessage(reply))
	return reply, nil
}

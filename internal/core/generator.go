// ABOUTME: AnswerGenerator calls the chat model with the grounded prompt
// ABOUTME: Failures surface as GenerationError with no retry and no fallback answer
package core

import (
	"context"

	"github.com/harper/guia/internal/models"
)

// AnswerGenerator turns a system prompt, context and query into an answer
type AnswerGenerator struct {
	model    ChatModel
	hydrator *ContextHydrator
	opts     models.ChatOptions
}

// NewAnswerGenerator creates an AnswerGenerator
func NewAnswerGenerator(model ChatModel, hydrator *ContextHydrator, opts models.ChatOptions) *AnswerGenerator {
	if hydrator == nil {
		hydrator = NewContextHydrator("")
	}
	return &AnswerGenerator{model: model, hydrator: hydrator, opts: opts}
}

// Generate asks the chat model to answer query using the grounding text
func (g *AnswerGenerator) Generate(ctx context.Context, systemPrompt, grounding, query string) (string, error) {
	messages := g.hydrator.BuildMessages(systemPrompt, grounding, query)
	answer, err := g.model.Chat(ctx, messages, g.opts)
	if err != nil {
		return "", &models.GenerationError{Err: err}
	}
	return answer, nil
}

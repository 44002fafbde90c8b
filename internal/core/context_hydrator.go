// ABOUTME: ContextHydrator assembles the grounded prompt from retrieved chunks and the query
// ABOUTME: Chunks are joined in retrieval order, separated by a blank line
package core

import (
	"strings"

	"github.com/harper/guia/internal/models"
)

const (
	// DefaultSystemPrompt frames answers around Manaus municipal legislation
	DefaultSystemPrompt = "Você é um assistente especializado em responder perguntas sobre a legislação " +
		"municipal de Manaus-AM, Brasil. Utilize os trechos da lei fornecidos para fundamentar suas respostas."

	// DefaultPromptTemplate renders the user turn; {query} and {context} are substituted
	DefaultPromptTemplate = "{query}\n\nContexto relevante da legislação: \n {context}\n\nResposta:"

	contextSeparator = "\n\n"
)

// ContextHydrator builds chat messages that ground a query on retrieved text
type ContextHydrator struct {
	template string
}

// NewContextHydrator creates a ContextHydrator. An empty template selects DefaultPromptTemplate.
func NewContextHydrator(template string) *ContextHydrator {
	if template == "" {
		template = DefaultPromptTemplate
	}
	return &ContextHydrator{template: template}
}

// BuildContext concatenates the retrieved chunk texts in retrieval order
func (ch *ContextHydrator) BuildContext(result *models.RetrievalResult) string {
	return strings.Join(result.Contents(), contextSeparator)
}

// RenderUserPrompt fills the template with the query and context
func (ch *ContextHydrator) RenderUserPrompt(grounding, query string) string {
	// Single pass so a query containing "{context}" is not expanded
	return strings.NewReplacer("{query}", query, "{context}", grounding).Replace(ch.template)
}

// BuildMessages returns the system message followed by the rendered user message
func (ch *ContextHydrator) BuildMessages(systemPrompt, grounding, query string) []models.Message {
	return []models.Message{
		models.SystemMessage(systemPrompt),
		models.UserMessage(ch.RenderUserPrompt(grounding, query)),
	}
}

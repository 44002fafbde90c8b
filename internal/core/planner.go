// ABOUTME: Planner builds day-by-day itineraries and chained destination suggestions
// ABOUTME: Suggest runs destination, then restaurants, then cultural activities
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/guia/internal/models"
)

// Planner produces trip plans with the chat model
type Planner struct {
	model StructuredChatModel
	opts  models.ChatOptions
}

// NewPlanner creates a Planner
func NewPlanner(model StructuredChatModel, opts models.ChatOptions) *Planner {
	return &Planner{model: model, opts: opts}
}

// ItineraryPrompt renders the request as a planning instruction.
// Period and budget are only mentioned when set.
func ItineraryPrompt(req models.ItineraryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crie um roteiro de viagem de %d dias para %d adultos e %d crianças com destino a %s",
		req.Days, req.Adults, req.Children, req.Destination)
	if req.Period != "" {
		fmt.Fprintf(&b, ", no período de %s", req.Period)
	}
	if req.Interests != "" {
		fmt.Fprintf(&b, ", considerando os seguintes interesses: %s", req.Interests)
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, ". O orçamento total é de %s", req.Budget)
	}
	b.WriteString(".")
	return b.String()
}

// Itinerary returns a day-by-day plan for req
func (p *Planner) Itinerary(ctx context.Context, req models.ItineraryRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid itinerary request: %w", err)
	}

	text, err := p.model.Chat(ctx, []models.Message{
		models.SystemMessage(plannerSystemPrompt),
		models.UserMessage(ItineraryPrompt(req)),
	}, p.opts)
	if err != nil {
		return "", &models.GenerationError{Err: err}
	}
	return text, nil
}

// Suggest picks a city for interest, then its restaurants, then its cultural activities
func (p *Planner) Suggest(ctx context.Context, interest string) (*models.Suggestion, error) {
	if strings.TrimSpace(interest) == "" {
		return nil, ErrEmptyQuery
	}

	var dest models.Destination
	prompt := fmt.Sprintf("Sugira uma cidade brasileira para visitar dado o meu interesse por %s.", interest)
	if err := p.model.ChatJSON(ctx, []models.Message{models.UserMessage(prompt)}, p.opts, &dest); err != nil {
		return nil, &models.GenerationError{Err: fmt.Errorf("destination: %w", err)}
	}

	var rest models.Restaurants
	prompt = fmt.Sprintf("Sugira restaurantes populares em %s.", dest.City)
	if err := p.model.ChatJSON(ctx, []models.Message{models.UserMessage(prompt)}, p.opts, &rest); err != nil {
		return nil, &models.GenerationError{Err: fmt.Errorf("restaurants: %w", err)}
	}

	city := rest.City
	if city == "" {
		city = dest.City
	}
	prompt = fmt.Sprintf("Sugira atividades e locais culturais para visitar em %s.", city)
	culture, err := p.model.Chat(ctx, []models.Message{models.UserMessage(prompt)}, p.opts)
	if err != nil {
		return nil, &models.GenerationError{Err: fmt.Errorf("culture: %w", err)}
	}

	return &models.Suggestion{
		Interest:    interest,
		Destination: dest,
		Restaurants: rest,
		Culture:     culture,
	}, nil
}

// ABOUTME: Router classifies travel queries into a fixed Route and answers with that route's persona
// ABOUTME: Classification uses structured output; unknown labels fall back to DefaultRoute
package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// DefaultRouterTemperature is the sampling temperature for routed answers
const DefaultRouterTemperature = 0.5

// routeChoice is the structured reply expected from the classifier
type routeChoice struct {
	Route string `json:"route" enum:"praia,aventura,gastronomia" description:"Categoria da viagem"`
}

// Router dispatches a query to one of a fixed set of personas
type Router struct {
	model  StructuredChatModel
	opts   models.ChatOptions
	logger *zap.Logger
}

// NewRouter creates a Router
func NewRouter(model StructuredChatModel, opts models.ChatOptions, logger *zap.Logger) *Router {
	if opts.Temperature == nil {
		opts.Temperature = models.Temperature(DefaultRouterTemperature)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{model: model, opts: opts, logger: logger}
}

// Classify returns the Route for query
func (r *Router) Classify(ctx context.Context, query string) (models.Route, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	var choice routeChoice
	messages := []models.Message{
		models.SystemMessage(routerSystemPrompt),
		models.UserMessage(query),
	}
	if err := r.model.ChatJSON(ctx, messages, r.opts, &choice); err != nil {
		return "", &models.GenerationError{Err: err}
	}

	route, ok := models.ParseRoute(choice.Route)
	if !ok {
		r.logger.Warn("unknown route from classifier, using default",
			zap.String("label", choice.Route),
			zap.String("default", string(models.DefaultRoute)))
	}
	r.logger.Debug("query routed", zap.String("route", string(route)))
	return route, nil
}

// Dispatch classifies query and answers it with the matching persona
func (r *Router) Dispatch(ctx context.Context, query string) (*models.RoutedAnswer, error) {
	route, err := r.Classify(ctx, query)
	if err != nil {
		return nil, err
	}

	text, err := r.model.Chat(ctx, []models.Message{
		models.SystemMessage(Persona(route)),
		models.UserMessage(query),
	}, r.opts)
	if err != nil {
		return nil, &models.GenerationError{Err: err}
	}

	return &models.RoutedAnswer{Query: query, Route: route, Text: text}, nil
}

// Persona returns the system prompt for route
func Persona(route models.Route) string {
	switch route {
	case models.RouteBeach:
		return beachPersona
	case models.RouteAdventure:
		return adventurePersona
	case models.RouteGastronomy:
		return gastronomyPersona
	}
	return gastronomyPersona
}

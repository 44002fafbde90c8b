// ABOUTME: MCP tool handler implementations for the guia server
// ABOUTME: Each handler validates arguments, calls the core flow and returns JSON text
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// Asker answers grounded questions
type Asker interface {
	Ask(ctx context.Context, query string) (*models.Answer, error)
}

// Dispatcher routes a travel query to a persona
type Dispatcher interface {
	Dispatch(ctx context.Context, query string) (*models.RoutedAnswer, error)
}

// TripPlanner builds itineraries and destination suggestions
type TripPlanner interface {
	Itinerary(ctx context.Context, req models.ItineraryRequest) (string, error)
	Suggest(ctx context.Context, interest string) (*models.Suggestion, error)
}

// Dependencies are the flows the tools call into. Nil entries make the
// matching tool report that it is unavailable.
type Dependencies struct {
	Engine  Asker
	Router  Dispatcher
	Planner TripPlanner
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	deps   Dependencies
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewHandlers creates handlers over deps
func NewHandlers(deps Dependencies, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{deps: deps, logger: logger}
}

// Shutdown rejects new tool calls and waits for in-flight ones to finish
func (h *Handlers) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.inflight.Wait()
}

// begin registers a call; Add only happens before Shutdown marks the handlers closed
func (h *Handlers) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.inflight.Add(1)
	return true
}

func shuttingDown() *mcp.CallToolResult {
	return mcp.NewToolResultError("server is shutting down")
}

type sourceExcerpt struct {
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

type askResponse struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Sources  []sourceExcerpt `json:"sources,omitempty"`
}

// AskLegislation handles the ask_legislation tool
func (h *Handlers) AskLegislation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.begin() {
		return shuttingDown(), nil
	}
	defer h.inflight.Done()

	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question argument is required and must be a non-empty string"), nil
	}
	if h.deps.Engine == nil {
		return mcp.NewToolResultError("legislation engine is not available"), nil
	}

	answer, err := h.deps.Engine.Ask(ctx, question)
	if err != nil {
		h.logger.Warn("ask_legislation failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	resp := askResponse{Question: question, Answer: answer.Text}
	if request.GetBool("include_sources", true) {
		for _, sc := range answer.Sources {
			resp.Sources = append(resp.Sources, sourceExcerpt{
				Label:   sc.Chunk.Label(),
				Score:   sc.Score,
				Content: sc.Chunk.Content,
			})
		}
	}
	return jsonResult(resp)
}

// RouteTravelQuery handles the route_travel_query tool
func (h *Handlers) RouteTravelQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.begin() {
		return shuttingDown(), nil
	}
	defer h.inflight.Done()

	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query argument is required and must be a non-empty string"), nil
	}
	if h.deps.Router == nil {
		return mcp.NewToolResultError("travel router is not available"), nil
	}

	routed, err := h.deps.Router.Dispatch(ctx, query)
	if err != nil {
		h.logger.Warn("route_travel_query failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("routing failed: %v", err)), nil
	}
	return jsonResult(routed)
}

// PlanItinerary handles the plan_itinerary tool
func (h *Handlers) PlanItinerary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.begin() {
		return shuttingDown(), nil
	}
	defer h.inflight.Done()

	destination, err := request.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError("destination argument is required and must be a string"), nil
	}
	days, err := request.RequireInt("days")
	if err != nil {
		return mcp.NewToolResultError("days argument is required and must be a number"), nil
	}

	req := models.ItineraryRequest{
		Days:        days,
		Adults:      request.GetInt("adults", 1),
		Children:    request.GetInt("children", 0),
		Destination: destination,
		Interests:   request.GetString("interests", ""),
		Period:      request.GetString("period", ""),
		Budget:      request.GetString("budget", ""),
	}
	if err := req.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}
	if h.deps.Planner == nil {
		return mcp.NewToolResultError("trip planner is not available"), nil
	}

	plan, err := h.deps.Planner.Itinerary(ctx, req)
	if err != nil {
		h.logger.Warn("plan_itinerary failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("planning failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"request":   req,
		"itinerary": plan,
	})
}

// SuggestTrip handles the suggest_trip tool
func (h *Handlers) SuggestTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.begin() {
		return shuttingDown(), nil
	}
	defer h.inflight.Done()

	interest, err := request.RequireString("interest")
	if err != nil || strings.TrimSpace(interest) == "" {
		return mcp.NewToolResultError("interest argument is required and must be a non-empty string"), nil
	}
	if h.deps.Planner == nil {
		return mcp.NewToolResultError("trip planner is not available"), nil
	}

	suggestion, err := h.deps.Planner.Suggest(ctx, interest)
	if err != nil {
		h.logger.Warn("suggest_trip failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("suggestion failed: %v", err)), nil
	}
	return jsonResult(suggestion)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

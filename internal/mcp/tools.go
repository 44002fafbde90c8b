// ABOUTME: MCP tool definitions and registration for the guia server
// ABOUTME: Exposes tax-law questions, travel routing and trip planning as MCP tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolAskLegislation   = "ask_legislation"
	ToolRouteTravelQuery = "route_travel_query"
	ToolPlanItinerary    = "plan_itinerary"
	ToolSuggestTrip      = "suggest_trip"
)

// Tools returns the definitions of every tool the server exposes
func Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolAskLegislation,
			Description: "Answer a question about Manaus municipal tax legislation, grounded on the indexed law texts. Returns the answer and the source excerpts used.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"question": map[string]interface{}{
						"type":        "string",
						"description": "Question about the legislation, in Portuguese",
					},
					"include_sources": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the retrieved source excerpts (default: true)",
						"default":     true,
					},
				},
				Required: []string{"question"},
			},
		},
		{
			Name:        ToolRouteTravelQuery,
			Description: "Classify a travel question as praia, aventura or gastronomia and answer it with the matching specialist.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Travel question",
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolPlanItinerary,
			Description: "Plan a day-by-day travel itinerary.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"destination": map[string]interface{}{
						"type":        "string",
						"description": "Destination city or region",
					},
					"days": map[string]interface{}{
						"type":        "number",
						"description": "Trip length in days",
					},
					"adults": map[string]interface{}{
						"type":        "number",
						"description": "Number of adults (default: 1)",
						"default":     1,
					},
					"children": map[string]interface{}{
						"type":        "number",
						"description": "Number of children (default: 0)",
						"default":     0,
					},
					"interests": map[string]interface{}{
						"type":        "string",
						"description": "Activities of interest",
					},
					"period": map[string]interface{}{
						"type":        "string",
						"description": "Travel period, e.g. julho",
					},
					"budget": map[string]interface{}{
						"type":        "string",
						"description": "Budget, e.g. econômico or R$ 5000",
					},
				},
				Required: []string{"destination", "days"},
			},
		},
		{
			Name:        ToolSuggestTrip,
			Description: "Suggest a destination for an interest, with popular restaurants and cultural activities there.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"interest": map[string]interface{}{
						"type":        "string",
						"description": "What the traveler is interested in, e.g. praias",
					},
				},
				Required: []string{"interest"},
			},
		},
	}
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, deps Dependencies, logger *zap.Logger) *Handlers {
	handlers := NewHandlers(deps, logger)

	byName := map[string]mcpserver.ToolHandlerFunc{
		ToolAskLegislation:   handlers.AskLegislation,
		ToolRouteTravelQuery: handlers.RouteTravelQuery,
		ToolPlanItinerary:    handlers.PlanItinerary,
		ToolSuggestTrip:      handlers.SuggestTrip,
	}
	for _, tool := range Tools() {
		server.AddTool(tool, byName[tool.Name])
	}

	return handlers
}

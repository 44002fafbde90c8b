// ABOUTME: Route enumerates the fixed travel categories a query can be dispatched to
// ABOUTME: Callers switch exhaustively over Route instead of comparing strings
package models

import "strings"

// Route is the classification result for a travel query
type Route string

const (
	// RouteBeach - beach trips
	RouteBeach Route = "praia"

	// RouteAdventure - adventure and outdoor trips
	RouteAdventure Route = "aventura"

	// RouteGastronomy - food trips, also the fallback
	RouteGastronomy Route = "gastronomia"
)

// DefaultRoute is used when a classification cannot be parsed
const DefaultRoute = RouteGastronomy

// Routes lists every valid route in a stable order
func Routes() []Route {
	return []Route{RouteBeach, RouteAdventure, RouteGastronomy}
}

// IsValid reports whether r is one of the known routes
func (r Route) IsValid() bool {
	switch r {
	case RouteBeach, RouteAdventure, RouteGastronomy:
		return true
	}
	return false
}

// ParseRoute normalizes s into a Route. The boolean is false when s was not
// recognized and DefaultRoute was returned instead.
func ParseRoute(s string) (Route, bool) {
	r := Route(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r, true
	}
	return DefaultRoute, false
}

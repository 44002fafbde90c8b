// ABOUTME: Trip planning request and suggestion types
// ABOUTME: Used by the itinerary planner and the chained destination suggester
package models

import (
	"errors"
	"strings"
)

// ItineraryRequest describes the trip an itinerary is planned for
type ItineraryRequest struct {
	Days        int    `json:"days"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	Destination string `json:"destination"`
	Interests   string `json:"interests"`
	Period      string `json:"period,omitempty"`
	Budget      string `json:"budget,omitempty"`
}

// Validate checks the request has what the planner needs
func (r ItineraryRequest) Validate() error {
	if r.Days <= 0 {
		return errors.New("days must be positive")
	}
	if r.Adults <= 0 {
		return errors.New("at least one adult is required")
	}
	if r.Children < 0 {
		return errors.New("children cannot be negative")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return errors.New("destination cannot be empty")
	}
	return nil
}

// Destination is a suggested city and the reason for it
type Destination struct {
	City   string `json:"cidade" description:"Nome da cidade sugerida"`
	Reason string `json:"motivo" description:"Motivo da sugestão"`
}

// Restaurants lists popular restaurants in a city
type Restaurants struct {
	City  string   `json:"cidade" description:"Nome da cidade"`
	Names []string `json:"restaurantes" description:"Restaurantes populares da cidade"`
}

// Suggestion is the result of the destination → restaurants → culture chain
type Suggestion struct {
	Interest    string      `json:"interest"`
	Destination Destination `json:"destination"`
	Restaurants Restaurants `json:"restaurants"`
	Culture     string      `json:"culture"`
}

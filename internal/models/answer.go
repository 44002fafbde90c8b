// ABOUTME: Answer types returned by the query engine and the travel flows
// ABOUTME: None of these are persisted or cached
package models

// Answer is a generated response grounded on retrieved chunks
type Answer struct {
	Query   string        `json:"query"`
	Text    string        `json:"answer"`
	Sources []ScoredChunk `json:"sources"`
}

// RoutedAnswer is the reply from the persona a query was routed to
type RoutedAnswer struct {
	Query string `json:"query"`
	Route Route  `json:"route"`
	Text  string `json:"answer"`
}

// ABOUTME: Document is the raw text of one page (or one logical unit) of a source file
// ABOUTME: Produced by the loader and consumed by the chunk engine
package models

// Document holds extracted text plus where it came from
type Document struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

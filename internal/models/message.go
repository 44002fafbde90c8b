// ABOUTME: Chat message and option types shared by every chat flow
// ABOUTME: Provider-neutral; internal/llm maps them onto the wire format
package models

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions selects the model and sampling temperature for a call.
// Empty fields fall back to the client's defaults. A nil Temperature means
// unset; a pointer to 0 asks for greedy sampling.
type ChatOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Temperature returns a pointer for ChatOptions.Temperature
func Temperature(v float64) *float64 {
	return &v
}

// SystemMessage builds a system message
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant message
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

package llm

import (
	"context"
	"encoding/json"
)

// Provider is the content generator capability. Problem text, hints and
// feedback all go through Generate.
type Provider interface {
	// Generate sends a prompt and returns the model output. When req.Schema
	// is set the provider asks for JSON matching it and validates the reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil the
	// response Content is the raw text reply.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, kebab-case, e.g. "word-problem".
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the validated JSON object when a Schema was requested,
	// otherwise the reply text as-is.
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns Content as a plain string.
func (r *Response) Text() string {
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}

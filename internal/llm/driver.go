package llm

import "context"

// Message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single chat turn.
type Message struct {
	Role string
	Text string
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   *int
}

// Response is a provider-agnostic completion response.
type Response struct {
	Text         string
	FinishReason string
	Usage        *Usage
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Driver defines the interface for chat-completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "gemini").
	Name() string
}

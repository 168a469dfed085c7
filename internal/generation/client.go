package generation

import (
	"context"
	"encoding/json"
)

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only message history shared by the pipeline
// stages. Messages are never removed or rewritten.
type Conversation struct {
	messages []Message
}

// Append adds a message to the end of the history.
func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the history, oldest first.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// CallOptions selects the response mode of a single call.
type CallOptions struct {
	// JSON asks the provider for a single JSON object.
	JSON bool
	// WebSearch enables the provider's web search tool.
	WebSearch bool
}

// Usage reports token accounting for one call. Providers that do not
// report usage leave it nil in Response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is the provider-neutral result of a call.
type Response struct {
	// Text is the concatenated text output of the model.
	Text string
	// Metadata holds provider-specific raw JSON, such as search grounding
	// data. It may be empty.
	Metadata json.RawMessage
	Usage    *Usage
}

// Client is the boundary between the pipeline and a generative text
// service.
type Client interface {
	// Call sends the full history to model and returns its reply. The
	// history is not modified.
	Call(ctx context.Context, model string, history []Message, opts CallOptions) (*Response, error)
}

// Package generation provides clients for the external text generator that
// writes assistant replies and closing summaries.
package generation

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the generator answered without content.
var ErrEmptyResponse = errors.New("generator returned an empty response")

// ChatRequest asks for an assistant reply to a single user message.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Character string `json:"character,omitempty"`
}

// Turn is one message of the transcript sent for summarization.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SummarizeRequest asks for a narrative summary of a session.
type SummarizeRequest struct {
	SessionID string `json:"sessionId"`
	Messages  []Turn `json:"messages"`
	Count     int    `json:"count"`
}

// Generator defines the interface for external text generation.
type Generator interface {
	// Chat returns the assistant reply for req.
	Chat(ctx context.Context, req *ChatRequest) (string, error)

	// Summarize returns summary lines; Count is a hint, not a guarantee.
	Summarize(ctx context.Context, req *SummarizeRequest) ([]string, error)
}

// Ensure clients implement Generator interface.
var (
	_ Generator = (*RAGClient)(nil)
	_ Generator = (*OpenAIClient)(nil)
	_ Generator = (*MockClient)(nil)
)

package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the subset of openai.Client used here; tests substitute it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient generates text through any OpenAI-compatible endpoint.
type OpenAIClient struct {
	api   ChatCompleter
	model string
}

// NewOpenAIClient creates a client for baseURL using apiKey.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return NewOpenAIClientWith(openai.NewClientWithConfig(cfg), model)
}

// NewOpenAIClientWith wraps an existing completer.
func NewOpenAIClientWith(api ChatCompleter, model string) *OpenAIClient {
	return &OpenAIClient{api: api, model: model}
}

func chatSystemPrompt(character string) string {
	if character == "" {
		return "You are a friendly museum guide. Answer the visitor briefly and warmly."
	}
	return fmt.Sprintf("You are %s, speaking to a visitor as a museum guide. Stay in character and answer briefly.", character)
}

// Chat requests a single assistant reply.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt(req.Character)},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
		User: req.SessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarize asks the model for Count lines, one per line of output.
func (c *OpenAIClient) Summarize(ctx context.Context, req *SummarizeRequest) ([]string, error) {
	var transcript strings.Builder
	for _, t := range req.Messages {
		fmt.Fprintf(&transcript, "%s: %s\n", t.Role, t.Content)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("Write the closing credits of this conversation as exactly %d short, warm, "+
					"narrative lines. Output one line per row with no numbering.", req.Count),
			},
			{Role: openai.ChatMessageRoleUser, Content: transcript.String()},
		},
		User: req.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	lines := cleanLines(strings.Split(resp.Choices[0].Message.Content, "\n"))
	if len(lines) == 0 {
		return nil, ErrEmptyResponse
	}
	return lines, nil
}

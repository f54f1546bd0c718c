package generation

import (
	"context"
	"sync"
)

// MockClient is a scripted Generator for tests.
type MockClient struct {
	mu sync.Mutex

	Reply     string
	Summaries []string
	Err       error

	ChatCalls      []ChatRequest
	SummarizeCalls []SummarizeRequest
}

// NewMockClient creates a mock that answers with reply and summaries.
func NewMockClient(reply string, summaries ...string) *MockClient {
	return &MockClient{Reply: reply, Summaries: summaries}
}

// NewFailingMockClient creates a mock whose every call fails with err.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{Err: err}
}

// Chat records the call and returns the scripted reply.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = append(m.ChatCalls, *req)
	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Reply, nil
}

// Summarize records the call and returns the scripted lines.
func (m *MockClient) Summarize(ctx context.Context, req *SummarizeRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummarizeCalls = append(m.SummarizeCalls, *req)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), m.Summaries...), nil
}

// Calls returns how many chat and summarize calls were made.
func (m *MockClient) Calls() (chat, summarize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls), len(m.SummarizeCalls)
}

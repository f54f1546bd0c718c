package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RAGClient calls the retrieval-augmented generation service over HTTP.
type RAGClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRAGClient creates a new RAG service client.
func NewRAGClient(baseURL string, timeout time.Duration) *RAGClient {
	return &RAGClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatResponse struct {
	Response string `json:"response"`
}

type summarizeResponse struct {
	Summaries []string `json:"summaries"`
}

// errorResponse covers the error bodies produced by common Python web stacks.
type errorResponse struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}

// Chat sends POST /chat.
func (c *RAGClient) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat", req, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Response, nil
}

// Summarize sends POST /summarize.
func (c *RAGClient) Summarize(ctx context.Context, req *SummarizeRequest) ([]string, error) {
	var resp summarizeResponse
	if err := c.post(ctx, "/summarize", req, &resp); err != nil {
		return nil, err
	}
	lines := cleanLines(resp.Summaries)
	if len(lines) == 0 {
		return nil, ErrEmptyResponse
	}
	return lines, nil
}

func (c *RAGClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if errResp.Error != "" {
				return fmt.Errorf("RAG API error [%d]: %s", resp.StatusCode, errResp.Error)
			}
			if errResp.Detail != nil {
				return fmt.Errorf("RAG API error [%d]: %v", resp.StatusCode, errResp.Detail)
			}
		}
		return fmt.Errorf("RAG API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// cleanLines trims whitespace and list markers and drops blank lines.
func cleanLines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		l = strings.TrimLeft(l, "-*• ")
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

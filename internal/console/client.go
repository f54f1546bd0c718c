// Package console provides a terminal client for a running guidely-chat server.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// Client talks to the conversation API over HTTP and WebSocket.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StartConversation opens a new session for userID.
func (c *Client) StartConversation(ctx context.Context, userID string) (*domain.StartSessionResponse, error) {
	var resp domain.StartSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/conversations", domain.StartSessionRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat sends a user message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, sessionID, content, character string) (*domain.Message, error) {
	path := "/api/conversations/" + url.PathEscape(sessionID) + "/chat"
	if character != "" {
		path += "?character=" + url.QueryEscape(character)
	}

	var msg domain.Message
	req := domain.PostMessageRequest{Role: string(domain.MessageRoleUser), Content: content}
	if err := c.do(ctx, http.MethodPost, path, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EndConversation ends the session.
func (c *Client) EndConversation(ctx context.Context, sessionID, reason string) (*domain.EndSessionResponse, error) {
	var resp domain.EndSessionResponse
	path := "/api/conversations/" + url.PathEscape(sessionID) + "/end"
	if err := c.do(ctx, http.MethodPut, path, domain.EndSessionRequest{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Credits fetches the ending credits of a session.
func (c *Client) Credits(ctx context.Context, sessionID string) (*domain.CreditsResponse, error) {
	var resp domain.CreditsResponse
	if err := c.do(ctx, http.MethodPost, "/api/ending-credits", domain.CreditsRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Watch streams the session's events to out until ctx is cancelled or the
// server closes the connection.
func (c *Client) Watch(ctx context.Context, sessionID string, out io.Writer) error {
	wsURL, err := c.streamURL(sessionID)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var event domain.Event
		if err := json.Unmarshal(data, &event); err != nil {
			fmt.Fprintf(out, "unparsed: %s\n", data)
			continue
		}
		fmt.Fprintln(out, FormatEvent(&event))
	}
}

func (c *Client) streamURL(sessionID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/conversations/" + url.PathEscape(sessionID) + "/stream"
	return u.String(), nil
}

// FormatEvent renders an event as a single line.
func FormatEvent(event *domain.Event) string {
	ts := time.UnixMilli(event.Ts).UTC().Format(time.RFC3339)
	if len(event.Payload) == 0 {
		return fmt.Sprintf("[%s] %s", ts, event.Type)
	}
	return fmt.Sprintf("[%s] %s %s", ts, event.Type, event.Payload)
}

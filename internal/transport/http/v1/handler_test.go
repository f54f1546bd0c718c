package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/service"
	"github.com/kimyerak/guidely-chat/tests/helpers"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorPayload   `json:"error"`
}

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	cfg := &config.Config{
		GenerationMode:   config.GenerationModeMock,
		RAGTimeout:       time.Second,
		SummaryEnabled:   true,
		MaxContentLength: 8000,
	}
	svc := service.New(db, nil, nil, nil, cfg)
	return NewHandler(svc, nil), svc
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, sessionID string) echo.Context {
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	return c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if data != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func startConversation(t *testing.T, e *echo.Echo, h *Handler) string {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/api/conversations", `{"user_id":"u1"}`)
	require.NoError(t, h.StartConversation(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.StartSessionResponse
	decodeEnvelope(t, rec, &resp)
	return resp.SessionID
}

func postMessage(t *testing.T, e *echo.Echo, h *Handler, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/api/conversations/"+sessionID+"/messages", body)
	require.NoError(t, h.PostMessage(withSession(c, sessionID)))
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodGet, "/health", "")
	require.NoError(t, h.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestStartConversation(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/conversations", `{"user_id":"visitor-7"}`)
	if err := h.StartConversation(c); err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp domain.StartSessionResponse
	env := decodeEnvelope(t, rec, &resp)
	assert.True(t, env.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, domain.SessionStatusCreated, resp.Status)
	assert.False(t, resp.StartedAt.IsZero())
}

func TestStartConversationRejectsMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/conversations", `{"user_id":`)
	require.NoError(t, h.StartConversation(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(domain.KindValidation), env.Error.Code)
}

func TestPostMessage(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)

	rec := postMessage(t, e, h, sessionID, `{"role":"user","content":"where is the exit?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var msg domain.Message
	decodeEnvelope(t, rec, &msg)
	assert.Equal(t, int64(1), msg.Seq)
	assert.Equal(t, domain.MessageRoleUser, msg.Role)
	assert.Equal(t, "This is a mock reply to: where is the exit?", msg.AssistantPreview)

	c, rec := newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID, "")
	require.NoError(t, h.GetConversation(withSession(c, sessionID)))

	var got domain.GetSessionResponse
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, domain.SessionStatusActive, got.Status)
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Messages, 1)
	assert.Empty(t, got.Messages[0].AssistantPreview)
}

func TestPostMessageErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)

	tests := []struct {
		name      string
		sessionID string
		body      string
		status    int
		code      domain.ErrorKind
	}{
		{"unknown role", sessionID, `{"role":"narrator","content":"hi"}`, http.StatusBadRequest, domain.KindInvalidArgument},
		{"empty content", sessionID, `{"role":"USER","content":"   "}`, http.StatusBadRequest, domain.KindInvalidArgument},
		{"unknown session", "missing", `{"role":"USER","content":"hi"}`, http.StatusNotFound, domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postMessage(t, e, h, tt.sessionID, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, string(tt.code), env.Error.Code)
		})
	}
}

func TestEndConversation(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)
	postMessage(t, e, h, sessionID, `{"role":"USER","content":"hello"}`)

	c, rec := newJSONContext(e, http.MethodPut, "/api/conversations/"+sessionID+"/end", `{"reason":"visitor left"}`)
	require.NoError(t, h.EndConversation(withSession(c, sessionID)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.EndSessionResponse
	decodeEnvelope(t, rec, &resp)
	assert.Equal(t, domain.SessionStatusEnded, resp.Status)
	assert.Equal(t, "visitor left", resp.Reason)
	require.NotNil(t, resp.EndedAt)

	// A second end and any further append conflict.
	c, rec = newJSONContext(e, http.MethodPut, "/api/conversations/"+sessionID+"/end", "")
	require.NoError(t, h.EndConversation(withSession(c, sessionID)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postMessage(t, e, h, sessionID, `{"role":"USER","content":"still there?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(domain.KindInvalidState), env.Error.Code)
}

func TestGetConversationPaging(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)
	for _, content := range []string{"one", "two", "three"} {
		postMessage(t, e, h, sessionID, `{"role":"USER","content":"`+content+`"}`)
	}

	c, rec := newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"?page=1&size=2", "")
	require.NoError(t, h.GetConversation(withSession(c, sessionID)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.GetSessionResponse
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 2, got.Size)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, int64(3), got.Messages[0].Seq)
	assert.Equal(t, "three", got.Messages[0].Content)

	c, rec = newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"?page=abc", "")
	require.NoError(t, h.GetConversation(withSession(c, sessionID)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodGet, "/api/conversations/missing", "")
	require.NoError(t, h.GetConversation(withSession(c, "missing")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatUsesFallbackWithoutGenerator(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)

	c, rec := newJSONContext(e, http.MethodPost, "/api/conversations/"+sessionID+"/chat?character=Captain",
		`{"role":"USER","content":"hello"}`)
	require.NoError(t, h.Chat(withSession(c, sessionID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reply domain.Message
	decodeEnvelope(t, rec, &reply)
	assert.Equal(t, domain.MessageRoleAssistant, reply.Role)
	assert.Equal(t, int64(2), reply.Seq)
	assert.True(t, strings.HasPrefix(reply.Content, "[Captain] "), reply.Content)
	assert.Contains(t, reply.Content, `You said "hello"`)
}

func TestGetEvents(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)
	postMessage(t, e, h, sessionID, `{"role":"USER","content":"hello"}`)

	c, rec := newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"/events", "")
	require.NoError(t, h.GetEvents(withSession(c, sessionID)))
	require.Equal(t, http.StatusOK, rec.Code)

	var all domain.EventsResponse
	decodeEnvelope(t, rec, &all)
	require.Len(t, all.Events, 2)
	assert.Equal(t, domain.EventTypeSessionStarted, all.Events[0].Type)
	assert.Equal(t, domain.EventTypeMessageAppended, all.Events[1].Type)

	c, rec = newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"/events?types=message_appended", "")
	require.NoError(t, h.GetEvents(withSession(c, sessionID)))

	var filtered domain.EventsResponse
	decodeEnvelope(t, rec, &filtered)
	require.Len(t, filtered.Events, 1)
	assert.Equal(t, domain.EventTypeMessageAppended, filtered.Events[0].Type)

	c, rec = newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"/events?after_ts=soon", "")
	require.NoError(t, h.GetEvents(withSession(c, sessionID)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamWithoutServer(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)

	c, rec := newJSONContext(e, http.MethodGet, "/api/conversations/"+sessionID+"/stream", "")
	require.NoError(t, h.Stream(withSession(c, sessionID)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/nowhere", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RESOURCE_NOT_FOUND", env.Error.Code)
}

func TestUnstructuredErrorsAreInternal(t *testing.T) {
	e := echo.New()
	c, rec := newJSONContext(e, http.MethodGet, "/api/conversations/s1", "")

	require.NoError(t, fail(c, errors.New("database is locked")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(domain.KindInternal), env.Error.Code)
	assert.Equal(t, "internal server error", env.Error.Message)
}

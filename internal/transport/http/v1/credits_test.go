package v1

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/service"
)

func TestGenerateCredits(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	sessionID := startConversation(t, e, h)
	postMessage(t, e, h, sessionID, `{"role":"USER","content":"hello"}`)
	postMessage(t, e, h, sessionID, `{"role":"ASSISTANT","content":"welcome aboard"}`)

	c, rec := newJSONContext(e, http.MethodPost, "/api/ending-credits", `{"session_id":"`+sessionID+`"}`)
	require.NoError(t, h.GenerateCredits(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var first domain.CreditsResponse
	decodeEnvelope(t, rec, &first)
	assert.Equal(t, sessionID, first.SessionID)
	assert.Equal(t, 2, first.Summary.MessageCount)
	assert.Len(t, first.Summaries, service.CreditsLineCount)
	assert.Equal(t, service.StaticCredits, first.Credits)

	// Later calls return the stored lines.
	c, rec = newJSONContext(e, http.MethodPost, "/api/ending-credits", `{"session_id":"`+sessionID+`","include_duration":false}`)
	require.NoError(t, h.GenerateCredits(c))

	var second domain.CreditsResponse
	decodeEnvelope(t, rec, &second)
	assert.Equal(t, first.Summaries, second.Summaries)
	assert.Equal(t, int64(0), second.Summary.DurationSec)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
}

func TestGenerateCreditsErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing session id", `{}`, http.StatusBadRequest},
		{"unknown session", `{"session_id":"missing"}`, http.StatusNotFound},
		{"malformed body", `{"session_id":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodPost, "/api/ending-credits", tt.body)
			require.NoError(t, h.GenerateCredits(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

package console

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/service"
	"github.com/kimyerak/guidely-chat/internal/stream"
	httpserver "github.com/kimyerak/guidely-chat/internal/transport/http"
	"github.com/kimyerak/guidely-chat/tests/helpers"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startServer(t *testing.T) (*httptest.Server, *stream.Hub) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := stream.NewHub()
	go hub.Run(ctx)

	cfg := &config.Config{
		GenerationMode:   config.GenerationModeMock,
		RAGTimeout:       time.Second,
		SummaryEnabled:   true,
		MaxContentLength: 8000,
	}
	svc := service.New(helpers.NewTestSQLiteStore(t), nil, nil, hub, cfg)

	ts := httptest.NewServer(httpserver.NewServer(svc, stream.NewServer(hub)))
	t.Cleanup(ts.Close)
	return ts, hub
}

func TestClientConversationRoundTrip(t *testing.T) {
	ts, hub := startServer(t)
	client := NewClient(ts.URL, 5*time.Second)
	ctx := context.Background()

	started, err := client.StartConversation(ctx, "console")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCreated, started.Status)

	watchCtx, stopWatch := context.WithCancel(ctx)
	out := &syncBuffer{}
	watchDone := make(chan error, 1)
	go func() { watchDone <- client.Watch(watchCtx, started.SessionID, out) }()
	require.Eventually(t, func() bool { return hub.HasActiveConnections(started.SessionID) }, 2*time.Second, 10*time.Millisecond)

	reply, err := client.Chat(ctx, started.SessionID, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRoleAssistant, reply.Role)

	ended, err := client.EndConversation(ctx, started.SessionID, "done")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusEnded, ended.Status)

	credits, err := client.Credits(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, credits.Summary.MessageCount)
	assert.Len(t, credits.Summaries, service.CreditsLineCount)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), string(domain.EventTypeSessionEnded))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), string(domain.EventTypeMessageAppended))

	stopWatch()
	select {
	case err := <-watchDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestClientSurfacesErrorEnvelope(t *testing.T) {
	ts, _ := startServer(t)
	client := NewClient(ts.URL, 5*time.Second)

	_, err := client.Chat(context.Background(), "missing", "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(domain.KindNotFound))
}

func TestFormatEvent(t *testing.T) {
	event := &domain.Event{
		Ts:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).UnixMilli(),
		Type:    domain.EventTypeSessionEnded,
		Payload: []byte(`{"reason":"done"}`),
	}
	assert.Equal(t, `[2024-05-01T09:00:00Z] session_ended {"reason":"done"}`, FormatEvent(event))

	event.Payload = nil
	assert.Equal(t, `[2024-05-01T09:00:00Z] session_ended`, FormatEvent(event))
}

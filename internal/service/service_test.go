package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kimyerak/guidely-chat/internal/adapter/generation"
	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/domain"
	store "github.com/kimyerak/guidely-chat/internal/repository"
	"github.com/kimyerak/guidely-chat/tests/helpers"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (p *recordingPublisher) Publish(sessionID string, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := v.(*domain.Event); ok {
		p.events = append(p.events, e)
	}
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		GenerationMode:      config.GenerationModeMock,
		RAGTimeout:          time.Second,
		SummaryEnabled:      true,
		CreditsAutoGenerate: false,
		MaxContentLength:    8000,
	}
}

type testEnv struct {
	svc   *Service
	store store.Store
	clock *fakeClock
	pub   *recordingPublisher
}

func newTestEnv(t *testing.T, generator generation.Generator, cfg *config.Config) *testEnv {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	return newTestEnvWithStore(t, db, generator, cfg)
}

func newTestEnvWithStore(t *testing.T, db store.Store, generator generation.Generator, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	pub := &recordingPublisher{}
	svc := New(db, generator, nil, pub, cfg)
	clock := newFakeClock()
	svc.SetClock(clock.Now)
	return &testEnv{svc: svc, store: db, clock: clock, pub: pub}
}

func (e *testEnv) start(t *testing.T) *domain.Session {
	t.Helper()
	session, err := e.svc.StartSession(context.Background(), domain.StartSessionRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return session
}

func (e *testEnv) append(t *testing.T, sessionID string, role domain.MessageRole, content string) *domain.Message {
	t.Helper()
	msg, err := e.svc.AppendMessage(context.Background(), sessionID, role, content, nil)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	return msg
}

// Package service implements the conversation orchestration use cases.
package service

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kimyerak/guidely-chat/internal/adapter/generation"
	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/policy"
	store "github.com/kimyerak/guidely-chat/internal/repository"
)

// Publisher pushes session events to live subscribers.
type Publisher interface {
	Publish(sessionID string, v interface{})
}

type Service struct {
	store        store.Store
	generator    generation.Generator
	policyEngine *policy.Engine
	publisher    Publisher
	config       *config.Config
	now          func() time.Time

	credits singleflight.Group
}

// New creates the service. generator, policyEngine and publisher may be nil:
// a nil generator always uses the local fallback, a nil engine admits every
// message, and a nil publisher disables live streaming.
func New(store store.Store, generator generation.Generator, policyEngine *policy.Engine, publisher Publisher, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		generator:    generator,
		policyEngine: policyEngine,
		publisher:    publisher,
		config:       cfg,
		now:          time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

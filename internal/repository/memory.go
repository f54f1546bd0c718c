package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// MemoryStore implements Store in process memory. A single mutex guards all
// state so every conditional write observes the latest session status.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	messages map[string][]domain.Message
	credits  map[string]*domain.CreditsRecord
	events   map[string][]domain.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		messages: make(map[string][]domain.Message),
		credits:  make(map[string]*domain.CreditsRecord),
		events:   make(map[string][]domain.Event),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// CreateSession creates a new session.
func (s *MemoryStore) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; ok {
		return domain.InvalidArgument("session %s already exists", session.SessionID)
	}
	cp := *session
	cp.StartedAt = session.StartedAt.Truncate(time.Millisecond)
	s.sessions[session.SessionID] = &cp
	return nil
}

// GetSession retrieves a session by ID.
func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *session
	if session.EndedAt != nil {
		t := *session.EndedAt
		cp.EndedAt = &t
	}
	return &cp, nil
}

// ActivateSession moves a CREATED session to ACTIVE.
func (s *MemoryStore) ActivateSession(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Status != domain.SessionStatusCreated {
		return false, nil
	}
	session.Status = domain.SessionStatusActive
	return true, nil
}

// EndSession moves a session that is not yet ENDED to ENDED.
func (s *MemoryStore) EndSession(ctx context.Context, sessionID string, endedAt time.Time, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || !session.Status.IsOpen() {
		return false, nil
	}
	t := endedAt.Truncate(time.Millisecond)
	session.Status = domain.SessionStatusEnded
	session.EndedAt = &t
	session.EndReason = reason
	return true, nil
}

// AppendMessage stores message while its session is open.
func (s *MemoryStore) AppendMessage(ctx context.Context, message *domain.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[message.SessionID]
	if !ok || !session.Status.IsOpen() {
		return false, nil
	}
	existing := s.messages[message.SessionID]
	message.Seq = int64(len(existing)) + 1
	message.CreatedAt = message.CreatedAt.Truncate(time.Millisecond)
	if n := len(existing); n > 0 && message.CreatedAt.Before(existing[n-1].CreatedAt) {
		message.CreatedAt = existing[n-1].CreatedAt
	}
	stored := *message
	stored.AssistantPreview = ""
	s.messages[message.SessionID] = append(existing, stored)
	return true, nil
}

// CountMessages returns the number of messages in a session.
func (s *MemoryStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[sessionID]), nil
}

// ListMessages returns messages in append order.
func (s *MemoryStore) ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[sessionID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []domain.Message{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]domain.Message, end-offset)
	copy(out, all[offset:end])
	return out, nil
}

// GetCredits retrieves the credits record of a session.
func (s *MemoryStore) GetCredits(ctx context.Context, sessionID string) (*domain.CreditsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCredits(s.credits[sessionID]), nil
}

// SaveCreditsIfAbsent stores record unless the session already has one.
func (s *MemoryStore) SaveCreditsIfAbsent(ctx context.Context, record *domain.CreditsRecord) (*domain.CreditsRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.credits[record.SessionID]; ok {
		return copyCredits(existing), false, nil
	}
	stored := copyCredits(record)
	stored.GeneratedAt = stored.GeneratedAt.Truncate(time.Millisecond)
	s.credits[record.SessionID] = stored
	return copyCredits(stored), true, nil
}

// CreateEvent creates a new event.
func (s *MemoryStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SessionID] = append(s.events[event.SessionID], *event)
	return nil
}

// GetEvents retrieves events for a session.
func (s *MemoryStore) GetEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	events := []domain.Event{}
	for _, e := range s.events[sessionID] {
		if afterTs > 0 && e.Ts <= afterTs {
			continue
		}
		if len(allowed) > 0 && !allowed[string(e.Type)] {
			continue
		}
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Ts < events[j].Ts })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func copyCredits(r *domain.CreditsRecord) *domain.CreditsRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Lines = append([]string(nil), r.Lines...)
	return &cp
}

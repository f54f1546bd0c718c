package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

// DefaultPageSize is the page size used when the caller gives none.
const DefaultPageSize = 20

// StartSession creates a new session in status CREATED.
func (s *Service) StartSession(ctx context.Context, req domain.StartSessionRequest) (*domain.Session, error) {
	session := &domain.Session{
		SessionID: uuid.New().String(),
		UserID:    req.UserID,
		Status:    domain.SessionStatusCreated,
		StartedAt: s.clock(),
		Metadata:  req.Metadata,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordEvent(ctx, session.SessionID, domain.EventTypeSessionStarted, domain.SessionStartedPayload{UserID: req.UserID})
	logger.L.Info("session started", "session_id", session.SessionID, "user_id", req.UserID)
	return session, nil
}

// GetSession returns the session or a NotFound error.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.NotFound("session %s not found", sessionID)
	}
	return session, nil
}

// SessionPage is a session together with one page of its messages.
type SessionPage struct {
	Session  *domain.Session
	Messages []domain.Message
	Total    int
	Page     int
	Size     int
}

// GetSessionPage returns the session and messages [page*size, page*size+size)
// in append order. A page past the end is empty, not an error.
func (s *Service) GetSessionPage(ctx context.Context, sessionID string, page, size int) (*SessionPage, error) {
	if page < 0 {
		return nil, domain.InvalidArgument("page must be >= 0").WithDetail("page", "must be >= 0")
	}
	if size < 1 {
		return nil, domain.InvalidArgument("size must be >= 1").WithDetail("size", "must be >= 1")
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	result := &SessionPage{Session: session, Messages: []domain.Message{}, Total: total, Page: page, Size: size}
	start := int64(page) * int64(size)
	if start >= int64(total) {
		return result, nil
	}

	messages, err := s.store.ListMessages(ctx, sessionID, int(start), size)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	result.Messages = messages
	return result, nil
}

// EndSession marks the session ENDED. Ending twice is an InvalidState error
// and leaves the first ended-at untouched.
func (s *Service) EndSession(ctx context.Context, sessionID, reason string) (*domain.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(ctx, session.Status, triggerEnd); err != nil {
		return nil, err
	}

	endedAt := s.clock()
	if endedAt.Before(session.StartedAt) {
		endedAt = session.StartedAt
	}
	ok, err := s.store.EndSession(ctx, sessionID, endedAt, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if !ok {
		return nil, domain.InvalidState("session %s already ended", sessionID)
	}

	session, err = s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, sessionID, domain.EventTypeSessionEnded, domain.SessionEndedPayload{Reason: reason, EndedAt: *session.EndedAt})
	logger.L.Info("session ended", "session_id", sessionID, "reason", reason)

	if s.config.CreditsAutoGenerate {
		if _, err := s.GenerateCredits(ctx, sessionID, true); err != nil {
			logger.L.Error("failed to auto-generate credits", "session_id", sessionID, "error", err)
		}
	}

	return session, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// recordEvent stores an event and pushes it to live subscribers. Failures
// are logged and never fail the calling operation.
func (s *Service) recordEvent(ctx context.Context, sessionID string, eventType domain.EventType, payload interface{}) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		logger.L.Warn("failed to marshal event payload", "session_id", sessionID, "type", eventType, "error", err)
		return
	}

	event := &domain.Event{
		EventID:   "evt_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Ts:        s.clock().UnixMilli(),
		Type:      eventType,
		Payload:   payloadBytes,
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		logger.L.Warn("failed to record event", "session_id", sessionID, "type", eventType, "error", err)
	}
	if s.publisher != nil {
		s.publisher.Publish(sessionID, event)
	}
}

// ListEvents returns the event trail of a session.
func (s *Service) ListEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	events, err := s.store.GetEvents(ctx, sessionID, afterTs, types, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

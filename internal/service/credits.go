package service

import (
	"context"
	"fmt"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

// StaticCredits is the fixed credits roll attached to every response.
var StaticCredits = []domain.Credit{
	{Role: "User", Name: "You"},
	{Role: "Assistant", Name: "Chat-Orchestra"},
}

// CreditsResult is the outcome of GenerateCredits. Stats are computed per
// call; Lines come from the stored record.
type CreditsResult struct {
	SessionID string
	Stats     domain.CreditsStats
	Lines     []string
	Credits   []domain.Credit
	Record    *domain.CreditsRecord
}

// GenerateCredits returns the closing credits of a session, generating and
// storing the summary lines on first use. Concurrent calls for one session
// share a single generation and all callers see the same stored lines.
func (s *Service) GenerateCredits(ctx context.Context, sessionID string, includeDuration bool) (*CreditsResult, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	stats := domain.CreditsStats{MessageCount: count}
	if includeDuration {
		stats.DurationSec = session.DurationSeconds(s.clock())
	}

	record, err := s.store.GetCredits(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credits: %w", err)
	}
	if record == nil || len(record.Lines) == 0 {
		v, err, _ := s.credits.Do(sessionID, func() (interface{}, error) {
			return s.compileCredits(ctx, session, stats)
		})
		if err != nil {
			return nil, err
		}
		record = v.(*domain.CreditsRecord)
	}

	return &CreditsResult{
		SessionID: sessionID,
		Stats:     stats,
		Lines:     append([]string(nil), record.Lines...),
		Credits:   StaticCredits,
		Record:    record,
	}, nil
}

func (s *Service) compileCredits(ctx context.Context, session *domain.Session, stats domain.CreditsStats) (*domain.CreditsRecord, error) {
	existing, err := s.store.GetCredits(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credits: %w", err)
	}
	if existing != nil && len(existing.Lines) > 0 {
		return existing, nil
	}

	messages, err := s.store.ListMessages(ctx, session.SessionID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	lines := s.Summarize(ctx, session, messages, CreditsLineCount)

	stored, created, err := s.store.SaveCreditsIfAbsent(ctx, &domain.CreditsRecord{
		SessionID:   session.SessionID,
		Lines:       lines,
		Stats:       stats,
		GeneratedAt: s.clock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save credits: %w", err)
	}
	if created {
		s.recordEvent(ctx, session.SessionID, domain.EventTypeCreditsGenerated, domain.CreditsGeneratedPayload{
			Lines:        len(stored.Lines),
			MessageCount: stats.MessageCount,
		})
		logger.L.Info("credits generated", "session_id", session.SessionID, "lines", len(stored.Lines), "messages", stats.MessageCount)
	}
	return stored, nil
}

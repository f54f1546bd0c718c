package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kimyerak/guidely-chat/internal/adapter/generation"
	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

// CreditsLineCount is the number of summary lines requested for credits.
const CreditsLineCount = 10

var newConversationLines = []string{
	"A new conversation has just begun",
	"We have not shared many stories yet",
	"This was our very first meeting",
}

func fallbackSummary(messageCount int) []string {
	return []string{
		fmt.Sprintf("Our conversation carried on over %d messages", messageCount),
		"From the very first question to the final answer",
		"It was a time of slowly getting to know each other",
		"Sometimes serious, sometimes playful",
		"Stories hidden between questions and answers",
		"A special moment where people and AI meet",
		"Warmth that reaches beyond the technology",
		"Real connection in a digital space",
		"May this conversation bring someone a little comfort",
		"Hoping we meet again next time",
	}
}

func fallbackReply(content, character string) string {
	reply := fmt.Sprintf("You said %q. The guide cannot answer right now, so this is an automatic response.", content)
	if character != "" {
		return "[" + character + "] " + reply
	}
	return reply
}

func (s *Service) generationTimeout() time.Duration {
	if s.config.RAGTimeout > 0 {
		return s.config.RAGTimeout
	}
	return 30 * time.Second
}

// Reply asks the generator for an assistant reply. It never fails: any
// upstream problem yields the local fallback text.
func (s *Service) Reply(ctx context.Context, content, sessionID, character string) string {
	if s.generator == nil {
		return fallbackReply(content, character)
	}

	ctx, cancel := context.WithTimeout(ctx, s.generationTimeout())
	defer cancel()

	reply, err := s.generator.Chat(ctx, &generation.ChatRequest{
		Message:   content,
		SessionID: sessionID,
		Character: character,
	})
	if err != nil {
		logger.L.Warn("chat generation unavailable, using fallback",
			"session_id", sessionID,
			"error", domain.UpstreamUnavailable(err, "chat generation failed"))
		return fallbackReply(content, character)
	}
	return reply
}

// Summarize returns narrative lines for the session. lineCount is passed to
// the generator as a hint; fallbacks have a fixed length.
func (s *Service) Summarize(ctx context.Context, session *domain.Session, messages []domain.Message, lineCount int) []string {
	if len(messages) == 0 {
		return append([]string(nil), newConversationLines...)
	}
	if !s.config.SummaryEnabled || s.generator == nil {
		return fallbackSummary(len(messages))
	}

	turns := make([]generation.Turn, len(messages))
	for i, m := range messages {
		turns[i] = generation.Turn{Role: string(m.Role), Content: m.Content}
	}

	ctx, cancel := context.WithTimeout(ctx, s.generationTimeout())
	defer cancel()

	lines, err := s.generator.Summarize(ctx, &generation.SummarizeRequest{
		SessionID: session.SessionID,
		Messages:  turns,
		Count:     lineCount,
	})
	if err != nil || len(lines) < 1 {
		if err == nil {
			err = generation.ErrEmptyResponse
		}
		logger.L.Warn("summary generation unavailable, using fallback",
			"session_id", session.SessionID,
			"error", domain.UpstreamUnavailable(err, "summary generation failed"))
		return fallbackSummary(len(messages))
	}
	return lines
}

package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
	"github.com/kimyerak/guidely-chat/internal/policy"
)

// AppendMessage appends a message to an open session. The first message
// moves a CREATED session to ACTIVE. USER messages come back with a local
// assistant preview.
func (s *Service) AppendMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string, metadata map[string]any) (*domain.Message, error) {
	return s.appendMessage(ctx, sessionID, role, content, metadata, true)
}

// appendMessage runs the admission policy only when checkPolicy is set.
// Generated replies skip it.
func (s *Service) appendMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string, metadata map[string]any, checkPolicy bool) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.InvalidArgument("content must not be empty").WithDetail("content", "required")
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := nextStatus(ctx, session.Status, triggerFirstMessage)
	if err != nil {
		return nil, err
	}

	if checkPolicy {
		if err := s.admit(ctx, session, role, content); err != nil {
			return nil, err
		}
	}

	if session.Status == domain.SessionStatusCreated && next == domain.SessionStatusActive {
		if _, err := s.store.ActivateSession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to activate session: %w", err)
		}
	}

	msg := &domain.Message{
		MessageID: uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.clock(),
		Metadata:  metadata,
	}
	ok, err := s.store.AppendMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	if !ok {
		// The session ended between the status read and the insert.
		return nil, domain.InvalidState("session %s is ended", sessionID)
	}

	if role == domain.MessageRoleUser {
		msg.AssistantPreview = assistantPreview(content)
	}

	s.recordEvent(ctx, sessionID, domain.EventTypeMessageAppended, domain.MessageAppendedPayload{
		MessageID: msg.MessageID,
		Seq:       msg.Seq,
		Role:      msg.Role,
		Content:   msg.Content,
	})
	return msg, nil
}

// Chat appends the caller's message, asks the generator for a reply and
// appends that reply as an ASSISTANT message, which is returned.
func (s *Service) Chat(ctx context.Context, sessionID string, role domain.MessageRole, content, character string, metadata map[string]any) (*domain.Message, error) {
	if _, err := s.AppendMessage(ctx, sessionID, role, content, metadata); err != nil {
		return nil, err
	}

	reply := s.Reply(ctx, content, sessionID, character)

	replyMeta := map[string]any{"source": "generation"}
	if character != "" {
		replyMeta["character"] = character
	}
	return s.appendMessage(ctx, sessionID, domain.MessageRoleAssistant, reply, replyMeta, false)
}

// admit runs the message admission policy. Evaluation failures admit the
// message.
func (s *Service) admit(ctx context.Context, session *domain.Session, role domain.MessageRole, content string) error {
	if s.policyEngine == nil {
		return nil
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
		SessionID:        session.SessionID,
		Role:             string(role),
		Content:          content,
		ContentLength:    utf8.RuneCountInString(content),
		Status:           string(session.Status),
		MaxContentLength: s.config.MaxContentLength,
	})
	if err != nil {
		logger.L.Warn("policy evaluation failed, admitting message", "session_id", session.SessionID, "error", err)
		return nil
	}
	if !decision.Allow {
		return domain.InvalidArgument("message rejected by policy").WithDetail("policy", decision.Reason)
	}
	return nil
}

func assistantPreview(content string) string {
	return "This is a mock reply to: " + content
}

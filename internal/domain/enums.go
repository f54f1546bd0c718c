// Package domain defines the core domain models for the conversation orchestrator.
package domain

import "strings"

// SessionStatus represents the lifecycle status of a session.
type SessionStatus string

const (
	SessionStatusCreated SessionStatus = "CREATED"
	SessionStatusActive  SessionStatus = "ACTIVE"
	SessionStatusEnded   SessionStatus = "ENDED"
)

// IsOpen reports whether the session still accepts messages.
func (s SessionStatus) IsOpen() bool {
	return s == SessionStatusCreated || s == SessionStatusActive
}

// MessageRole represents the author of a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "USER"
	MessageRoleAssistant MessageRole = "ASSISTANT"
	MessageRoleSystem    MessageRole = "SYSTEM"
)

// ParseMessageRole normalizes a free-text role from the API boundary.
// Matching is case-insensitive; anything else is an InvalidArgument.
func ParseMessageRole(raw string) (MessageRole, error) {
	switch MessageRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case MessageRoleUser:
		return MessageRoleUser, nil
	case MessageRoleAssistant:
		return MessageRoleAssistant, nil
	case MessageRoleSystem:
		return MessageRoleSystem, nil
	}
	return "", InvalidArgument("unknown message role %q", raw).
		WithDetail("role", "must be one of USER, ASSISTANT, SYSTEM")
}

// EventType represents the type of a session event.
type EventType string

const (
	EventTypeSessionStarted   EventType = "session_started"
	EventTypeMessageAppended  EventType = "message_appended"
	EventTypeSessionEnded     EventType = "session_ended"
	EventTypeCreditsGenerated EventType = "credits_generated"
)

// VoiceType is the voice used by the speech synthesis mock.
type VoiceType string

const (
	VoiceNeutral VoiceType = "NEUTRAL"
	VoiceMale    VoiceType = "MALE"
	VoiceFemale  VoiceType = "FEMALE"
	VoiceChild   VoiceType = "CHILD"
)

// ParseVoiceType returns VoiceNeutral for an empty value.
func ParseVoiceType(raw string) (VoiceType, error) {
	if strings.TrimSpace(raw) == "" {
		return VoiceNeutral, nil
	}
	switch v := VoiceType(strings.ToUpper(strings.TrimSpace(raw))); v {
	case VoiceNeutral, VoiceMale, VoiceFemale, VoiceChild:
		return v, nil
	}
	return "", InvalidArgument("unknown voice %q", raw)
}

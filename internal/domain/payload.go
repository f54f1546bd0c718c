package domain

import "time"

// SessionStartedPayload is the payload for session_started event.
type SessionStartedPayload struct {
	UserID string `json:"user_id,omitempty"`
}

// MessageAppendedPayload is the payload for message_appended event.
type MessageAppendedPayload struct {
	MessageID string      `json:"message_id"`
	Seq       int64       `json:"seq"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
}

// SessionEndedPayload is the payload for session_ended event.
type SessionEndedPayload struct {
	Reason  string    `json:"reason,omitempty"`
	EndedAt time.Time `json:"ended_at"`
}

// CreditsGeneratedPayload is the payload for credits_generated event.
type CreditsGeneratedPayload struct {
	Lines        int `json:"lines"`
	MessageCount int `json:"messages"`
}

package domain

import (
	"encoding/json"
	"time"
)

// Session represents a conversation session.
type Session struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id,omitempty"`
	Status    SessionStatus  `json:"status"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	EndReason string         `json:"end_reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DurationSeconds returns the whole seconds between start and end, or
// between start and now while the session is still open.
func (s *Session) DurationSeconds(now time.Time) int64 {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	d := int64(end.Sub(s.StartedAt) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// Message represents a single turn in a session.
// Seq is the 1-based append position and is the ordering key.
type Message struct {
	MessageID        string         `json:"message_id"`
	SessionID        string         `json:"session_id"`
	Seq              int64          `json:"seq"`
	Role             MessageRole    `json:"role"`
	Content          string         `json:"content"`
	CreatedAt        time.Time      `json:"created_at"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	AssistantPreview string         `json:"assistant_preview,omitempty"`
}

// CreditsStats is the statistics snapshot of a credits record.
type CreditsStats struct {
	MessageCount int   `json:"messages"`
	DurationSec  int64 `json:"duration_sec"`
}

// CreditsRecord holds the generated closing summary of a session.
type CreditsRecord struct {
	SessionID   string       `json:"session_id"`
	Lines       []string     `json:"lines"`
	Stats       CreditsStats `json:"stats"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Event represents a trace event of a session.
type Event struct {
	EventID   string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

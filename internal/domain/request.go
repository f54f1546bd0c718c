package domain

import "time"

// StartSessionRequest represents the request to start a session.
type StartSessionRequest struct {
	UserID   string         `json:"user_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StartSessionResponse represents the response of starting a session.
type StartSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
}

// PostMessageRequest represents a message posted by the client. Role is free
// text here and is parsed with ParseMessageRole.
type PostMessageRequest struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetSessionResponse represents a session with one page of its messages.
type GetSessionResponse struct {
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id,omitempty"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	EndReason string        `json:"end_reason,omitempty"`
	Messages  []Message     `json:"messages"`
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	Size      int           `json:"size"`
}

// EndSessionRequest represents the request to end a session.
type EndSessionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// EndSessionResponse represents the response of ending a session.
type EndSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	EndedAt   *time.Time    `json:"ended_at"`
	Reason    string        `json:"reason,omitempty"`
}

// CreditsRequest represents the request to generate ending credits.
type CreditsRequest struct {
	SessionID       string `json:"session_id"`
	IncludeDuration *bool  `json:"include_duration,omitempty"`
}

// Credit is a single entry of the static credits roll.
type Credit struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// CreditsResponse represents generated ending credits.
type CreditsResponse struct {
	SessionID   string       `json:"session_id"`
	Summary     CreditsStats `json:"summary"`
	Credits     []Credit     `json:"credits"`
	Summaries   []string     `json:"summaries"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// EventsResponse lists the event trail of a session.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// TranscribeRequest represents a speech-to-text request.
type TranscribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language,omitempty"`
}

// TranscribeResponse represents a speech-to-text result.
type TranscribeResponse struct {
	Transcript string `json:"transcript"`
	DurationMs int64  `json:"duration_ms"`
	Language   string `json:"language"`
}

// SynthesizeRequest represents a text-to-speech request.
type SynthesizeRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// SynthesizeResponse represents a text-to-speech result.
type SynthesizeResponse struct {
	AudioBase64         string    `json:"audio_base64"`
	Voice               VoiceType `json:"voice"`
	Language            string    `json:"language"`
	EstimatedDurationMs int64     `json:"estimated_duration_ms"`
}

// SearchRequest represents a search-index query.
type SearchRequest struct {
	Query     string         `json:"query"`
	TopK      *int           `json:"top_k,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// SearchResponse represents search-index results.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

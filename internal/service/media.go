package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

const (
	defaultLanguage = "ko-KR"
	defaultTopK     = 5
	maxTopK         = 50
)

// Transcribe is a deterministic speech-to-text stand-in.
func (s *Service) Transcribe(ctx context.Context, req domain.TranscribeRequest) (*domain.TranscribeResponse, error) {
	if strings.TrimSpace(req.AudioBase64) == "" {
		return nil, domain.InvalidArgument("audio_base64 is required").WithDetail("audio_base64", "required")
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return nil, domain.InvalidArgument("invalid base64 audio data").WithDetail("audio_base64", "invalid base64")
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	durationMs := int64(200 + len(audio)/2)
	if durationMs > 3000 {
		durationMs = 3000
	}

	logger.L.Debug("transcribed audio", "bytes", len(audio), "duration_ms", durationMs)
	return &domain.TranscribeResponse{
		Transcript: fmt.Sprintf("Transcribed %d bytes in %s", len(audio), language),
		DurationMs: durationMs,
		Language:   language,
	}, nil
}

// Synthesize is a deterministic text-to-speech stand-in.
func (s *Service) Synthesize(ctx context.Context, req domain.SynthesizeRequest) (*domain.SynthesizeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.InvalidArgument("text is required").WithDetail("text", "required")
	}
	voice, err := domain.ParseVoiceType(req.Voice)
	if err != nil {
		return nil, err
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	durationMs := int64(utf8.RuneCountInString(req.Text)) * 100
	if durationMs < 800 {
		durationMs = 800
	}

	return &domain.SynthesizeResponse{
		AudioBase64:         base64.StdEncoding.EncodeToString([]byte("AUDIO:" + req.Text)),
		Voice:               voice,
		Language:            language,
		EstimatedDurationMs: durationMs,
	}, nil
}

// Search is a deterministic search-index stand-in.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.InvalidArgument("query is required").WithDetail("query", "required")
	}
	topK := defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 1 || topK > maxTopK {
		return nil, domain.InvalidArgument("top_k must be between 1 and %d", maxTopK).WithDetail("top_k", "out of range")
	}

	results := make([]domain.SearchResult, topK)
	for i := range results {
		results[i] = domain.SearchResult{
			ID:      fmt.Sprintf("doc-%d", i+1),
			Score:   0.9 - float64(i)*0.05,
			Snippet: fmt.Sprintf("Mock snippet about '%s' - result %d", req.Query, i+1),
		}
	}
	return &domain.SearchResponse{Query: req.Query, Results: results}, nil
}

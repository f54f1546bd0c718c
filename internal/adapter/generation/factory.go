package generation

import (
	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

// NewGenerator picks the remote generator named by cfg.GenerationMode.
// Mock mode returns nil, which makes callers use their local fallback.
func NewGenerator(cfg *config.Config) Generator {
	switch cfg.GenerationMode {
	case config.GenerationModeRAG:
		logger.L.Info("using RAG generator", "url", cfg.RAGURL, "timeout", cfg.RAGTimeout)
		return NewRAGClient(cfg.RAGURL, cfg.RAGTimeout)
	case config.GenerationModeOpenAI:
		logger.L.Info("using OpenAI-compatible generator", "base_url", cfg.OpenAIBaseURL, "model", cfg.OpenAIModel)
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RAGTimeout)
	default:
		logger.L.Info("generation mode is mock, using local fallback generator")
		return nil
	}
}

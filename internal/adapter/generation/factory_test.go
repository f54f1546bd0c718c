package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kimyerak/guidely-chat/internal/config"
)

func TestNewGenerator(t *testing.T) {
	cfg := &config.Config{GenerationMode: config.GenerationModeMock, RAGTimeout: time.Second}
	assert.Nil(t, NewGenerator(cfg))

	cfg.GenerationMode = config.GenerationModeRAG
	cfg.RAGURL = "http://rag.local"
	assert.IsType(t, &RAGClient{}, NewGenerator(cfg))

	cfg.GenerationMode = config.GenerationModeOpenAI
	cfg.OpenAIModel = "m"
	assert.IsType(t, &OpenAIClient{}, NewGenerator(cfg))
}

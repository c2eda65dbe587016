package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/triage/internal/config"
)

// NewClient builds the advisory client named by config. An empty provider is
// not an error: it returns nil, meaning the engine runs on the statistical
// path alone.
func NewClient(ctx context.Context, cfg config.LLMConfig) (AdvisoryClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "":
		return nil, nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama speaks the OpenAI-compatible API; the key is a dummy.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported advisory provider: %s", provider)
	}
}

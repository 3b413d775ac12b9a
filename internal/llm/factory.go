package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/laytoneval/internal/model"
)

// apiKeyEnv names the environment variable each hosted provider reads its key from
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"together":  "TOGETHER_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables the stage and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	if config.APIKey == "" {
		if env, ok := apiKeyEnv[provider]; ok {
			config.APIKey = os.Getenv(env)
		}
	}

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "together":
		return NewTogetherProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, together, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/pagechat/pkg/llm/openai"
)

// ErrMissingAPIKey is returned by BuildProvider when no source supplied a key.
var ErrMissingAPIKey = errors.New("API key is required. Set OPENAI_API_KEY environment variable, use -api-key flag, or configure llm.api_key in ~/.pagechat/config.json")

// BuildProvider creates the completion provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cliModel, cliBaseURL, cliAPIKey, defaultModel string) (*openai.Provider, error) {
	// Start with CLI values (empty strings if not provided)
	finalModel := cliModel
	finalBaseURL := cliBaseURL
	finalAPIKey := cliAPIKey

	// Fall back to environment variables if CLI values are empty
	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	llmConfigFromFile := GetLLM()
	if llmConfigFromFile != nil {
		// Model: Use config file only if CLI didn't set a non-default value
		if cliModel == "" || cliModel == defaultModel {
			if configFileModel := llmConfigFromFile.GetModel(); configFileModel != "" {
				finalModel = configFileModel
			}
		}
		if finalBaseURL == "" {
			finalBaseURL = llmConfigFromFile.GetBaseURL()
		}
		if finalAPIKey == "" {
			finalAPIKey = llmConfigFromFile.GetAPIKey()
		}
	}

	if finalModel == "" {
		finalModel = defaultModel
	}

	if finalAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(finalModel),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}
	if session := GetSession(); session != nil {
		providerOpts = append(providerOpts, openai.WithCompletionOptions(session.CompletionOptions()))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}

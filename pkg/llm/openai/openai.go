// Package openai provides an OpenAI-compatible completion provider.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	    openai.WithCompletionOptions(llm.DefaultCompletionOptions()),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	reply, err := provider.Complete(ctx, messages)
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/entrhq/pagechat/pkg/llm"
	"github.com/entrhq/pagechat/pkg/types"
	"github.com/openai/openai-go"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion request
	DefaultTimeout = 60 * time.Second
)

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	options    llm.CompletionOptions
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithCompletionOptions sets the sampling knobs sent with every request.
func WithCompletionOptions(opts llm.CompletionOptions) ProviderOption {
	return func(p *Provider) {
		p.options = opts
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		options:    llm.DefaultCompletionOptions(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = strings.TrimRight(envBaseURL, "/")
		}
	}

	return p, nil
}

// completionRequest is the body of POST /chat/completions.
type completionRequest struct {
	Model           string                                   `json:"model"`
	Messages        []openai.ChatCompletionMessageParamUnion `json:"messages"`
	MaxTokens       int                                      `json:"max_tokens,omitempty"`
	Temperature     float64                                  `json:"temperature"`
	PresencePenalty float64                                  `json:"presence_penalty"`
	Stream          bool                                     `json:"stream"`
}

// completionResponse holds the parts of the reply we read.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// errorResponse is the error envelope returned by OpenAI-compatible APIs.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends messages to the API and returns the full reply.
//
// Failures are returned as *llm.CompletionError: transport problems are
// llm.KindNetwork, everything the server answered with is llm.KindProvider.
func (p *Provider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	resp, err := p.sendRequest(ctx, messages)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewNetworkError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewProviderError(resp.StatusCode, fmt.Errorf("API request failed: %s", describeErrorBody(body)))
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, llm.NewProviderError(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(decoded.Choices) == 0 {
		return nil, llm.NewProviderError(resp.StatusCode, fmt.Errorf("response contained no choices"))
	}

	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return nil, llm.NewProviderError(resp.StatusCode, fmt.Errorf("response contained an empty message"))
	}

	return types.NewAssistantMessage(content), nil
}

// sendRequest creates and sends the HTTP request
func (p *Provider) sendRequest(ctx context.Context, messages []*types.Message) (*http.Response, error) {
	reqBody := completionRequest{
		Model:           p.model,
		Messages:        convertToOpenAIMessages(messages),
		MaxTokens:       p.options.MaxTokens,
		Temperature:     p.options.Temperature,
		PresencePenalty: p.options.PresencePenalty,
		Stream:          false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, llm.NewProviderError(0, fmt.Errorf("failed to marshal request: %w", err))
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, llm.NewProviderError(0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, llm.NewNetworkError(fmt.Errorf("failed to send request: %w", err))
	}
	return resp, nil
}

// describeErrorBody prefers the message of a structured error envelope and
// falls back to the raw body.
func describeErrorBody(body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 300 {
		text = text[:300] + "..."
	}
	return text
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// GetCompletionOptions returns the sampling knobs sent with each request.
func (p *Provider) GetCompletionOptions() llm.CompletionOptions {
	return p.options
}

// convertToOpenAIMessages converts our Message format to OpenAI's ChatCompletionMessageParamUnion format.
func convertToOpenAIMessages(messages []*types.Message) []openai.ChatCompletionMessageParamUnion {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			openaiMessages = append(openaiMessages, openai.SystemMessage(msg.Content))
		case types.RoleUser:
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		case types.RoleAssistant:
			openaiMessages = append(openaiMessages, openai.AssistantMessage(msg.Content))
		default:
			// Default to user message for unknown roles
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		}
	}

	return openaiMessages
}

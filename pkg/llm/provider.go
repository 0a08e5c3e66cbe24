// Package llm provides abstractions for the completion provider that answers
// questions about a page.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := provider.Complete(ctx, []*types.Message{
//	    types.NewSystemMessage("Answer from the page only."),
//	    types.NewUserMessage("What is this page about?"),
//	})
package llm

import (
	"context"

	"github.com/entrhq/pagechat/pkg/types"
)

// Provider defines the interface for completion integrations.
//
// Providers handle API communication and nothing else: they do not keep
// conversation state, prune history, or retry. A failed call returns a
// *CompletionError so the caller can decide whether another attempt makes
// sense.
type Provider interface {
	// Complete sends the ordered messages and returns the assistant reply.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModel returns the model name being used.
	GetModel() string
}

// CompletionOptions are the sampling knobs every provider must honor.
type CompletionOptions struct {
	// MaxTokens bounds the length of the reply
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float64

	// PresencePenalty discourages repeating topics already covered
	PresencePenalty float64
}

// Default completion knobs.
const (
	DefaultMaxTokens       = 250
	DefaultTemperature     = 0.7
	DefaultPresencePenalty = 0.6
)

// DefaultCompletionOptions returns the knobs used when nothing is configured.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		MaxTokens:       DefaultMaxTokens,
		Temperature:     DefaultTemperature,
		PresencePenalty: DefaultPresencePenalty,
	}
}

// Package tokenizer counts tokens the way OpenAI chat models do, so the
// conversation window can be reported in the same unit the provider bills.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/entrhq/pagechat/pkg/types"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used for models tiktoken does not know.
const DefaultEncoding = "cl100k_base"

// Per-message overhead from OpenAI's token counting guide.
const (
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// Tokenizer wraps a tiktoken encoder.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// New returns a tokenizer using the default encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{encoding: enc, name: DefaultEncoding}, nil
}

// ForModel returns a tokenizer for model, falling back to the default
// encoding for unknown models.
func ForModel(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return New()
	}
	return &Tokenizer{encoding: enc, name: model}, nil
}

// Name returns the encoding or model the tokenizer was built for.
func (t *Tokenizer) Name() string {
	return t.name
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens estimates the prompt size of messages including the
// per-message framing and the priming of the reply.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	if len(messages) == 0 {
		return 0
	}

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += t.CountTokens(string(msg.Role))
		total += t.CountTokens(msg.Content)
	}
	return total + tokensPerReply
}

// Lazy loads a Tokenizer on the first Get. tiktoken downloads its BPE ranks
// the first time an encoding is used, so nothing is loaded at construction.
type Lazy struct {
	mu     sync.Mutex
	load   func() (*Tokenizer, error)
	tok    *Tokenizer
	err    error
	loaded bool
}

// NewLazy wraps load, which runs at most once.
func NewLazy(load func() (*Tokenizer, error)) *Lazy {
	return &Lazy{load: load}
}

// LazyForModel defers ForModel(model) until the first Get.
func LazyForModel(model string) *Lazy {
	return NewLazy(func() (*Tokenizer, error) {
		return ForModel(model)
	})
}

// Get loads the tokenizer if needed. A failed load is remembered and not
// retried.
func (l *Lazy) Get() (*Tokenizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		l.tok, l.err = l.load()
		l.loaded = true
	}
	return l.tok, l.err
}

// Loaded returns the tokenizer if an earlier Get succeeded, without loading.
func (l *Lazy) Loaded() *Tokenizer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tok
}

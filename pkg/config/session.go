package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/pagechat/pkg/agent"
	"github.com/entrhq/pagechat/pkg/extract"
	"github.com/entrhq/pagechat/pkg/llm"
)

const (
	// SectionIDSession is the identifier for the conversation settings section
	SectionIDSession = "session"
)

// SessionSection controls how much page text is kept, how long the
// conversation window is and how replies are sampled.
type SessionSection struct {
	MaxChars        int
	MaxTurns        int
	MaxTokens       int
	Temperature     float64
	PresencePenalty float64
	mu              sync.RWMutex
}

// NewSessionSection creates a session section with default settings.
func NewSessionSection() *SessionSection {
	s := &SessionSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SessionSection) ID() string {
	return SectionIDSession
}

// Title returns the section title.
func (s *SessionSection) Title() string {
	return "Session"
}

// Description returns the section description.
func (s *SessionSection) Description() string {
	return "Size of the page extract, length of the conversation window and sampling settings for replies."
}

// Data returns the current configuration data.
func (s *SessionSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"max_chars":        s.MaxChars,
		"max_turns":        s.MaxTurns,
		"max_tokens":       s.MaxTokens,
		"temperature":      s.Temperature,
		"presence_penalty": s.PresencePenalty,
	}
}

// SetData updates the configuration from the provided data.
func (s *SessionSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ints := map[string]*int{
		"max_chars":  &s.MaxChars,
		"max_turns":  &s.MaxTurns,
		"max_tokens": &s.MaxTokens,
	}
	for key, target := range ints {
		raw, ok := data[key]
		if !ok {
			continue
		}
		n, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("%s must be an integer, got %v", key, raw)
		}
		*target = n
	}

	floats := map[string]*float64{
		"temperature":      &s.Temperature,
		"presence_penalty": &s.PresencePenalty,
	}
	for key, target := range floats {
		raw, ok := data[key]
		if !ok {
			continue
		}
		f, ok := floatValue(raw)
		if !ok {
			return fmt.Errorf("%s must be a number, got %v", key, raw)
		}
		*target = f
	}

	return nil
}

// Validate validates the current configuration.
func (s *SessionSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MaxChars < 1 {
		return fmt.Errorf("max_chars must be at least 1")
	}
	if s.MaxTurns < 4 {
		return fmt.Errorf("max_turns must be at least 4")
	}
	if s.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1")
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if s.PresencePenalty < -2 || s.PresencePenalty > 2 {
		return fmt.Errorf("presence_penalty must be between -2 and 2")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SessionSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MaxChars = extract.DefaultMaxChars
	s.MaxTurns = agent.DefaultMaxTurns
	s.MaxTokens = llm.DefaultMaxTokens
	s.Temperature = llm.DefaultTemperature
	s.PresencePenalty = llm.DefaultPresencePenalty
}

// CompletionOptions returns the sampling settings for the provider.
func (s *SessionSection) CompletionOptions() llm.CompletionOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return llm.CompletionOptions{
		MaxTokens:       s.MaxTokens,
		Temperature:     s.Temperature,
		PresencePenalty: s.PresencePenalty,
	}
}

// GetMaxChars returns the extract cap.
func (s *SessionSection) GetMaxChars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxChars
}

// GetMaxTurns returns the turn count that triggers a prune.
func (s *SessionSection) GetMaxTurns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxTurns
}

// Package agent implements the chat session that answers questions about one
// extracted page.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/entrhq/pagechat/pkg/agent/memory"
	"github.com/entrhq/pagechat/pkg/agent/prompts"
	"github.com/entrhq/pagechat/pkg/llm"
	"github.com/entrhq/pagechat/pkg/llm/tokenizer"
	"github.com/entrhq/pagechat/pkg/logging"
	"github.com/entrhq/pagechat/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("agent")
	if err != nil {
		debugLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// DefaultMaxTurns is the turn count that triggers a prune. A pruned session
// keeps the system turn and the latest MaxTurns-2 turns.
const DefaultMaxTurns = 10

// ApologyPrefix starts every reply synthesized for a failed completion.
const ApologyPrefix = "I apologize, but I'm having trouble processing your request."

// ErrEmptyDocument is returned when a session would have nothing to talk
// about.
var ErrEmptyDocument = errors.New("extracted document has no text")

// Session is a conversation grounded on one extracted page. It is created
// once per website and replaced when the user switches to another one.
type Session struct {
	mu sync.Mutex

	id       string
	pageURL  *url.URL
	document types.ExtractedDocument
	memory   *memory.ConversationMemory
	maxTurns int

	tokens      *tokenizer.Lazy
	lastFailure *llm.CompletionError
	lastReply   string
	exchanges   int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMaxTurns sets the turn count that triggers a prune. Values below 4 are
// raised to 4 so a pruned session always holds at least one full exchange.
func WithMaxTurns(n int) SessionOption {
	return func(s *Session) {
		if n < 4 {
			n = 4
		}
		s.maxTurns = n
	}
}

// WithTokenizer enables token accounting of the window. The tokenizer is
// loaded by the first Stats call.
func WithTokenizer(t *tokenizer.Lazy) SessionOption {
	return func(s *Session) {
		s.tokens = t
	}
}

// NewSession builds the system directive from doc and starts an empty
// history. doc must not be empty.
func NewSession(doc types.ExtractedDocument, pageURL *url.URL, opts ...SessionOption) (*Session, error) {
	if doc.IsEmpty() {
		return nil, ErrEmptyDocument
	}

	s := &Session{
		id:       uuid.New().String(),
		pageURL:  pageURL,
		document: doc,
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(s)
	}

	directive := prompts.NewPromptBuilder().
		WithSourceDomain(doc.SourceDomain).
		WithTitle(doc.Title).
		WithDescription(doc.Description).
		WithContent(doc.Text).
		Build()

	s.memory = memory.NewConversationMemory(types.NewSystemMessage(directive), s.maxTurns-2)

	debugLog.Infof("Session %s started for %s (%d characters of content)", s.id, doc.SourceDomain, len([]rune(doc.Text)))
	return s, nil
}

// Respond records input, asks provider for a reply and records the reply.
// It always returns text: when the provider fails the reply is an apology
// that names the error, and both turns are still recorded. The typed failure
// is available from LastFailure until the next call.
func (s *Session) Respond(ctx context.Context, provider llm.Provider, input string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.Add(types.NewUserMessage(input))
	s.exchanges++

	reply, err := s.complete(ctx, provider)
	if err != nil {
		s.lastFailure = llm.AsCompletionError(err)
		debugLog.Errorf("Completion failed in session %s: %v", s.id, err)
		reply = apology(err)
	} else {
		s.lastFailure = nil
	}

	s.memory.Add(types.NewAssistantMessage(reply))
	s.lastReply = reply

	if s.memory.Len() > s.maxTurns {
		evicted := s.memory.Prune()
		debugLog.Debugf("Pruned %d turns from session %s", evicted, s.id)
	}

	if s.tokens != nil {
		if tok := s.tokens.Loaded(); tok != nil {
			debugLog.Debugf("Session %s window: %d turns, %d tokens", s.id, s.memory.Len(), tok.CountMessagesTokens(s.memory.GetAll()))
		}
	}

	return reply
}

func (s *Session) complete(ctx context.Context, provider llm.Provider) (reply string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reply = ""
			err = llm.NewProviderError(0, fmt.Errorf("provider panicked: %v", rec))
		}
	}()

	if provider == nil {
		return "", llm.NewProviderError(0, errors.New("no completion provider configured"))
	}

	msg, err := provider.Complete(ctx, s.memory.GetAll())
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", llm.NewProviderError(0, errors.New("provider returned no message"))
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", llm.NewProviderError(0, errors.New("provider returned an empty reply"))
	}
	return content, nil
}

func apology(err error) string {
	return fmt.Sprintf("%s Error: %v", ApologyPrefix, err)
}

// LastFailure returns the *llm.CompletionError of the latest exchange, or nil
// if it succeeded.
func (s *Session) LastFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFailure == nil {
		return nil
	}
	return s.lastFailure
}

// LastReply returns the latest assistant reply, apology included.
func (s *Session) LastReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReply
}

// Reset forgets the conversation but keeps the page.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Clear()
	s.lastFailure = nil
	s.lastReply = ""
	debugLog.Infof("Session %s reset", s.id)
}

// Messages returns the system turn followed by the kept history.
func (s *Session) Messages() []*types.Message {
	return s.memory.GetAll()
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// URL returns the page the session is about.
func (s *Session) URL() *url.URL {
	return s.pageURL
}

// Document returns the extracted page.
func (s *Session) Document() types.ExtractedDocument {
	return s.document
}

// Stats describes the current window.
type Stats struct {
	Turns     int
	MaxTurns  int
	Exchanges int
	Evicted   int

	// Tokens is -1 when no tokenizer is configured or it failed to load
	Tokens int
}

// Stats reports the size of the conversation window.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Turns:     s.memory.Len(),
		MaxTurns:  s.maxTurns,
		Exchanges: s.exchanges,
		Evicted:   s.memory.Evicted(),
		Tokens:    -1,
	}
	if s.tokens != nil {
		tok, err := s.tokens.Get()
		if err != nil {
			debugLog.Warnf("Token counting unavailable for session %s: %v", s.id, err)
		} else {
			stats.Tokens = tok.CountMessagesTokens(s.memory.GetAll())
		}
	}
	return stats
}

package tokenizer

import (
	"errors"
	"testing"

	"github.com/entrhq/pagechat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTokenizer skips when the BPE ranks cannot be loaded, which happens
// on machines without network access and an empty tiktoken cache.
func newTestTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := New()
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tok
}

func TestCountTokens(t *testing.T) {
	tok := newTestTokenizer(t)

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Greater(t, tok.CountTokens("hello world"), 0)
	assert.Greater(t,
		tok.CountTokens("hello world, this sentence is clearly longer"),
		tok.CountTokens("hello world"))
}

func TestCountMessagesTokens(t *testing.T) {
	tok := newTestTokenizer(t)

	assert.Equal(t, 0, tok.CountMessagesTokens(nil))

	one := []*types.Message{types.NewUserMessage("hi")}
	two := append(one, types.NewAssistantMessage("hello there"))

	oneCount := tok.CountMessagesTokens(one)
	assert.Equal(t, tokensPerMessage+tok.CountTokens("user")+tok.CountTokens("hi")+tokensPerReply, oneCount)
	assert.Greater(t, tok.CountMessagesTokens(two), oneCount)
}

func TestForModel_UnknownFallsBack(t *testing.T) {
	newTestTokenizer(t)

	tok, err := ForModel("some-local-model")
	require.NoError(t, err)
	assert.Equal(t, DefaultEncoding, tok.Name())
}

func TestLazyLoadsOnce(t *testing.T) {
	loads := 0
	want := &Tokenizer{name: "stub"}
	lazy := NewLazy(func() (*Tokenizer, error) {
		loads++
		return want, nil
	})

	assert.Equal(t, 0, loads)
	assert.Nil(t, lazy.Loaded())

	got, err := lazy.Get()
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = lazy.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Same(t, want, lazy.Loaded())
}

func TestLazyRemembersFailure(t *testing.T) {
	loads := 0
	lazy := NewLazy(func() (*Tokenizer, error) {
		loads++
		return nil, errors.New("no network")
	})

	_, err := lazy.Get()
	assert.EqualError(t, err, "no network")
	_, err = lazy.Get()
	assert.Error(t, err)
	assert.Equal(t, 1, loads)
	assert.Nil(t, lazy.Loaded())
}

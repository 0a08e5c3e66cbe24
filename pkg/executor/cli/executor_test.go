package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagechat/pkg/agent"
	"github.com/entrhq/pagechat/pkg/browser"
	"github.com/entrhq/pagechat/pkg/extract"
	"github.com/entrhq/pagechat/pkg/types"
)

// fakeRenderer serves fixed HTML per URL.
type fakeRenderer struct {
	pages    map[string]string
	rendered []string
}

func (r *fakeRenderer) Render(ctx context.Context, target *url.URL) (*types.PageSnapshot, error) {
	r.rendered = append(r.rendered, target.String())
	html, ok := r.pages[target.String()]
	if !ok {
		return nil, types.NewExtractionFailure(target.String(), "failed to load page", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	}
	return &types.PageSnapshot{URL: target, RawHTML: html, RenderedAt: time.Now(), Converged: true}, nil
}

// MockProvider is a mock implementation of llm.Provider for testing
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Message), args.Error(1)
}

func (m *MockProvider) GetModel() string {
	args := m.Called()
	return args.String(0)
}

var testPages = map[string]string{
	"https://shop.example.com": `<html><head><title>Example Shop Online Store</title></head>
<body><main><h1>Shipping</h1><p>Free shipping over 50 euros.</p></main></body></html>`,
	"https://blog.example.com": `<html><body><article><h2>Post</h2><p>Hello from the blog.</p></article></body></html>`,
	"https://empty.example.com": `<html><body><script>app()</script></body></html>`,
}

func runExecutor(t *testing.T, input string, provider *MockProvider, opts ...ExecutorOption) (string, *Executor, *fakeRenderer) {
	t.Helper()
	renderer := &fakeRenderer{pages: testPages}
	var out bytes.Buffer

	opts = append([]ExecutorOption{
		WithReader(strings.NewReader(input)),
		WithWriter(&out),
		WithPlainOutput(true),
	}, opts...)
	e := NewExecutor(renderer, extract.NewExtractor(), provider, opts...)

	require.NoError(t, e.Run(context.Background()))
	return out.String(), e, renderer
}

func TestRunConversation(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(messages []*types.Message) bool {
		return len(messages) == 2 && strings.Contains(messages[0].Content, "Free shipping over 50 euros.")
	})).Return(types.NewAssistantMessage("**Yes!** Steps:\n1. Add items\n2. Check out"), nil).Once()

	out, e, _ := runExecutor(t, "https://shop.example.com\nIs shipping free?\nexit\n", provider)

	assert.Contains(t, out, "Ready! Ask me anything about https://shop.example.com")
	assert.Contains(t, out, "Example Shop Online Store")
	assert.Contains(t, out, "Yes! Steps:\n  1. Add items\n  2. Check out\n")
	assert.Contains(t, out, "Goodbye!")

	require.NotNil(t, e.Session())
	assert.Len(t, e.Session().Messages(), 3)
	provider.AssertExpectations(t)
}

func TestRunInvalidAndFailedURLs(t *testing.T) {
	policy, err := browser.NewHostPolicy([]string{"*.internal"})
	require.NoError(t, err)

	input := strings.Join([]string{
		"not a url",
		"ftp://files.example.com",
		"https://wiki.internal",
		"https://missing.example.com",
		"https://empty.example.com",
		"quit",
	}, "\n")
	out, e, renderer := runExecutor(t, input, new(MockProvider), WithHostPolicy(policy))

	assert.Equal(t, 3, strings.Count(out, "Invalid URL"))
	assert.Contains(t, out, "blocked")
	assert.Equal(t, 2, strings.Count(out, "Could not extract website content"))
	assert.Contains(t, out, "ERR_NAME_NOT_RESOLVED")
	assert.Contains(t, out, "no readable text found")

	assert.Equal(t, []string{"https://missing.example.com", "https://empty.example.com"}, renderer.rendered, "invalid urls are never rendered")
	assert.Nil(t, e.Session())
}

func TestRunApologyOnProviderFailure(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()

	out, e, _ := runExecutor(t, "https://shop.example.com\nhello\n", provider)

	assert.Contains(t, out, agent.ApologyPrefix)
	assert.Contains(t, out, "rate limited")
	assert.Len(t, e.Session().Messages(), 3)
}

func TestRunCommands(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(types.NewAssistantMessage("It is *great*."), nil)
	provider.On("GetModel").Return("test-model")

	var copied string
	input := strings.Join([]string{
		"https://shop.example.com",
		"/copy",
		"How is it?",
		"/copy",
		"/stats",
		"/reset",
		"/url",
		"/url https://blog.example.com",
		"/help",
		"exit",
	}, "\n")
	out, e, _ := runExecutor(t, input, provider, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	assert.Contains(t, out, "Nothing to copy yet.")
	assert.Equal(t, "It is great.", copied)
	assert.Contains(t, out, "Turns in window: 3 (prunes above 10)")
	assert.Contains(t, out, "Model: test-model")
	assert.Contains(t, out, "Conversation cleared")
	assert.Contains(t, out, "Usage: /url <address>")
	assert.Contains(t, out, "Ready! Ask me anything about https://blog.example.com")
	assert.Contains(t, out, "/reset")

	require.NotNil(t, e.Session())
	assert.Equal(t, "blog.example.com", e.Session().Document().SourceDomain)
	assert.Len(t, e.Session().Messages(), 1)
}

func TestRunNewKeywordAndInitialURL(t *testing.T) {
	out, e, renderer := runExecutor(t, "new\nhttps://blog.example.com\n", new(MockProvider), WithInitialURL("https://shop.example.com"))

	assert.Contains(t, out, "Switching to new website")
	assert.Equal(t, []string{"https://shop.example.com", "https://blog.example.com"}, renderer.rendered)
	assert.Equal(t, "blog.example.com", e.Session().Document().SourceDomain)
}

func TestRunFailedSwitchKeepsSession(t *testing.T) {
	out, e, _ := runExecutor(t, "https://shop.example.com\n/url https://missing.example.com\n", new(MockProvider))

	assert.Contains(t, out, "Could not extract website content")
	require.NotNil(t, e.Session())
	assert.Equal(t, "shop.example.com", e.Session().Document().SourceDomain)
}

func TestRunCopyFailure(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(types.NewAssistantMessage("ok"), nil)

	out, _, _ := runExecutor(t, "https://shop.example.com\nhi\n/copy\n", provider, WithClipboard(func(string) error {
		return errors.New("no display")
	}))
	assert.Contains(t, out, "Failed to copy to clipboard: no display")
}

// blockingReader never returns, like a terminal nobody types into.
type blockingReader struct {
	release chan struct{}
}

func (r blockingReader) Read(p []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestRunStopsOnCancel(t *testing.T) {
	reader := blockingReader{release: make(chan struct{})}
	defer close(reader.release)

	var out bytes.Buffer
	e := NewExecutor(&fakeRenderer{}, extract.NewExtractor(), new(MockProvider),
		WithReader(reader), WithWriter(&out), WithPlainOutput(true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

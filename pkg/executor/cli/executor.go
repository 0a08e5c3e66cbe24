// Package cli provides the line-oriented terminal front end: it asks for a
// website, renders and extracts it, and then runs a conversation about it.
//
// Example usage:
//
//	renderer := browser.NewRenderer(browser.NewPlaywrightDriver(), browser.DefaultOptions())
//	provider, _ := openai.NewProvider(os.Getenv("OPENAI_API_KEY"))
//
//	executor := cli.NewExecutor(renderer, extract.NewExtractor(), provider)
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/entrhq/pagechat/pkg/agent"
	"github.com/entrhq/pagechat/pkg/browser"
	"github.com/entrhq/pagechat/pkg/llm"
	"github.com/entrhq/pagechat/pkg/logging"
	"github.com/entrhq/pagechat/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("cli")
	if err != nil {
		debugLog.Warnf("Failed to initialize cli logger, using stderr fallback: %v", err)
	}
}

// Renderer loads a page and returns its final HTML.
type Renderer interface {
	Render(ctx context.Context, target *url.URL) (*types.PageSnapshot, error)
}

// Extractor turns HTML into a bounded text document.
type Extractor interface {
	Extract(rawHTML string, pageURL *url.URL) types.ExtractedDocument
}

// Executor runs the website chat loop in a terminal.
type Executor struct {
	renderer  Renderer
	extractor Extractor
	provider  llm.Provider

	policy      *browser.HostPolicy
	sessionOpts []agent.SessionOption
	initialURL  string
	copyText    func(string) error

	input  io.Reader
	lines  chan string
	errs   chan error
	done   chan struct{}
	writer io.Writer
	paint  painter

	session *agent.Session
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithReader sets the input source (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.input = r
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithPlainOutput disables colors and borders.
func WithPlainOutput(plain bool) ExecutorOption {
	return func(e *Executor) {
		e.paint.plain = plain
	}
}

// WithHostPolicy rejects URLs whose host matches the policy.
func WithHostPolicy(policy *browser.HostPolicy) ExecutorOption {
	return func(e *Executor) {
		e.policy = policy
	}
}

// WithSessionOptions is applied to every session the executor creates.
func WithSessionOptions(opts ...agent.SessionOption) ExecutorOption {
	return func(e *Executor) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// WithInitialURL loads a website before the first prompt.
func WithInitialURL(raw string) ExecutorOption {
	return func(e *Executor) {
		e.initialURL = raw
	}
}

// WithClipboard replaces the function used by /copy.
func WithClipboard(copyText func(string) error) ExecutorOption {
	return func(e *Executor) {
		e.copyText = copyText
	}
}

// NewExecutor creates a new CLI executor.
func NewExecutor(renderer Renderer, extractor Extractor, provider llm.Provider, opts ...ExecutorOption) *Executor {
	e := &Executor{
		renderer:  renderer,
		extractor: extractor,
		provider:  provider,
		copyText:  clipboard.WriteAll,
		input:     os.Stdin,
		writer:    os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Session returns the active session, or nil before a website is loaded.
func (e *Executor) Session() *agent.Session {
	return e.session
}

// Run starts the conversation loop. It returns nil when the user exits or
// input ends, and ctx.Err() when ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	e.startReader()
	defer close(e.done)

	fmt.Fprintln(e.writer, e.paint.banner())

	if e.initialURL != "" {
		e.openSite(ctx, e.initialURL)
	}

	for {
		prompt := "\n📎 Enter website URL (or 'exit' to quit): "
		if e.session != nil {
			prompt = "\nYou: "
		}
		fmt.Fprint(e.writer, e.paint.paint(promptStyle, prompt))

		input, err := e.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				e.goodbye()
				return nil
			}
			if ctx.Err() != nil {
				fmt.Fprintln(e.writer, "\n\n👋 Exiting...")
				return ctx.Err()
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if isExit(input) {
			e.goodbye()
			return nil
		}

		if e.session == nil {
			e.openSite(ctx, input)
			continue
		}

		if e.handleCommand(ctx, input) {
			continue
		}

		if err := e.converse(ctx, input); err != nil {
			debugLog.Errorf("Turn failed: %v", err)
			e.printError(fmt.Sprintf("An error occurred: %v", err))
		}
	}
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}

// startReader feeds lines from the input on a channel so that a blocked read
// does not keep Run from noticing cancellation.
func (e *Executor) startReader() {
	e.lines = make(chan string)
	e.errs = make(chan error, 1)
	e.done = make(chan struct{})

	go func() {
		reader := bufio.NewReader(e.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case e.lines <- line:
				case <-e.done:
					return
				}
			}
			if err != nil {
				e.errs <- err
				return
			}
		}
	}()
}

func (e *Executor) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-e.lines:
		return line, nil
	case err := <-e.errs:
		return "", err
	}
}

// handleCommand runs slash commands and the "new" keyword. It returns false
// for ordinary chat input.
func (e *Executor) handleCommand(ctx context.Context, input string) bool {
	command, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "new":
		if arg != "" {
			return false
		}
		fmt.Fprintln(e.writer, "\n🔄 Switching to new website...")
		e.session = nil
	case "/url":
		if arg == "" {
			e.printError("Usage: /url <address>")
			return true
		}
		e.openSite(ctx, arg)
	case "/reset":
		e.session.Reset()
		fmt.Fprintln(e.writer, e.paint.paint(successStyle, "🧹 Conversation cleared. The page content is still loaded."))
	case "/stats":
		e.printStats()
	case "/copy":
		e.copyLastReply()
	case "/help":
		e.printHelp()
	default:
		return false
	}
	return true
}

// openSite validates raw, renders and extracts the page and replaces the
// active session. On failure the previous session, if any, stays active.
func (e *Executor) openSite(ctx context.Context, raw string) {
	target, err := browser.ValidateURL(raw, e.policy)
	if err != nil {
		var validationErr *types.ValidationError
		if errors.As(err, &validationErr) {
			e.printError(fmt.Sprintf("❌ Invalid URL (%s). Please enter a valid URL (e.g., https://www.example.com)", validationErr.Reason))
		} else {
			e.printError(fmt.Sprintf("❌ %v", err))
		}
		return
	}

	session, err := e.loadSession(ctx, target)
	if err != nil {
		debugLog.Errorf("Failed to load %s: %v", target, err)
		e.printError(fmt.Sprintf("❌ Could not extract website content (%v). Please check the URL and try again.", err))
		return
	}

	e.session = session
	doc := session.Document()

	fmt.Fprintln(e.writer)
	fmt.Fprintln(e.writer, e.paint.paint(successStyle, fmt.Sprintf("✨ Ready! Ask me anything about %s", target)))
	if doc.Title != "" {
		fmt.Fprintln(e.writer, e.paint.paint(headerStyle, doc.Title))
	}
	if doc.Description != "" {
		fmt.Fprintln(e.writer, e.paint.paint(tipsStyle, doc.Description))
	}
	fmt.Fprintln(e.writer, e.paint.paint(tipsStyle, "💡 Type 'new' or /url <address> for a different website, /help for commands, 'exit' to quit"))
}

func (e *Executor) loadSession(ctx context.Context, target *url.URL) (*agent.Session, error) {
	fmt.Fprintln(e.writer, e.paint.paint(tipsStyle, "Loading website content... ⏳"))

	snapshot, err := e.renderer.Render(ctx, target)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(e.writer, e.paint.paint(tipsStyle, "Scanning website content... 🔍"))
	doc := e.extractor.Extract(snapshot.RawHTML, snapshot.URL)
	if doc.IsEmpty() {
		return nil, types.NewExtractionFailure(target.String(), "no readable text found", nil)
	}

	return agent.NewSession(doc, target, e.sessionOpts...)
}

// converse sends one message. A panic below is reported as an error and the
// loop keeps going.
func (e *Executor) converse(ctx context.Context, input string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unexpected failure: %v", rec)
		}
	}()

	reply := e.session.Respond(ctx, e.provider, input)
	if failure := e.session.LastFailure(); failure != nil {
		debugLog.Warnf("Reply for session %s is an apology: %v", e.session.ID(), failure)
	}
	e.printReply(reply)
	return nil
}

func (e *Executor) printReply(reply string) {
	fmt.Fprintln(e.writer, "\n🤖 Bot Response:")
	fmt.Fprintln(e.writer, e.paint.rule("━"))
	for _, line := range FormatReply(reply) {
		fmt.Fprintln(e.writer, e.paint.paint(replyStyle, line))
	}
	fmt.Fprintln(e.writer, e.paint.rule("─"))
}

func (e *Executor) printStats() {
	stats := e.session.Stats()
	fmt.Fprintf(e.writer, "Turns in window: %d (prunes above %d)\n", stats.Turns, stats.MaxTurns)
	fmt.Fprintf(e.writer, "Exchanges: %d, turns dropped: %d\n", stats.Exchanges, stats.Evicted)
	if stats.Tokens >= 0 {
		fmt.Fprintf(e.writer, "Prompt tokens: %d\n", stats.Tokens)
	}
	if e.provider != nil {
		fmt.Fprintf(e.writer, "Model: %s\n", e.provider.GetModel())
	}
}

func (e *Executor) copyLastReply() {
	reply := e.session.LastReply()
	if reply == "" {
		e.printError("Nothing to copy yet.")
		return
	}
	if err := e.copyText(strings.Join(FormatReply(reply), "\n")); err != nil {
		e.printError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		return
	}
	fmt.Fprintln(e.writer, e.paint.paint(successStyle, "📋 Copied the last answer to the clipboard."))
}

func (e *Executor) printHelp() {
	help := []string{
		"/url <address>  switch to another website",
		"new             pick a new website",
		"/reset          clear the conversation, keep the page",
		"/stats          show the size of the conversation window",
		"/copy           copy the last answer to the clipboard",
		"exit, quit      leave",
	}
	for _, line := range help {
		fmt.Fprintln(e.writer, e.paint.paint(tipsStyle, line))
	}
}

func (e *Executor) printError(msg string) {
	fmt.Fprintln(e.writer, e.paint.paint(errorStyle, msg))
}

func (e *Executor) goodbye() {
	fmt.Fprintln(e.writer, "\n👋 Thank you for using Website Chat! Goodbye!")
}

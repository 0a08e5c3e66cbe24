package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/entrhq/pagechat/pkg/logging"
	"github.com/entrhq/pagechat/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("browser")
	if err != nil {
		debugLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

// Renderer turns a URL into a PageSnapshot. It holds no browser between
// calls and is safe to reuse.
type Renderer struct {
	driver Driver
	opts   Options
	wait   WaitFunc
	now    func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithWaitFunc replaces the delay used for settling and scrolling.
func WithWaitFunc(wait WaitFunc) RendererOption {
	return func(r *Renderer) {
		r.wait = wait
	}
}

// NewRenderer creates a renderer that launches browsers through driver.
// Zero fields of opts are filled from DefaultOptions, so Options{} renders
// headless and waits DefaultSettleDelay after navigation.
func NewRenderer(driver Driver, opts Options, rendererOpts ...RendererOption) *Renderer {
	r := &Renderer{
		driver: driver,
		opts:   opts.withDefaults(),
		wait:   sleepContext,
		now:    time.Now,
	}
	for _, opt := range rendererOpts {
		opt(r)
	}
	return r
}

// Options returns the options every launch uses.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render loads target, waits for dynamic content to settle and returns the
// final HTML. Any failure is returned as *types.ExtractionFailure. The
// browser is released before Render returns, also when it panics or ctx is
// canceled.
func (r *Renderer) Render(ctx context.Context, target *url.URL) (snapshot *types.PageSnapshot, err error) {
	if target == nil {
		return nil, types.NewExtractionFailure("", "no url given", nil)
	}
	address := target.String()

	defer func() {
		if rec := recover(); rec != nil {
			debugLog.Errorf("Render of %s panicked: %v", address, rec)
			snapshot = nil
			err = types.NewExtractionFailure(address, "browser driver crashed", fmt.Errorf("%v", rec))
		}
	}()

	start := r.now()
	debugLog.Infof("Rendering %s with %s (headful=%t)", address, r.driver.Name(), r.opts.Headful)

	page, err := r.driver.Open(ctx, target, r.opts)
	if err != nil {
		debugLog.Errorf("Failed to open %s: %v", address, err)
		return nil, types.NewExtractionFailure(address, "failed to load page", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			debugLog.Warnf("Failed to release browser for %s: %v", address, closeErr)
		}
	}()

	if err := r.wait(ctx, r.opts.SettleDelay); err != nil {
		return nil, types.NewExtractionFailure(address, "interrupted while page settled", err)
	}

	result, err := Converge(ctx, page, r.opts.ScrollInterval, r.opts.MaxScrollIterations, r.wait)
	if err != nil {
		return nil, types.NewExtractionFailure(address, "failed while scrolling page", err)
	}
	if result.Converged {
		debugLog.Debugf("Page height converged at %dpx after %d scrolls", result.FinalHeight, result.Iterations)
	} else {
		debugLog.Warnf("Page height still changing after %d scrolls (last %dpx), using content as is", result.Iterations, result.FinalHeight)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, types.NewExtractionFailure(address, "failed to capture html", err)
	}

	debugLog.Infof("Rendered %s: %d bytes of html in %s", address, len(html), r.now().Sub(start).Round(time.Millisecond))

	return &types.PageSnapshot{
		URL:              target,
		RawHTML:          html,
		RenderedAt:       r.now(),
		ScrollIterations: result.Iterations,
		Converged:        result.Converged,
	}, nil
}

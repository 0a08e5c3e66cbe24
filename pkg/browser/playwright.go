package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver launches Chromium through playwright-go. The Playwright
// driver process and the browser are started per Open call and stopped by
// the returned page's Close.
type PlaywrightDriver struct {
	runOptions  *playwright.RunOptions
	installOnce sync.Once
	installErr  error
}

// NewPlaywrightDriver creates a driver that installs the Playwright browsers
// on first use. Output of the installer is discarded so it does not mix with
// the conversation.
func NewPlaywrightDriver() *PlaywrightDriver {
	return &PlaywrightDriver{
		runOptions: &playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
			Stdout:   io.Discard,
			Stderr:   io.Discard,
		},
	}
}

// Name returns DriverPlaywright.
func (d *PlaywrightDriver) Name() DriverName {
	return DriverPlaywright
}

func (d *PlaywrightDriver) install() error {
	d.installOnce.Do(func() {
		if err := playwright.Install(d.runOptions); err != nil {
			d.installErr = fmt.Errorf("failed to install playwright: %w", err)
		}
	})
	return d.installErr
}

// Open starts Playwright, launches Chromium and navigates to target.
func (d *PlaywrightDriver) Open(ctx context.Context, target *url.URL, opts Options) (Page, error) {
	opts = opts.withDefaults()

	if err := d.install(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(d.runOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	p := &playwrightPage{pw: pw}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(!opts.Headful),
		ChromiumSandbox: playwright.Bool(false),
		Args:            launchArgs(),
	}
	p.browser, err = pw.Chromium.Launch(launchOpts)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		JavaScriptEnabled: playwright.Bool(true),
		Permissions:       []string{},
	}
	p.context, err = p.browser.NewContext(contextOpts)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	p.page, err = p.context.NewPage()
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	timeoutMs := float64(opts.NavigationTimeout.Milliseconds())
	p.page.SetDefaultTimeout(timeoutMs)

	waitUntil := playwright.WaitUntilState("load")
	if _, err := p.page.Goto(target.String(), playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   &timeoutMs,
	}); err != nil {
		p.Close()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// playwrightPage implements Page on top of a Playwright page and owns the
// whole chain of resources behind it.
type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

const (
	scrollHeightScript   = `() => (document.body ? document.body.scrollHeight : document.documentElement.scrollHeight)`
	scrollToBottomScript = `() => window.scrollTo(0, document.body ? document.body.scrollHeight : document.documentElement.scrollHeight)`
	outerHTMLScript      = `() => document.documentElement.outerHTML`
)

func (p *playwrightPage) ScrollHeight(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	value, err := p.page.Evaluate(scrollHeightScript)
	if err != nil {
		return 0, err
	}
	return toInt(value)
}

func (p *playwrightPage) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Evaluate(scrollToBottomScript)
	return err
}

func (p *playwrightPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

// Close releases page, context, browser and the Playwright driver, in that
// order, and keeps going past individual failures.
func (p *playwrightPage) Close() error {
	var errs []error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if p.context != nil {
		if err := p.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

// toInt converts a number decoded from a script result.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	}
	return 0, fmt.Errorf("unexpected script result %T", value)
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodDriver launches a local Chrome through go-rod and opens pages with the
// stealth evasions applied.
type RodDriver struct{}

// NewRodDriver creates a rod driver. Chrome is downloaded by the launcher on
// first use when none is installed.
func NewRodDriver() *RodDriver {
	return &RodDriver{}
}

// Name returns DriverRod.
func (d *RodDriver) Name() DriverName {
	return DriverRod
}

// Open launches Chrome, connects to it and navigates a stealth page to target.
func (d *RodDriver) Open(ctx context.Context, target *url.URL, opts Options) (Page, error) {
	opts = opts.withDefaults()

	l := launcher.New().
		Context(ctx).
		Headless(!opts.Headful).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-notifications").
		Set("disable-infobars").
		Set("disable-extensions").
		Set("disable-popup-blocking").
		Set("disable-blink-features", "AutomationControlled").
		Set("mute-audio").
		Set("window-size", fmt.Sprintf("%d,%d", opts.Viewport.Width, opts.Viewport.Height))

	controlURL, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	p := &rodPage{launcher: l}

	p.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := p.browser.Connect(); err != nil {
		p.browser = nil
		p.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	p.page, err = stealth.Page(p.browser)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	if err := p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Viewport.Width,
		Height:            opts.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	nav := p.page.Context(ctx).Timeout(opts.NavigationTimeout)
	if err := nav.Navigate(target.String()); err != nil {
		p.Close()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		p.Close()
		return nil, fmt.Errorf("page did not finish loading: %w", err)
	}

	return p, nil
}

// rodPage implements Page on a stealth rod page and owns the launched Chrome.
type rodPage struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (p *rodPage) ScrollHeight(ctx context.Context) (int, error) {
	res, err := p.page.Context(ctx).Eval(scrollHeightScript)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) ScrollToBottom(ctx context.Context) error {
	_, err := p.page.Context(ctx).Eval(scrollToBottomScript)
	return err
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(outerHTMLScript)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Close closes the page and browser, then kills Chrome and removes its
// profile directory.
func (p *rodPage) Close() error {
	var errs []error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if p.launcher != nil {
		p.launcher.Kill()
		p.launcher.Cleanup()
	}
	return errors.Join(errs...)
}

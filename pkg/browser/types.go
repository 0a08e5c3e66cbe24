package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// DriverName selects the browser automation backend.
type DriverName string

const (
	// DriverPlaywright drives Chromium through playwright-go
	DriverPlaywright DriverName = "playwright"

	// DriverRod drives Chrome through go-rod with stealth evasions
	DriverRod DriverName = "rod"
)

// ParseDriverName validates a driver name from config or flags.
func ParseDriverName(name string) (DriverName, error) {
	switch DriverName(name) {
	case DriverPlaywright, "":
		return DriverPlaywright, nil
	case DriverRod:
		return DriverRod, nil
	}
	return "", fmt.Errorf("unknown browser driver %q (must be %q or %q)", name, DriverPlaywright, DriverRod)
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options configures every browser a Renderer launches. It is a plain value:
// a Renderer copies it at construction and never changes it. The zero value
// renders headless with the default delays.
type Options struct {
	// Driver selects the automation backend
	Driver DriverName

	// Headful shows a browser window, for debugging
	Headful bool

	// UserAgent is sent instead of the automation default
	UserAgent string

	// Viewport sets the window size used for layout
	Viewport Viewport

	// SettleDelay is waited after navigation before the first measurement.
	// Zero means DefaultSettleDelay; NoSettleDelay skips the wait.
	SettleDelay time.Duration

	// ScrollInterval is waited after each scroll before re-measuring
	ScrollInterval time.Duration

	// MaxScrollIterations bounds the convergence loop
	MaxScrollIterations int

	// NavigationTimeout bounds the initial page load
	NavigationTimeout time.Duration
}

// Default values for rendering
const (
	DefaultUserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultViewportWidth       = 1280
	DefaultViewportHeight      = 720
	DefaultSettleDelay         = 3 * time.Second
	DefaultScrollInterval      = 1 * time.Second
	DefaultMaxScrollIterations = 20
	DefaultNavigationTimeout   = 30 * time.Second
)

// NoSettleDelay starts measuring right after navigation.
const NoSettleDelay time.Duration = -1

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Driver:              DriverPlaywright,
		UserAgent:           DefaultUserAgent,
		Viewport:            Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		SettleDelay:         DefaultSettleDelay,
		ScrollInterval:      DefaultScrollInterval,
		MaxScrollIterations: DefaultMaxScrollIterations,
		NavigationTimeout:   DefaultNavigationTimeout,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Driver == "" {
		o.Driver = def.Driver
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = def.Viewport
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = def.SettleDelay
	} else if o.SettleDelay < 0 {
		o.SettleDelay = NoSettleDelay
	}
	if o.ScrollInterval <= 0 {
		o.ScrollInterval = def.ScrollInterval
	}
	if o.MaxScrollIterations <= 0 {
		o.MaxScrollIterations = def.MaxScrollIterations
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = def.NavigationTimeout
	}
	return o
}

// launchArgs are the Chromium switches for a quiet, non-interactive browser.
func launchArgs() []string {
	return []string{
		"--no-sandbox",
		"--disable-setuid-sandbox",
		"--disable-dev-shm-usage",
		"--disable-notifications",
		"--disable-infobars",
		"--disable-extensions",
		"--disable-popup-blocking",
		"--disable-blink-features=AutomationControlled",
		"--mute-audio",
	}
}

// Page is a loaded page as seen by the convergence loop.
type Page interface {
	// ScrollHeight returns the current scrollable height of the document
	ScrollHeight(ctx context.Context) (int, error)

	// ScrollToBottom scrolls the viewport to the end of the document
	ScrollToBottom(ctx context.Context) error

	// HTML serializes the current document
	HTML(ctx context.Context) (string, error)

	// Close releases the page and the browser that owns it
	Close() error
}

// Driver launches an isolated browser and opens one page in it.
type Driver interface {
	// Name identifies the backend in logs
	Name() DriverName

	// Open launches a browser configured by opts and navigates to target.
	// On error everything it launched has already been released. On success
	// the caller owns the page and must Close it.
	Open(ctx context.Context, target *url.URL, opts Options) (Page, error)
}

// NewDriver returns the driver registered under name.
func NewDriver(name DriverName) (Driver, error) {
	switch name {
	case DriverPlaywright, "":
		return NewPlaywrightDriver(), nil
	case DriverRod:
		return NewRodDriver(), nil
	}
	return nil, fmt.Errorf("unknown browser driver %q", name)
}

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/pagechat/pkg/browser"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"
)

// BrowserSection holds the renderer settings and the host deny-list.
type BrowserSection struct {
	Driver              string
	Headless            bool
	UserAgent           string
	SettleDelay         time.Duration
	ScrollInterval      time.Duration
	MaxScrollIterations int
	NavigationTimeout   time.Duration
	BlockedHosts        []string
	mu                  sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Headless browser used to render pages, how long to wait for dynamic content, and hosts that may never be opened."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocked := make([]interface{}, len(s.BlockedHosts))
	for i, host := range s.BlockedHosts {
		blocked[i] = host
	}

	return map[string]interface{}{
		"driver":                s.Driver,
		"headless":              s.Headless,
		"user_agent":            s.UserAgent,
		"settle_delay":          s.SettleDelay.String(),
		"scroll_interval":       s.ScrollInterval.String(),
		"max_scroll_iterations": s.MaxScrollIterations,
		"navigation_timeout":    s.NavigationTimeout.String(),
		"blocked_hosts":         blocked,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if driver, ok := data["driver"].(string); ok {
		s.Driver = driver
	}
	if headless, ok := data["headless"].(bool); ok {
		s.Headless = headless
	}
	if userAgent, ok := data["user_agent"].(string); ok {
		s.UserAgent = userAgent
	}

	durations := map[string]*time.Duration{
		"settle_delay":       &s.SettleDelay,
		"scroll_interval":    &s.ScrollInterval,
		"navigation_timeout": &s.NavigationTimeout,
	}
	for key, target := range durations {
		raw, ok := data[key]
		if !ok {
			continue
		}
		d, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*target = d
	}

	if raw, ok := data["max_scroll_iterations"]; ok {
		n, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("max_scroll_iterations must be an integer, got %v", raw)
		}
		s.MaxScrollIterations = n
	}

	if raw, ok := data["blocked_hosts"]; ok {
		hosts, ok := stringSlice(raw)
		if !ok {
			return fmt.Errorf("blocked_hosts must be a list of strings")
		}
		s.BlockedHosts = hosts
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := browser.ParseDriverName(s.Driver); err != nil {
		return err
	}
	if s.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	if s.ScrollInterval <= 0 {
		return fmt.Errorf("scroll_interval must be positive")
	}
	if s.MaxScrollIterations < 1 {
		return fmt.Errorf("max_scroll_iterations must be at least 1")
	}
	if s.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	if _, err := browser.NewHostPolicy(s.BlockedHosts); err != nil {
		return err
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := browser.DefaultOptions()
	s.Driver = string(def.Driver)
	s.Headless = !def.Headful
	s.UserAgent = def.UserAgent
	s.SettleDelay = def.SettleDelay
	s.ScrollInterval = def.ScrollInterval
	s.MaxScrollIterations = def.MaxScrollIterations
	s.NavigationTimeout = def.NavigationTimeout
	s.BlockedHosts = nil
}

// Options converts the section into renderer options.
func (s *BrowserSection) Options() (browser.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	driver, err := browser.ParseDriverName(s.Driver)
	if err != nil {
		return browser.Options{}, err
	}

	opts := browser.DefaultOptions()
	opts.Driver = driver
	opts.Headful = !s.Headless
	if s.UserAgent != "" {
		opts.UserAgent = s.UserAgent
	}
	opts.SettleDelay = s.SettleDelay
	if s.SettleDelay == 0 {
		opts.SettleDelay = browser.NoSettleDelay
	}
	opts.ScrollInterval = s.ScrollInterval
	opts.MaxScrollIterations = s.MaxScrollIterations
	opts.NavigationTimeout = s.NavigationTimeout
	return opts, nil
}

// HostPolicy compiles the blocked host patterns.
func (s *BrowserSection) HostPolicy() (*browser.HostPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return browser.NewHostPolicy(s.BlockedHosts)
}

// SetDriver sets the driver name.
func (s *BrowserSection) SetDriver(driver string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Driver = driver
}

// SetHeadless toggles headless mode.
func (s *BrowserSection) SetHeadless(headless bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Headless = headless
}

// Package main provides pagechat, a terminal assistant that answers questions
// about the content of any website.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/pagechat/pkg/agent"
	"github.com/entrhq/pagechat/pkg/browser"
	appconfig "github.com/entrhq/pagechat/pkg/config"
	"github.com/entrhq/pagechat/pkg/executor/cli"
	"github.com/entrhq/pagechat/pkg/extract"
	"github.com/entrhq/pagechat/pkg/llm/openai"
	"github.com/entrhq/pagechat/pkg/llm/tokenizer"
	"github.com/entrhq/pagechat/pkg/logging"
)

const (
	version      = "0.1.0"              // Version of pagechat
	defaultModel = openai.DefaultModel // Default model to use
)

// Config holds the application configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	URL         string
	ConfigPath  string
	Driver      string
	Headful     bool
	LogLevel    string
	Plain       bool
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("pagechat v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil && !errors.Is(runErr, context.Canceled) {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&config.Model, "model", defaultModel, "LLM model to use")
	flag.StringVar(&config.URL, "url", "", "Website to open at startup")
	flag.StringVar(&config.ConfigPath, "config", "", "Config file, .json or .yaml (default ~/.pagechat/config.json)")
	flag.StringVar(&config.Driver, "driver", "", "Browser driver: playwright or rod (overrides config)")
	flag.BoolVar(&config.Headful, "headful", false, "Show the browser window while rendering")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log file level: debug, info, warn or error")
	flag.BoolVar(&config.Plain, "plain", false, "Disable colors in the terminal")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagechat - chat with any website\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagechat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pagechat\n")
		fmt.Fprintf(os.Stderr, "  pagechat -url https://go.dev/doc/\n")
		fmt.Fprintf(os.Stderr, "  pagechat -driver rod -headful\n")
		fmt.Fprintf(os.Stderr, "  pagechat -base-url http://localhost:11434/v1 -model llama3.1\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.Driver != "" {
		if _, err := browser.ParseDriverName(c.Driver); err != nil {
			return err
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// run wires configuration, renderer, extractor and provider into the REPL
func run(ctx context.Context, config *Config) error {
	level, _ := logging.ParseLevel(config.LogLevel)
	logging.SetLevel(level)

	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	stdin := bufio.NewReader(os.Stdin)

	provider, err := appconfig.BuildProvider(config.Model, config.BaseURL, config.APIKey, defaultModel)
	if errors.Is(err, appconfig.ErrMissingAPIKey) {
		key, promptErr := promptAPIKey(stdin)
		if promptErr != nil {
			return promptErr
		}
		provider, err = appconfig.BuildProvider(config.Model, config.BaseURL, key, defaultModel)
	}
	if err != nil {
		return err
	}

	browserSection := appconfig.GetBrowser()
	if config.Driver != "" {
		browserSection.SetDriver(config.Driver)
	}
	if config.Headful {
		browserSection.SetHeadless(false)
	}

	opts, err := browserSection.Options()
	if err != nil {
		return fmt.Errorf("invalid browser configuration: %w", err)
	}
	policy, err := browserSection.HostPolicy()
	if err != nil {
		return fmt.Errorf("invalid browser configuration: %w", err)
	}

	driver, err := browser.NewDriver(opts.Driver)
	if err != nil {
		return err
	}
	renderer := browser.NewRenderer(driver, opts)

	sessionSection := appconfig.GetSession()
	extractor := extract.NewExtractor(extract.WithMaxChars(sessionSection.GetMaxChars()))

	sessionOpts := []agent.SessionOption{
		agent.WithMaxTurns(sessionSection.GetMaxTurns()),
		agent.WithTokenizer(tokenizer.LazyForModel(provider.GetModel())),
	}

	executor := cli.NewExecutor(renderer, extractor, provider,
		cli.WithReader(stdin),
		cli.WithHostPolicy(policy),
		cli.WithSessionOptions(sessionOpts...),
		cli.WithInitialURL(config.URL),
		cli.WithPlainOutput(config.Plain),
	)

	return executor.Run(ctx)
}

// promptAPIKey asks for the key on the terminal when no other source has one
func promptAPIKey(stdin *bufio.Reader) (string, error) {
	fmt.Print("Please enter your OpenAI API key: ")
	line, err := stdin.ReadString('\n')
	key := strings.TrimSpace(line)
	if key == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return "", appconfig.ErrMissingAPIKey
	}
	return key, nil
}

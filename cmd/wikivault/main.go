package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/bbolt"
	"github.com/wikivault/wikivault/crawl"
	"github.com/wikivault/wikivault/goquery"
	"github.com/wikivault/wikivault/htmltomarkdown"
	"github.com/wikivault/wikivault/resty"
	"github.com/wikivault/wikivault/rod"
	wvslog "github.com/wikivault/wikivault/slog"
	"github.com/wikivault/wikivault/sqlite"
	"github.com/wikivault/wikivault/trafilatura"
	"github.com/wikivault/wikivault/viper"
)

// ErrStopped reports a crawl interrupted by SIGINT or SIGTERM. The process
// exits with a distinct code so wrappers can tell an interrupted run (which
// left a resumable checkpoint behind) from a failed one.
var ErrStopped = errors.New("crawl interrupted")

const exitStopped = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, ErrStopped) {
			os.Exit(exitStopped)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the document store.
	DB *sqlite.DB

	// Bolt-backed checkpoint store.
	Checkpoints *bbolt.CheckpointService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	if m.Checkpoints != nil {
		err = m.Checkpoints.Close()
	}
	if m.DB != nil {
		if derr := m.DB.Close(); derr != nil {
			err = derr
		}
	}
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wikivault"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'wikivault --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	// Load configuration
	configPath := cli.Config
	if path := os.Getenv("WIKIVAULT_CONFIG"); path != "" && configPath == "wikivault.yaml" {
		configPath = path
	}
	cfg, err := viper.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: pass --config or set WIKIVAULT_CONFIG to point at a config file\n")
		return err
	}
	deps.Config = cfg

	// Open document database
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." && cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	m.DB = sqlite.NewDB(cfg.DatabasePath)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", cfg.DatabasePath, err)
	}
	defer m.Close()

	// Open checkpoint store
	m.Checkpoints, err = bbolt.Open(cfg.CheckpointPath, cfg.CrawlerID)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store at %q: %w", cfg.CheckpointPath, err)
	}

	// Wire core services into dependencies
	deps.Documents = sqlite.NewDocumentService(m.DB)
	deps.Checkpoints = m.Checkpoints
	deps.Extractor = trafilatura.NewExtractor()
	deps.Converter = htmltomarkdown.NewConverter()

	// Wire command-specific dependencies based on command
	if cmd == "crawl" {
		logger := newLogger(stderr, cli.Crawl.Verbose)
		deps.Documents = wvslog.NewLoggingDocumentService(deps.Documents, logger)
		deps.Checkpoints = wvslog.NewLoggingCheckpointService(m.Checkpoints, logger)

		pacer := crawl.NewPacer(cfg.Delay())

		engine := &crawl.Engine{
			Documents:   deps.Documents,
			Checkpoints: deps.Checkpoints,
			Limiter:     pacer,
			Detector: &crawl.ChangeDetector{
				Documents:    deps.Documents,
				SourceDomain: cfg.SourceDomain,
				MaxAge:       cfg.RecrawlAge(),
			},
			StartURL:     cfg.StartURL,
			SourceName:   cfg.SourceName,
			SourceDomain: cfg.SourceDomain,
			Concurrency:  cfg.Concurrency,
		}

		if cfg.UseAPI {
			engine.Lister = resty.NewClient(cfg.APIEndpoint, cfg.SourceDomain,
				resty.WithClientTimeout(cfg.Timeout()),
				resty.WithWhitelist(cfg.DomainWhitelist),
				resty.WithPageLimit(cfg.APIPageLimit),
				resty.WithLimiter(pacer),
			)
		} else {
			engine.Links = &goquery.LinkExtractor{Whitelist: cfg.DomainWhitelist}
		}

		fetcher, err := newFetcher(cfg)
		if err != nil {
			if cfg.FetchMethod == wikivault.FetchBrowser {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for fetch_method: browser")
			}
			return fmt.Errorf("failed to create fetcher: %w", err)
		}
		defer fetcher.Close()

		engine.Fetcher = wvslog.NewLoggingFetcher(fetcher, logger)
		deps.Engine = engine
	}

	return kongCtx.Run(deps)
}

// newFetcher builds the page fetcher selected by fetch_method.
func newFetcher(cfg *wikivault.Config) (wikivault.Fetcher, error) {
	switch cfg.FetchMethod {
	case wikivault.FetchBrowser:
		var managerOpts []rod.ManagerOption
		if !cfg.Browser.Headless {
			managerOpts = append(managerOpts, rod.WithHeadful())
		}
		manager, err := rod.NewBrowserManager(managerOpts...)
		if err != nil {
			return nil, err
		}
		return rod.NewFetcher(manager,
			rod.WithBrowserConfig(cfg.Browser),
			rod.WithUserAgent(cfg.UserAgent),
			rod.WithMaxRetries(cfg.MaxRetries),
			rod.WithCaptchaWait(cfg.CaptchaWait()),
		), nil
	default:
		return resty.NewFetcher(
			resty.WithTimeout(cfg.Timeout()),
			resty.WithUserAgent(cfg.UserAgent),
			resty.WithMaxRetries(cfg.MaxRetries),
			resty.WithCaptchaWait(cfg.CaptchaWait()),
		), nil
	}
}

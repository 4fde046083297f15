package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/bundle"
	"github.com/fwojciec/dashdoc/crawl"
	"github.com/fwojciec/dashdoc/fs"
	"github.com/fwojciec/dashdoc/goquery"
	dashhttp "github.com/fwojciec/dashdoc/http"
	"github.com/fwojciec/dashdoc/plist"
	"github.com/fwojciec/dashdoc/rod"
	dashslog "github.com/fwojciec/dashdoc/slog"
	"github.com/fwojciec/dashdoc/viper"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Catalog overrides the configured catalog when set.
	Catalog *dashdoc.Catalog

	// Transports used instead of the network when set, for end-to-end
	// testing. They are decorated like the real ones.
	Tocs   dashdoc.Fetcher
	Pages  dashdoc.Fetcher
	Assets dashdoc.BinaryFetcher

	// RetryDelays overrides crawl.DefaultRetryDelays when set.
	RetryDelays []time.Duration

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close releases the transports opened by Run.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dashdoc"),
		kong.Description("Build offline Dash docsets from Microsoft Learn documentation"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := fmt.Errorf("no command specified. Run 'dashdoc --help' to see available commands")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	cfg, err := viper.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", dashdoc.ErrorMessage(err))
		return err
	}
	deps.Catalog = cfg.Catalog()
	if m.Catalog != nil {
		deps.Catalog = m.Catalog
	}

	if strings.HasPrefix(kongCtx.Command(), "build") {
		defer m.Close()
		builder, err := m.newBuilder(&cli.Build, cfg, deps.Logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", errorMessage(err))
			return err
		}
		deps.Builder = builder
	}

	return kongCtx.Run(deps)
}

// newBuilder wires the transports, the crawl engine, and the bundle
// assembler for the build command. Flags take precedence over the
// configuration file.
func (m *Main) newBuilder(c *BuildCmd, cfg *viper.Config, logger *slog.Logger) (*Builder, error) {
	output := c.Output
	if output == "" {
		output = cfg.Output
	}
	cacheDir := c.CacheDir
	if cacheDir == "" {
		cacheDir = cfg.CacheDir
	}
	rate := c.Rate
	if rate == 0 {
		rate = cfg.Rate
	}

	web := dashhttp.NewFetcher(dashhttp.WithTimeout(c.Timeout))
	m.closers = append(m.closers, web.Close)

	tocs, pages, assets := m.Tocs, m.Pages, m.Assets
	if tocs == nil {
		tocs = web
	}
	if assets == nil {
		assets = web
	}
	if pages == nil {
		pages = web
		if c.Browser {
			browser, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout), rod.WithLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
			}
			m.closers = append(m.closers, browser.Close)
			pages = browser
		}
	}

	var limiter dashdoc.DomainLimiter
	if rate > 0 {
		limiter = crawl.NewDomainLimiter(rate)
	}
	decorate := func(f dashdoc.Fetcher) dashdoc.Fetcher {
		if limiter != nil {
			f = &crawl.LimitedFetcher{Fetcher: f, Limiter: limiter}
		}
		f = crawl.NewRetryFetcher(f, m.RetryDelays, logger)
		return dashslog.NewLoggingFetcher(f, logger)
	}
	if limiter != nil {
		assets = &crawl.LimitedBinaryFetcher{Fetcher: assets, Limiter: limiter}
	}
	assets = dashslog.NewLoggingBinaryFetcher(crawl.NewRetryBinaryFetcher(assets, m.RetryDelays, logger), logger)

	tocs = decorate(tocs)
	if cacheDir != "" {
		tocs = fs.NewCachingFetcher(tocs, cacheDir)
	}

	engine := &crawl.Engine{
		Tocs:     tocs,
		Pages:    decorate(pages),
		Assets:   assets,
		Rewriter: goquery.NewRewriter(dashdoc.ChromeRules),
		Progress: progressLogger(logger),
	}
	return &Builder{
		Engine:    engine,
		Assembler: bundle.NewAssembler(plist.NewEncoder(), logger),
		Output:    output,
		Jobs:      c.Jobs,
		Logger:    logger,
	}, nil
}

// progressLogger reports crawl progress through the logger.
func progressLogger(logger *slog.Logger) crawl.ProgressFunc {
	return func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressTocFetched:
			logger.Info("toc", "source", ev.Source, "url", ev.URL, "queued", ev.Queued)
		case crawl.ProgressPageFetched:
			logger.Debug("page", "source", ev.Source, "url", ev.URL)
		case crawl.ProgressPageReused:
			logger.Debug("page reused", "source", ev.Source, "url", ev.URL)
		case crawl.ProgressFinished:
			logger.Info("crawled", "source", ev.Source)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/civiccrawl/govharvest/internal/cache"
	"github.com/civiccrawl/govharvest/internal/config"
	"github.com/civiccrawl/govharvest/internal/crawl"
	"github.com/civiccrawl/govharvest/internal/discover"
	"github.com/civiccrawl/govharvest/internal/extract"
	"github.com/civiccrawl/govharvest/internal/fetch"
	"github.com/civiccrawl/govharvest/internal/frontier"
	"github.com/civiccrawl/govharvest/internal/log"
	"github.com/civiccrawl/govharvest/internal/model"
	"github.com/civiccrawl/govharvest/internal/pipeline"
	"github.com/civiccrawl/govharvest/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl government websites and extract contact information",
		Long: `Crawl fetches government web pages starting from seed URLs, follows
links within scope, and extracts public contact information:
- Email addresses, including obfuscated forms ("clerk [at] example [dot] gov")
- Phone numbers in common US formats
- Postal addresses
- Newly discovered government sites for seed list curation

Crawling stays within the seed's registrable domain plus recognized
government domains (.gov, .mil, state and locality .us patterns, and
domains on the seed list).

Examples:
  # Crawl a single site
  govharvest crawl https://www.example.gov

  # Crawl every site on a seed list CSV (domain,level,name,state_code)
  govharvest crawl --seed-file states.csv

  # Deeper crawl with a larger page budget
  govharvest crawl -d 3 -p 2000 https://www.example.gov

  # Output JSON report to a file
  govharvest crawl --json -o report.json https://www.example.gov

  # Export contacts as CSV alongside the terminal report
  govharvest crawl --csv contacts.csv https://www.example.gov

Configuration file (.govharvest) example:
  sites:
    portal.example.gov:
      delay: 5s
      headers:
        Accept-Language: "en-US"
    slow.county.example.us:
      delay: 10s
      max_depth: 1`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from a seed (0 = seed pages only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per run")
	cmd.Flags().Duration("max-elapsed", config.DefaultMaxElapsed,
		"Wall-clock budget for the run (0 = unlimited)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of concurrent crawl workers")

	// Politeness flags
	cmd.Flags().Duration("delay", config.DefaultPerHostDelay,
		"Minimum delay between requests to the same host")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retry limit for transient fetch failures")
	cmd.Flags().Duration("backoff", config.DefaultBackoffBase,
		"Base duration for exponential retry backoff")
	cmd.Flags().Bool("no-robots", false,
		"Skip robots.txt checks (not recommended)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for outbound requests")

	// Cache flags
	cmd.Flags().Bool("no-cache", false,
		"Disable the persistent response cache")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Freshness window for cached responses across runs")
	cmd.Flags().String("cache-dir", config.DefaultCacheDir(),
		"Directory for the cache database")

	// Fetch strategy flags
	cmd.Flags().Bool("render", false,
		"Enable headless-browser rendering for script-only pages")

	// Seed list and configuration file
	cmd.Flags().String("seed-file", "",
		"Seed list CSV with columns domain,level,name,state_code")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .govharvest in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("csv", "",
		"Also write contact records to the specified CSV file")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxElapsed, err = cmd.Flags().GetDuration("max-elapsed")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.PerHostDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.BackoffBase, err = cmd.Flags().GetDuration("backoff")
	if err != nil {
		return nil, err
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobots = !noRobots

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	cfg.CacheEnabled = !noCache

	cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	cfg.CacheDir, err = cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}

	cfg.Render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.SeedFile, err = cmd.Flags().GetString("seed-file")
	if err != nil {
		return nil, err
	}

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := configFlag != ""
	configPath := config.FindConfigFile(configFlag)

	if configPath != "" {
		cfg.SiteOverrides, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", configFlag)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteOverrides = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVFile, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (seed URLs)
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seeds, seedEntries, err := assembleSeeds(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"seeds", len(seeds),
		"maxDepth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"concurrency", cfg.Concurrency,
		"cacheEnabled", cfg.CacheEnabled,
	)

	// Open the response cache if enabled
	var store *cache.Store
	if cfg.CacheEnabled {
		store, err = cache.Open(cfg.CacheDir, cache.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer store.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("cache opened", "dir", cfg.CacheDir)
	}

	coordinator := buildCoordinator(cfg, store, seedEntries, logger)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(coordinator, seeds),
		pipeline.NewDeduplicateStep(),
	)

	fmt.Printf("Crawling %d seed(s)...\n", len(seeds))
	startTime := time.Now()

	crawlReport := model.NewCrawlReport(seeds)
	if err := p.Execute(ctx, crawlReport); err != nil {
		// Cancellation still yields a partial report worth printing.
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("crawl cancelled, reporting partial results")
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n", elapsed.Round(time.Millisecond))

	if err := outputReport(cfg, crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.CSVFile != "" {
		if err := outputCSV(cfg.CSVFile, crawlReport); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		logger.Info("CSV export written", "path", cfg.CSVFile)
	}

	return nil
}

// assembleSeeds merges positional seed URLs with the seed list file.
// Seed list entries double as the discoverer's trusted allow-list.
func assembleSeeds(cfg *config.Config) ([]string, []config.SeedEntry, error) {
	seeds := make([]string, 0, len(cfg.Seeds))
	seeds = append(seeds, cfg.Seeds...)

	var entries []config.SeedEntry
	if cfg.SeedFile != "" {
		var err error
		entries, err = config.LoadSeedList(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			seeds = append(seeds, entry.URL())
		}
	}

	if len(seeds) == 0 {
		return nil, nil, errors.New("no seeds provided (specify seed URLs as arguments or use --seed-file)")
	}

	return seeds, entries, nil
}

// buildCoordinator wires the fetch, extract, and discover components
// into a crawl coordinator according to the configuration.
func buildCoordinator(cfg *config.Config, store *cache.Store, seedEntries []config.SeedEntry, logger *slog.Logger) *crawl.Coordinator {
	client := fetch.NewHTTPClient(cfg.Timeout)

	limiter := fetch.NewHostLimiter(cfg.PerHostDelay)
	strategy := fetch.NewStaticStrategy(client, cfg.UserAgent, nil)
	frontierOpts := []frontier.Option{
		frontier.WithMaxDepth(cfg.MaxDepth),
		frontier.WithMaxPages(cfg.MaxPages),
		frontier.WithMaxElapsed(cfg.MaxElapsed),
	}

	// Apply per-site overrides from the configuration file.
	if cfg.SiteOverrides != nil {
		for host, site := range cfg.SiteOverrides.Sites {
			if site.Delay > 0 {
				limiter.SetHostDelay(host, site.Delay)
			}
			if len(site.Headers) > 0 {
				strategy.SetHostHeaders(host, site.Headers)
			}
			if site.MaxDepth > 0 {
				frontierOpts = append(frontierOpts, frontier.WithHostMaxDepth(host, site.MaxDepth))
			}
		}
	}

	fetchOpts := []fetch.Option{
		fetch.WithLimiter(limiter),
		fetch.WithRetries(cfg.MaxRetries, cfg.BackoffBase),
		fetch.WithLogger(logger),
	}
	if store != nil {
		fetchOpts = append(fetchOpts, fetch.WithCache(store, cfg.CacheTTL))
	}
	if cfg.RespectRobots {
		fetchOpts = append(fetchOpts, fetch.WithRobots(fetch.NewRobotsGate(client, cfg.UserAgent)))
	}
	if cfg.Render {
		fetchOpts = append(fetchOpts, fetch.WithRenderFallback(fetch.NewRenderStrategy(cfg.UserAgent)))
	}

	fetcher := fetch.New(strategy, fetchOpts...)

	extractor := extract.New()
	discoverer := discover.New(discover.NewClassifier(seedEntries))

	return crawl.New(fetcher, extractor, discoverer,
		crawl.WithConcurrency(cfg.Concurrency),
		crawl.WithFrontierOptions(frontierOpts...),
		crawl.WithLogger(logger),
	)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	output, closeOutput, err := openOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err = writer.Write(crawlReport)
	return err
}

// outputCSV writes the flat contact table to the given path.
func outputCSV(path string, crawlReport *model.CrawlReport) error {
	output, closeOutput, err := openOutput(path)
	if err != nil {
		return err
	}
	defer closeOutput()

	_, err = report.NewCSVWriter(output).Write(crawlReport)
	return err
}

// openOutput opens the report destination: the given file path, or
// stdout when the path is empty. The returned close function is a
// no-op for stdout.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// cmd/listscrapexter/run.go
package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/valpere/ListScrapexter/internal/browser"
	"github.com/valpere/ListScrapexter/internal/config"
	"github.com/valpere/ListScrapexter/internal/monitoring"
	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/scraper"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// runOptions are the command-line overrides of the run command.
type runOptions struct {
	configFile string
	htmlFiles  []string
	outputDir  string
	format     string
	verbose    bool
}

func newRunCmd(verbose *bool) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "Export a contact list",
		Long: `Export a contact list. Without a configuration file the built-in user and
system registries are used with default settings; --html then names the pages.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  listscrapexter run list.yaml
  listscrapexter run list.yaml --output-dir exports --format xlsx
  listscrapexter run --html page1.html --html page2.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.configFile = args[0]
			}
			opts.verbose = *verbose
			_, err := runExport(cmd.Context(), opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringSliceVar(&opts.htmlFiles, "html", nil, "read saved HTML pages instead of a live browser (repeatable, in page order)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory receiving the export")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "export format: csv, xlsx, json or sqlite")
	return cmd
}

// loadRunConfig loads the configuration and applies command-line overrides.
func loadRunConfig(opts runOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configFile != "" {
		loaded, err := config.LoadFromFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	if len(opts.htmlFiles) > 0 {
		cfg.Target.HTMLFiles = opts.htmlFiles
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Target.URL == "" && len(cfg.Target.HTMLFiles) == 0 {
		return nil, fmt.Errorf("%w: set target.url or pass --html", config.ErrInvalidConfig)
	}
	return cfg, nil
}

// runExport performs one export and prints a summary to out.
func runExport(ctx context.Context, opts runOptions, out io.Writer) (*scraper.ExportResult, error) {
	cfg, err := loadRunConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	primary, fallback, err := cfg.SelectRegistries()
	if err != nil {
		return nil, err
	}

	collectorOpts, err := cfg.CollectorOptions()
	if err != nil {
		return nil, err
	}
	metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{})
	collectorOpts.Recorder = metrics

	renderer, err := cfg.OutputManager()
	if err != nil {
		return nil, err
	}
	namer, err := cfg.Namer()
	if err != nil {
		return nil, err
	}

	src, err := openSession(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer src.close()

	collector := scraper.NewCollector(src.session, collectorOpts, logger)
	exporter := scraper.NewExporter(collector, renderer, namer, src.downloader, logger)

	result, err := exporter.Export(ctx, primary, fallback)

	if cfg.Metrics.Textfile != "" {
		if werr := metrics.WriteToTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warnf("%v", werr)
		}
	}
	if err != nil {
		return nil, err
	}

	printSummary(out, result, filepath.Join(cfg.Output.Dir, result.Filename), opts.verbose)
	if opts.verbose && src.client != nil {
		printBrowserStats(out, src.client.Stats())
	}
	return result, nil
}

// pageSource is where pages come from and where the export goes.
type pageSource struct {
	session    scraper.Session
	downloader output.Downloader
	// client is the live browser, nil for saved HTML files.
	client *browser.ChromeClient
	close  func()
}

// openSession picks the page source and the matching downloader. HTML files
// are read offline and always exported to a file; otherwise Chrome is started
// (with retries) and the list opened.
func openSession(ctx context.Context, cfg *config.Config, logger utils.Logger) (*pageSource, error) {
	if len(cfg.Target.HTMLFiles) > 0 {
		session, err := scraper.LoadStaticSession(cfg.Target.URL, cfg.Target.HTMLFiles...)
		if err != nil {
			return nil, err
		}
		logger.Infof("reading %d saved page(s)", len(cfg.Target.HTMLFiles))
		return &pageSource{
			session:    session,
			downloader: output.NewFileDownloader(cfg.Output.Dir),
			close:      func() {},
		}, nil
	}

	browserOpts, err := cfg.BrowserOptions()
	if err != nil {
		return nil, err
	}

	var client *browser.ChromeClient
	err = errorService.ExecuteWithRetry(ctx, func() error {
		var err error
		client, err = browser.NewChromeClient(browserOpts)
		return err
	}, "browser start")
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warnf("failed to close browser: %v", err)
		}
	}

	session := browser.NewSession(client, cfg.SessionConfig(), logger)
	err = errorService.ExecuteWithRetry(ctx, func() error {
		return session.Open(ctx)
	}, "list navigation")
	if err != nil {
		cleanup()
		return nil, err
	}

	var downloader output.Downloader = output.NewFileDownloader(cfg.Output.Dir)
	if cfg.Output.Download == config.DownloadBrowser {
		timeout, err := cfg.DownloadTimeout()
		if err != nil {
			cleanup()
			return nil, err
		}
		downloader = browser.NewDownloader(client, cfg.Output.Dir, timeout)
	}
	return &pageSource{session: session, downloader: downloader, client: client, close: cleanup}, nil
}

func printSummary(out io.Writer, result *scraper.ExportResult, path string, verbose bool) {
	p := message.NewPrinter(language.English)

	if result.Interrupted != nil {
		p.Fprintf(out, "⚠ Pagination stopped early, exporting the rows gathered so far: %v\n", result.Interrupted)
	}
	p.Fprintf(out, "✓ Exported %d rows from %d page(s) to %s\n", result.Rows, result.Pages, path)

	if verbose {
		p.Fprintf(out, "  Registry: %s\n", result.Registry)
		p.Fprintf(out, "  Columns: %v\n", result.Columns)
		p.Fprintf(out, "  Format: %s (%d bytes)\n", result.Format, result.Bytes)
		p.Fprintf(out, "  Duration: %s\n", result.Duration)
	}
}

func printBrowserStats(out io.Writer, stats browser.BrowserStats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(out, "  Browser: %d page load(s), avg %s, %d click(s), %d download(s), %d error(s)\n",
		stats.PagesLoaded, stats.AverageLoadTime, stats.Clicks, stats.Downloads, stats.Errors)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	frontier "github.com/Kazu-INo/lib-doc-crawler/pkg"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/config"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/crawler"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/logger"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/process"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/scope"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/storage"
)

// NewRootCmd creates the root command. The crawler has a single
// invocation surface: one crawl per run, no subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lib-doc-crawler <url>",
		Short: "Crawl a documentation site into one Markdown file",
		Long: `lib-doc-crawler walks a documentation site starting at the given URL,
staying within the site's domain and documentation pages, honoring its
robots.txt rules and crawl delay, and appends the extracted text of
every page to a single Markdown file.

Examples:
  # Crawl a Read the Docs style site into ./output/crawled_content.md
  lib-doc-crawler https://docs.pola.rs/

  # Limit the crawl to 50 pages
  lib-doc-crawler --max-pages 50 https://docs.pola.rs/

  # One file per page instead of the aggregate file
  lib-doc-crawler --per-page --output-dir ./polars https://docs.pola.rs/

  # Record pages in Postgres instead of files
  lib-doc-crawler --dsn "postgres://localhost/docs?sslmode=disable" https://docs.pola.rs/`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}

	cmd.Flags().StringP("config", "c", "config.toml", "Path to a TOML config file")
	cmd.Flags().Int("max-pages", 0, "Maximum number of pages to crawl (0 = unbounded)")
	cmd.Flags().StringP("output-dir", "o", "output", "Directory for crawl output, created if absent")
	cmd.Flags().String("user-agent", "DocCrawler/1.0", "User-Agent presented to the server and robots.txt")
	cmd.Flags().Bool("per-page", false, "Write one file per page instead of the aggregate file")
	cmd.Flags().String("dsn", "", "Postgres DSN; when set, pages are stored in the database")

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCrawl wires config, logging, scope, robots gate, frontier, sink
// and traversal engine, then runs one crawl to completion. Setup
// failures are the only errors returned; page-level failures inside
// the crawl never change the exit code.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.InitLogger(cfg)

	seedURL := args[0]
	seed, err := process.Normalize(seedURL)
	if err != nil {
		return fmt.Errorf("invalid seed url %q: %w", seedURL, err)
	}

	sc, err := scope.New(seed)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Crawler.OutputDir, 0o755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	gate := process.LoadGate(seed, cfg.Crawler.UserAgent, robotsClient(cfg), cfg.Politeness.GetDelay())
	if !gate.Allowed(seed) {
		slog.Warn("seed url disallowed by robots.txt, nothing to crawl", slog.String("url", seed))
		return nil
	}

	f := frontier.New()
	f.Push(seed, seedURL, "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	c := crawler.New(cfg, sc, gate, f, store)
	c.Run(ctx)

	return nil
}

// loadConfig reads the TOML file (when present) and layers the CLI
// flags on top. A missing default config file is fine; a missing file
// the user asked for by flag is not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg = config.Default()
	} else if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	if cmd.Flags().Changed("max-pages") {
		cfg.Crawler.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Crawler.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.Crawler.UserAgent, _ = cmd.Flags().GetString("user-agent")
	}
	if cmd.Flags().Changed("per-page") {
		cfg.Crawler.PerPage, _ = cmd.Flags().GetBool("per-page")
	}
	if cmd.Flags().Changed("dsn") {
		cfg.DSN, _ = cmd.Flags().GetString("dsn")
	}

	return cfg, nil
}

// openStorage picks the sink for this crawl: Postgres when a DSN is
// configured, per-page files when requested, the aggregate Markdown
// file otherwise.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("could not open database: %w", err)
		}
		if err := storage.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return storage.NewPostgresStorage(db), nil
	}

	if cfg.Crawler.PerPage {
		return storage.NewFileStorage(cfg.Crawler.OutputDir)
	}

	return storage.NewMarkdownStorage(filepath.Join(cfg.Crawler.OutputDir, cfg.Crawler.OutputFile))
}

func robotsClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Politeness.GetRobotsTimeout()}
}

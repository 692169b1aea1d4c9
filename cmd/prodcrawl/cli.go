package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/explore"
	"github.com/fwojciec/prodcrawl/sqlite"
)

// CLI defines the command-line interface structure for Kong. Flags
// override the corresponding task configuration fields.
type CLI struct {
	TaskFile string  `arg:"" optional:"" help:"Path to a JSON task configuration file"`
	URL      string  `short:"u" help:"Starting URL (overrides task file)"`
	Delay    float64 `short:"d" default:"-1" help:"Politeness delay between page visits, in seconds"`
	MaxPages int     `short:"m" help:"Maximum number of pages to process"`
	Output   string  `short:"o" help:"Path for the final report"`
	Dynamic  bool    `help:"Enable dynamic-content handling (requires Chrome)"`
	Provider string  `name:"ai-provider" help:"AI provider: gemini, anthropic or openai"`
	Model    string  `name:"ai-model" help:"Override the provider's default model"`
	Database string  `name:"db" help:"SQLite path for crawl persistence"`
	Tree     bool    `help:"Print the explored website tree after the crawl"`
	Verbose  bool    `short:"v" help:"Enable debug logging"`
}

// Config builds the effective task configuration: the task file (when
// given) with flag overrides applied, defaults filled and validated.
func (cli *CLI) Config() (*prodcrawl.Config, error) {
	cfg := &prodcrawl.Config{}

	if cli.TaskFile != "" {
		data, err := os.ReadFile(cli.TaskFile)
		if err != nil {
			return nil, prodcrawl.Errorf(prodcrawl.ECONFIG, "reading task file: %v", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, prodcrawl.Errorf(prodcrawl.ECONFIG, "parsing task file %s: %v", cli.TaskFile, err)
		}
	}

	if cli.URL != "" {
		cfg.URL = cli.URL
	}
	if cli.Delay >= 0 {
		cfg.Delay = cli.Delay
	}
	if cli.MaxPages > 0 {
		cfg.MaxPages = cli.MaxPages
	}
	if cli.Output != "" {
		cfg.Output = cli.Output
	}
	if cli.Dynamic {
		cfg.EnableDynamicLoading = true
	}
	if cli.Provider != "" {
		cfg.AIProvider = cli.Provider
	}
	if cli.Model != "" {
		cfg.AIModel = cli.Model
	}
	if cli.Database != "" {
		cfg.Database = cli.Database
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the session logger writing to stderr so reports on
// stdout stay machine-readable.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// writeReports persists the crawl outputs: the raw and final JSON
// reports, plus a database record when persistence is configured. The
// three outputs are independent, so they are written concurrently.
func writeReports(ctx context.Context, cfg *prodcrawl.Config, result *explore.Result, startedAt time.Time, stdout io.Writer) error {
	finalPath := cfg.Output
	if finalPath == "" {
		finalPath = strings.ReplaceAll(result.Final.Domain, ".", "_") + "_products.json"
	}
	rawPath := rawReportPath(finalPath)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return writeJSON(rawPath, result.Raw)
	})
	g.Go(func() error {
		return writeJSON(finalPath, result.Final)
	})
	if cfg.Database != "" {
		g.Go(func() error {
			return persistCrawl(ctx, cfg.Database, result, startedAt)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Found %d products (%d raw) across %d pages\n",
		len(result.Final.Products), len(result.Raw.Products), result.Final.PagesProcessed)
	fmt.Fprintf(stdout, "Raw report: %s\nFinal report: %s\n", rawPath, finalPath)
	return nil
}

// rawReportPath derives the raw report path from the final report
// path: report.json becomes report_raw.json.
func rawReportPath(finalPath string) string {
	if ext := ".json"; strings.HasSuffix(finalPath, ext) {
		return strings.TrimSuffix(finalPath, ext) + "_raw" + ext
	}
	return finalPath + "_raw"
}

func writeJSON(path string, report prodcrawl.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// persistCrawl stores the final report in the configured SQLite
// database.
func persistCrawl(ctx context.Context, path string, result *explore.Result, startedAt time.Time) error {
	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return err
	}
	defer db.Close()

	record := &prodcrawl.CrawlRecord{
		BaseURL:        result.Final.BaseURL,
		Domain:         result.Final.Domain,
		PagesProcessed: result.Final.PagesProcessed,
		TotalNodes:     result.Final.TotalNodes,
		Products:       result.Final.Products,
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
	}
	return sqlite.NewCrawlService(db).CreateCrawl(ctx, record)
}

// Command prodcrawl discovers product description pages on a website
// using AI-guided crawling.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/anthropic"
	"github.com/fwojciec/prodcrawl/explore"
	"github.com/fwojciec/prodcrawl/gemini"
	"github.com/fwojciec/prodcrawl/goquery"
	"github.com/fwojciec/prodcrawl/htmltomarkdown"
	prodhttp "github.com/fwojciec/prodcrawl/http"
	"github.com/fwojciec/prodcrawl/openai"
	prodrod "github.com/fwojciec/prodcrawl/rod"
	prodslog "github.com/fwojciec/prodcrawl/slog"
	"github.com/fwojciec/prodcrawl/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("prodcrawl"),
		kong.Description("Discover product description pages on a website with AI-guided crawling"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := cli.Config()
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Verbose)

	scorer, err := newScorer(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	scorer = prodslog.NewLoggingScorer(scorer, logger)

	tree, err := prodcrawl.NewTree(cfg.URL)
	if err != nil {
		return err
	}

	extractor := goquery.NewExtractor()

	var fetcher prodcrawl.Fetcher = prodhttp.NewFetcher()
	fetcher = prodslog.NewLoggingFetcher(fetcher, logger)
	defer fetcher.Close()

	engine := &explore.Engine{
		Tree:      tree,
		Fetcher:   fetcher,
		Extractor: extractor,
		Scorer:    scorer,
		Content:   trafilatura.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Limiter:   explore.NewLimiter(cfg.Delay),
		Logger:    logger,
		MaxPages:  cfg.MaxPages,
	}

	if cfg.EnableDynamicLoading {
		manager, err := prodrod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for dynamic loading")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		loader := prodrod.NewLoader(manager, extractor,
			prodrod.WithLogger(logger),
			prodrod.WithSettleDelay(time.Duration(cfg.Delay*float64(time.Second))),
		)
		defer loader.Close()
		engine.Dynamic = loader
	}

	startedAt := time.Now().UTC()
	result, runErr := engine.Run(ctx)

	// The raw report is written even when the crawl aborted mid-way,
	// so a provider outage never discards discoveries already made.
	if result != nil {
		if err := writeReports(ctx, cfg, result, startedAt, stdout); err != nil {
			if runErr == nil {
				runErr = err
			} else {
				fmt.Fprintln(stderr, err)
			}
		}
	}

	if cli.Tree && result != nil {
		fmt.Fprintln(stdout, tree.Render())
	}

	return runErr
}

// newScorer constructs the AI provider selected by configuration.
func newScorer(ctx context.Context, cfg *prodcrawl.Config, stderr io.Writer) (prodcrawl.Scorer, error) {
	switch cfg.AIProvider {
	case prodcrawl.ProviderGemini:
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		var opts []gemini.Option
		if cfg.AIModel != "" {
			opts = append(opts, gemini.WithModel(cfg.AIModel))
		}
		return gemini.NewScorer(client, opts...), nil

	case prodcrawl.ProviderAnthropic:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		var opts []anthropic.Option
		if cfg.AIModel != "" {
			opts = append(opts, anthropic.WithModel(cfg.AIModel))
		}
		return anthropic.NewScorer(apiKey, opts...), nil

	case prodcrawl.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		var opts []openai.Option
		if cfg.AIModel != "" {
			opts = append(opts, openai.WithModel(cfg.AIModel))
		}
		return openai.NewScorer(apiKey, opts...), nil

	default:
		return nil, prodcrawl.Errorf(prodcrawl.ECONFIG, "unknown AI provider %q", cfg.AIProvider)
	}
}

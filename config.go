package prodcrawl

// Supported AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the task configuration for one crawl session, usually
// loaded from a JSON file by the CLI.
type Config struct {
	// URL is the starting page, typically the site homepage. Required.
	URL string `json:"url"`

	// Delay is the politeness delay between page visits, in seconds.
	Delay float64 `json:"delay"`

	// MaxPages bounds the number of pages processed.
	MaxPages int `json:"max_pages"`

	// Output is the path for the final (deduplicated) report. The raw
	// report is written alongside it with a "_raw" suffix. When empty
	// the CLI derives a name from the domain.
	Output string `json:"output"`

	// EnableDynamicLoading turns on the dynamic-content subsystem.
	// When false, dynamic-loading detection and exhaustion are skipped
	// entirely and no browser is launched.
	EnableDynamicLoading bool `json:"enable_dynamic_loading"`

	// AIProvider selects the scoring provider (gemini, anthropic,
	// openai). Defaults to gemini.
	AIProvider string `json:"ai_provider"`

	// AIModel overrides the provider's default model.
	AIModel string `json:"ai_model"`

	// Database is an optional SQLite path for crawl persistence.
	Database string `json:"database"`
}

// ApplyDefaults fills unset fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Delay == 0 {
		c.Delay = 1.0
	}
	if c.MaxPages == 0 {
		c.MaxPages = 50
	}
	if c.AIProvider == "" {
		c.AIProvider = ProviderGemini
	}
}

// Validate rejects configurations that would fail mid-crawl. It must
// pass before any crawling starts.
func (c *Config) Validate() error {
	if c.URL == "" {
		return Errorf(ECONFIG, "missing required 'url' in task configuration")
	}
	if _, err := hostOf(c.URL); err != nil {
		return Errorf(ECONFIG, "task URL: %s", ErrorMessage(err))
	}
	if c.Delay < 0 {
		return Errorf(ECONFIG, "delay must not be negative")
	}
	if c.MaxPages < 1 {
		return Errorf(ECONFIG, "max_pages must be at least 1")
	}
	switch c.AIProvider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		return Errorf(ECONFIG, "unknown AI provider %q", c.AIProvider)
	}
	return nil
}

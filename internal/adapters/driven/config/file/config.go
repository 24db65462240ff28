package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values, applied wherever the file and the
// environment are silent.
const (
	DefaultModel           = "llama-3.3-70b-versatile"
	DefaultRequestsPerMin  = 30
	DefaultTokensPerMin    = 6000
	DefaultDelayMinSeconds = 2
	DefaultDelayMaxSeconds = 5
)

// Config is the application configuration tree, mirroring the TOML
// file layout.
type Config struct {
	Groq    GroqConfig    `toml:"groq"`
	Scraper ScraperConfig `toml:"scraper"`
	Storage StorageConfig `toml:"storage"`
}

// GroqConfig configures the Groq chat service and its rate budgets.
type GroqConfig struct {
	// APIKey comes exclusively from the GROQ_API_KEY environment
	// variable and is never serialized.
	APIKey string `toml:"-"`

	// Model is the Groq model identifier.
	Model string `toml:"model"`

	// BaseURL overrides the API endpoint when non-empty. Used in tests.
	BaseURL string `toml:"base_url"`

	// RequestsPerMin and TokensPerMin are the sliding-window budgets.
	RequestsPerMin int `toml:"requests_per_min"`
	TokensPerMin   int `toml:"tokens_per_min"`
}

// ScraperConfig configures page fetching politeness.
type ScraperConfig struct {
	// DelayMinSeconds and DelayMaxSeconds bound the randomized delay
	// between consecutive review pages.
	DelayMinSeconds int `toml:"delay_min_seconds"`
	DelayMaxSeconds int `toml:"delay_max_seconds"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	// DataDir holds the SQLite database. Empty means the default
	// ~/.reviewpulse/data.
	DataDir string `toml:"data_dir"`
}

// Load reads configuration from configDir/config.toml, fills defaults
// and applies environment overrides. If configDir is empty, defaults
// to ~/.reviewpulse. A missing file is not an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".reviewpulse")
	}

	cfg := &Config{}

	data, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	switch {
	case os.IsNotExist(err):
		// No config file yet, run on defaults.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if cfg.Scraper.DelayMaxSeconds < cfg.Scraper.DelayMinSeconds {
		return nil, fmt.Errorf("scraper delay max %d below min %d",
			cfg.Scraper.DelayMaxSeconds, cfg.Scraper.DelayMinSeconds)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Groq.Model == "" {
		c.Groq.Model = DefaultModel
	}
	if c.Groq.RequestsPerMin == 0 {
		c.Groq.RequestsPerMin = DefaultRequestsPerMin
	}
	if c.Groq.TokensPerMin == 0 {
		c.Groq.TokensPerMin = DefaultTokensPerMin
	}
	if c.Scraper.DelayMinSeconds == 0 && c.Scraper.DelayMaxSeconds == 0 {
		c.Scraper.DelayMinSeconds = DefaultDelayMinSeconds
		c.Scraper.DelayMaxSeconds = DefaultDelayMaxSeconds
	}
}

func (c *Config) applyEnv() {
	c.Groq.APIKey = os.Getenv("GROQ_API_KEY")

	if v := envInt("GROQ_RPM"); v > 0 {
		c.Groq.RequestsPerMin = v
	}
	if v := envInt("GROQ_TPM"); v > 0 {
		c.Groq.TokensPerMin = v
	}
	if v := envInt("SCRAPER_DELAY_MIN"); v > 0 {
		c.Scraper.DelayMinSeconds = v
	}
	if v := envInt("SCRAPER_DELAY_MAX"); v > 0 {
		c.Scraper.DelayMaxSeconds = v
	}
}

// envInt parses an integer environment variable, returning zero when
// unset or malformed.
func envInt(name string) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/caldera-labs/reviewpulse/internal/logger"
)

// Default configuration values.
const (
	// DefaultDelayMin and DefaultDelayMax bound the politeness delay
	// between consecutive page fetches.
	DefaultDelayMin = 2 * time.Second
	DefaultDelayMax = 5 * time.Second

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestRate is the proactive throttle (~1 req/2s).
	DefaultRequestRate = 0.5
)

// defaultUserAgents is rotated across requests so consecutive fetches
// do not present an identical fingerprint.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:126.0) Gecko/20100101 Firefox/126.0",
}

// Config configures a page fetcher.
type Config struct {
	// DelayMin and DelayMax bound the randomized inter-page delay.
	// Both zero means the defaults; DelayMax < DelayMin is invalid.
	DelayMin time.Duration
	DelayMax time.Duration

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// RequestRate is the proactive throttle in requests per second
	// (default: 0.5).
	RequestRate float64

	// UserAgents overrides the rotation list when non-empty.
	UserAgents []string
}

// Client fetches and parses HTML pages with throttling and user-agent
// rotation.
type Client struct {
	http     *http.Client
	bucket   *rate.Limiter
	delayMin time.Duration
	delayMax time.Duration
	agents   []string
}

// NewClient creates a page fetcher.
func NewClient(cfg Config) (*Client, error) {
	if cfg.DelayMin == 0 && cfg.DelayMax == 0 {
		cfg.DelayMin = DefaultDelayMin
		cfg.DelayMax = DefaultDelayMax
	}
	if cfg.DelayMax < cfg.DelayMin {
		return nil, fmt.Errorf("fetch: delay max %v below min %v", cfg.DelayMax, cfg.DelayMin)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestRate == 0 {
		cfg.RequestRate = DefaultRequestRate
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		bucket:   rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
		delayMin: cfg.DelayMin,
		delayMax: cfg.DelayMax,
		agents:   agents,
	}, nil
}

// Get fetches a page and parses it into a goquery document.
func (c *Client) Get(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.bucket.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.agents[rand.Intn(len(c.agents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// Delay sleeps for a random duration in [DelayMin, DelayMax], or until
// ctx is cancelled. Called by scrapers between consecutive page fetches.
func (c *Client) Delay(ctx context.Context) error {
	d := c.delayMin
	if spread := c.delayMax - c.delayMin; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	logger.Debug("Politeness delay %.1fs", d.Seconds())

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ParsePrice extracts a price from text like "₹1,29,900" or "$399.99".
// Returns zero when no number is present.
func ParsePrice(text string) float64 {
	cleaned := strings.NewReplacer("₹", "", "$", "", ",", "").Replace(text)
	return ParseFloat(cleaned)
}

// ParseFloat extracts the first number from text. Returns zero when
// none is present.
func ParseFloat(text string) float64 {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseInt extracts the first integer from text, tolerating thousands
// separators. Returns zero when none is present.
func ParseInt(text string) int {
	match := numberPattern.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return v
}

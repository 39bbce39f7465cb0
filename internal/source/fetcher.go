package source

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

// ogDescriptionRegex pulls the og:description meta tag from a post page.
// Instagram embeds the caption there for public posts.
var ogDescriptionRegex = regexp.MustCompile(`<meta\s+property="og:description"\s+content="([^"]*)"`)

// captionQuoteRegex isolates the quoted caption inside og:description,
// which Instagram formats as: N likes, M comments - user on date: "caption".
var captionQuoteRegex = regexp.MustCompile(`(?s):\s*"(.*)"\s*$`)

// FetcherConfig bounds the caption fetcher's retry behavior. Zero values
// fall back to the defaults below.
type FetcherConfig struct {
	MaxAttempts int           // total attempts, default 3
	Backoff     time.Duration // initial backoff, doubled per attempt, default 2s
	Timeout     time.Duration // per-request timeout, default 15s
	UserAgent   string
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
	defaultTimeout     = 15 * time.Second
	defaultUserAgent   = "Mozilla/5.0 (compatible; ladle/1.0)"
)

// HTTPCaptionFetcher fetches Instagram captions by scraping the public
// post page's og:description meta tag. No login, public posts only.
type HTTPCaptionFetcher struct {
	client      *resty.Client
	maxAttempts int
	backoff     time.Duration
	logger      *log.Logger
}

// NewHTTPCaptionFetcher creates a fetcher with configuration-bounded retry.
func NewHTTPCaptionFetcher(cfg FetcherConfig, logger *log.Logger) *HTTPCaptionFetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = log.Default()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &HTTPCaptionFetcher{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		logger:      logger.With("component", "caption-fetch"),
	}
}

// FetchCaption retrieves the caption for a public Instagram post.
// Transient failures (5xx, 429, network errors) are retried with
// exponential backoff up to the configured attempt budget; 4xx responses
// other than 429 fail immediately (deleted or private post).
func (f *HTTPCaptionFetcher) FetchCaption(ctx context.Context, postURL string) (string, error) {
	var caption string

	backoff := retry.WithMaxRetries(uint64(f.maxAttempts-1), retry.NewExponential(f.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := f.client.R().SetContext(ctx).Get(postURL)
		if err != nil {
			f.logger.Debug("request failed, will retry", "url", postURL, "err", err)
			return retry.RetryableError(err)
		}

		status := resp.StatusCode()
		switch {
		case status == 200:
			// fall through to parse
		case status == 429 || status >= 500:
			f.logger.Debug("transient status, will retry", "url", postURL, "status", status)
			return retry.RetryableError(fmt.Errorf("instagram returned status %d", status))
		case status == 404:
			return fmt.Errorf("instagram post not found (deleted or wrong url)")
		default:
			return fmt.Errorf("instagram returned status %d (post may be private)", status)
		}

		extracted, parseErr := extractCaption(resp.String())
		if parseErr != nil {
			return parseErr
		}
		caption = extracted
		return nil
	})
	if err != nil {
		return "", err
	}

	f.logger.Debug("fetched caption", "url", postURL, "chars", len(caption))
	return caption, nil
}

// extractCaption pulls the caption text out of the post page HTML.
func extractCaption(page string) (string, error) {
	m := ogDescriptionRegex.FindStringSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("post page has no og:description (login wall or layout change)")
	}
	content := html.UnescapeString(m[1])

	// Prefer the quoted caption; fall back to the whole description.
	if q := captionQuoteRegex.FindStringSubmatch(content); q != nil {
		content = q[1]
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("post caption is empty")
	}
	return content, nil
}

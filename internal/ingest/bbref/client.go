package bbref

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the site every page is fetched from.
	DefaultBaseURL = "https://www.basketball-reference.com"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 20 * time.Second
)

// PageCache stores fetched page bodies by URL.
type PageCache interface {
	GetPage(ctx context.Context, url string) (string, bool, error)
	SetPage(ctx context.Context, url, body string) error
}

// FetchError is a transport failure for one URL.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClientConfig configures the document fetcher.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches pages from the site.
type Client struct {
	http   *resty.Client
	base   *url.URL
	cache  PageCache
	logger *zap.Logger
}

// NewClient creates a fetcher. cache may be nil.
func NewClient(cfg ClientConfig, cache PageCache, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetTimeout(cfg.Timeout)

	return &Client{
		http:   client,
		base:   base,
		cache:  cache,
		logger: logger,
	}, nil
}

// BaseURL returns the site root used to build and resolve links.
func (c *Client) BaseURL() *url.URL {
	return c.base
}

// Fetch returns the markup at url. Cached pages are returned without waiting
// on the pacer; everything else waits for its turn and is cached on success.
func (c *Client) Fetch(ctx context.Context, url string, pacer *Pacer) (string, error) {
	if c.cache != nil {
		body, ok, err := c.cache.GetPage(ctx, url)
		if err != nil {
			c.logger.Warn("page cache read failed", zap.String("url", url), zap.Error(err))
		} else if ok {
			c.logger.Debug("page cache hit", zap.String("url", url))
			return body, nil
		}
	}

	if err := pacer.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode() >= 400 {
		return "", &FetchError{URL: url, Status: resp.StatusCode()}
	}

	body := resp.String()
	if c.cache != nil {
		if err := c.cache.SetPage(ctx, url, body); err != nil {
			c.logger.Warn("page cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return body, nil
}

// Document fetches url and parses it.
func (c *Client) Document(ctx context.Context, url string, pacer *Pacer) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, url, pacer)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

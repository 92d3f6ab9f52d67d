// Package api talks to the directory backend over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expatpedia/directory/internal/cache"
	"github.com/expatpedia/directory/internal/log"
	"github.com/expatpedia/directory/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 200 * time.Millisecond
	maxBackoff        = 2 * time.Second
	maxErrorBody      = 512
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	Cache      *cache.Cache
	// HTTPClient overrides the transport. Token is ignored when set.
	HTTPClient *http.Client
}

type inflight struct {
	id     uint64
	cancel context.CancelFunc
}

// Client performs cached GETs against the backend. A request tagged with a
// resource name supersedes any earlier in-flight request for the same
// resource; untagged requests for the same URL are coalesced.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	maxRetries int
	backoff    time.Duration
	validate   *validator.Validate
	logger     *logrus.Entry

	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]inflight
	seq      uint64
	stats    models.FetchStats
}

// NewClient creates a backend client. A bearer token, when present, is
// attached through an oauth2 static token source.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base url %q is not absolute", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			httpClient = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, httpClient), ts)
			httpClient.Timeout = timeout
		}
	}

	c := opts.Cache
	if c == nil {
		c = cache.New(cache.DefaultTTL)
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		cache:      c,
		maxRetries: retries,
		backoff:    defaultBackoff,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     log.Component("api"),
		inflight:   make(map[string]inflight),
	}, nil
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() models.FetchStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// URL joins path and params onto the base URL. Params are encoded in key
// order so identical queries always produce identical cache keys.
func (c *Client) URL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// FetchPage GETs a list endpoint and decodes it.
func (c *Client) FetchPage(ctx context.Context, resource, path string, params url.Values) (*models.RawPage, error) {
	target := c.URL(path, params)
	body, err := c.Get(ctx, resource, target)
	if err != nil {
		return nil, err
	}
	page, err := DecodePage(body)
	if err != nil {
		c.cache.Invalidate(target)
		return nil, &DecodeError{URL: target, Err: err}
	}
	return page, nil
}

// FetchRecord GETs a single-object endpoint and decodes it.
func (c *Client) FetchRecord(ctx context.Context, path string) (models.RawRecord, error) {
	target := c.URL(path, nil)
	body, err := c.Get(ctx, "", target)
	if err != nil {
		return nil, err
	}
	record, err := DecodeRecord(body)
	if err != nil {
		c.cache.Invalidate(target)
		return nil, &DecodeError{URL: target, Err: err}
	}
	return record, nil
}

// Get returns the body for target, from cache when fresh.
func (c *Client) Get(ctx context.Context, resource, target string) ([]byte, error) {
	if body, ok := c.cache.Get(target); ok {
		c.count(func(s *models.FetchStats) { s.CacheHits++ })
		c.logger.WithField("url", target).Debug("cache hit")
		return body, nil
	}

	var (
		body []byte
		err  error
	)
	if resource == "" {
		body, err = c.coalesced(ctx, target)
	} else {
		reqCtx, release := c.supersede(ctx, resource)
		body, err = c.download(reqCtx, target)
		release()
	}
	if err != nil {
		if IsCancelled(err) {
			c.count(func(s *models.FetchStats) { s.Cancelled++ })
			return nil, fmt.Errorf("%w: %s", ErrCancelled, target)
		}
		c.count(func(s *models.FetchStats) { s.Failures++ })
		c.logger.WithFields(logrus.Fields{"url": target, "error": err}).Warn("fetch failed")
		return nil, err
	}

	c.cache.Set(target, body)
	return body, nil
}

func (c *Client) coalesced(ctx context.Context, target string) ([]byte, error) {
	ch := c.group.DoChan(target, func() (any, error) {
		return c.download(context.WithoutCancel(ctx), target)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// supersede cancels any in-flight request registered under resource and
// registers a new one. The returned release deregisters it unless a newer
// request has already taken its place.
func (c *Client) supersede(parent context.Context, resource string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	if prev, ok := c.inflight[resource]; ok {
		prev.cancel()
	}
	c.seq++
	id := c.seq
	c.inflight[resource] = inflight{id: id, cancel: cancel}
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if cur, ok := c.inflight[resource]; ok && cur.id == id {
			delete(c.inflight, resource)
		}
		c.mu.Unlock()
		cancel()
	}
}

func (c *Client) download(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	err := c.retryOnBusy(ctx, func() error {
		c.count(func(s *models.FetchStats) { s.NetworkFetches++ })
		var err error
		body, err = c.do(ctx, http.MethodGet, target, nil, "", "")
		return err
	})
	return body, err
}

func (c *Client) do(ctx context.Context, method, target string, payload io.Reader, contentType, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       snippet,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func (c *Client) count(fn func(*models.FetchStats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

// retryOnBusy retries fn while the backend answers 429 or 503.
func (c *Client) retryOnBusy(ctx context.Context, fn func() error) error {
	wait := c.backoff
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		statusErr, ok := IsStatusError(err)
		if !ok || !retryable(statusErr.StatusCode) || attempt >= c.maxRetries {
			return err
		}
		delay := wait
		if statusErr.RetryAfter > 0 {
			delay = statusErr.RetryAfter
		}
		if delay > maxBackoff {
			delay = maxBackoff
		}
		c.logger.WithFields(logrus.Fields{
			"url":     statusErr.URL,
			"status":  statusErr.StatusCode,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Debug("backend busy, retrying")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	statusErr, ok := IsStatusError(err)
	return ok && statusErr.StatusCode == http.StatusNotFound
}

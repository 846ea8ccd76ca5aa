// Package serpapi wraps the SerpApi Google Jobs endpoint with the
// pagination, retry and pacing behaviour the collector needs.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/taoufikbo/preprint-empirical/internal/models"
)

const (
	defaultBaseURL = "https://serpapi.com/search"
	userAgent      = "preprint-empirical-bot/1.0"
)

// errMalformed marks a body that could not be decoded. Retrying the
// same request will not fix it.
var errMalformed = errors.New("malformed response")

// APIError is an error reported inside an otherwise valid response
// payload (quota exhausted, invalid query). Non-retryable.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi error: %s", e.Message)
}

// Config tunes a Client. Zero values fall back to the documented
// SerpApi defaults.
type Config struct {
	APIKey       string
	BaseURL      string
	PageSize     int
	MaxRetries   int
	RetryBackoff time.Duration // doubled on every failed attempt
	RequestDelay time.Duration // minimum spacing between page requests
	HTTPTimeout  time.Duration

	// ProgressWriter receives the per-query progress bar. Tests point
	// it at io.Discard.
	ProgressWriter io.Writer
}

// Client issues paged Google Jobs searches. Safe for sequential use
// only; the collector runs one query at a time by design.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// RawJob mirrors the fields of one jobs_results entry the normalizer
// cares about. Payload keeps the entry exactly as returned.
type RawJob struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Source      string `json:"source"`
	ApplyLink   string `json:"apply_link"`
	Link        string `json:"link"`

	Payload json.RawMessage `json:"-"`
}

type searchResponse struct {
	Error       string            `json:"error"`
	JobsResults []json.RawMessage `json:"jobs_results"`
}

// New instantiates the client. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.ProgressWriter == nil {
		cfg.ProgressWriter = os.Stderr
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
		limiter: limiter,
		log:     log,
	}
}

// Search walks successive pages for the given query spec until
// maxResults jobs are collected or a page comes back empty. On a
// failed page the jobs gathered so far are returned together with the
// error, so callers can keep partial results.
func (c *Client) Search(ctx context.Context, spec models.QuerySpec, maxResults int) ([]RawJob, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(maxResults,
		progressbar.OptionSetDescription(fmt.Sprintf("%s [%s]", spec.Query, spec.Hints.Location)),
		progressbar.OptionSetWriter(c.cfg.ProgressWriter),
		progressbar.OptionShowCount(),
	)
	defer func() { _ = bar.Exit() }()

	var collected []RawJob
	for start := 0; len(collected) < maxResults; start += c.cfg.PageSize {
		if err := c.limiter.Wait(ctx); err != nil {
			return collected, err
		}

		jobs, err := c.fetchPage(ctx, spec, start)
		if err != nil {
			return collected, fmt.Errorf("page at offset %d: %w", start, err)
		}
		if len(jobs) == 0 {
			break
		}

		for _, job := range jobs {
			collected = append(collected, job)
			_ = bar.Add(1)
			if len(collected) >= maxResults {
				break
			}
		}
	}

	return collected, nil
}

// fetchPage retries transient failures with exponential backoff.
// API-reported errors and undecodable bodies abort immediately.
func (c *Client) fetchPage(ctx context.Context, spec models.QuerySpec, start int) ([]RawJob, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			backoff := c.cfg.RetryBackoff << uint(attempt-1)
			c.log.Warn("page fetch failed, retrying",
				slog.Any("err", lastErr),
				slog.Int("attempt", attempt-1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		jobs, err := c.doPage(ctx, spec, start)
		if err == nil {
			return jobs, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) || errors.Is(err, errMalformed) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) doPage(ctx context.Context, spec models.QuerySpec, start int) ([]RawJob, error) {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", spec.Query)
	params.Set("start", strconv.Itoa(start))
	params.Set("num", strconv.Itoa(c.cfg.PageSize))
	params.Set("location", spec.Hints.Location)
	if spec.Hints.HostLanguage != "" {
		params.Set("hl", spec.Hints.HostLanguage)
	} else {
		params.Set("hl", "en")
	}
	if spec.Hints.GeoCode != "" {
		params.Set("gl", spec.Hints.GeoCode)
	}
	if spec.Hints.GoogleDomain != "" {
		params.Set("google_domain", spec.Hints.GoogleDomain)
	}
	params.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if parsed.Error != "" {
		return nil, &APIError{Message: parsed.Error}
	}

	jobs := make([]RawJob, 0, len(parsed.JobsResults))
	for _, raw := range parsed.JobsResults {
		var job RawJob
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("%w: jobs_results entry: %v", errMalformed, err)
		}
		job.Payload = raw
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

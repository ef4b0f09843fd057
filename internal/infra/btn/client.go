// Package btn implements the name provider over the Behind the Name JSON API.
package btn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/metrics"
	"github.com/vietddude/namecord/internal/resolve/reply"
)

// DefaultBaseURL is the public Behind the Name site.
const DefaultBaseURL = "https://www.behindthename.com"

// Config holds provider connection settings.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client calls the provider and classifies every reply.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	Monitor *Monitor
}

// NewClient creates a provider client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:     slog.Default().With("component", "btn"),
		Monitor: NewMonitor(),
	}
}

// FetchRandomByGender requests one random first name. GenderAny sends no
// gender filter.
func (c *Client) FetchRandomByGender(
	ctx context.Context,
	gender domain.Gender,
) reply.Reply[[]domain.NameCandidate] {
	params := url.Values{}
	setGender(params, gender)
	params.Set("number", "1")

	raw := c.get(ctx, "random_by_gender", "/api/random.json", params)
	return record("random_by_gender", reply.Classify(raw, extractNames))
}

// FetchUsages looks up the usages of name.
func (c *Client) FetchUsages(ctx context.Context, name string) reply.Reply[[]domain.UsageRecord] {
	params := url.Values{}
	params.Set("name", name)

	raw := c.get(ctx, "lookup", "/api/lookup.json", params)
	return record("lookup", reply.Classify(raw, extractUsages))
}

// FetchRandomByUsage requests random names filtered by q.
func (c *Client) FetchRandomByUsage(
	ctx context.Context,
	q domain.RandomQuery,
) reply.Reply[[]domain.NameCandidate] {
	params := url.Values{}
	setGender(params, q.Gender)
	if q.Usage != "" {
		params.Set("usage", string(q.Usage))
	}
	if q.Count > 0 {
		params.Set("number", strconv.Itoa(q.Count))
	}
	if q.ExactUsage {
		params.Set("randsurname", "yes")
	} else {
		params.Set("randsurname", "no")
	}

	raw := c.get(ctx, "random_by_usage", "/api/random.json", params)
	return record("random_by_usage", reply.Classify(raw, extractNames))
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values) reply.Raw {
	start := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return reply.Raw{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reply.Raw{Err: fmt.Errorf("%s request: %w", op, redactKey(err, c.apiKey))}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return reply.Raw{Err: fmt.Errorf("read response: %w", err)}
	}

	latency := time.Since(start)
	c.Monitor.RecordRequest(latency)

	retryAfter := resp.Header.Get("Retry-After")
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		c.Monitor.RecordThrottle(resp.StatusCode, retryAfter)
		c.log.Warn("Provider rate limit signal", "op", op, "status", resp.StatusCode, "retry_after", retryAfter)
	}

	c.log.Debug("Provider call", "op", op, "status", resp.StatusCode, "latency", latency)

	return reply.Raw{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
		Body:       body,
	}
}

func record[T any](op string, r reply.Reply[T]) reply.Reply[T] {
	metrics.ProviderCallsTotal.WithLabelValues(op, r.Kind.String()).Inc()
	return r
}

func setGender(params url.Values, g domain.Gender) {
	if g != domain.GenderAny {
		params.Set("gender", string(g))
	}
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

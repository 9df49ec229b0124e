package booksapi

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"books-search/internal/domain/entity"
	"books-search/internal/observability/metrics"
	"books-search/internal/observability/tracing"
	"books-search/internal/repository"
	"books-search/internal/resilience/circuitbreaker"
	"books-search/internal/resilience/retry"
)

const (
	// maxBodySize caps a volumes response. A full page of 40 volumes with
	// descriptions is well under 1MB.
	maxBodySize = 8 << 20

	userAgent = "books-search/1.0"
)

// Client talks to the volumes endpoint. It implements
// repository.CatalogRepository and repository.CatalogProber.
//
// Each request passes through, in order: the rate limiter, the retry
// policy, and the circuit breaker around a single HTTP attempt.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *RateLimiter
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	logger     *slog.Logger
}

var (
	_ repository.CatalogRepository = (*Client)(nil)
	_ repository.CatalogProber     = (*Client)(nil)
)

// NewClient creates a catalog client. An invalid cfg falls back to
// DefaultConfig, keeping the API key.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid catalog client config, using defaults", slog.Any("error", err))
		key := cfg.APIKey
		cfg = DefaultConfig()
		cfg.APIKey = key
	}

	retryCfg := retry.CatalogAPIConfig()
	retryCfg.MaxAttempts = cfg.MaxRetries

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		breaker:    circuitbreaker.New(circuitbreaker.Catalog(), logger),
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

// Search fetches and parses one page of volumes.
//
// Errors:
//   - ErrNoConnectivity: the catalog could not be reached
//   - *RemoteError: non-200 status or an error envelope
//   - ErrMalformedResponse: the body is not a volumes envelope
func (c *Client) Search(ctx context.Context, q repository.CatalogQuery) (*repository.CatalogPage, error) {
	requestID := uuid.New().String()
	start := time.Now()

	body, err := c.fetch(ctx, requestID, q)
	if err != nil {
		metrics.RecordCatalogRequest(outcomeOf(err), time.Since(start))
		return nil, err
	}

	books, total, skipped, err := ParseVolumes(body)
	if err != nil {
		metrics.RecordCatalogRequest(outcomeOf(err), time.Since(start))
		c.logger.Warn("catalog response rejected",
			slog.String("request_id", requestID),
			slog.String("query", q.Text),
			slog.Any("error", err))
		return nil, err
	}
	logSkipped(c.logger, requestID, skipped)

	metrics.RecordCatalogPage(len(books), skipped)
	metrics.RecordCatalogRequest(metrics.OutcomeSuccess, time.Since(start))

	c.logger.Info("catalog page fetched",
		slog.String("request_id", requestID),
		slog.String("query", q.Text),
		slog.Int("offset", q.Offset),
		slog.Int("records", len(books)),
		slog.Int("total_items", total),
		slog.Duration("duration", time.Since(start)))

	return &repository.CatalogPage{
		Query:      q,
		Records:    books,
		TotalItems: total,
		Raw:        body,
	}, nil
}

// Probe issues the request and returns the raw body without parsing it.
func (c *Client) Probe(ctx context.Context, q repository.CatalogQuery) ([]byte, error) {
	requestID := uuid.New().String()
	start := time.Now()

	body, err := c.fetch(ctx, requestID, q)
	if err != nil {
		metrics.RecordCatalogRequest(outcomeOf(err), time.Since(start))
		return nil, err
	}
	metrics.RecordCatalogRequest(metrics.OutcomeSuccess, time.Since(start))
	return body, nil
}

type response struct {
	status int
	body   []byte
}

func (c *Client) fetch(ctx context.Context, requestID string, q repository.CatalogQuery) ([]byte, error) {
	ctx, span := tracing.StartClient(ctx, "booksapi.fetch",
		attribute.String("books.query", q.Text),
		attribute.Int("books.offset", q.Offset),
		attribute.Int("books.limit", q.Limit),
		attribute.String("request_id", requestID),
	)
	body, err := c.fetchTraced(ctx, requestID, q)
	if err == nil {
		span.SetAttributes(attribute.Int("books.response_bytes", len(body)))
	}
	tracing.End(span, err)
	return body, err
}

func (c *Client) fetchTraced(ctx context.Context, requestID string, q repository.CatalogQuery) ([]byte, error) {
	reqURL, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("catalog request",
		slog.String("request_id", requestID),
		slog.String("query", q.Text),
		slog.Int("offset", q.Offset),
		slog.Int("limit", q.Limit))

	if err := c.limiter.Allow(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body []byte
	err = retry.WithBackoff(ctx, c.retryCfg, func() error {
		r, err := circuitbreaker.Execute(c.breaker, func() (*response, error) {
			return c.do(ctx, requestID, reqURL)
		})
		if err != nil {
			return err
		}
		if r.status != http.StatusOK {
			return newRemoteError(r)
		}
		body = r.body
		return nil
	})
	if err != nil {
		err = connectivityError(err)
		c.logger.Warn("catalog request failed",
			slog.String("request_id", requestID),
			slog.String("query", q.Text),
			slog.Any("error", err))
		return nil, err
	}
	return body, nil
}

// do performs one HTTP attempt. Server-side failures are returned as errors
// so the breaker counts them; client errors are returned as a response.
func (c *Client) do(ctx context.Context, requestID, reqURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	r := &response{status: resp.StatusCode, body: body}
	if resp.StatusCode >= 500 ||
		resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusRequestTimeout {
		return nil, newRemoteError(r)
	}
	return r, nil
}

func (c *Client) buildURL(q repository.CatalogQuery) (string, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return "", &entity.ValidationError{Field: "query", Message: "query is required"}
	}

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params := url.Values{}
	for k, vs := range q.Params {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("q", text)
	params.Set("startIndex", strconv.Itoa(max(q.Offset, 0)))
	if q.Limit > 0 {
		params.Set("maxResults", strconv.Itoa(q.Limit))
	}
	if c.cfg.APIKey != "" {
		params.Set("key", c.cfg.APIKey)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func newRemoteError(r *response) *RemoteError {
	msg := http.StatusText(r.status)
	if m := errorMessage(r.body); m != "" {
		msg = m
	}
	return &RemoteError{StatusCode: r.status, Message: msg}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNoConnectivity):
		return metrics.OutcomeNoConnectivity
	case errors.Is(err, ErrMalformedResponse):
		return metrics.OutcomeMalformed
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeRemoteError
	}
}

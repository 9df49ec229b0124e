package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"books-search/internal/domain/entity"
	"books-search/internal/observability/metrics"
	"books-search/internal/observability/tracing"
	"books-search/internal/resilience/circuitbreaker"
	"books-search/internal/resilience/retry"
)

// ErrImageTooLarge is returned when a download exceeds the configured limit.
var ErrImageTooLarge = errors.New("imagecache: image too large")

// Loader downloads cover images through a Cache. Concurrent loads of the
// same URL share one download.
type Loader struct {
	cache      *Cache
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	maxBytes   int64
	group      singleflight.Group
	logger     *slog.Logger
}

// NewLoader creates a Loader backed by cache.
func NewLoader(cache *Cache, cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid image loader config, using defaults", slog.Any("error", err))
		cfg = DefaultConfig()
	}
	return &Loader{
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		breaker:    circuitbreaker.New(circuitbreaker.Images(), logger),
		retryCfg:   retry.ImageFetchConfig(),
		maxBytes:   int64(cfg.MaxImageKB) << 10,
		logger:     logger,
	}
}

// Load returns the image bytes for rawURL, from the cache when present.
func (l *Loader) Load(ctx context.Context, rawURL string) ([]byte, error) {
	if err := entity.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if data, ok := l.cache.Get(rawURL); ok {
		metrics.RecordImageFetchCached()
		return data, nil
	}

	v, err, _ := l.group.Do(rawURL, func() (interface{}, error) {
		// 直前の呼び出しが格納済みの場合がある
		if data, ok := l.cache.Get(rawURL); ok {
			return data, nil
		}
		start := time.Now()
		data, err := l.download(ctx, rawURL)
		if err != nil {
			metrics.RecordImageFetchFailed(time.Since(start))
			return nil, err
		}
		metrics.RecordImageFetchSuccess(time.Since(start), len(data))
		l.cache.Put(rawURL, data)
		return data, nil
	})
	if err != nil {
		l.logger.Warn("image download failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return nil, err
	}
	return v.([]byte), nil
}

func (l *Loader) download(ctx context.Context, rawURL string) (data []byte, err error) {
	ctx, span := tracing.StartClient(ctx, "imagecache.download", attribute.String("url", rawURL))
	defer func() { tracing.End(span, err) }()

	err = retry.WithBackoff(ctx, l.retryCfg, func() error {
		var err error
		data, err = circuitbreaker.Execute(l.breaker, func() ([]byte, error) {
			return l.get(ctx, rawURL)
		})
		return err
	})
	return data, err
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

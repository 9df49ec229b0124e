package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithBackoff(t *testing.T) {
	t.Parallel()

	unavailable := &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "backend busy"}
	badRequest := &HTTPError{StatusCode: http.StatusBadRequest, Message: "bad q"}

	tests := []struct {
		name      string
		attempts  int
		errs      []error // returned by successive calls; nil afterwards
		wantCalls int
		wantErr   error
		wantMsg   string
	}{
		{name: "first call succeeds", attempts: 3, wantCalls: 1},
		{name: "succeeds on third call", attempts: 3, errs: []error{unavailable, unavailable}, wantCalls: 3},
		{
			name:      "attempts run out",
			attempts:  3,
			errs:      []error{unavailable, unavailable, unavailable, unavailable},
			wantCalls: 3,
			wantErr:   unavailable,
			wantMsg:   "max retry attempts (3) exceeded",
		},
		{name: "client error is not retried", attempts: 3, errs: []error{badRequest}, wantCalls: 1, wantErr: badRequest},
		{name: "zero attempts still calls once", attempts: 0, errs: []error{unavailable}, wantCalls: 1, wantErr: unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			err := WithBackoff(context.Background(), fast(tt.attempts), func() error {
				calls++
				if calls <= len(tt.errs) {
					return tt.errs[calls-1]
				}
				return nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestWithBackoff_ContextDoneWhileWaiting(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}

	calls := 0
	err := WithBackoff(ctx, cfg, func() error {
		calls++
		cancel()
		return syscall.ECONNRESET
	})
	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "retry aborted")
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), false},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"connection reset", syscall.ECONNRESET, true},
		{"network unreachable", syscall.ENETUNREACH, true},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("search: %w", &HTTPError{StatusCode: 503}), true},
		{"429", &HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{"408", &HTTPError{StatusCode: http.StatusRequestTimeout}, true},
		{"404", &HTTPError{StatusCode: http.StatusNotFound}, false},
		{"plain error", errors.New("malformed body"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestConfig_Delay(t *testing.T) {
	t.Parallel()
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 3}

	assert.Equal(t, 100*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 300*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 900*time.Millisecond, cfg.delay(3))
	assert.Equal(t, time.Second, cfg.delay(4))
	assert.Equal(t, time.Second, cfg.delay(10))
}

func TestPresets(t *testing.T) {
	t.Parallel()
	for name, cfg := range map[string]Config{"catalog": CatalogAPIConfig(), "images": ImageFetchConfig()} {
		assert.GreaterOrEqual(t, cfg.MaxAttempts, 2, name)
		assert.Less(t, cfg.InitialDelay, cfg.MaxDelay, name)
		assert.Greater(t, cfg.Multiplier, 1.0, name)
	}
	// covers are cosmetic; they never wait longer than a catalog page
	assert.LessOrEqual(t, ImageFetchConfig().MaxDelay, CatalogAPIConfig().MaxDelay)
}

func TestJitter(t *testing.T) {
	t.Parallel()
	base := 100 * time.Millisecond

	for i := 0; i < 50; i++ {
		got := jitter(base, 0.5)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/2)
	}
	assert.Equal(t, base, jitter(base, 0))
	assert.LessOrEqual(t, jitter(base, 7), 2*base)
	assert.Equal(t, "HTTP 503: busy", (&HTTPError{StatusCode: 503, Message: "busy"}).Error())
}

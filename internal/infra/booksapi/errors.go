package booksapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"books-search/internal/repository"
	"books-search/internal/resilience/circuitbreaker"
	"books-search/internal/resilience/retry"
)

var (
	// ErrNoConnectivity is returned when the catalog host cannot be reached:
	// DNS failures, refused or reset connections, timeouts and an open circuit.
	ErrNoConnectivity = repository.ErrNoConnectivity

	// ErrMalformedResponse is returned when a 200 response body is not a
	// volumes envelope.
	ErrMalformedResponse = errors.New("booksapi: malformed response")
)

// RemoteError is an error reported by the catalog, either as a non-200
// status or as an "error" object in the response body.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("booksapi: remote error %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the status as a retry.HTTPError so the retry policy can
// classify 5xx and 429 responses.
func (e *RemoteError) Unwrap() error {
	return &retry.HTTPError{StatusCode: e.StatusCode, Message: e.Message}
}

// connectivityError wraps err with ErrNoConnectivity when it is a transport
// failure. Other errors are returned unchanged.
func connectivityError(err error) error {
	if err == nil || errors.Is(err, ErrNoConnectivity) {
		return err
	}
	if isConnectivity(err) {
		return fmt.Errorf("%w: %v", ErrNoConnectivity, err)
	}
	return err
}

func isConnectivity(err error) bool {
	// 呼び出し元によるキャンセルは接続エラーではない
	if errors.Is(err, context.Canceled) {
		return false
	}
	if circuitbreaker.Rejecting(err) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// Package respond writes JSON responses. Error messages are sanitized so
// that internal details (database DSNs, API keys) never reach the client.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダー送信済みなのでログのみ
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// safeFragments mark messages that describe bad input rather than internal
// failures.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"unknown",
	"must be",
	"cannot be",
	"out of range",
	"too long",
	"no such",
}

// SafeError writes err when its message is safe for users, and a generic
// message otherwise. 5xx errors are always generic and logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if code < http.StatusInternalServerError && isSafe(msg) {
		JSON(w, code, ErrorBody{Error: msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: genericMessage(code)})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, f := range safeFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func genericMessage(code int) string {
	if code >= http.StatusInternalServerError {
		return "internal server error"
	}
	return strings.ToLower(http.StatusText(code))
}

// AppError is an error carrying the status code and message to return.
type AppError struct {
	UserMsg string // returned to the client
	Err     error  // logged, never returned
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// Failure writes err. An AppError anywhere in the chain decides the status
// and message; anything else is a sanitized 500.
func Failure(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
		slog.Default().Error("application error",
			slog.Int("code", appErr.Code),
			slog.String("user_message", appErr.UserMsg),
			slog.String("error", SanitizeError(appErr.Err)))
	}
	JSON(w, appErr.Code, ErrorBody{Error: appErr.UserMsg})
}

package books

import (
	"encoding/json"
	"errors"
	"net/http"

	"books-search/internal/domain/entity"
	"books-search/internal/handler/http/respond"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/settings"
)

// writeError maps session errors to status codes. Unknown errors are 500.
func writeError(w http.ResponseWriter, err error) {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		respond.Failure(w, err)
		return
	}
	respond.Failure(w, respond.NewAppError(code, msg, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrValidationFailed),
		errors.Is(err, browse.ErrUnknownAction),
		errors.Is(err, browse.ErrPageOutOfRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, browse.ErrNoSuchRow), errors.Is(err, settings.ErrUnknownKey):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, browse.ErrBusy):
		return http.StatusConflict, "a fetch is in progress"
	case errors.Is(err, browse.ErrNoQuery):
		return http.StatusConflict, "no query has been submitted"
	case errors.Is(err, browse.ErrClosed):
		return http.StatusServiceUnavailable, "session closed"
	default:
		return http.StatusInternalServerError, ""
	}
}

// decodeJSON reads a JSON body into v and rejects unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return entity.Invalidf("body", "malformed JSON: %v", err)
	}
	return nil
}

package books

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"books-search/internal/domain/entity"
	"books-search/internal/handler/http/respond"
	"books-search/internal/usecase/settings"
)

// SettingsHandler reads and writes settings. Writes are user writes: a
// change to a filter setting reloads the current results.
type SettingsHandler struct{ Store *settings.Store }

// List returns every setting in declaration order.
func (h SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	values, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]SettingDTO, 0, len(values))
	for _, key := range settings.Keys() {
		if key == settings.KeyResetSettings {
			continue
		}
		out = append(out, SettingDTO{Key: string(key), Value: values[key]})
	}
	respond.JSON(w, http.StatusOK, out)
}

// Get returns one setting.
func (h SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := settings.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	value, err := h.Store.String(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, SettingDTO{Key: string(key), Value: value})
}

// Put writes one setting: PUT /settings/{key} {"value": "20"}.
func (h SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	key, err := settings.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	var body SettingValue
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Store.Set(r.Context(), key, body.Value); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, SettingDTO{Key: string(key), Value: body.Value})
}

// PutAll writes several settings: PUT /settings {"maxResults": "20", ...}.
// Unknown keys are rejected before anything is written; values are
// written in key order and the first invalid one stops the request.
func (h SettingsHandler) PutAll(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if len(body) == 0 {
		writeError(w, &entity.ValidationError{Field: "body", Message: "at least one setting is required"})
		return
	}

	var keys []settings.Key
	for _, key := range settings.Keys() {
		if _, ok := body[string(key)]; ok {
			keys = append(keys, key)
		}
	}
	if len(keys) != len(body) {
		for name := range body {
			if _, err := settings.ParseKey(name); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	for _, key := range keys {
		if err := h.Store.Set(r.Context(), key, body[string(key)]); err != nil {
			writeError(w, err)
			return
		}
	}
	h.List(w, r)
}

// Reset returns every setting to its default.
func (h SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"books-search/internal/domain/entity"
	"books-search/internal/handler/http/respond"
	"books-search/internal/usecase/browse"
)

// writeView writes the session view. A result that did not settle in time
// is 202 with settled=false; the fetch keeps running.
func writeView(w http.ResponseWriter, s *browse.Session, snap browse.Snapshot, err error) {
	settled := true
	if errors.Is(err, browse.ErrNotSettled) {
		settled, err = false, nil
	}
	if err != nil {
		writeError(w, err)
		return
	}
	code := http.StatusOK
	if !settled {
		code = http.StatusAccepted
	}
	respond.JSON(w, code, newSessionDTO(s.Controller(), snap, settled))
}

// SearchHandler submits a query.
type SearchHandler struct{ Session *browse.Session }

// ServeHTTP 検索実行
// POST /search {"query": "...", "in": "intitle"}
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	query := req.Query
	if req.In != "" {
		kf, err := entity.ParseKeywordFilter(req.In)
		if err != nil {
			writeError(w, err)
			return
		}
		query = kf.Apply(query)
	}

	snap, err := h.Session.Search(r.Context(), query)
	writeView(w, h.Session, snap, err)
}

// PageHandler navigates: /page/{action} where action is first, previous,
// next, last, jump (with ?page=N) or a page number.
type PageHandler struct{ Session *browse.Session }

// ServeHTTP ページ移動
func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action, page, err := browse.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, err)
		return
	}
	if action == browse.ActionJump && page == 0 {
		page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			writeError(w, &entity.ValidationError{Field: "page", Message: "page must be a number"})
			return
		}
	}

	snap, err := h.Session.Page(r.Context(), action, page)
	writeView(w, h.Session, snap, err)
}

// ReloadHandler refetches the current page.
type ReloadHandler struct{ Session *browse.Session }

func (h ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Session.Reload(r.Context())
	writeView(w, h.Session, snap, err)
}

// ViewHandler returns the current view without waiting.
type ViewHandler struct{ Session *browse.Session }

// ServeHTTP 現在の表示内容
func (h ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := h.Session.Controller().State()
	settled := state != browse.StateFetching && state != browse.StateRestoring
	respond.JSON(w, http.StatusOK, newSessionDTO(h.Session.Controller(), h.Session.View(), settled))
}

// PresentationHandler switches between the list and grid presentations.
type PresentationHandler struct{ Session *browse.Session }

func (h PresentationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind, ok := browse.ParsePresentationKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, &entity.ValidationError{Field: "kind", Message: "presentation must be list or grid"})
		return
	}
	snap, err := h.Session.Present(r.Context(), kind)
	writeView(w, h.Session, snap, err)
}

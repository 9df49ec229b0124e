package books

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/settings"
)

// Register mounts the session endpoints on r.
func Register(r chi.Router, session *browse.Session, store *settings.Store, images ImageLoader) {
	r.Method(http.MethodPost, "/search", SearchHandler{Session: session})
	r.Method(http.MethodPost, "/page/{action}", PageHandler{Session: session})
	r.Method(http.MethodPost, "/reload", ReloadHandler{Session: session})
	r.Method(http.MethodGet, "/session", ViewHandler{Session: session})
	r.Method(http.MethodPost, "/presentation/{kind}", PresentationHandler{Session: session})

	r.Method(http.MethodGet, "/books/{index}", DetailHandler{Session: session, Policy: bluemonday.UGCPolicy()})
	r.Method(http.MethodGet, "/books/{index}/image", ImageHandler{Session: session, Images: images})

	sh := SettingsHandler{Store: store}
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", sh.List)
		r.Put("/", sh.PutAll)
		r.Delete("/", sh.Reset)
		r.Get("/{key}", sh.Get)
		r.Put("/{key}", sh.Put)
	})
}

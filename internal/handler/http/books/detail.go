package books

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"books-search/internal/domain/entity"
	"books-search/internal/handler/http/respond"
	"books-search/internal/infra/imagecache"
	"books-search/internal/observability/logging"
	"books-search/internal/usecase/browse"
)

// ImageLoader returns image bytes by URL. *imagecache.Loader implements it.
type ImageLoader interface {
	Load(ctx context.Context, rawURL string) ([]byte, error)
}

func rowIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, &entity.ValidationError{Field: "index", Message: "index must be a number"}
	}
	return index, nil
}

// DetailHandler returns one displayed record. The description is catalog
// supplied HTML and is sanitized before it is returned.
type DetailHandler struct {
	Session *browse.Session
	Policy  *bluemonday.Policy
}

// ServeHTTP 書籍詳細
func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := h.Session.Row(index)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, newDetailDTO(index, book, h.Policy))
}

// Image sizes accepted by ImageHandler.
const (
	SizeItem   = "item"
	SizeDetail = "detail"
	SizeFull   = "full"
)

// ImageHandler serves the cover of a displayed record through the image
// cache: /books/{index}/image?size=item|detail|full.
type ImageHandler struct {
	Session *browse.Session
	Images  ImageLoader
}

func (h ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := h.Session.Row(index)
	if err != nil {
		writeError(w, err)
		return
	}

	var url string
	switch size := r.URL.Query().Get("size"); size {
	case "", SizeItem:
		url = book.ImageItem()
	case SizeDetail:
		url = book.ImageDetail()
	case SizeFull:
		url = book.ImageFull()
	default:
		writeError(w, &entity.ValidationError{Field: "size", Message: "size must be item, detail or full"})
		return
	}
	if url == "" {
		respond.JSON(w, http.StatusNotFound, respond.ErrorBody{Error: "no image for this record"})
		return
	}

	data, err := h.Images.Load(r.Context(), url)
	if err != nil {
		logging.FromContext(r.Context()).Warn("cover image load failed",
			slog.Int("index", index),
			slog.String("url", url),
			slog.Any("error", err))
		msg := "image unavailable"
		if errors.Is(err, imagecache.ErrImageTooLarge) {
			msg = "image too large"
		}
		respond.Failure(w, respond.NewAppError(http.StatusBadGateway, msg, err))
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

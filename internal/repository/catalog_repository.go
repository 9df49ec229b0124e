package repository

import (
	"context"
	"errors"
	"net/url"

	"books-search/internal/domain/entity"
)

// ErrNoConnectivity is returned by catalog implementations when the remote
// host cannot be reached. Callers treat it as recoverable.
var ErrNoConnectivity = errors.New("catalog: no connectivity")

// CatalogQuery describes one page request against the remote catalog.
type CatalogQuery struct {
	Text   string
	Offset int        // 0-based item offset
	Limit  int        // results per page
	Params url.Values // filter parameters taken from settings
}

// CatalogPage is one parsed catalog response. Raw keeps the response body so
// it can be replayed to the page-bound estimator without another request.
type CatalogPage struct {
	Query      CatalogQuery
	Records    []*entity.Book
	TotalItems int
	Raw        []byte
}

// CatalogRepository searches the remote books catalog.
type CatalogRepository interface {
	Search(ctx context.Context, q CatalogQuery) (*CatalogPage, error)
}

// CatalogProber issues one raw catalog request and returns the body.
type CatalogProber interface {
	Probe(ctx context.Context, q CatalogQuery) ([]byte, error)
}

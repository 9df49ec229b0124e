// Package books provides the HTTP handlers of the browsing session: search,
// page navigation, record details, cover images, presentation switching and
// settings.
package books

import (
	"github.com/microcosm-cc/bluemonday"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
)

// SessionDTO is the session view returned by every browsing endpoint.
type SessionDTO struct {
	State        string           `json:"state" example:"displaying"`
	Query        string           `json:"query" example:"intitle:go"`
	Presentation string           `json:"presentation" example:"list"`
	Signal       string           `json:"signal,omitempty" example:"page"`
	Settled      bool             `json:"settled"`
	Page         browse.PageState `json:"page"`
	Restores     []browse.Restore `json:"restores,omitempty"`
	Rows         []RowDTO         `json:"rows"`
	RenderError  string           `json:"render_error,omitempty"`
}

// RowDTO is one result row.
type RowDTO struct {
	Index       int      `json:"index" example:"1"`
	ID          string   `json:"id" example:"zyTCAlFPjgYC"`
	Title       string   `json:"title" example:"The Go Programming Language"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher" example:"Addison-Wesley"`
	Published   string   `json:"published" example:"Oct 26, 2015"`
	Rating      float64  `json:"rating" example:"4.5"`
	RatingCount string   `json:"rating_count" example:"1,024"`
	Price       string   `json:"price,omitempty" example:"$34.99"`
	HasImage    bool     `json:"has_image"`
}

// DetailDTO is the detail view of one record. Description is sanitized HTML.
type DetailDTO struct {
	RowDTO
	Subtitle    string   `json:"subtitle,omitempty"`
	Type        string   `json:"type,omitempty" example:"Book"`
	Pages       string   `json:"pages" example:"380"`
	Categories  []string `json:"categories,omitempty"`
	Description string   `json:"description"`
	ListPrice   string   `json:"list_price,omitempty"`
	RetailPrice string   `json:"retail_price,omitempty"`
	Discounted  bool     `json:"discounted"`
	Sample      bool     `json:"sample"`
	EpubLink    string   `json:"epub_link,omitempty"`
	PdfLink     string   `json:"pdf_link,omitempty"`
	PreviewLink string   `json:"preview_link,omitempty"`
	BuyLink     string   `json:"buy_link,omitempty"`
	InfoLink    string   `json:"info_link,omitempty"`
}

// SettingDTO is one setting.
type SettingDTO struct {
	Key   string `json:"key" example:"maxResults"`
	Value string `json:"value" example:"20"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" example:"go programming"`
	// In is an optional keyword filter such as "intitle" or "inauthor".
	In string `json:"in,omitempty" example:"intitle"`
}

// SettingValue is the body of PUT /settings/{key}.
type SettingValue struct {
	Value string `json:"value"`
}

func newSessionDTO(ctl *browse.Controller, snap browse.Snapshot, settled bool) SessionDTO {
	out := SessionDTO{
		State:        ctl.State().String(),
		Query:        ctl.Query(),
		Presentation: ctl.ActivePresentation().String(),
		Signal:       string(snap.Signal),
		Settled:      settled,
		Page:         snap.Page,
		Restores:     snap.Restores,
		Rows:         make([]RowDTO, 0, len(snap.Rows)),
	}
	for i, b := range snap.Rows {
		out.Rows = append(out.Rows, newRowDTO(i+1, b))
	}
	if snap.Err != nil {
		out.RenderError = snap.Err.Error()
	}
	return out
}

func newRowDTO(index int, b *entity.Book) RowDTO {
	return RowDTO{
		Index:       index,
		ID:          b.ID(),
		Title:       b.DisplayKey(),
		Authors:     b.Authors(),
		Publisher:   b.PublisherString(),
		Published:   b.PublishedDateMedium(),
		Rating:      b.Rating(),
		RatingCount: b.RatingCountString(),
		Price:       b.RetailPriceString(),
		HasImage:    b.ImageItem() != "" || b.ImageDetail() != "" || b.ImageFull() != "",
	}
}

func newDetailDTO(index int, b *entity.Book, policy *bluemonday.Policy) DetailDTO {
	return DetailDTO{
		RowDTO:      newRowDTO(index, b),
		Subtitle:    b.Subtitle(),
		Type:        b.BookType(),
		Pages:       b.PageCountString(),
		Categories:  b.Categories(),
		Description: policy.Sanitize(b.Description()),
		ListPrice:   b.ListPriceString(),
		RetailPrice: b.RetailPriceString(),
		Discounted:  b.IsDiscounted(),
		Sample:      b.IsSampleAvailable(),
		EpubLink:    b.EpubLink(),
		PdfLink:     b.PdfLink(),
		PreviewLink: b.PreviewLink(),
		BuyLink:     b.BuyLink(),
		InfoLink:    b.InfoLink(),
	}
}

package booksapi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"books-search/internal/domain/entity"
)

// ParseVolumes decodes a volumes envelope. Volumes that fail
// entity.ValidateBook are skipped and reported in skipped, keyed by the
// offending field.
func ParseVolumes(body []byte) (books []*entity.Book, totalItems int, skipped map[string]int, err error) {
	if !gjson.ValidBytes(body) {
		return nil, 0, nil, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, 0, nil, ErrMalformedResponse
	}

	if e := root.Get("error"); e.Exists() {
		return nil, 0, nil, &RemoteError{
			StatusCode: int(e.Get("code").Int()),
			Message:    e.Get("message").String(),
		}
	}

	totalItems = int(root.Get("totalItems").Int())
	items := root.Get("items")
	if !items.Exists() {
		return nil, totalItems, nil, nil
	}
	if !items.IsArray() {
		return nil, 0, nil, fmt.Errorf("%w: items is not an array", ErrMalformedResponse)
	}

	for _, item := range items.Array() {
		f := volumeFields(item)
		if verr := entity.ValidateBook(f); verr != nil {
			var ve *entity.ValidationError
			field := "unknown"
			if errors.As(verr, &ve) {
				field = ve.Field
			}
			if skipped == nil {
				skipped = make(map[string]int)
			}
			skipped[field]++
			continue
		}
		books = append(books, entity.NewBook(f))
	}
	return books, totalItems, skipped, nil
}

func volumeFields(item gjson.Result) entity.BookFields {
	info := item.Get("volumeInfo")
	sale := item.Get("saleInfo")
	access := item.Get("accessInfo")

	f := entity.BookFields{
		ID:               item.Get("id").String(),
		Title:            info.Get("title").String(),
		Subtitle:         info.Get("subtitle").String(),
		Authors:          stringArray(info.Get("authors")),
		Publisher:        info.Get("publisher").String(),
		PublishedDate:    info.Get("publishedDate").String(),
		PageCount:        1,
		PrintType:        info.Get("printType").String(),
		Categories:       stringArray(info.Get("categories")),
		Rating:           info.Get("averageRating").Float(),
		RatingCount:      int(info.Get("ratingsCount").Int()),
		Description:      info.Get("description").String(),
		InfoLink:         info.Get("infoLink").String(),
		Saleability:      sale.Get("saleability").String(),
		ListPrice:        sale.Get("listPrice.amount").Float(),
		RetailPrice:      sale.Get("retailPrice.amount").Float(),
		CurrencyCode:     sale.Get("listPrice.currencyCode").String(),
		BuyLink:          sale.Get("buyLink").String(),
		EpubLink:         access.Get("epub.acsTokenLink").String(),
		PdfLink:          access.Get("pdf.acsTokenLink").String(),
		PreviewLink:      access.Get("webReaderLink").String(),
		AccessViewStatus: access.Get("accessViewStatus").String(),
	}
	if pc := info.Get("pageCount"); pc.Exists() {
		f.PageCount = int(pc.Int())
	}
	if f.CurrencyCode == "" {
		f.CurrencyCode = sale.Get("retailPrice.currencyCode").String()
	}
	f.ImageItem, f.ImageDetail, f.ImageFull = imageLinks(info.Get("imageLinks"))
	return f
}

// imageLinks resolves the three display resolutions. Each missing size
// falls back to the next smaller one, starting from smallThumbnail.
func imageLinks(links gjson.Result) (item, detail, full string) {
	if !links.IsObject() {
		return "", "", ""
	}
	current := links.Get("smallThumbnail").String()
	pick := func(name string) string {
		if v := links.Get(name).String(); v != "" {
			current = v
		}
		return current
	}
	pick("thumbnail")
	item = pick("small")
	pick("medium")
	detail = pick("large")
	full = pick("extraLarge")
	return item, detail, full
}

func stringArray(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	arr := r.Array()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}

func logSkipped(logger *slog.Logger, requestID string, skipped map[string]int) {
	for field, n := range skipped {
		logger.Warn("catalog volumes skipped",
			slog.String("request_id", requestID),
			slog.String("field", field),
			slog.Int("count", n))
	}
}

// errorMessage extracts error.message from an error envelope, if any.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "error.message").String()
}

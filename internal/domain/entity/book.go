// Package entity defines the core domain entities and validation logic for the application.
// It contains the catalog Book record and the keyword qualifiers used to build search
// queries, along with domain-specific errors.
package entity

import (
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Saleability and access values reported by the catalog.
const (
	SaleabilityForSale    = "FOR_SALE"
	SaleabilityNotForSale = "NOT_FOR_SALE"
	AccessViewSample      = "SAMPLE"
	unknownValue          = "Unknown"
)

// BookFields carries the raw attributes used to construct a Book.
// It is a plain value and is copied by NewBook.
type BookFields struct {
	ID               string
	Title            string
	Subtitle         string
	Authors          []string
	Publisher        string
	PublishedDate    string
	PageCount        int
	PrintType        string
	Categories       []string
	Rating           float64
	RatingCount      int
	Saleability      string
	ListPrice        float64
	RetailPrice      float64
	CurrencyCode     string
	Description      string
	ImageItem        string
	ImageDetail      string
	ImageFull        string
	AccessViewStatus string
	EpubLink         string
	PdfLink          string
	PreviewLink      string
	BuyLink          string
	InfoLink         string
}

// Book is one catalog record. It is immutable once constructed: every accessor
// returns a copy and a changed record is always a new Book.
type Book struct {
	f BookFields
}

// NewBook builds a Book from the given fields, copying slices so later
// mutation of the input does not leak into the record.
func NewBook(f BookFields) *Book {
	f.Authors = cloneStrings(f.Authors)
	f.Categories = cloneStrings(f.Categories)
	if f.PageCount <= 0 {
		f.PageCount = 1
	}
	return &Book{f: f}
}

// Fields returns a copy of the raw attributes.
func (b *Book) Fields() BookFields {
	f := b.f
	f.Authors = cloneStrings(f.Authors)
	f.Categories = cloneStrings(f.Categories)
	return f
}

func (b *Book) ID() string               { return b.f.ID }
func (b *Book) Title() string            { return b.f.Title }
func (b *Book) Subtitle() string         { return b.f.Subtitle }
func (b *Book) Publisher() string        { return b.f.Publisher }
func (b *Book) PublishedDate() string    { return b.f.PublishedDate }
func (b *Book) PageCount() int           { return b.f.PageCount }
func (b *Book) Rating() float64          { return b.f.Rating }
func (b *Book) RatingCount() int         { return b.f.RatingCount }
func (b *Book) Description() string      { return b.f.Description }
func (b *Book) ImageItem() string        { return b.f.ImageItem }
func (b *Book) ImageDetail() string      { return b.f.ImageDetail }
func (b *Book) ImageFull() string        { return b.f.ImageFull }
func (b *Book) EpubLink() string         { return b.f.EpubLink }
func (b *Book) PdfLink() string          { return b.f.PdfLink }
func (b *Book) PreviewLink() string      { return b.f.PreviewLink }
func (b *Book) BuyLink() string          { return b.f.BuyLink }
func (b *Book) InfoLink() string         { return b.f.InfoLink }
func (b *Book) Authors() []string        { return cloneStrings(b.f.Authors) }
func (b *Book) Categories() []string     { return cloneStrings(b.f.Categories) }
func (b *Book) AccessViewStatus() string { return b.f.AccessViewStatus }

// DisplayKey is the title as shown in a result row. The subtitle is appended
// when present and not already part of the title.
func (b *Book) DisplayKey() string {
	sub := strings.TrimSpace(b.f.Subtitle)
	if sub == "" || strings.Contains(strings.ToLower(b.f.Title), strings.ToLower(sub)) {
		return b.f.Title
	}
	return b.f.Title + ": " + sub
}

// AuthorsString joins the author names with a comma.
func (b *Book) AuthorsString() string {
	if len(b.f.Authors) == 0 {
		return unknownValue
	}
	return strings.Join(b.f.Authors, ", ")
}

// PublisherString returns the publisher name or "Unknown".
func (b *Book) PublisherString() string {
	if strings.TrimSpace(b.f.Publisher) == "" {
		return unknownValue
	}
	return b.f.Publisher
}

// PublishedDateMedium formats the partial ISO date reported by the catalog.
// Year-only values are returned as-is; unparseable values are returned raw.
func (b *Book) PublishedDateMedium() string {
	raw := strings.TrimSpace(b.f.PublishedDate)
	switch len(raw) {
	case 0:
		return unknownValue
	case 4:
		return raw
	case 7:
		if t, err := time.Parse("2006-01", raw); err == nil {
			return t.Format("Jan, 2006")
		}
	case 10:
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}

// BookType is the print type in title case, e.g. "Book" or "Magazine".
func (b *Book) BookType() string {
	pt := strings.TrimSpace(b.f.PrintType)
	if pt == "" {
		return ""
	}
	lower := strings.ToLower(pt)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// PageCountString renders the page count with digit grouping.
func (b *Book) PageCountString() string {
	return formatCount(b.f.PageCount)
}

// CategoriesString joins the categories with " / ".
func (b *Book) CategoriesString() string {
	return strings.Join(b.f.Categories, " / ")
}

// RatingCountString renders the rating count with digit grouping.
func (b *Book) RatingCountString() string {
	return formatCount(b.f.RatingCount)
}

// IsForSale reports whether the catalog marks the book as purchasable.
func (b *Book) IsForSale() bool {
	return b.f.Saleability == SaleabilityForSale
}

// IsDiscounted reports whether the retail price is below the list price.
func (b *Book) IsDiscounted() bool {
	return b.IsForSale() && b.f.RetailPrice < b.f.ListPrice
}

// ListPriceString is the formatted list price, empty when not for sale.
func (b *Book) ListPriceString() string {
	if !b.IsForSale() {
		return ""
	}
	return formatPrice(b.f.ListPrice, b.f.CurrencyCode)
}

// RetailPriceString is the formatted retail price, empty when not for sale.
func (b *Book) RetailPriceString() string {
	if !b.IsForSale() {
		return ""
	}
	return formatPrice(b.f.RetailPrice, b.f.CurrencyCode)
}

// IsSampleAvailable reports whether a preview sample can be read.
func (b *Book) IsSampleAvailable() bool {
	return b.f.AccessViewStatus == AccessViewSample
}

var printer = message.NewPrinter(language.English)

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatPrice(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%.2f", amount)
	}
	return printer.Sprint(currency.Symbol(unit.Amount(amount)))
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

package reconcile

import (
	"strings"

	"books-search/internal/domain/entity"
)

// Group is one visual sub-element of a result row.
type Group uint16

const (
	GroupImage Group = 1 << iota
	GroupTitle
	GroupAuthors
	GroupPublisher
	GroupPublishedDate
	GroupPages // page count and type
	GroupCategories
	GroupRating
	GroupRatingCount
	GroupPrice // for-sale, discounted, list and retail price
)

var groupNames = []struct {
	g    Group
	name string
}{
	{GroupImage, "image"},
	{GroupTitle, "title"},
	{GroupAuthors, "authors"},
	{GroupPublisher, "publisher"},
	{GroupPublishedDate, "publishedDate"},
	{GroupPages, "pages"},
	{GroupCategories, "categories"},
	{GroupRating, "rating"},
	{GroupRatingCount, "ratingCount"},
	{GroupPrice, "price"},
}

// Payload is the set of groups that changed between two records with the
// same identity. The zero value means the records are content-equal.
type Payload uint16

// Has reports whether g is part of the payload.
func (p Payload) Has(g Group) bool { return p&Payload(g) != 0 }

// IsEmpty reports whether nothing changed.
func (p Payload) IsEmpty() bool { return p == 0 }

// Groups lists the changed group names in a fixed order.
func (p Payload) Groups() []string {
	var out []string
	for _, gn := range groupNames {
		if p.Has(gn.g) {
			out = append(out, gn.name)
		}
	}
	return out
}

func (p Payload) String() string {
	if p.IsEmpty() {
		return "none"
	}
	return strings.Join(p.Groups(), ",")
}

// MarshalText renders the payload as its group names.
func (p Payload) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ContentPayload compares the displayed fields of two records.
func ContentPayload(oldRec, newRec *entity.Book) Payload {
	var p Payload
	set := func(g Group, changed bool) {
		if changed {
			p |= Payload(g)
		}
	}

	set(GroupImage, oldRec.ImageItem() != newRec.ImageItem())
	set(GroupTitle, oldRec.DisplayKey() != newRec.DisplayKey())
	set(GroupAuthors, oldRec.AuthorsString() != newRec.AuthorsString())
	set(GroupPublisher, oldRec.PublisherString() != newRec.PublisherString())
	set(GroupPublishedDate, oldRec.PublishedDateMedium() != newRec.PublishedDateMedium())
	set(GroupPages, oldRec.BookType() != newRec.BookType() ||
		oldRec.PageCountString() != newRec.PageCountString())
	set(GroupCategories, oldRec.CategoriesString() != newRec.CategoriesString())
	set(GroupRating, oldRec.Rating() != newRec.Rating())
	set(GroupRatingCount, oldRec.RatingCountString() != newRec.RatingCountString())
	set(GroupPrice, oldRec.IsForSale() != newRec.IsForSale() ||
		oldRec.IsDiscounted() != newRec.IsDiscounted() ||
		oldRec.ListPriceString() != newRec.ListPriceString() ||
		oldRec.RetailPriceString() != newRec.RetailPriceString())

	return p
}

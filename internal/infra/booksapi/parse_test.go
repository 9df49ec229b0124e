package booksapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullVolume = `{
  "kind": "books#volumes",
  "totalItems": 1234,
  "items": [
    {
      "id": "zyTCAlFPjgYC",
      "volumeInfo": {
        "title": "The Google Story",
        "subtitle": "Inside the Hottest Business",
        "authors": ["David A. Vise", "Mark Malseed"],
        "publisher": "Random House",
        "publishedDate": "2005-11-15",
        "pageCount": 207,
        "printType": "BOOK",
        "categories": ["Business & Economics"],
        "averageRating": 3.5,
        "ratingsCount": 136,
        "description": "<p>Here is the story</p>",
        "infoLink": "https://books.example/info/zyTCAlFPjgYC",
        "imageLinks": {
          "smallThumbnail": "https://img.example/st",
          "thumbnail": "https://img.example/t",
          "large": "https://img.example/l"
        }
      },
      "saleInfo": {
        "saleability": "FOR_SALE",
        "listPrice": {"amount": 11.99, "currencyCode": "USD"},
        "retailPrice": {"amount": 8.39, "currencyCode": "USD"},
        "buyLink": "https://books.example/buy"
      },
      "accessInfo": {
        "epub": {"isAvailable": true, "acsTokenLink": "https://books.example/epub"},
        "pdf": {"isAvailable": false},
        "webReaderLink": "https://books.example/reader",
        "accessViewStatus": "SAMPLE"
      }
    }
  ]
}`

func TestParseVolumes_FullRecord(t *testing.T) {
	books, total, skipped, err := ParseVolumes([]byte(fullVolume))
	require.NoError(t, err)
	assert.Equal(t, 1234, total)
	assert.Empty(t, skipped)
	require.Len(t, books, 1)

	b := books[0]
	assert.Equal(t, "zyTCAlFPjgYC", b.ID())
	assert.Equal(t, "The Google Story: Inside the Hottest Business", b.DisplayKey())
	assert.Equal(t, "David A. Vise, Mark Malseed", b.AuthorsString())
	assert.Equal(t, "Random House", b.PublisherString())
	assert.Equal(t, "Nov 15, 2005", b.PublishedDateMedium())
	assert.Equal(t, 207, b.PageCount())
	assert.Equal(t, "Book", b.BookType())
	assert.Equal(t, 3.5, b.Rating())
	assert.Equal(t, 136, b.RatingCount())
	assert.True(t, b.IsForSale())
	assert.True(t, b.IsDiscounted())
	assert.Equal(t, "https://books.example/epub", b.EpubLink())
	assert.Empty(t, b.PdfLink())
	assert.Equal(t, "https://books.example/reader", b.PreviewLink())
	assert.True(t, b.IsSampleAvailable())
	assert.Equal(t, "https://books.example/info/zyTCAlFPjgYC", b.InfoLink())
}

func TestParseVolumes_ImageFallbackChain(t *testing.T) {
	tests := []struct {
		name       string
		links      string
		wantItem   string
		wantDetail string
		wantFull   string
	}{
		{
			name:       "only small thumbnail",
			links:      `{"smallThumbnail":"st"}`,
			wantItem:   "st",
			wantDetail: "st",
			wantFull:   "st",
		},
		{
			name:       "thumbnail and large",
			links:      `{"smallThumbnail":"st","thumbnail":"t","large":"l"}`,
			wantItem:   "t",
			wantDetail: "l",
			wantFull:   "l",
		},
		{
			name:       "every size",
			links:      `{"smallThumbnail":"st","thumbnail":"t","small":"s","medium":"m","large":"l","extraLarge":"xl"}`,
			wantItem:   "s",
			wantDetail: "l",
			wantFull:   "xl",
		},
		{
			name:       "medium only above thumbnail",
			links:      `{"smallThumbnail":"st","medium":"m"}`,
			wantItem:   "st",
			wantDetail: "m",
			wantFull:   "m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"totalItems":1,"items":[{"id":"a","volumeInfo":{"title":"A","imageLinks":` + tt.links + `}}]}`
			books, _, _, err := ParseVolumes([]byte(body))
			require.NoError(t, err)
			require.Len(t, books, 1)
			assert.Equal(t, tt.wantItem, books[0].ImageItem())
			assert.Equal(t, tt.wantDetail, books[0].ImageDetail())
			assert.Equal(t, tt.wantFull, books[0].ImageFull())
		})
	}
}

func TestParseVolumes_Defaults(t *testing.T) {
	body := `{"totalItems":1,"items":[{"id":"a","volumeInfo":{"title":"A"}}]}`

	books, _, _, err := ParseVolumes([]byte(body))
	require.NoError(t, err)
	require.Len(t, books, 1)

	b := books[0]
	assert.Equal(t, 1, b.PageCount())
	assert.Equal(t, "Unknown", b.AuthorsString())
	assert.Equal(t, "Unknown", b.PublisherString())
	assert.Empty(t, b.ImageItem())
	assert.False(t, b.IsForSale())
	assert.Empty(t, b.ListPriceString())
}

func TestParseVolumes_SkipsInvalidVolumes(t *testing.T) {
	body := `{"totalItems":3,"items":[
		{"id":"a","volumeInfo":{"title":"A"}},
		{"id":"b","volumeInfo":{}},
		{"volumeInfo":{"title":"C"}}
	]}`

	books, total, skipped, err := ParseVolumes([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, books, 1)
	assert.Equal(t, "a", books[0].ID())
	assert.Equal(t, map[string]int{"title": 1, "id": 1}, skipped)
}

func TestParseVolumes_NoItems(t *testing.T) {
	books, total, _, err := ParseVolumes([]byte(`{"kind":"books#volumes","totalItems":0}`))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, books)
}

func TestParseVolumes_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantRemote bool
	}{
		{name: "not json", body: `<html>`},
		{name: "array root", body: `[1,2]`},
		{name: "items not array", body: `{"totalItems":1,"items":{"id":"a"}}`},
		{name: "error envelope", body: `{"error":{"code":400,"message":"Missing query."}}`, wantRemote: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseVolumes([]byte(tt.body))
			require.Error(t, err)

			var remote *RemoteError
			if tt.wantRemote {
				require.True(t, errors.As(err, &remote))
				assert.Equal(t, 400, remote.StatusCode)
				assert.Equal(t, "Missing query.", remote.Message)
				return
			}
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

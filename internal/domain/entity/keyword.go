package entity

import (
	"strings"
)

// KeywordFilter is a catalog query qualifier such as "intitle".
type KeywordFilter string

// Qualifiers understood by the volumes endpoint.
const (
	KeywordInTitle     KeywordFilter = "intitle"
	KeywordInAuthor    KeywordFilter = "inauthor"
	KeywordInPublisher KeywordFilter = "inpublisher"
	KeywordSubject     KeywordFilter = "subject"
	KeywordISBN        KeywordFilter = "isbn"
	KeywordLCCN        KeywordFilter = "lccn"
	KeywordOCLC        KeywordFilter = "oclc"
)

// KeywordFilters lists every qualifier with a short description.
var KeywordFilters = []struct {
	Filter      KeywordFilter
	Description string
}{
	{KeywordInTitle, "text found in the title"},
	{KeywordInAuthor, "text found in the author"},
	{KeywordInPublisher, "text found in the publisher"},
	{KeywordSubject, "text listed in the category list"},
	{KeywordISBN, "ISBN number"},
	{KeywordLCCN, "Library of Congress Control Number"},
	{KeywordOCLC, "Online Computer Library Center number"},
}

// ParseKeywordFilter resolves a qualifier name, with or without the trailing colon.
func ParseKeywordFilter(s string) (KeywordFilter, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ":")
	for _, kf := range KeywordFilters {
		if string(kf.Filter) == name {
			return kf.Filter, nil
		}
	}
	return "", Invalidf("keyword", "unknown keyword filter %q", s)
}

// Apply prefixes text with the qualifier. An empty text is returned unchanged.
func (k KeywordFilter) Apply(text string) string {
	text = strings.TrimSpace(text)
	if k == "" || text == "" {
		return text
	}
	return string(k) + ":" + text
}

// Package settings implements the durable key/value store behind page
// navigation and catalog filters, together with the change notification
// used to decide when a result list must be reloaded.
package settings

import (
	"fmt"
	"slices"
	"strconv"
)

// Key names a persisted setting. The names double as catalog query
// parameter names where applicable.
type Key string

const (
	KeyStartIndex        Key = "startIndex"
	KeyEndIndex          Key = "endIndex"
	KeyLastDisplayedPage Key = "lastDisplayedPage"
	KeyMaxResults        Key = "maxResults"
	KeyOrderBy           Key = "orderBy"
	KeyPrintType         Key = "printType"
	KeyFilter            Key = "filter"
	KeyLangRestrict      Key = "langRestrict"
	KeyLastSearchQuery   Key = "lastSearchQuery"
	KeyResetSettings     Key = "resetSettings"
)

// FilterNone is the content filter value that omits the filter parameter.
const FilterNone = "none"

type kind int

const (
	kindInt kind = iota
	kindEnum
	kindText
)

type definition struct {
	kind     kind
	def      string
	min, max int
	allowed  []string
}

// definitions is ordered so that iteration in QueryParams is stable.
var definitions = []struct {
	key Key
	definition
}{
	{KeyStartIndex, definition{kind: kindInt, def: "1", min: 1, max: maxPage}},
	{KeyEndIndex, definition{kind: kindInt, def: "1", min: 1, max: maxPage}},
	{KeyLastDisplayedPage, definition{kind: kindInt, def: "1", min: 1, max: maxPage}},
	{KeyMaxResults, definition{kind: kindInt, def: "10", min: 1, max: 40}},
	{KeyOrderBy, definition{kind: kindEnum, def: "relevance", allowed: []string{"relevance", "newest"}}},
	{KeyPrintType, definition{kind: kindEnum, def: "all", allowed: []string{"all", "books", "magazines"}}},
	{KeyFilter, definition{kind: kindEnum, def: FilterNone, allowed: []string{FilterNone, "partial", "full", "free-ebooks", "paid-ebooks", "ebooks"}}},
	{KeyLangRestrict, definition{kind: kindText}},
	{KeyLastSearchQuery, definition{kind: kindText}},
	{KeyResetSettings, definition{kind: kindText}},
}

// maxPage keeps page arithmetic well inside int range.
const maxPage = 1 << 20

// Keys returns every known key in declaration order.
func Keys() []Key {
	keys := make([]Key, 0, len(definitions))
	for _, d := range definitions {
		keys = append(keys, d.key)
	}
	return keys
}

// ParseKey resolves a key name. Unknown names are rejected.
func ParseKey(name string) (Key, error) {
	k := Key(name)
	if _, ok := lookup(k); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return k, nil
}

// Default returns the default value of key, or "" for unknown keys.
func Default(key Key) string {
	d, _ := lookup(key)
	return d.def
}

func lookup(key Key) (definition, bool) {
	for _, d := range definitions {
		if d.key == key {
			return d.definition, true
		}
	}
	return definition{}, false
}

// validate reports why value is not acceptable for the definition.
func (d definition) validate(value string) error {
	switch d.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		if n < d.min || n > d.max {
			return fmt.Errorf("must be between %d and %d", d.min, d.max)
		}
	case kindEnum:
		if !slices.Contains(d.allowed, value) {
			return fmt.Errorf("must be one of %v", d.allowed)
		}
	}
	return nil
}

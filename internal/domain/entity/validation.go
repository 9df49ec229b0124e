package entity

import (
	"net/url"
	"strings"
)

// maxURLLength bounds catalog and cover image URLs.
const maxURLLength = 2048

// ValidateBook checks the attributes every displayed record depends on.
func ValidateBook(f BookFields) error {
	switch {
	case strings.TrimSpace(f.ID) == "":
		return Invalidf("id", "id is required")
	case strings.TrimSpace(f.Title) == "":
		return Invalidf("title", "title is required")
	case f.RatingCount < 0:
		return Invalidf("ratingCount", "ratingCount cannot be negative, got %d", f.RatingCount)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host. It is used
// for the catalog endpoint and for cover image links before they are
// downloaded.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return Invalidf("url", "URL is required")
	}
	if len(rawURL) > maxURLLength {
		return Invalidf("url", "URL must not exceed %d characters", maxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Invalidf("url", "malformed URL: %v", err)
	}
	// http も許可する: 書誌 API の表紙リンクは http で返ることが多い
	if u.Scheme != "http" && u.Scheme != "https" {
		return Invalidf("url", "URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return Invalidf("url", "URL must have a host")
	}
	return nil
}

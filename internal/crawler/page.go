package crawler

import "strings"

// Page is what the engine hands to a PageCallbackHandler for a fetched URL
type Page struct {
	URL         string
	StatusCode  int
	ContentType string // raw Content-Type header
	Body        []byte
	// Links holds the distinct absolute outgoing links, nil when the page was not parsed
	Links []string
	Depth int
}

// NormalizeContentType strips parameters such as charset from a Content-Type value
func NormalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

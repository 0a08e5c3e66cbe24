package types

import (
	"net/url"
	"time"
)

// PageSnapshot is the fully rendered HTML of a page, captured once per
// extraction request.
type PageSnapshot struct {
	// URL is the validated address that was rendered
	URL *url.URL

	// RawHTML is the serialized document after dynamic content settled
	RawHTML string

	// RenderedAt is when the HTML was captured
	RenderedAt time.Time

	// ScrollIterations is how many scroll rounds the convergence loop ran
	ScrollIterations int

	// Converged is false when the scroll bound was exhausted before the
	// page height stabilized
	Converged bool
}

// ExtractedDocument is the cleaned, size-bounded text of a page.
type ExtractedDocument struct {
	// SourceDomain is the host the text was extracted from
	SourceDomain string

	// Text is the readable content with whitespace collapsed
	Text string

	// Title is the page title, if one could be determined
	Title string

	// Description is the page's meta description, if present
	Description string

	// Truncated is true when Text was cut at the character cap
	Truncated bool
}

// IsEmpty reports whether no usable text was extracted.
func (d ExtractedDocument) IsEmpty() bool {
	return d.Text == ""
}

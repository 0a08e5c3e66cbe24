// Package extract turns rendered HTML into the bounded plain text a chat
// session is grounded on.
package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/entrhq/pagechat/pkg/logging"
	"github.com/entrhq/pagechat/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("extract")
	if err != nil {
		debugLog.Warnf("Failed to initialize extract logger, using stderr fallback: %v", err)
	}
}

// DefaultMaxChars is the text cap in characters (runes).
const DefaultMaxChars = 4000

// removedSelector lists elements whose whole subtree never contributes text.
const removedSelector = "script, style, nav, footer, iframe, meta, link, noscript, header, aside"

// Extractor converts HTML to an ExtractedDocument. The zero value is not
// usable; create one with NewExtractor.
type Extractor struct {
	maxChars     int
	readMetadata bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxChars sets the text cap. Values below 1 keep the default.
func WithMaxChars(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

// WithoutMetadata skips title and description lookup.
func WithoutMetadata() Option {
	return func(e *Extractor) {
		e.readMetadata = false
	}
}

// NewExtractor creates an extractor capped at DefaultMaxChars.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxChars:     DefaultMaxChars,
		readMetadata: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxChars returns the text cap.
func (e *Extractor) MaxChars() int {
	return e.maxChars
}

// Extract never fails: when nothing readable can be found, or parsing
// breaks down, the returned document is empty (see IsEmpty).
func (e *Extractor) Extract(rawHTML string, pageURL *url.URL) (doc types.ExtractedDocument) {
	doc.SourceDomain = sourceDomain(pageURL)

	defer func() {
		if rec := recover(); rec != nil {
			debugLog.Errorf("Extraction from %s panicked: %v", doc.SourceDomain, rec)
			doc = types.ExtractedDocument{SourceDomain: sourceDomain(pageURL)}
		}
	}()

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		debugLog.Warnf("Failed to parse html from %s: %v", doc.SourceDomain, err)
		return doc
	}

	if e.readMetadata {
		meta := readMetadata(rawHTML, root, pageURL)
		doc.Title = meta.Title
		doc.Description = meta.Description
	}

	text := contentText(goquery.NewDocumentFromNode(root))
	if text == "" {
		debugLog.Infof("No readable text found on %s", doc.SourceDomain)
		return types.ExtractedDocument{SourceDomain: doc.SourceDomain, Title: doc.Title, Description: doc.Description}
	}

	doc.Text, doc.Truncated = truncateRunes(text, e.maxChars)
	debugLog.Debugf("Extracted %d characters from %s (truncated=%t)", utf8.RuneCountInString(doc.Text), doc.SourceDomain, doc.Truncated)
	return doc
}

// contentText prunes noise from doc and returns the headings followed by the
// paragraph and block texts of the primary content root, whitespace collapsed.
func contentText(doc *goquery.Document) string {
	doc.Find(removedSelector).Remove()

	root := contentRoot(doc)
	if root == nil {
		return ""
	}

	var parts []string
	collect := func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	root.Find("h1, h2, h3").Each(collect)
	root.Find("p, div").Each(collect)

	return collapseWhitespace(strings.Join(parts, "\n"))
}

// contentRoot picks the first <main>, else the first <article>, else <body>.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:max]), " "), true
}

func sourceDomain(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Host
}

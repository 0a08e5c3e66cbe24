package extract

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Metadata is descriptive information about a page that is kept apart from
// its body text.
type Metadata struct {
	Title       string
	Description string
}

// readMetadata reads the title through readability, falling back to the
// <title> element, and the description from <meta name="description">.
func readMetadata(rawHTML string, root *html.Node, pageURL *url.URL) Metadata {
	meta := Metadata{
		Title:       articleTitle(rawHTML, pageURL),
		Description: extractMetaDescription(root),
	}
	if meta.Title == "" {
		meta.Title = extractTitle(root)
	}
	return meta
}

func articleTitle(rawHTML string, pageURL *url.URL) string {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		debugLog.Debugf("Readability could not parse %s: %v", pageURL.Host, err)
		return ""
	}
	return collapseWhitespace(article.Title)
}

// extractTitle returns the text of the first <title> element.
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = collapseWhitespace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}

// extractMetaDescription returns the content of <meta name="description">,
// matching the name case-insensitively.
func extractMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "name":
					isDescription = strings.EqualFold(strings.TrimSpace(attr.Val), "description")
				case "content":
					content = attr.Val
				}
			}
			if isDescription {
				description = collapseWhitespace(content)
			}
			return
		}
		for c := n.FirstChild; c != nil && description == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return description
}

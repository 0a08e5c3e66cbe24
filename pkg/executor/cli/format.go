package cli

import (
	"regexp"
	"strings"
)

var (
	// bulletPattern matches a markdown "* item" bullet so it survives
	// emphasis stripping as "- item".
	bulletPattern = regexp.MustCompile(`(?m)^(\s*)\*\s+`)

	// underscoreEmphasis matches __bold__ and _italic_ spans between word
	// boundaries; snake_case identifiers are left alone.
	underscoreEmphasis = regexp.MustCompile(`(^|\W)_{1,2}([^_\n]+?)_{1,2}(\W|$)`)

	// enumeratorPattern matches lines starting with a numeral followed by
	// "." or ")", such as "1." or "12)".
	enumeratorPattern = regexp.MustCompile(`^\d+[.)]`)
)

// stripEmphasis removes markdown bold and italic markers.
func stripEmphasis(text string) string {
	text = bulletPattern.ReplaceAllString(text, "$1- ")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")

	// A match consumes its trailing boundary, so adjacent spans need
	// another pass.
	for {
		stripped := underscoreEmphasis.ReplaceAllString(text, "$1$2$3")
		if stripped == text {
			return text
		}
		text = stripped
	}
}

// FormatReply prepares an assistant reply for the terminal: emphasis markers
// are removed, the text is split into paragraphs on newlines and numbered
// points are indented by two spaces. Everything else, markup included, is
// printed as the model wrote it.
func FormatReply(reply string) []string {
	cleaned := stripEmphasis(reply)

	paragraphs := strings.Split(cleaned, "\n")
	lines := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if enumeratorPattern.MatchString(paragraph) {
			paragraph = "  " + paragraph
		}
		lines = append(lines, paragraph)
	}
	return lines
}

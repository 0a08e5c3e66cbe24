package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // secondary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // success states
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	promptStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	replyStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	ruleStyle = lipgloss.NewStyle().
			Foreground(mutedGray)
)

// bannerStyle frames the welcome text.
var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(salmonPink).
	Padding(0, 2)

const ruleWidth = 50

// painter applies styles unless output is plain.
type painter struct {
	plain bool
}

func (p painter) paint(style lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return style.Render(text)
}

func (p painter) rule(char string) string {
	return p.paint(ruleStyle, strings.Repeat(char, ruleWidth))
}

func (p painter) banner() string {
	lines := []string{
		"🤖 Website Chat Assistant 🌐",
		"Chat with any website and learn more!",
	}
	if p.plain {
		return strings.Join(lines, "\n")
	}
	return bannerStyle.Render(headerStyle.Render(lines[0]) + "\n" + tipsStyle.Render(lines[1]))
}

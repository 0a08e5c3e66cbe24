// Package prompts assembles the system directive that grounds a chat session
// on one page.
package prompts

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs the system directive for a page
type PromptBuilder struct {
	sourceDomain string
	title        string
	description  string
	content      string
}

// NewPromptBuilder creates an empty builder
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// WithSourceDomain sets the host the content came from
func (pb *PromptBuilder) WithSourceDomain(domain string) *PromptBuilder {
	pb.sourceDomain = domain
	return pb
}

// WithTitle sets the page title
func (pb *PromptBuilder) WithTitle(title string) *PromptBuilder {
	pb.title = title
	return pb
}

// WithDescription sets the page's own summary
func (pb *PromptBuilder) WithDescription(description string) *PromptBuilder {
	pb.description = description
	return pb
}

// WithContent sets the extracted page text
func (pb *PromptBuilder) WithContent(content string) *PromptBuilder {
	pb.content = content
	return pb
}

// Build assembles the directive: role, page metadata, content, then the
// grounding and style rules
func (pb *PromptBuilder) Build() string {
	var builder strings.Builder

	domain := pb.sourceDomain
	if domain == "" {
		domain = "a website"
	}
	fmt.Fprintf(&builder, RolePrompt, domain)
	builder.WriteString("\n\n")

	if pb.title != "" || pb.description != "" {
		builder.WriteString("<page_metadata>\n")
		if pb.title != "" {
			fmt.Fprintf(&builder, "Title: %s\n", pb.title)
		}
		if pb.description != "" {
			fmt.Fprintf(&builder, "Description: %s\n", pb.description)
		}
		builder.WriteString("</page_metadata>\n\n")
	}

	builder.WriteString("<page_content>\n")
	builder.WriteString(pb.content)
	builder.WriteString("\n</page_content>\n\n")

	builder.WriteString(GroundingRulesPrompt)
	builder.WriteString("\n\n")
	builder.WriteString(StylePrompt)

	return builder.String()
}

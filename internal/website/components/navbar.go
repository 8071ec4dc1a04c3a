// Package components renders the static sections of the page.
package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/hamvadakara/hammeet/internal/website"
)

// HeaderOptions configures the site header.
type HeaderOptions struct {
	// Title is the event name shown next to the logo
	Title string
	// Subtitle is the venue line under the title
	Subtitle string
	// Links are the in-page navigation links
	Links []website.NavLink
}

// RenderHeader generates the site header with logo and navigation.
func RenderHeader(opts HeaderOptions) string {
	var sb strings.Builder

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)
	sb.WriteString("\n")

	sb.WriteString(`<header class="container site-header flex items-center justify-between">`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="flex items-center gap-md">`)
	sb.WriteString(`<div class="logo-mark" aria-hidden="true">`)
	sb.WriteString(`<svg width="28" height="28" viewBox="0 0 24 24" fill="none"><path d="M12 2v20M4 12h16" stroke="#030213" stroke-width="1.2" stroke-linecap="round" stroke-linejoin="round"/></svg>`)
	sb.WriteString(`</div>`)
	sb.WriteString(`<div>`)
	sb.WriteString(fmt.Sprintf(`<h1>%s</h1>`, html.EscapeString(opts.Title)))
	if opts.Subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<p class="small">%s</p>`, html.EscapeString(opts.Subtitle)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if len(opts.Links) > 0 {
		sb.WriteString(`<nav class="nav-links" aria-label="Main navigation">`)
		for _, link := range opts.Links {
			sb.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(link.URL), html.EscapeString(link.Label)))
		}
		sb.WriteString(`</nav>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</header>`)
	sb.WriteString("\n")

	return sb.String()
}

package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/hamvadakara/hammeet/internal/ui"
)

// HeroOptions configures the hero section.
type HeroOptions struct {
	// Title is the banner headline
	Title string
	// Tagline is shown under the headline
	Tagline string
	// Summary is the paragraph under the banner
	Summary string
	// Badges are the highlight pills
	Badges []string
	// Buttons are the calls to action
	Buttons []ui.ButtonProps
	// Aside is trusted HTML shown next to the banner
	Aside string
}

// RenderHero generates the hero section with banner, summary and CTAs.
func RenderHero(opts HeroOptions) string {
	var sb strings.Builder

	sb.WriteString(`<section class="section grid grid-2 items-center" aria-labelledby="hero-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div>`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="hero-banner"><div class="text-center">`)
	sb.WriteString(fmt.Sprintf(`<h2 id="hero-title" class="animate-fade-in">%s</h2>`, html.EscapeString(opts.Title)))
	if opts.Tagline != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Tagline)))
	}
	sb.WriteString(`</div></div>`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="mt-lg stack">`)
	if opts.Summary != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Summary)))
	}

	if len(opts.Badges) > 0 {
		sb.WriteString(`<div class="flex flex-wrap gap-sm">`)
		for _, b := range opts.Badges {
			sb.WriteString(ui.Badge(b))
		}
		sb.WriteString(`</div>`)
	}

	if len(opts.Buttons) > 0 {
		sb.WriteString(`<div class="flex gap-md">`)
		for _, b := range opts.Buttons {
			sb.WriteString(ui.Button(b))
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if opts.Aside != "" {
		sb.WriteString(`<aside>`)
		sb.WriteString("\n")
		sb.WriteString(opts.Aside)
		sb.WriteString(`</aside>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderList renders items as a list with the given class.
func RenderList(class string, items []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<ul class="%s">`, html.EscapeString(class)))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(item)))
	}
	sb.WriteString(`</ul>`)

	return sb.String()
}

// DetailItem is a bold label followed by a value.
type DetailItem struct {
	Label string
	Value string
}

// RenderDetails renders a check-marked list of labelled values.
func RenderDetails(items []DetailItem) string {
	var sb strings.Builder

	sb.WriteString(`<ul class="check-list">`)
	for _, item := range items {
		sb.WriteString(fmt.Sprintf(`<li><div><strong>%s:</strong> %s</div></li>`,
			html.EscapeString(item.Label), html.EscapeString(item.Value)))
	}
	sb.WriteString(`</ul>`)

	return sb.String()
}

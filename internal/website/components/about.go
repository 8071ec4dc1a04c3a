package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/hamvadakara/hammeet/internal/ui"
)

// AboutCard is one card of the about grid.
type AboutCard struct {
	Title string
	Body  string
}

// AboutOptions configures the about section.
type AboutOptions struct {
	ID    string
	Title string
	Intro string
	Cards []AboutCard
}

// RenderAbout generates the about section with a three-column card grid.
func RenderAbout(opts AboutOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<section id="%s" class="section">`, html.EscapeString(opts.ID)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(opts.Title)))
	sb.WriteString("\n")
	if opts.Intro != "" {
		sb.WriteString(fmt.Sprintf(`<p class="mt-md" style="max-width:48rem">%s</p>`, html.EscapeString(opts.Intro)))
		sb.WriteString("\n")
	}

	sb.WriteString(`<div class="grid grid-3 mt-lg">`)
	sb.WriteString("\n")
	for _, c := range opts.Cards {
		sb.WriteString(ui.Card(ui.CardProps{Title: c.Title, Content: html.EscapeString(c.Body)}))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// VenueOptions configures the venue section.
type VenueOptions struct {
	ID           string
	Name         string
	Address      string
	MapURL       string
	Info         string
	GettingThere []string
}

// RenderVenue generates the venue section with the map embed and info card.
func RenderVenue(opts VenueOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<section id="%s" class="section">`, html.EscapeString(opts.ID)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h3>Venue — %s</h3>`, html.EscapeString(opts.Name)))
	sb.WriteString(fmt.Sprintf(`<p class="mt-sm">%s</p>`, html.EscapeString(opts.Address)))
	sb.WriteString("\n")

	sb.WriteString(`<div class="grid grid-2 mt-md">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<div class="venue-map"><iframe title="%s Map" src="%s" loading="lazy" referrerpolicy="no-referrer-when-downgrade"></iframe></div>`,
		html.EscapeString(opts.Name), html.EscapeString(opts.MapURL)))
	sb.WriteString("\n")

	var content strings.Builder
	content.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Info)))
	if len(opts.GettingThere) > 0 {
		content.WriteString(`<div class="mt-md"><h4>Getting There</h4><ol class="steps mt-sm">`)
		for _, step := range opts.GettingThere {
			content.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(step)))
		}
		content.WriteString(`</ol></div>`)
	}
	sb.WriteString(`<div>`)
	sb.WriteString(ui.Card(ui.CardProps{Title: "Venue Info", Content: content.String()}))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

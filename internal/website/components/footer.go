package components

import (
	"fmt"
	"html"
	"strings"
)

// FooterOptions configures the contact footer.
type FooterOptions struct {
	ID         string
	Email      string
	Phone      string
	Organizers []string
	Social     []string
	Note       string
}

// RenderFooter generates the page footer.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<footer id="%s" class="site-footer" role="contentinfo">`, html.EscapeString(opts.ID)))
	sb.WriteString("\n")
	sb.WriteString(`<div class="grid grid-3">`)
	sb.WriteString("\n")

	sb.WriteString(`<div><h4>Contact</h4>`)
	if opts.Email != "" {
		sb.WriteString(fmt.Sprintf(`<p class="mt-sm">Email: <a href="mailto:%s">%s</a></p>`,
			html.EscapeString(opts.Email), html.EscapeString(opts.Email)))
	}
	if opts.Phone != "" {
		sb.WriteString(fmt.Sprintf(`<p>Phone: <a href="tel:%s">%s</a></p>`,
			html.EscapeString(strings.ReplaceAll(opts.Phone, " ", "")), html.EscapeString(opts.Phone)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`<div><h4>Organizers</h4>`)
	sb.WriteString(fmt.Sprintf(`<p class="mt-sm">%s</p>`, html.EscapeString(strings.Join(opts.Organizers, " • "))))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`<div><h4>Follow</h4><div class="flex gap-sm mt-sm">`)
	for _, s := range opts.Social {
		sb.WriteString(fmt.Sprintf(`<span class="small muted">%s</span>`, html.EscapeString(s)))
	}
	sb.WriteString(`</div></div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if opts.Note != "" {
		sb.WriteString(fmt.Sprintf(`<div class="footnote">%s</div>`, html.EscapeString(opts.Note)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</footer>`)
	sb.WriteString("\n")

	return sb.String()
}

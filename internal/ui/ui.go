// Package ui renders the page's presentational primitives: buttons, cards,
// form controls, labels and badges. Every function returns escaped HTML and
// holds no state.
package ui

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrUnknownVariant is returned by ParseVariant.
var ErrUnknownVariant = errors.New("ui: unknown button variant")

// Variant selects a button treatment. The zero value is VariantDefault.
type Variant int

const (
	VariantDefault Variant = iota
	VariantOutline
	VariantGhost
)

// Class returns the CSS classes for the variant. Values outside the
// declared constants are a programming error.
func (v Variant) Class() string {
	switch v {
	case VariantDefault:
		return "btn btn-default"
	case VariantOutline:
		return "btn btn-outline"
	case VariantGhost:
		return "btn btn-ghost"
	}
	panic(fmt.Sprintf("ui: invalid Variant(%d)", int(v)))
}

func (v Variant) String() string {
	switch v {
	case VariantDefault:
		return "default"
	case VariantOutline:
		return "outline"
	case VariantGhost:
		return "ghost"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant maps a name to a variant. The empty name is the default.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "", "default":
		return VariantDefault, nil
	case "outline":
		return VariantOutline, nil
	case "ghost":
		return VariantGhost, nil
	}
	return VariantDefault, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// ButtonProps configures Button.
type ButtonProps struct {
	Label   string
	Variant Variant
	// Type is the button type attribute; empty means "button".
	Type     string
	Disabled bool
	// Click is the live event sent when the button is clicked.
	Click string
	// Href renders the button as a link.
	Href  string
	ID    string
	Class string
}

// Button renders a button or, when Href is set, a link styled as one.
func Button(p ButtonProps) string {
	var sb strings.Builder

	class := p.Variant.Class()
	if p.Class != "" {
		class += " " + p.Class
	}

	if p.Href != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="%s"`, html.EscapeString(p.Href), html.EscapeString(class)))
		writeAttr(&sb, "id", p.ID)
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(p.Label))
		sb.WriteString("</a>")
		return sb.String()
	}

	typ := p.Type
	if typ == "" {
		typ = "button"
	}

	sb.WriteString(fmt.Sprintf(`<button type="%s" class="%s"`, html.EscapeString(typ), html.EscapeString(class)))
	writeAttr(&sb, "id", p.ID)
	writeAttr(&sb, "lv-click", p.Click)
	if p.Disabled {
		sb.WriteString(` disabled aria-disabled="true"`)
	}
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(p.Label))
	sb.WriteString("</button>")

	return sb.String()
}

// CardProps configures Card.
type CardProps struct {
	Title string
	// Content is trusted HTML, normally built from the other primitives.
	Content string
	ID      string
	Class   string
	// Slot marks the content as a live-updated region.
	Slot string
}

// Card renders a card with an optional header.
func Card(p CardProps) string {
	var sb strings.Builder

	class := "card"
	if p.Class != "" {
		class += " " + p.Class
	}

	sb.WriteString(fmt.Sprintf(`<div class="%s"`, html.EscapeString(class)))
	writeAttr(&sb, "id", p.ID)
	sb.WriteString(">\n")

	if p.Title != "" {
		sb.WriteString(`<div class="card-header"><h3 class="card-title">`)
		sb.WriteString(html.EscapeString(p.Title))
		sb.WriteString("</h3></div>\n")
	}

	sb.WriteString(`<div class="card-content"`)
	writeAttr(&sb, "data-slot", p.Slot)
	sb.WriteString(">\n")
	sb.WriteString(p.Content)
	sb.WriteString("\n</div>\n</div>\n")

	return sb.String()
}

// InputProps configures Input and Textarea.
type InputProps struct {
	Name        string
	Value       string
	ID          string
	Type        string
	Placeholder string
	InputMode   string
	Disabled    bool
	Invalid     bool
	// Change is the live event sent with {name, value} when the value changes.
	Change string
	// Rows applies to Textarea only.
	Rows int
}

func (p InputProps) id() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func (p InputProps) common(sb *strings.Builder) {
	writeAttr(sb, "id", p.id())
	writeAttr(sb, "name", p.Name)
	writeAttr(sb, "placeholder", p.Placeholder)
	writeAttr(sb, "inputmode", p.InputMode)
	writeAttr(sb, "lv-change", p.Change)
	if p.Invalid {
		sb.WriteString(fmt.Sprintf(` aria-invalid="true" aria-describedby="%s-error"`, html.EscapeString(p.id())))
	}
	if p.Disabled {
		sb.WriteString(" disabled")
	}
}

// Input renders a single-line text input.
func Input(p InputProps) string {
	var sb strings.Builder

	typ := p.Type
	if typ == "" {
		typ = "text"
	}

	sb.WriteString(fmt.Sprintf(`<input type="%s" class="input"`, html.EscapeString(typ)))
	p.common(&sb)
	sb.WriteString(fmt.Sprintf(` value="%s">`, html.EscapeString(p.Value)))

	return sb.String()
}

// Textarea renders a multi-line text input.
func Textarea(p InputProps) string {
	var sb strings.Builder

	rows := p.Rows
	if rows <= 0 {
		rows = 3
	}

	sb.WriteString(fmt.Sprintf(`<textarea class="input textarea" rows="%d"`, rows))
	p.common(&sb)
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(p.Value))
	sb.WriteString("</textarea>")

	return sb.String()
}

// Label renders a label for the control with the given id.
func Label(forID, text string) string {
	return fmt.Sprintf(`<label class="label" for="%s">%s</label>`, html.EscapeString(forID), html.EscapeString(text))
}

// Badge renders a small pill.
func Badge(text string) string {
	return fmt.Sprintf(`<span class="badge">%s</span>`, html.EscapeString(text))
}

// FieldError renders the inline error paragraph for a field. It is always
// present so its slot can be updated; an empty message renders it empty.
func FieldError(field, msg string) string {
	return fmt.Sprintf(`<p class="field-error" id="%s-error" role="alert" data-slot="error-%s">%s</p>`,
		html.EscapeString(field), html.EscapeString(field), html.EscapeString(msg))
}

func writeAttr(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf(` %s="%s"`, name, html.EscapeString(value)))
}

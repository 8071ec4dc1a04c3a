package page

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/internal/ui"
	"github.com/hamvadakara/hammeet/internal/website"
	"github.com/hamvadakara/hammeet/internal/website/components"
	"github.com/hamvadakara/hammeet/internal/wizard"
	"github.com/hamvadakara/hammeet/pkg/core"
)

// Live-updated regions.
const (
	SlotPayment     = "payment"
	SlotFormActions = "form-actions"
)

// FieldSlot is the slot wrapping a field's control.
func FieldSlot(field string) string {
	return "field-" + field
}

// Render writes the full document. Only the data-slot regions change
// between renders.
func (p *RegistrationPage) Render(ctx context.Context) core.Renderer {
	view := p.wiz.View()

	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, p.document(view))
		return err
	})
}

func (p *RegistrationPage) document(view wizard.View) string {
	ev := p.cfg.Event
	fee := payment.FormatINR(ev.Fee)

	cfg := website.PageConfig{
		Title:       ev.Title,
		Description: ev.Summary,
		URL:         p.cfg.URL,
		Keywords:    []string{"ham radio", "amateur radio", "ham meet", "Vadakara", "Kerala"},
		Event: &website.EventMeta{
			Name:         ev.Title,
			Description:  ev.Summary,
			StartDate:    strconv.Itoa(ev.Year),
			VenueName:    ev.VenueName,
			VenueAddress: ev.VenueAddress,
			Price:        ev.Fee,
			Currency:     payment.CurrencyINR,
			Organizer:    strings.Join(ev.Organizers, ", "),
		},
		Scripts: []string{ScriptPath},
	}

	var body strings.Builder

	body.WriteString(components.RenderHeader(components.HeaderOptions{
		Title:    strings.ToUpper(ev.Title),
		Subtitle: ev.VenueName + " • " + ev.VenueArea,
		Links:    website.DefaultNavLinks(),
	}))

	body.WriteString(`<main id="main-content" class="container">`)
	body.WriteString("\n")

	body.WriteString(components.RenderHero(components.HeroOptions{
		Title:   "HAM MEET",
		Tagline: ev.Tagline,
		Summary: ev.Summary,
		Badges:  ev.Highlights,
		Buttons: []ui.ButtonProps{
			{Label: p.t.T("hero.register", map[string]any{"Fee": fee}), Href: "#" + website.AnchorRegister},
			{Label: p.t.T("hero.view_venue"), Href: "#" + website.AnchorVenue, Variant: ui.VariantGhost},
		},
		Aside: p.detailsCards(fee),
	}))

	aboutCards := make([]components.AboutCard, 0, len(ev.AboutCards))
	for _, c := range ev.AboutCards {
		aboutCards = append(aboutCards, components.AboutCard{Title: c.Title, Body: c.Body})
	}
	body.WriteString(components.RenderAbout(components.AboutOptions{
		ID:    website.AnchorAbout,
		Title: "About " + ev.Title,
		Intro: ev.About,
		Cards: aboutCards,
	}))

	body.WriteString(components.RenderVenue(components.VenueOptions{
		ID:           website.AnchorVenue,
		Name:         ev.VenueName,
		Address:      ev.VenueAddress,
		MapURL:       ev.MapEmbedURL(),
		Info:         ev.VenueInfo,
		GettingThere: ev.GettingThere,
	}))

	body.WriteString(p.registrationSection(view, fee))

	body.WriteString(components.RenderFooter(components.FooterOptions{
		ID:         website.AnchorContact,
		Email:      ev.Email,
		Phone:      ev.Phone,
		Organizers: ev.Organizers,
		Social:     ev.Social,
		Note:       "Made with ❤️ for the Amateur Radio Community — " + ev.Title,
	}))

	body.WriteString(`</main>`)

	return website.RenderDocument(cfg, "", body.String())
}

func (p *RegistrationPage) detailsCards(fee string) string {
	ev := p.cfg.Event

	details := ui.Card(ui.CardProps{
		Title: p.t.T("details.title"),
		Content: components.RenderDetails([]components.DetailItem{
			{Label: p.t.T("details.venue"), Value: ev.FullVenue()},
			{Label: p.t.T("details.year"), Value: strconv.Itoa(ev.Year)},
			{Label: p.t.T("details.fee"), Value: fee},
		}),
	})
	links := ui.Card(ui.CardProps{
		Title:   p.t.T("details.quick_links"),
		Content: components.RenderList("quick-links small muted", ev.QuickLinks),
	})

	return details + links
}

type fieldSpec struct {
	name      string
	label     string
	multiline bool
	inputMode string
}

func (p *RegistrationPage) registrationSection(view wizard.View, fee string) string {
	var sb strings.Builder
	editable := view.State == wizard.StateForm

	sb.WriteString(fmt.Sprintf(`<section id="%s" class="section">`, website.AnchorRegister))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(p.t.T("form.heading"))))
	sb.WriteString(fmt.Sprintf(`<p class="mt-sm">%s</p>`, html.EscapeString(p.t.T("form.intro", map[string]any{
		"Title": p.cfg.Event.Title,
		"Fee":   fee,
	}))))
	sb.WriteString("\n")

	sb.WriteString(`<div class="grid grid-2 mt-lg">`)
	sb.WriteString("\n")

	// Form column
	sb.WriteString(`<div>`)
	sb.WriteString(`<form class="reg-form stack" lv-submit="submit" novalidate>`)
	sb.WriteString("\n")

	fields := []fieldSpec{
		{name: registration.FieldName, label: p.t.T("form.name")},
		{name: registration.FieldCallSign, label: p.t.T("form.call_sign")},
		{name: registration.FieldMobile, label: p.t.T("form.mobile"), inputMode: "numeric"},
		{name: registration.FieldAddress, label: p.t.T("form.address"), multiline: true},
	}
	for _, f := range fields {
		msg, invalid := view.Errors[f.name]
		props := ui.InputProps{
			Name:      f.name,
			Value:     view.Form.Get(f.name),
			InputMode: f.inputMode,
			Disabled:  !editable,
			Invalid:   invalid,
			Change:    EventChange,
		}

		sb.WriteString(`<div>`)
		sb.WriteString(ui.Label(f.name, f.label))
		sb.WriteString(fmt.Sprintf(`<div data-slot="%s">`, FieldSlot(f.name)))
		if f.multiline {
			props.Rows = 3
			sb.WriteString(ui.Textarea(props))
		} else {
			sb.WriteString(ui.Input(props))
		}
		sb.WriteString(`</div>`)
		sb.WriteString(ui.FieldError(f.name, msg))
		sb.WriteString(`</div>`)
		sb.WriteString("\n")
	}

	// The terms box is shown pre-checked and never read.
	sb.WriteString(`<div class="flex items-center gap-md"><input type="checkbox" id="agree" class="checkbox" checked>`)
	sb.WriteString(fmt.Sprintf(`<label for="agree" class="small muted">%s</label></div>`, html.EscapeString(p.t.T("form.terms"))))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<div class="flex gap-md" data-slot="%s">`, SlotFormActions))
	sb.WriteString(ui.Button(ui.ButtonProps{Label: p.t.T("form.submit"), Type: "submit", Disabled: !editable}))
	sb.WriteString(ui.Button(ui.ButtonProps{Label: p.t.T("form.reset"), Variant: ui.VariantOutline, Click: EventReset, Disabled: !editable}))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</form>`)
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	// Payment column
	sb.WriteString(`<div>`)
	sb.WriteString(ui.Card(ui.CardProps{
		Title:   p.t.T("payment.title"),
		Content: p.paymentContent(view, fee),
		Slot:    SlotPayment,
	}))
	sb.WriteString(ui.Card(ui.CardProps{
		Title:   p.t.T("payment.info_title"),
		Content: fmt.Sprintf(`<p class="small">%s</p>`, html.EscapeString(p.t.T("payment.info"))),
	}))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func (p *RegistrationPage) paymentContent(view wizard.View, fee string) string {
	var sb strings.Builder

	switch view.State {
	case wizard.StateForm:
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(p.t.T("payment.locked"))))

	case wizard.StatePayment:
		sb.WriteString(`<div class="stack">`)
		sb.WriteString(fmt.Sprintf(`<p>%s <strong>%s</strong></p>`, html.EscapeString(p.t.T("payment.fee")), html.EscapeString(fee)))
		if view.Failure != "" {
			sb.WriteString(fmt.Sprintf(`<p class="failure" role="alert">%s</p>`,
				html.EscapeString(p.t.T("payment.failed", map[string]any{"Reason": view.Failure}))))
		}

		pay := ui.ButtonProps{Label: p.t.T("payment.pay"), Click: EventPay}
		if view.Processing {
			pay = ui.ButtonProps{Label: p.t.T("payment.processing"), Disabled: true}
		}
		sb.WriteString(`<div class="flex gap-sm">`)
		sb.WriteString(ui.Button(pay))
		sb.WriteString(ui.Button(ui.ButtonProps{Label: p.t.T("payment.back"), Variant: ui.VariantGhost, Click: EventBack}))
		sb.WriteString(`</div>`)
		sb.WriteString(`</div>`)

	case wizard.StateSuccess:
		sb.WriteString(`<div class="stack">`)
		sb.WriteString(fmt.Sprintf(`<p class="success">%s</p>`, html.EscapeString(p.t.T("payment.success"))))
		sb.WriteString(fmt.Sprintf(`<p class="small">%s</p>`, html.EscapeString(p.t.T("payment.email_note"))))
		if view.Receipt != nil {
			sb.WriteString(fmt.Sprintf(`<p class="small muted">%s</p>`,
				html.EscapeString(p.t.T("payment.transaction", map[string]any{"ID": view.Receipt.TransactionID}))))
		}
		sb.WriteString(`<div class="mt-sm">`)
		sb.WriteString(ui.Button(ui.ButtonProps{Label: p.t.T("payment.register_another"), Click: EventRegisterAnother}))
		sb.WriteString(`</div>`)
		sb.WriteString(`</div>`)
	}

	return sb.String()
}

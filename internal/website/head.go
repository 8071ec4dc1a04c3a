package website

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderHead generates a complete <head> section with SEO, Open Graph, and JSON-LD.
func RenderHead(cfg PageConfig, customCSS string) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = Colors["bg"]
	}

	sb.WriteString("<head>\n")

	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")

	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(cfg.Title)))

	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if len(cfg.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf(`<meta name="keywords" content="%s">`+"\n", html.EscapeString(strings.Join(cfg.Keywords, ", "))))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL)))
	}

	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor)))

	sb.WriteString(renderOpenGraph(cfg))
	sb.WriteString(renderJSONLD(cfg))

	// Antenna mast favicon
	sb.WriteString(`<link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>📡</text></svg>">` + "\n")

	sb.WriteString("<style>\n")
	sb.WriteString(RenderStyles())
	if customCSS != "" {
		sb.WriteString("\n")
		sb.WriteString(customCSS)
	}
	sb.WriteString("\n</style>\n")

	sb.WriteString("</head>\n")

	return sb.String()
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="website">` + "\n")

	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL)))
	}
	if cfg.OGImage != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:image" content="%s">`+"\n", html.EscapeString(cfg.OGImage)))
	}

	return sb.String()
}

type jsonLDPlace struct {
	Type    string `json:"@type"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type jsonLDOffer struct {
	Type     string `json:"@type"`
	Price    int64  `json:"price"`
	Currency string `json:"priceCurrency"`
}

type jsonLDEvent struct {
	Context     string       `json:"@context"`
	Type        string       `json:"@type"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	StartDate   string       `json:"startDate,omitempty"`
	Location    jsonLDPlace  `json:"location"`
	Offers      *jsonLDOffer `json:"offers,omitempty"`
	Organizer   string       `json:"organizer,omitempty"`
}

func renderJSONLD(cfg PageConfig) string {
	if cfg.Event == nil {
		return ""
	}
	ev := cfg.Event

	doc := jsonLDEvent{
		Context:     "https://schema.org",
		Type:        "Event",
		Name:        ev.Name,
		Description: ev.Description,
		StartDate:   ev.StartDate,
		Location:    jsonLDPlace{Type: "Place", Name: ev.VenueName, Address: ev.VenueAddress},
		Organizer:   ev.Organizer,
	}
	if ev.Price > 0 {
		doc.Offers = &jsonLDOffer{Type: "Offer", Price: ev.Price, Currency: ev.Currency}
	}

	// encoding/json escapes <, > and & so the script body cannot be closed early.
	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<script type="application/ld+json">%s</script>`+"\n", data)
}

// RenderDocument wraps content in a complete HTML document.
func RenderDocument(cfg PageConfig, customCSS, bodyContent string) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	var scripts strings.Builder
	for _, src := range cfg.Scripts {
		scripts.WriteString(fmt.Sprintf(`<script src="%s" defer></script>`+"\n", html.EscapeString(src)))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
%s<body>
%s
%s</body>
</html>`, html.EscapeString(lang), RenderHead(cfg, customCSS), bodyContent, scripts.String())
}

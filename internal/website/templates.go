// Package website provides the page shell and the static section renderers
// of the registration site: document head, inline styles, header, hero,
// about cards, venue and footer.
package website

// PageConfig defines the document metadata.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// Keywords are SEO keywords for the page
	Keywords []string
	// OGImage is the Open Graph image URL (for social sharing)
	OGImage string
	// Language is the page language (default: "en")
	Language string
	// ThemeColor is the mobile browser theme color
	ThemeColor string
	// Event describes the event for JSON-LD; nil omits it.
	Event *EventMeta
	// Scripts are appended to the end of the body.
	Scripts []string
}

// EventMeta is the schema.org Event data embedded in the head.
type EventMeta struct {
	Name         string
	Description  string
	StartDate    string
	VenueName    string
	VenueAddress string
	Price        int64
	Currency     string
	Organizer    string
}

// NavLink is a header navigation link.
type NavLink struct {
	Label string
	URL   string
}

// Section ids used as anchors by the header links.
const (
	AnchorAbout    = "about"
	AnchorVenue    = "venue"
	AnchorRegister = "register"
	AnchorContact  = "contact"
)

// DefaultNavLinks returns the header links in page order.
func DefaultNavLinks() []NavLink {
	return []NavLink{
		{Label: "About", URL: "#" + AnchorAbout},
		{Label: "Venue", URL: "#" + AnchorVenue},
		{Label: "Register", URL: "#" + AnchorRegister},
		{Label: "Contact", URL: "#" + AnchorContact},
	}
}

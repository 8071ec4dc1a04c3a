// Package event describes the meetup shown on the site.
package event

import (
	"net/url"
)

// Card is a titled blurb.
type Card struct {
	Title string
	Body  string
}

// Details is the event's static content.
type Details struct {
	Title        string
	Year         int
	Tagline      string
	Summary      string
	About        string
	VenueName    string
	VenueArea    string
	VenueAddress string
	// MapQuery is the search string for the venue map embed.
	MapQuery     string
	VenueInfo    string
	GettingThere []string
	Fee          int64
	Highlights   []string
	QuickLinks   []string
	AboutCards   []Card
	Email        string
	Phone        string
	Organizers   []string
	Social       []string
}

// Default returns the 2026 Vadakara meetup.
func Default() Details {
	return Details{
		Title:        "HAM MEET Vadakara 2026",
		Year:         2026,
		Tagline:      "Vadakara — 2026",
		Summary:      "An annual gathering of amateur radio enthusiasts, operators, and innovators. Expect hands-on demos, technical workshops, equipment exhibitions and opportunities to connect with the amateur radio community from across India.",
		About:        "HAM MEET Vadakara 2026 brings together amateur radio operators, hobbyists and industry experts for a weekend of hands-on learning, live demonstrations, and community building. Sessions include introductory workshops for new operators and deep-dive technical talks for experienced amateurs.",
		VenueName:    "Sargalaya Heritage Center",
		VenueArea:    "Irinave, Vadakara, Kerala",
		VenueAddress: "Irinave, Vadakara, Kerala 673104",
		MapQuery:     "Sargalaya Heritage Center, Irinave, Vadakara",
		VenueInfo:    "Sargalaya is a cultural and heritage space with easy parking and nearby amenities. Recommended hotels and local transport options will be updated as they are confirmed.",
		GettingThere: []string{
			"Nearest major town: Vadakara",
			"Public transport: Local buses & taxis",
			"Parking available on-site",
		},
		Fee:        1000,
		Highlights: []string{"Workshops", "Exhibitions", "Networking", "DX Tests"},
		QuickLinks: []string{
			"Workshops » RF design, Antennas, Digital Modes",
			"Equipment Exhibitions » Vendors & Clubs",
			"Networking » Local nets, DX sessions",
		},
		AboutCards: []Card{
			{Title: "Hands-on Workshops", Body: "Learn practical skills: antenna building, SDR usage, digital modes and noise reduction techniques."},
			{Title: "Equipment Exhibition", Body: "Explore the latest radios, accessories and homebrew projects from vendors and local clubs."},
			{Title: "Networking & DX", Body: "Meet fellow operators, exchange call signs, and participate in DX and contest-style sessions."},
		},
		Email:      "info@hamvadakara.org",
		Phone:      "+91 7356119854",
		Organizers: []string{"Local Ham Clubs", "Volunteers", "Sponsors"},
		Social:     []string{"Twitter", "Facebook", "Instagram"},
	}
}

// FullVenue returns the venue name followed by its address.
func (d Details) FullVenue() string {
	return d.VenueName + ", " + d.VenueAddress
}

// MapEmbedURL returns the Google Maps embed URL for the venue.
func (d Details) MapEmbedURL() string {
	q := url.Values{}
	q.Set("q", d.MapQuery)
	q.Set("output", "embed")
	return "https://www.google.com/maps?" + q.Encode()
}

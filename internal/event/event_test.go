package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, int64(1000), d.Fee)
	assert.Equal(t, 2026, d.Year)
	assert.Len(t, d.AboutCards, 3)
	assert.Equal(t, "Sargalaya Heritage Center, Irinave, Vadakara, Kerala 673104", d.FullVenue())
}

func TestMapEmbedURL(t *testing.T) {
	d := Default()
	assert.Equal(t,
		"https://www.google.com/maps?output=embed&q=Sargalaya+Heritage+Center%2C+Irinave%2C+Vadakara",
		d.MapEmbedURL())
}

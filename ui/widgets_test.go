package ui

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlider_Value(t *testing.T) {
	slider := Slider{Label: "Year", Key: "year", Min: 1958, Max: 2000, Default: 2017}

	tests := []struct {
		query    string
		expected int
	}{
		{"", 2000}, // default is past the top of the range
		{"year=1970", 1970},
		{"year=1958", 1958},
		{"year=1900", 1958},
		{"year=2017", 2000},
		{"year=abc", 2000},
		{"year=%201980%20", 1980},
	}

	for _, tt := range tests {
		query, err := url.ParseQuery(tt.query)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, slider.Value(query), "query %q", tt.query)
	}
}

func TestCheckbox_Value(t *testing.T) {
	box := Checkbox{Label: "Show raw data", Key: "raw"}

	for _, on := range []string{"1", "true", "on", "TRUE", "yes"} {
		assert.True(t, box.Value(url.Values{"raw": {on}}), on)
	}
	for _, off := range []string{"", "0", "false", "off", "maybe"} {
		assert.False(t, box.Value(url.Values{"raw": {off}}), off)
	}
	assert.False(t, box.Value(url.Values{}))
}

func TestWidgets_Read(t *testing.T) {
	widgets := DefaultWidgets(1958, 2000, 2017)

	state := widgets.Read(url.Values{"raw": {"on"}, "year": {"1985"}})
	assert.Equal(t, State{ShowRaw: true, Year: 1985}, state)

	state = widgets.Read(url.Values{})
	assert.Equal(t, State{ShowRaw: false, Year: 2000}, state)
}

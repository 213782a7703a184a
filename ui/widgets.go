package ui

import (
	"net/url"
	"strconv"
	"strings"
)

// Checkbox is a boolean sidebar toggle bound to a query parameter
type Checkbox struct {
	Label string
	Key   string
}

// Value reports whether the box is ticked in query
func (c Checkbox) Value(query url.Values) bool {
	switch strings.ToLower(strings.TrimSpace(query.Get(c.Key))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// Slider is a bounded integer sidebar input bound to a query parameter
type Slider struct {
	Label   string
	Key     string
	Min     int
	Max     int
	Default int
}

// Value parses the slider position from query. Missing or malformed input
// falls back to Default, and the result is always clamped to [Min, Max].
func (s Slider) Value(query url.Values) int {
	v := s.Default
	if raw := strings.TrimSpace(query.Get(s.Key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			v = parsed
		}
	}
	return s.Clamp(v)
}

// Clamp bounds v to the slider range
func (s Slider) Clamp(v int) int {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Widgets is the dashboard sidebar
type Widgets struct {
	ShowRaw Checkbox
	Year    Slider
}

// DefaultWidgets returns the sidebar with the given slider bounds
func DefaultWidgets(min, max, def int) Widgets {
	return Widgets{
		ShowRaw: Checkbox{Label: "Show raw data", Key: "raw"},
		Year:    Slider{Label: "Year", Key: "year", Min: min, Max: max, Default: def},
	}
}

// State is the sidebar state decoded from one request
type State struct {
	ShowRaw bool
	Year    int
}

// Read decodes the sidebar state from query
func (w Widgets) Read(query url.Values) State {
	return State{
		ShowRaw: w.ShowRaw.Value(query),
		Year:    w.Year.Value(query),
	}
}

// Package charts builds the dashboard's two figures. Figures are Plotly
// specs rendered client side by plotly.js; svg.go renders the same charts
// server side with gonum/plot.
package charts

import (
	"phddash/domain/dataset"
)

const (
	LineTitle = "Number of PhD recipients in the US by year"
	BoxTitle  = "Percent change in PhDs awarded, by decade"
)

// Palette is Plotly's default qualitative colour sequence
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Figure is a Plotly figure: a list of traces plus a layout
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly series
type Trace struct {
	Type          string          `json:"type"`
	Mode          string          `json:"mode,omitempty"`
	Name          string          `json:"name,omitempty"`
	X             []interface{}   `json:"x"`
	Y             []float64       `json:"y"`
	CustomData    [][]interface{} `json:"customdata,omitempty"`
	HoverTemplate string          `json:"hovertemplate,omitempty"`
	LegendGroup   string          `json:"legendgroup,omitempty"`
	OffsetGroup   string          `json:"offsetgroup,omitempty"`
	ShowLegend    bool            `json:"showlegend"`
	Marker        *Marker         `json:"marker,omitempty"`
	Line          *Line           `json:"line,omitempty"`
}

// Marker sets the point or box colour
type Marker struct {
	Color string `json:"color"`
}

// Line sets the line colour
type Line struct {
	Color string `json:"color"`
}

// Layout holds the figure title, axes and legend
type Layout struct {
	Title      Title   `json:"title"`
	XAxis      Axis    `json:"xaxis"`
	YAxis      Axis    `json:"yaxis"`
	BoxMode    string  `json:"boxmode,omitempty"`
	ShowLegend bool    `json:"showlegend"`
	Legend     *Legend `json:"legend,omitempty"`
}

// Title is a Plotly title object
type Title struct {
	Text string `json:"text"`
}

// Axis describes one chart axis
type Axis struct {
	Title         Title  `json:"title"`
	Type          string `json:"type,omitempty"`
	CategoryOrder string `json:"categoryorder,omitempty"`
}

// Legend configures the legend box
type Legend struct {
	Title Title `json:"title"`
}

// LineFigure plots Doctorate recipients against Year. Hovering a point
// shows the year, the count and the percent change.
func LineFigure(t *dataset.Table) Figure {
	trace := Trace{
		Type:       "scatter",
		Mode:       "lines",
		X:          make([]interface{}, 0, t.Len()),
		Y:          make([]float64, 0, t.Len()),
		CustomData: make([][]interface{}, 0, t.Len()),
		HoverTemplate: dataset.ColumnYear + "=%{x}<br>" +
			dataset.ColumnRecipients + "=%{y}<br>" +
			dataset.ColumnPctChange + "=%{customdata[0]}<extra></extra>",
		Line: &Line{Color: Palette[0]},
	}
	for _, r := range t.Records {
		trace.X = append(trace.X, r.Year)
		trace.Y = append(trace.Y, r.Recipients)
		var change interface{}
		if r.HasPctChange {
			change = r.PctChange
		}
		trace.CustomData = append(trace.CustomData, []interface{}{change})
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title: Title{Text: LineTitle},
			XAxis: Axis{Title: Title{Text: dataset.ColumnYear}},
			YAxis: Axis{Title: Title{Text: dataset.ColumnRecipients}},
		},
	}
}

// BoxFigure draws one box of percent change per decade, coloured by decade.
// Rows without a percent change are left out.
func BoxFigure(t *dataset.Table) Figure {
	var traces []Trace
	for i, decade := range t.Decades() {
		trace := Trace{
			Type:        "box",
			Name:        decade,
			LegendGroup: decade,
			OffsetGroup: decade,
			ShowLegend:  true,
			Marker:      &Marker{Color: Palette[i%len(Palette)]},
			HoverTemplate: dataset.ColumnDecade + "=%{x}<br>" +
				dataset.ColumnPctChange + "=%{y}<extra></extra>",
		}
		for _, v := range pctChanges(t, decade) {
			trace.X = append(trace.X, decade)
			trace.Y = append(trace.Y, v)
		}
		if len(trace.Y) == 0 {
			continue
		}
		traces = append(traces, trace)
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      Title{Text: BoxTitle},
			XAxis:      Axis{Title: Title{Text: dataset.ColumnDecade}, Type: "category"},
			YAxis:      Axis{Title: Title{Text: dataset.ColumnPctChange}},
			BoxMode:    "overlay",
			ShowLegend: true,
			Legend:     &Legend{Title: Title{Text: dataset.ColumnDecade}},
		},
	}
}

// XDomain returns the numeric extent of all trace x values. ok is false when
// the figure has no numeric x values.
func (f Figure) XDomain() (min, max float64, ok bool) {
	for _, trace := range f.Data {
		for _, x := range trace.X {
			var v float64
			switch n := x.(type) {
			case int:
				v = float64(n)
			case float64:
				v = n
			default:
				continue
			}
			if !ok || v < min {
				min = v
			}
			if !ok || v > max {
				max = v
			}
			ok = true
		}
	}
	return min, max, ok
}

func pctChanges(t *dataset.Table, decade string) []float64 {
	var values []float64
	for _, r := range t.Records {
		if r.Decade == decade && r.HasPctChange {
			values = append(values, r.PctChange)
		}
	}
	return values
}

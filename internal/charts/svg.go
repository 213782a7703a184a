package charts

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"phddash/domain/dataset"
	"phddash/internal/errors"
)

const (
	svgWidth  = 8 * vg.Inch
	svgHeight = 4.5 * vg.Inch
)

// RenderLineSVG writes the line chart as an SVG document
func RenderLineSVG(w io.Writer, t *dataset.Table) error {
	p := plot.New()
	p.Title.Text = LineTitle
	p.X.Label.Text = dataset.ColumnYear
	p.Y.Label.Text = dataset.ColumnRecipients
	p.Add(plotter.NewGrid())

	if t.Len() > 0 {
		points := make(plotter.XYs, t.Len())
		for i, r := range t.Records {
			points[i].X = float64(r.Year)
			points[i].Y = r.Recipients
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrap(err, "failed to build line plot")
		}
		line.Color = hexColor(Palette[0])
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	return writeSVG(w, p)
}

// RenderBoxSVG writes the box plot as an SVG document
func RenderBoxSVG(w io.Writer, t *dataset.Table) error {
	p := plot.New()
	p.Title.Text = BoxTitle
	p.X.Label.Text = dataset.ColumnDecade
	p.Y.Label.Text = dataset.ColumnPctChange

	var names []string
	for i, decade := range t.Decades() {
		values := pctChanges(t, decade)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(24), float64(len(names)), plotter.Values(values))
		if err != nil {
			return errors.Wrapf(err, "failed to build box for %s", decade)
		}
		box.FillColor = hexColor(Palette[i%len(Palette)])
		p.Add(box)
		names = append(names, decade)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}

	return writeSVG(w, p)
}

func writeSVG(w io.Writer, p *plot.Plot) error {
	writer, err := p.WriterTo(svgWidth, svgHeight, "svg")
	if err != nil {
		return errors.Wrap(err, "failed to create svg canvas")
	}
	if _, err := writer.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write svg")
	}
	return nil
}

// hexColor converts "#RRGGBB" to a color. Malformed input yields black.
func hexColor(hex string) color.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return color.Black
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// Render dispatches on chart name ("line" or "box")
func Render(w io.Writer, chart string, t *dataset.Table) error {
	switch chart {
	case "line":
		return RenderLineSVG(w, t)
	case "box":
		return RenderBoxSVG(w, t)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown chart %q", chart))
	}
}

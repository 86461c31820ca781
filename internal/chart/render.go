package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
)

// Render rasterizes a layout with the given theme.
func Render(l Layout, theme Theme) *image.RGBA {
	c := newCanvas(l.Width, l.Height, theme.Background)
	c.text(theme.Muted, l.Caption)

	if l.Empty {
		c.line(theme.Grid, Segment{From: Point{l.Plot.X0, l.Plot.Y1}, To: Point{l.Plot.X1, l.Plot.Y1}}, 1)
		c.text(theme.Muted, l.Placeholder)
		return c.img
	}

	if l.Band != nil {
		c.rect(theme.Band, l.Band.Area)
	}
	for _, g := range l.Grid {
		c.line(theme.Grid, g, 1)
	}
	if l.Band != nil {
		for _, e := range l.Band.Edges {
			c.line(theme.BandEdge, e, 1)
		}
		c.text(theme.BandEdge, l.Band.Caption)
	}
	c.line(theme.Muted, l.Axis, 1)
	for _, t := range l.Ticks {
		c.text(theme.Muted, t)
	}

	for _, m := range l.Marks {
		switch l.Mode {
		case Bar:
			c.rect(theme.Accent, m.Bar)
		default:
			c.line(theme.Stem, m.Stem, 3)
			c.circle(theme.Accent, m.Marker, m.Radius)
		}
		c.text(theme.Text, m.Label)
		c.text(theme.Muted, m.Value)
	}
	return c.img
}

// EncodePNG lays out, renders and encodes a chart.
func EncodePNG(w io.Writer, spec Spec, theme Theme) error {
	l, err := Lay(spec)
	if err != nil {
		return err
	}
	if err := png.Encode(w, Render(l, theme)); err != nil {
		return fmt.Errorf("encode chart png: %w", err)
	}
	return nil
}

// PNG is EncodePNG into a byte slice.
func PNG(spec Spec, theme Theme) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := EncodePNG(buf, spec, theme); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

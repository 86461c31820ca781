package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// Axis extent of the strength development chart: 0.08 h to 30 h and
// 0.08 MPa to 20 MPa, both logarithmic.
const (
	StrengthXMin = 0.08
	StrengthXMax = 30
	StrengthYMin = 0.08
	StrengthYMax = 20

	strengthFloor = 0.01
	curveMinAge   = 0.05
)

var (
	strengthPad  = padding{left: 64, right: 130, top: 44, bottom: 44}
	strengthMajX = []float64{0.1, 1, 10}
	strengthMinX = []float64{0.2, 0.5, 2, 5, 20}
	strengthMajY = []float64{0.1, 1, 10}
	strengthMinY = []float64{0.2, 0.5, 2, 5}
)

// Shape is the marker drawn for a measured point.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeDiamond
)

// XY is a data point, age in hours against strength in MPa.
type XY struct{ X, Y float64 }

// Curve is a reference strength envelope drawn as a polyline.
type Curve struct {
	Name   string
	Color  color.RGBA
	Points []XY
}

// Scatter is a set of measured points.
type Scatter struct {
	Name   string
	Color  color.RGBA
	Shape  Shape
	Points []XY
}

// StrengthSpec is the input of the strength development chart.
type StrengthSpec struct {
	Caption  string
	Curves   []Curve
	Measured []Scatter
	Width    int
	Height   int
}

// PlacedCurve is a curve in pixel space.
type PlacedCurve struct {
	Color  color.RGBA
	Points []Point
}

// PlacedPoint is a measured point in pixel space.
type PlacedPoint struct {
	Color color.RGBA
	Shape Shape
	At    Point
}

// LegendEntry is one legend row; Line entries show a stroke, others a marker.
type LegendEntry struct {
	Color  color.RGBA
	Line   bool
	Shape  Shape
	Sample Point
	Text   Text
}

// StrengthLayout is the placed strength development chart.
type StrengthLayout struct {
	Width     int
	Height    int
	Plot      Rect
	Grid      []Segment
	MinorGrid []Segment
	Ticks     []Text
	Labels    []Text
	Caption   Text
	Curves    []PlacedCurve
	Points    []PlacedPoint
	Legend    []LegendEntry
}

// LayStrength places reference curves and measured points on log-log axes.
// Points at or below zero age are skipped; strengths are floored at
// 0.01 MPa so they stay on the log axis.
func LayStrength(spec StrengthSpec) (StrengthLayout, error) {
	pad := strengthPad
	plot := Rect{
		X0: pad.left,
		Y0: pad.top,
		X1: float64(spec.Width) - pad.right,
		Y1: float64(spec.Height) - pad.bottom,
	}
	if plot.Dx() <= 0 || plot.Dy() <= 0 {
		return StrengthLayout{}, fmt.Errorf("%w: %dx%d", ErrTooSmall, spec.Width, spec.Height)
	}

	xOf := logScale(StrengthXMin, StrengthXMax, plot.X0, plot.X1)
	yOf := logScale(StrengthYMin, StrengthYMax, plot.Y1, plot.Y0)

	l := StrengthLayout{
		Width:   spec.Width,
		Height:  spec.Height,
		Plot:    plot,
		Caption: Text{S: spec.Caption, At: Point{plot.X0, 20}},
		Labels: []Text{
			{S: "Age (h, log)", At: Point{plot.X0 + plot.Dx()/2, plot.Y1 + 34}, Align: AlignCenter},
			{S: "MPa (log)", At: Point{plot.X0 - 8, plot.Y0 - 8}, Align: AlignRight},
		},
	}

	for _, x := range strengthMajX {
		px := xOf(x)
		l.Grid = append(l.Grid, Segment{From: Point{px, plot.Y0}, To: Point{px, plot.Y1}})
		l.Ticks = append(l.Ticks, Text{S: trimFloat(x), At: Point{px, plot.Y1 + 16}, Align: AlignCenter})
	}
	for _, x := range strengthMinX {
		px := xOf(x)
		l.MinorGrid = append(l.MinorGrid, Segment{From: Point{px, plot.Y0}, To: Point{px, plot.Y1}})
	}
	for _, y := range strengthMajY {
		py := yOf(y)
		l.Grid = append(l.Grid, Segment{From: Point{plot.X0, py}, To: Point{plot.X1, py}})
		l.Ticks = append(l.Ticks, Text{S: trimFloat(y), At: Point{plot.X0 - 8, py + 4}, Align: AlignRight})
	}
	for _, y := range strengthMinY {
		py := yOf(y)
		l.MinorGrid = append(l.MinorGrid, Segment{From: Point{plot.X0, py}, To: Point{plot.X1, py}})
	}

	legendY := plot.Y0 + 8
	legendX := plot.X1 + 14
	addLegend := func(e LegendEntry, name string) {
		e.Sample = Point{legendX + 8, legendY - 4}
		e.Text = Text{S: Truncate(name, 14), At: Point{legendX + 22, legendY}}
		l.Legend = append(l.Legend, e)
		legendY += 18
	}

	for _, c := range spec.Curves {
		pc := PlacedCurve{Color: c.Color}
		for _, p := range c.Points {
			x := math.Max(curveMinAge, p.X)
			y := math.Max(strengthFloor, p.Y)
			pc.Points = append(pc.Points, Point{xOf(x), yOf(y)})
		}
		l.Curves = append(l.Curves, pc)
		addLegend(LegendEntry{Color: c.Color, Line: true}, c.Name)
	}

	for _, s := range spec.Measured {
		placed := 0
		for _, p := range s.Points {
			if p.X <= 0 || math.IsNaN(p.X) || math.IsNaN(p.Y) {
				continue
			}
			y := math.Max(strengthFloor, p.Y)
			l.Points = append(l.Points, PlacedPoint{Color: s.Color, Shape: s.Shape, At: Point{xOf(p.X), yOf(y)}})
			placed++
		}
		if placed > 0 {
			addLegend(LegendEntry{Color: s.Color, Shape: s.Shape}, s.Name)
		}
	}
	return l, nil
}

// RenderStrength rasterizes a strength layout.
func RenderStrength(l StrengthLayout, theme Theme) *image.RGBA {
	c := newCanvas(l.Width, l.Height, theme.Background)
	c.text(theme.Muted, l.Caption)

	minor := theme.Grid
	minor.A /= 2
	minor.R /= 2
	minor.G /= 2
	minor.B /= 2
	for _, g := range l.MinorGrid {
		c.line(minor, g, 1)
	}
	for _, g := range l.Grid {
		c.line(theme.Grid, g, 1)
	}
	c.line(theme.Muted, Segment{From: Point{l.Plot.X0, l.Plot.Y1}, To: Point{l.Plot.X1, l.Plot.Y1}}, 1)
	c.line(theme.Muted, Segment{From: Point{l.Plot.X0, l.Plot.Y0}, To: Point{l.Plot.X0, l.Plot.Y1}}, 1)
	for _, t := range l.Ticks {
		c.text(theme.Muted, t)
	}
	for _, t := range l.Labels {
		c.text(theme.Muted, t)
	}

	for _, pc := range l.Curves {
		c.polyline(pc.Color, pc.Points, 2.2)
		for _, p := range pc.Points {
			c.circle(pc.Color, p, 3)
		}
	}
	for _, p := range l.Points {
		drawShape(c, theme.Background, p.Shape, p.At, 6)
		drawShape(c, p.Color, p.Shape, p.At, 5)
	}
	for _, e := range l.Legend {
		if e.Line {
			c.line(e.Color, Segment{From: Point{e.Sample.X - 8, e.Sample.Y}, To: Point{e.Sample.X + 8, e.Sample.Y}}, 2.2)
		} else {
			drawShape(c, e.Color, e.Shape, e.Sample, 5)
		}
		c.text(theme.Text, e.Text)
	}
	return c.img
}

// StrengthPNG lays out, renders and encodes the strength chart.
func StrengthPNG(spec StrengthSpec, theme Theme) ([]byte, error) {
	l, err := LayStrength(spec)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, RenderStrength(l, theme)); err != nil {
		return nil, fmt.Errorf("encode strength png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawShape(c *canvas, col color.RGBA, s Shape, at Point, r float64) {
	if s == ShapeDiamond {
		c.diamond(col, at, r*1.2)
		return
	}
	c.circle(col, at, r)
}

// logScale maps [lo, hi] onto [p0, p1] logarithmically, clamping outside values.
func logScale(lo, hi, p0, p1 float64) func(float64) float64 {
	llo, lhi := math.Log10(lo), math.Log10(hi)
	return func(v float64) float64 {
		t := clamp01((math.Log10(v) - llo) / (lhi - llo))
		return p0 + t*(p1-p0)
	}
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}

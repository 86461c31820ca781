// Package chart lays out and rasterizes the report charts. Layout is pure
// geometry and fully deterministic; Render turns a Layout into pixels.
package chart

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// Mode selects the chart layout.
type Mode int

const (
	// Lollipop draws one horizontal row per category.
	Lollipop Mode = iota
	// Bar draws vertical bars with angled labels.
	Bar
)

// Band is a target range overlaid on the plot.
type Band struct {
	Min     float64
	Max     float64
	Caption string
}

// Spec is the input of a chart.
type Spec struct {
	Labels  []string
	Values  []float64
	Unit    string
	Caption string
	Band    *Band
	Mode    Mode
	Width   int
	Height  int
}

// Point is a position in pixels.
type Point struct{ X, Y float64 }

// Rect spans X0..X1 and Y0..Y1 in pixels.
type Rect struct{ X0, Y0, X1, Y1 float64 }

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.X1 - r.X0 }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Y1 - r.Y0 }

// Segment is a straight line.
type Segment struct{ From, To Point }

// Align anchors text relative to its position.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Text is a label placed at a baseline position. Angle is in degrees,
// negative values rise to the right.
type Text struct {
	S     string
	At    Point
	Align Align
	Angle float64
}

// Mark is everything drawn for one category.
type Mark struct {
	Stem   Segment
	Marker Point
	Radius float64
	Bar    Rect
	Label  Text
	Value  Text
}

// BandOverlay is the placed target band.
type BandOverlay struct {
	Area    Rect
	Edges   [2]Segment
	Caption Text
}

// Layout is the fully placed chart.
type Layout struct {
	Mode        Mode
	Width       int
	Height      int
	Plot        Rect
	AxisMax     float64
	Axis        Segment
	Grid        []Segment
	Ticks       []Text
	Caption     Text
	Band        *BandOverlay
	Marks       []Mark
	Empty       bool
	Placeholder Text
}

const (
	// LabelBudget is the longest category label drawn on lollipop rows.
	LabelBudget = 22
	// BarLabelBudget is the longest angled label drawn under a bar.
	BarLabelBudget = 16

	// NoDataText is drawn in place of a plot with zero categories.
	NoDataText = "No data"

	charWidth    = 7 // basicfont.Face7x13 advance
	markerRadius = 6
	maxBarWidth  = 48
	minBarGap    = 12
	labelAngle   = -45
)

type padding struct{ left, right, top, bottom float64 }

var (
	lollipopPad = padding{left: 190, right: 24, top: 44, bottom: 30}
	barPad      = padding{left: 56, right: 24, top: 44, bottom: 96}
)

// ErrTooSmall is returned when the canvas leaves no room for a plot.
var ErrTooSmall = errors.New("chart canvas too small")

// Lay computes the geometry of a chart.
func Lay(spec Spec) (Layout, error) {
	if len(spec.Labels) != len(spec.Values) {
		return Layout{}, fmt.Errorf("chart: %d labels but %d values", len(spec.Labels), len(spec.Values))
	}
	pad := lollipopPad
	if spec.Mode == Bar {
		pad = barPad
	}
	plot := Rect{
		X0: pad.left,
		Y0: pad.top,
		X1: float64(spec.Width) - pad.right,
		Y1: float64(spec.Height) - pad.bottom,
	}
	if plot.Dx() <= 0 || plot.Dy() <= 0 {
		return Layout{}, fmt.Errorf("%w: %dx%d", ErrTooSmall, spec.Width, spec.Height)
	}

	l := Layout{
		Mode:    spec.Mode,
		Width:   spec.Width,
		Height:  spec.Height,
		Plot:    plot,
		Caption: Text{S: spec.Caption, At: Point{X: plot.X0, Y: 20}},
	}

	if len(spec.Labels) == 0 {
		l.Empty = true
		l.AxisMax = 1
		l.Placeholder = Text{
			S:     NoDataText,
			At:    Point{X: float64(spec.Width) / 2, Y: plot.Y0 + plot.Dy()/2},
			Align: AlignCenter,
		}
		return l, nil
	}

	maxV := 0.0
	for _, v := range spec.Values {
		if !math.IsNaN(v) && v > maxV {
			maxV = v
		}
	}
	if spec.Band != nil && spec.Band.Max > maxV {
		maxV = spec.Band.Max
	}
	l.AxisMax = NiceMax(maxV)

	if spec.Mode == Bar {
		layBars(&l, spec)
	} else {
		layLollipops(&l, spec)
	}
	return l, nil
}

func layLollipops(l *Layout, spec Spec) {
	p := l.Plot
	xOf := func(v float64) float64 { return p.X0 + clamp01(v/l.AxisMax)*p.Dx() }

	l.Axis = Segment{From: Point{p.X0, p.Y0}, To: Point{p.X0, p.Y1}}
	for _, v := range tickValues(l.AxisMax) {
		x := xOf(v)
		l.Grid = append(l.Grid, Segment{From: Point{x, p.Y0}, To: Point{x, p.Y1}})
		l.Ticks = append(l.Ticks, Text{S: models.FormatNumber(v), At: Point{x, p.Y1 + 16}, Align: AlignCenter})
	}

	if spec.Band != nil {
		x0, x1 := xOf(spec.Band.Min), xOf(spec.Band.Max)
		l.Band = &BandOverlay{
			Area: Rect{X0: x0, Y0: p.Y0, X1: x1, Y1: p.Y1},
			Edges: [2]Segment{
				{From: Point{x0, p.Y0}, To: Point{x0, p.Y1}},
				{From: Point{x1, p.Y0}, To: Point{x1, p.Y1}},
			},
			Caption: Text{S: spec.Band.Caption, At: Point{x1, p.Y0 - 6}, Align: AlignRight},
		}
	}

	n := len(spec.Labels)
	rowH := p.Dy() / float64(n)
	for i := 0; i < n; i++ {
		y := p.Y0 + rowH*float64(i) + rowH/2
		v := spec.Values[i]
		x := xOf(v)

		value := models.FormatNumber(v) + spec.Unit
		valueX := math.Min(x+10, float64(l.Width)-4-textWidth(value))

		l.Marks = append(l.Marks, Mark{
			Stem:   Segment{From: Point{p.X0, y}, To: Point{x, y}},
			Marker: Point{x, y},
			Radius: markerRadius,
			Label:  Text{S: Truncate(spec.Labels[i], LabelBudget), At: Point{p.X0 - 10, y + 4}, Align: AlignRight},
			Value:  Text{S: value, At: Point{valueX, y + 4}},
		})
	}
}

func layBars(l *Layout, spec Spec) {
	p := l.Plot
	yOf := func(v float64) float64 { return p.Y1 - clamp01(v/l.AxisMax)*p.Dy() }

	l.Axis = Segment{From: Point{p.X0, p.Y1}, To: Point{p.X1, p.Y1}}
	for _, v := range tickValues(l.AxisMax) {
		y := yOf(v)
		l.Grid = append(l.Grid, Segment{From: Point{p.X0, y}, To: Point{p.X1, y}})
		l.Ticks = append(l.Ticks, Text{S: models.FormatNumber(v), At: Point{p.X0 - 8, y + 4}, Align: AlignRight})
	}

	if spec.Band != nil {
		y0, y1 := yOf(spec.Band.Max), yOf(spec.Band.Min)
		l.Band = &BandOverlay{
			Area: Rect{X0: p.X0, Y0: y0, X1: p.X1, Y1: y1},
			Edges: [2]Segment{
				{From: Point{p.X0, y0}, To: Point{p.X1, y0}},
				{From: Point{p.X0, y1}, To: Point{p.X1, y1}},
			},
			Caption: Text{S: spec.Band.Caption, At: Point{p.X1, y0 - 4}, Align: AlignRight},
		}
	}

	n := len(spec.Labels)
	slot := p.Dx() / float64(n)
	width := BarWidth(slot)
	for i := 0; i < n; i++ {
		cx := p.X0 + slot*(float64(i)+0.5)
		top := yOf(spec.Values[i])
		l.Marks = append(l.Marks, Mark{
			Bar:   Rect{X0: cx - width/2, Y0: top, X1: cx + width/2, Y1: p.Y1},
			Label: Text{S: Truncate(spec.Labels[i], BarLabelBudget), At: Point{cx, p.Y1 + 14}, Align: AlignRight, Angle: labelAngle},
			Value: Text{S: models.FormatNumber(spec.Values[i]) + spec.Unit, At: Point{cx, top - 6}, Align: AlignCenter},
		})
	}
}

// BarWidth caps bars at maxBarWidth and keeps at least minBarGap between
// neighbours. Bars never get thinner than 1px, so slots narrower than
// minBarGap+1 are the only case where the gap shrinks.
func BarWidth(slot float64) float64 {
	return math.Max(1, math.Min(maxBarWidth, slot-minBarGap))
}

// Truncate shortens s to at most budget runes, ending in an ellipsis.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	return string(runes[:budget-1]) + "…"
}

func textWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s) * charWidth)
}

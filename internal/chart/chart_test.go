package chart

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNiceMax(t *testing.T) {
	cases := map[float64]float64{
		3:    5,
		7:    10,
		23:   25,
		48:   50,
		91:   100,
		10:   10,
		11:   20,
		0.2:  0.2,
		0.33: 0.5,
	}
	for in, want := range cases {
		assert.InDelta(t, want, NiceMax(in), 1e-9, "NiceMax(%v)", in)
	}
	assert.Equal(t, 1.0, NiceMax(0))
	assert.Equal(t, 1.0, NiceMax(-4))
	assert.Equal(t, 1.0, NiceMax(math.NaN()))
}

func TestLay_EmptyShowsPlaceholder(t *testing.T) {
	l, err := Lay(Spec{Caption: "Slump", Width: 900, Height: 360})
	require.NoError(t, err)
	assert.True(t, l.Empty)
	assert.Equal(t, NoDataText, l.Placeholder.S)
	assert.Empty(t, l.Marks)
	assert.Equal(t, 1.0, l.AxisMax)
}

func TestLay_LollipopGeometry(t *testing.T) {
	l, err := Lay(Spec{
		Labels: []string{"CX-200", "TJ-450"},
		Values: []float64{5, 10},
		Unit:   `"`,
		Mode:   Lollipop,
		Width:  900,
		Height: 360,
	})
	require.NoError(t, err)
	require.Len(t, l.Marks, 2)
	assert.Equal(t, 10.0, l.AxisMax)

	rowH := l.Plot.Dy() / 2
	for i, m := range l.Marks {
		assert.InDelta(t, l.Plot.Y0+rowH*float64(i)+rowH/2, m.Stem.From.Y, 1e-9)
		assert.Equal(t, l.Plot.X0, m.Stem.From.X)
	}
	assert.InDelta(t, 5.0/10*l.Plot.Dx(), l.Marks[0].Stem.To.X-l.Marks[0].Stem.From.X, 1e-9)
	assert.InDelta(t, l.Plot.Dx(), l.Marks[1].Stem.To.X-l.Marks[1].Stem.From.X, 1e-9)
	assert.Equal(t, `5"`, l.Marks[0].Value.S)
	assert.Len(t, l.Ticks, gridDivisions+1)
}

func TestLay_BandRaisesAxis(t *testing.T) {
	l, err := Lay(Spec{
		Labels: []string{"TJ-450"},
		Values: []float64{3},
		Band:   &Band{Min: 8, Max: 11, Caption: "Target"},
		Width:  900,
		Height: 360,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, l.AxisMax)
	require.NotNil(t, l.Band)
	assert.InDelta(t, l.Plot.X0+8.0/20*l.Plot.Dx(), l.Band.Area.X0, 1e-9)
	assert.InDelta(t, l.Plot.X0+11.0/20*l.Plot.Dx(), l.Band.Area.X1, 1e-9)
	assert.Equal(t, "Target", l.Band.Caption.S)
}

func TestLay_Bars(t *testing.T) {
	labels := []string{"a very long heading name", "b"}
	l, err := Lay(Spec{Labels: labels, Values: []float64{12, 4}, Mode: Bar, Width: 900, Height: 360})
	require.NoError(t, err)
	require.Len(t, l.Marks, 2)
	assert.Equal(t, 20.0, l.AxisMax)

	bar := l.Marks[0].Bar
	assert.InDelta(t, 48, bar.Dx(), 1e-9)
	assert.Equal(t, l.Plot.Y1, bar.Y1)
	assert.InDelta(t, 12.0/20*l.Plot.Dy(), bar.Dy(), 1e-9)
	assert.Equal(t, float64(labelAngle), l.Marks[0].Label.Angle)
	assert.Equal(t, BarLabelBudget, utf8.RuneCountInString(l.Marks[0].Label.S))
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 48.0, BarWidth(200))
	assert.Equal(t, 8.0, BarWidth(20))
	assert.Equal(t, 2.0, BarWidth(14))
	assert.Equal(t, 1.0, BarWidth(13))
	assert.Equal(t, 1.0, BarWidth(10))

	for slot := float64(minBarGap + 1); slot <= 200; slot += 0.5 {
		assert.GreaterOrEqual(t, slot-BarWidth(slot), float64(minBarGap), "slot %v", slot)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 22))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "Ñan…", Truncate("Ñandúes", 4))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestLay_Errors(t *testing.T) {
	_, err := Lay(Spec{Labels: []string{"a"}, Values: []float64{1, 2}, Width: 900, Height: 360})
	assert.Error(t, err)

	_, err = Lay(Spec{Width: 100, Height: 50})
	assert.ErrorIs(t, err, ErrTooSmall)

	_, err = LayStrength(StrengthSpec{Width: 150, Height: 60})
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestPNG_DecodesAtRequestedSize(t *testing.T) {
	data, err := PNG(Spec{Labels: []string{"TJ-450"}, Values: []float64{9.5}, Mode: Bar, Width: 640, Height: 320}, DefaultTheme())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())

	empty, err := PNG(Spec{Width: 640, Height: 320}, DefaultTheme())
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(empty))
	assert.NoError(t, err)
}

func TestRender_FillsBars(t *testing.T) {
	theme := DefaultTheme()
	l, err := Lay(Spec{Labels: []string{"TJ-450"}, Values: []float64{10}, Mode: Bar, Width: 640, Height: 320})
	require.NoError(t, err)

	img := Render(l, theme)
	bar := l.Marks[0].Bar
	mid := img.RGBAAt(int((bar.X0+bar.X1)/2), int((bar.Y0+bar.Y1)/2))
	assert.Equal(t, theme.Accent, mid)
	assert.Equal(t, theme.Background, img.RGBAAt(1, l.Height-2))
}

func TestLayStrength(t *testing.T) {
	red := color.RGBA{0xef, 0x44, 0x44, 0xff}
	l, err := LayStrength(StrengthSpec{
		Caption: "Strength",
		Curves:  []Curve{{Name: "J2", Color: red, Points: []XY{{0.1, 0.2}, {1, 0.5}, {24, 5}}}},
		Measured: []Scatter{
			{Name: "Method A", Color: red, Points: []XY{{0, 1}, {-1, 2}, {1, 1}}},
			{Name: "Method B", Color: red, Shape: ShapeDiamond},
		},
		Width:  900,
		Height: 420,
	})
	require.NoError(t, err)

	require.Len(t, l.Curves, 1)
	assert.Len(t, l.Curves[0].Points, 3)
	require.Len(t, l.Points, 1)
	require.Len(t, l.Legend, 2)
	assert.True(t, l.Legend[0].Line)
	assert.Equal(t, "Method A", l.Legend[1].Text.S)

	p := l.Points[0].At
	wantX := l.Plot.X0 + (math.Log10(1)-math.Log10(StrengthXMin))/(math.Log10(StrengthXMax)-math.Log10(StrengthXMin))*l.Plot.Dx()
	assert.InDelta(t, wantX, p.X, 1e-6)
	assert.True(t, p.Y > l.Plot.Y0 && p.Y < l.Plot.Y1)

	// a later age sits further right, a higher strength further up
	c := l.Curves[0].Points
	assert.Less(t, c[0].X, c[1].X)
	assert.Greater(t, c[1].Y, c[2].Y)

	data, err := StrengthPNG(StrengthSpec{Width: 900, Height: 420}, DefaultTheme())
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#7c3aed")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x7c, 0x3a, 0xed, 0xff}, c)

	c, err = ParseHex("fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, c)

	_, err = ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

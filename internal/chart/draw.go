package chart

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var face = basicfont.Face7x13

// canvas wraps an RGBA image with the handful of primitives the charts need.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int, bg color.RGBA) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) polygon(col color.RGBA, pts ...Point) {
	if len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *canvas) rect(col color.RGBA, r Rect) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	c.polygon(col, Point{r.X0, r.Y0}, Point{r.X1, r.Y0}, Point{r.X1, r.Y1}, Point{r.X0, r.Y1})
}

// line strokes a segment as a quad of the given width.
func (c *canvas) line(col color.RGBA, s Segment, width float64) {
	dx, dy := s.To.X-s.From.X, s.To.Y-s.From.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	c.polygon(col,
		Point{s.From.X + nx, s.From.Y + ny},
		Point{s.To.X + nx, s.To.Y + ny},
		Point{s.To.X - nx, s.To.Y - ny},
		Point{s.From.X - nx, s.From.Y - ny},
	)
}

func (c *canvas) polyline(col color.RGBA, pts []Point, width float64) {
	for i := 1; i < len(pts); i++ {
		c.line(col, Segment{From: pts[i-1], To: pts[i]}, width)
	}
}

func (c *canvas) circle(col color.RGBA, center Point, r float64) {
	const sides = 32
	pts := make([]Point, sides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / sides
		pts[i] = Point{center.X + r*math.Cos(a), center.Y + r*math.Sin(a)}
	}
	c.polygon(col, pts...)
}

func (c *canvas) diamond(col color.RGBA, center Point, r float64) {
	c.polygon(col,
		Point{center.X, center.Y - r},
		Point{center.X + r, center.Y},
		Point{center.X, center.Y + r},
		Point{center.X - r, center.Y},
	)
}

func (c *canvas) text(col color.RGBA, t Text) {
	if t.S == "" {
		return
	}
	if t.Angle != 0 {
		c.rotatedText(col, t)
		return
	}
	w := font.MeasureString(face, t.S).Ceil()
	x := int(math.Round(t.At.X))
	switch t.Align {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(int(math.Round(t.At.Y)))},
	}
	d.DrawString(t.S)
}

// rotatedText draws the string on a scratch image and maps it onto the
// canvas with an affine transform around the anchor.
func (c *canvas) rotatedText(col color.RGBA, t Text) {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	w := font.MeasureString(face, t.S).Ceil()
	scratch := image.NewRGBA(image.Rect(0, 0, w+2, ascent+descent))
	d := &font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(1), Y: fixed.I(ascent)},
	}
	d.DrawString(t.S)

	var ox float64
	switch t.Align {
	case AlignCenter:
		ox = float64(w) / 2
	case AlignRight:
		ox = float64(w)
	}
	oy := float64(ascent)

	theta := t.Angle * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	s2d := f64.Aff3{
		cos, -sin, t.At.X - (cos*ox - sin*oy),
		sin, cos, t.At.Y - (sin*ox + cos*oy),
	}
	xdraw.BiLinear.Transform(c.img, s2d, scratch, scratch.Bounds(), xdraw.Over, nil)
}

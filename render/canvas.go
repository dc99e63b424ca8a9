package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type point struct {
	x, y float64
}

// Canvas is a Surface backed by an RGBA image. Backing image is larger
// than the logical size by the scale factor.
type Canvas struct {
	img           *image.RGBA
	width, height float64
	scale         float64
	z             *vector.Rasterizer
	paths         [][]point
}

// NewCanvas creates a canvas of logical size. Scale is the device
// scale factor, values less or equal to zero are treated as 1.
func NewCanvas(width, height int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	pw, ph := int(math.Ceil(float64(width)*scale)), int(math.Ceil(float64(height)*scale))
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, pw, ph)),
		width:  float64(width),
		height: float64(height),
		scale:  scale,
		z:      vector.NewRasterizer(pw, ph),
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Scale returns the device scale factor.
func (c *Canvas) Scale() float64 {
	return c.scale
}

// Size returns logical size of the canvas.
func (c *Canvas) Size() (float64, float64) {
	return c.width, c.height
}

// FillRect fills the rectangle with color.
func (c *Canvas) FillRect(x, y, width, height float64, col color.Color) {
	r := image.Rect(
		int(math.Round(x*c.scale)),
		int(math.Round(y*c.scale)),
		int(math.Round((x+width)*c.scale)),
		int(math.Round((y+height)*c.scale)),
	)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// BeginPath discards the current path.
func (c *Canvas) BeginPath() {
	c.paths = c.paths[:0]
}

// MoveTo starts a new sub-path.
func (c *Canvas) MoveTo(x, y float64) {
	c.paths = append(c.paths, []point{{x * c.scale, y * c.scale}})
}

// LineTo adds a segment to the current sub-path. Without sub-path it
// acts as MoveTo.
func (c *Canvas) LineTo(x, y float64) {
	if len(c.paths) == 0 {
		c.MoveTo(x, y)
		return
	}
	last := len(c.paths) - 1
	c.paths[last] = append(c.paths[last], point{x * c.scale, y * c.scale})
}

// Stroke outlines the current path. Every segment is rasterized as a
// quad of the line width, all quads share the same winding so overlaps
// are not accumulated.
func (c *Canvas) Stroke(col color.Color, lineWidth float64) {
	half := lineWidth * c.scale / 2
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	for _, path := range c.paths {
		for i := 1; i < len(path); i++ {
			c.segment(path[i-1], path[i], half)
		}
	}
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *Canvas) segment(a, b point, half float64) {
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	c.z.MoveTo(float32(a.x+nx), float32(a.y+ny))
	c.z.LineTo(float32(b.x+nx), float32(b.y+ny))
	c.z.LineTo(float32(b.x-nx), float32(b.y-ny))
	c.z.LineTo(float32(a.x-nx), float32(a.y-ny))
	c.z.ClosePath()
}

// FillText draws the text with fixed 7x13 face. Size of the style is
// ignored, bold text is drawn twice with one pixel offset.
func (c *Canvas) FillText(text string, x, y float64, style Text) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(style.Color),
		Face: basicfont.Face7x13,
	}
	px := x * c.scale
	if style.Align == Center {
		px -= float64(d.MeasureString(text).Ceil()) / 2
	}
	dot := fixed.P(int(math.Round(px)), int(math.Round(y*c.scale)))
	d.Dot = dot
	d.DrawString(text)
	if style.Bold {
		d.Dot = dot.Add(fixed.P(1, 0))
		d.DrawString(text)
	}
}

package signature

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"docforms-backend/internal/document"
)

const (
	DefaultWidth    = 380
	DefaultHeight   = 150
	DefaultPenWidth = 2.5

	// MaxPoints caps the pen points accepted for a single signature.
	MaxPoints = 5000

	maxCanvasSide = 2048
	dotSegments   = 12
)

// Point is a pen position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen-down gesture.
type Stroke []Point

// Options configures the drawing surface.
type Options struct {
	Width    int
	Height   int
	PenWidth float64
	Ink      color.Color
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Width > maxCanvasSide {
		o.Width = maxCanvasSide
	}
	if o.Height > maxCanvasSide {
		o.Height = maxCanvasSide
	}
	if o.PenWidth <= 0 {
		o.PenWidth = DefaultPenWidth
	}
	if o.Ink == nil {
		o.Ink = color.Black
	}
	return o
}

// Pad accumulates strokes and renders them to a cropped PNG. Safe for concurrent use.
type Pad struct {
	mu      sync.Mutex
	opts    Options
	strokes []Stroke
}

// NewPad returns an empty pad.
func NewPad(opts Options) *Pad {
	return &Pad{opts: opts.withDefaults()}
}

// AddStroke records a stroke. Points are clamped to the canvas; empty strokes are ignored.
func (p *Pad) AddStroke(points ...Point) {
	if len(points) == 0 {
		return
	}
	clamped := make(Stroke, 0, len(points))
	for _, pt := range points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			continue
		}
		clamped = append(clamped, Point{
			X: clamp(pt.X, 0, float64(p.opts.Width)),
			Y: clamp(pt.Y, 0, float64(p.opts.Height)),
		})
	}
	if len(clamped) == 0 {
		return
	}
	p.mu.Lock()
	p.strokes = append(p.strokes, clamped)
	p.mu.Unlock()
}

// Clear discards all strokes.
func (p *Pad) Clear() {
	p.mu.Lock()
	p.strokes = nil
	p.mu.Unlock()
}

// IsEmpty reports whether nothing was drawn since construction or the last Clear.
func (p *Pad) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.strokes) == 0
}

// ExportImage renders the strokes and crops to the ink bounding box.
// An empty pad yields the empty SignatureImage.
func (p *Pad) ExportImage() (document.SignatureImage, error) {
	p.mu.Lock()
	strokes := make([]Stroke, len(p.strokes))
	copy(strokes, p.strokes)
	opts := p.opts
	p.mu.Unlock()

	if len(strokes) == 0 {
		return document.SignatureImage{}, nil
	}

	canvas := render(strokes, opts)
	bounds := inkBounds(canvas)
	if bounds.Empty() {
		return document.SignatureImage{}, nil
	}

	cropped := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(cropped, cropped.Bounds(), canvas, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return document.SignatureImage{}, fmt.Errorf("encode signature: %w", err)
	}
	return document.SignatureImage{PNG: buf.Bytes()}, nil
}

// Render draws strokes on a fresh pad and exports the result.
func Render(strokes []Stroke, opts Options) (document.SignatureImage, error) {
	if CountPoints(strokes) > MaxPoints {
		return document.SignatureImage{}, ErrTooManyPoints
	}
	pad := NewPad(opts)
	for _, s := range strokes {
		pad.AddStroke(s...)
	}
	return pad.ExportImage()
}

// CountPoints totals the points across strokes.
func CountPoints(strokes []Stroke) int {
	n := 0
	for _, s := range strokes {
		n += len(s)
	}
	return n
}

func render(strokes []Stroke, opts Options) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	ink := image.NewUniform(opts.Ink)
	radius := float32(opts.PenWidth / 2)
	r := vector.NewRasterizer(1, 1)

	// Each shape is filled in its own pass so overlapping outlines never
	// cancel. The rasterizer only covers the shape's bounding box, with its
	// origin at box.Min.
	fill := func(x0, y0, x1, y1 float32, path func(r *vector.Rasterizer, ox, oy float32)) {
		box := image.Rect(
			int(math.Floor(float64(min(x0, x1)-radius-1))),
			int(math.Floor(float64(min(y0, y1)-radius-1))),
			int(math.Ceil(float64(max(x0, x1)+radius+1))),
			int(math.Ceil(float64(max(y0, y1)+radius+1))),
		).Intersect(canvas.Bounds())
		if box.Empty() {
			return
		}
		r.Reset(box.Dx(), box.Dy())
		path(r, float32(box.Min.X), float32(box.Min.Y))
		r.Draw(canvas, box, ink, image.Point{})
	}

	for _, stroke := range strokes {
		for i, pt := range stroke {
			x, y := float32(pt.X), float32(pt.Y)
			fill(x, y, x, y, func(r *vector.Rasterizer, ox, oy float32) {
				dot(r, x-ox, y-oy, radius)
			})
			if i == 0 {
				continue
			}
			px, py := float32(stroke[i-1].X), float32(stroke[i-1].Y)
			if px == x && py == y {
				continue
			}
			fill(px, py, x, y, func(r *vector.Rasterizer, ox, oy float32) {
				segment(r, px-ox, py-oy, x-ox, y-oy, radius)
			})
		}
	}
	return canvas
}

func dot(r *vector.Rasterizer, cx, cy, radius float32) {
	for i := 0; i < dotSegments; i++ {
		theta := 2 * math.Pi * float64(i) / dotSegments
		x := cx + radius*float32(math.Cos(theta))
		y := cy + radius*float32(math.Sin(theta))
		if i == 0 {
			r.MoveTo(x, y)
			continue
		}
		r.LineTo(x, y)
	}
	r.ClosePath()
}

func segment(r *vector.Rasterizer, x0, y0, x1, y1, radius float32) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	nx, ny := -dy/length*radius, dx/length*radius
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
}

func inkBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

package figure

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Margins around the plot area, in pixels.
const (
	marginLeft   = 80
	marginRight  = 24
	marginTop    = 44
	marginBottom = 64
)

type axisState struct {
	lo, hi    float64
	hasLimits bool
	ticks     []float64
	labels    []string
	hasTicks  bool
	formatter TickFormatter
	label     string
	labelPad  float64
}

type rasterOp struct {
	img    image.Image
	extent Extent
}

// Canvas is a retained Surface rasterized with fogleman/gg. Drawing calls are
// recorded and composed by DrawTo or Render, so limits and ticks may be set
// after content is added.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	width, height int
	style         Style
	axes          [2]axisState
	spines        [4]bool
	title         string
	ops           []interface{}
	bars          []SizeBar
}

// NewCanvas creates a width×height pixel canvas with the given style.
func NewCanvas(width, height int, style Style) *Canvas {
	c := &Canvas{
		width:  width,
		height: height,
		style:  style,
		spines: [4]bool{true, true, true, true},
	}
	for _, s := range style.HiddenSpines {
		c.SetSpineVisible(s, false)
	}
	return c
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// DrawRaster implements Surface.
func (c *Canvas) DrawRaster(img image.Image, extent Extent) {
	c.ops = append(c.ops, rasterOp{img: img, extent: extent})
}

// DrawSegments implements Surface.
func (c *Canvas) DrawSegments(segs []Segment) {
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	c.ops = append(c.ops, cp)
}

// SetTicks implements Surface.
func (c *Canvas) SetTicks(axis Axis, positions []float64, labels []string) {
	a := &c.axes[axis]
	a.ticks = append([]float64(nil), positions...)
	a.labels = append([]string(nil), labels...)
	a.hasTicks = true
}

// Ticks implements Surface.
func (c *Canvas) Ticks(axis Axis) []float64 {
	a := &c.axes[axis]
	if a.hasTicks {
		return append([]float64(nil), a.ticks...)
	}
	lo, hi := c.Limits(axis)
	return AutoTicks(lo, hi, 5)
}

// SetTickFormatter implements Surface.
func (c *Canvas) SetTickFormatter(axis Axis, f TickFormatter) {
	c.axes[axis].formatter = f
}

// SetLimits implements Surface.
func (c *Canvas) SetLimits(axis Axis, lo, hi float64) {
	a := &c.axes[axis]
	a.lo, a.hi, a.hasLimits = lo, hi, true
}

// Limits implements Surface. Without explicit limits the range covers all
// drawn content, or [0, 1] on an empty canvas. An empty explicit range is
// widened by half a unit either side.
func (c *Canvas) Limits(axis Axis) (lo, hi float64) {
	a := &c.axes[axis]
	if a.hasLimits {
		if a.lo == a.hi {
			return a.lo - 0.5, a.hi + 0.5
		}
		return a.lo, a.hi
	}
	return c.dataBounds(axis)
}

// SetLabel implements Surface.
func (c *Canvas) SetLabel(axis Axis, text string, pad float64) {
	c.axes[axis].label = text
	c.axes[axis].labelPad = pad
}

// SetTitle implements Surface.
func (c *Canvas) SetTitle(text string) {
	c.title = text
}

// SetSpineVisible implements Surface.
func (c *Canvas) SetSpineVisible(s Spine, visible bool) {
	if int(s) >= 0 && int(s) < len(c.spines) {
		c.spines[s] = visible
	}
}

// SpineVisible reports whether spine s will be drawn.
func (c *Canvas) SpineVisible(s Spine) bool {
	return c.spines[s]
}

// AddSizeBar implements Surface.
func (c *Canvas) AddSizeBar(bar SizeBar) {
	c.bars = append(c.bars, bar)
}

func (c *Canvas) dataBounds(axis Axis) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	grow := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, op := range c.ops {
		switch op := op.(type) {
		case rasterOp:
			if axis == XAxis {
				grow(op.extent.XMin)
				grow(op.extent.XMax)
			} else {
				grow(op.extent.YMin)
				grow(op.extent.YMax)
			}
		case []Segment:
			for _, s := range op {
				if axis == XAxis {
					grow(s.X0)
					grow(s.X1)
				} else {
					grow(s.Y0)
					grow(s.Y1)
				}
			}
		}
	}
	if math.IsInf(lo, 0) || lo == hi {
		if math.IsInf(lo, 0) {
			return 0, 1
		}
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// plotRect returns the plot area in pixels.
func (c *Canvas) plotRect() (x, y, w, h float64) {
	x, y = marginLeft, marginTop
	w = math.Max(1, float64(c.width-marginLeft-marginRight))
	h = math.Max(1, float64(c.height-marginTop-marginBottom))
	return x, y, w, h
}

// toPixel maps data coordinates to canvas pixels.
func (c *Canvas) toPixel(x, y float64) (float64, float64) {
	px, py, pw, ph := c.plotRect()
	xlo, xhi := c.Limits(XAxis)
	ylo, yhi := c.Limits(YAxis)
	return px + (x-xlo)/(xhi-xlo)*pw, py + ph - (y-ylo)/(yhi-ylo)*ph
}

// Render rasterizes the canvas into a new image.
func (c *Canvas) Render() image.Image {
	dc := gg.NewContext(c.width, c.height)
	c.DrawTo(dc)
	return dc.Image()
}

// DrawTo rasterizes the canvas into dc, which must be at least as large as
// the canvas. Any previous content of dc is cleared.
func (c *Canvas) DrawTo(dc *gg.Context) {
	dc.Identity()
	dc.ResetClip()
	dc.SetHexColor(c.style.Background)
	dc.Clear()

	px, py, pw, ph := c.plotRect()
	for _, op := range c.ops {
		switch op := op.(type) {
		case rasterOp:
			c.drawRaster(dc, op)
		case []Segment:
			dc.DrawRectangle(px, py, pw, ph)
			dc.Clip()
			for _, s := range op {
				x0, y0 := c.toPixel(s.X0, s.Y0)
				x1, y1 := c.toPixel(s.X1, s.Y1)
				dc.SetColor(s.Color)
				dc.SetLineWidth(s.Width)
				dc.DrawLine(x0, y0, x1, y1)
				dc.Stroke()
			}
			dc.ResetClip()
		}
	}

	for _, bar := range c.bars {
		c.drawSizeBar(dc, bar)
	}
	c.drawSpines(dc)
	c.drawTicks(dc, XAxis)
	c.drawTicks(dc, YAxis)
	c.drawLabels(dc)
}

func (c *Canvas) drawRaster(dc *gg.Context, op rasterOp) {
	dst, ok := dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	sb := op.img.Bounds()
	if sb.Empty() {
		return
	}

	// Row 0 of the raster belongs at YMin, which may be the bottom or top
	// of the destination depending on the axis direction.
	x0, y0 := c.toPixel(op.extent.XMin, op.extent.YMin)
	x1, y1 := c.toPixel(op.extent.XMax, op.extent.YMax)
	src := op.img
	flipX, flipY := x0 > x1, y0 > y1
	if flipX || flipY {
		src = flip(src, flipX, flipY)
	}

	dr := image.Rect(
		int(math.Round(math.Min(x0, x1))), int(math.Round(math.Min(y0, y1))),
		int(math.Round(math.Max(x0, x1))), int(math.Round(math.Max(y0, y1))),
	)
	if dr.Empty() {
		return
	}
	px, py, pw, ph := c.plotRect()
	clip := dr.Intersect(image.Rect(int(px), int(py), int(px+pw), int(py+ph)))
	if clip.Empty() {
		return
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	xdraw.Draw(dst, clip, scaled, clip.Min.Sub(dr.Min), xdraw.Over)
}

func flip(img image.Image, flipX, flipY bool) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		sy := b.Min.Y + y
		if flipY {
			sy = b.Max.Y - 1 - y
		}
		for x := 0; x < b.Dx(); x++ {
			sx := b.Min.X + x
			if flipX {
				sx = b.Max.X - 1 - x
			}
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}

func (c *Canvas) drawSpines(dc *gg.Context) {
	px, py, pw, ph := c.plotRect()
	dc.SetHexColor(c.style.Foreground)
	dc.SetLineWidth(c.style.AxesLineWidth)
	dc.SetLineCapSquare()
	lines := [4][4]float64{
		SpineLeft:   {px, py, px, py + ph},
		SpineRight:  {px + pw, py, px + pw, py + ph},
		SpineTop:    {px, py, px + pw, py},
		SpineBottom: {px, py + ph, px + pw, py + ph},
	}
	for s, l := range lines {
		if !c.spines[s] {
			continue
		}
		dc.DrawLine(l[0], l[1], l[2], l[3])
		dc.Stroke()
	}
	dc.SetLineCapRound()
}

func (c *Canvas) drawTicks(dc *gg.Context, axis Axis) {
	a := &c.axes[axis]
	positions := c.Ticks(axis)
	if len(positions) == 0 {
		return
	}
	lo, hi := c.Limits(axis)
	vmin, vmax := math.Min(lo, hi), math.Max(lo, hi)
	eps := (vmax - vmin) * 1e-9

	px, py, _, ph := c.plotRect()
	size := c.style.TickLabelSize
	dc.SetFontFace(Face(size))
	dc.SetHexColor(c.style.Foreground)
	dc.SetLineWidth(c.style.TickWidth)

	for i, v := range positions {
		if v < vmin-eps || v > vmax+eps {
			continue
		}
		var text string
		switch {
		case a.hasTicks && a.labels != nil && i < len(a.labels):
			text = a.labels[i]
		case a.formatter != nil:
			text = a.formatter(v)
		default:
			text = FormatTick(v)
		}

		if axis == XAxis {
			x, _ := c.toPixel(v, 0)
			y := py + ph
			dc.DrawLine(x, y, x, y+c.style.TickLength)
			dc.Stroke()
			dc.DrawStringAnchored(text, x, y+c.style.TickLength+size*0.2, 0.5, 1)
		} else {
			_, y := c.toPixel(0, v)
			x := px
			dc.DrawLine(x, y, x-c.style.TickLength, y)
			dc.Stroke()
			dc.DrawStringAnchored(text, x-c.style.TickLength-size*0.3, y, 1, 0.5)
		}
	}
}

func (c *Canvas) drawLabels(dc *gg.Context) {
	px, py, pw, ph := c.plotRect()
	dc.SetHexColor(c.style.Foreground)

	if x := c.axes[XAxis]; x.label != "" {
		dc.SetFontFace(Face(c.style.LabelSize))
		y := py + ph + c.style.TickLength + c.style.TickLabelSize*1.4 + x.labelPad
		dc.DrawStringAnchored(x.label, px+pw/2, y, 0.5, 1)
	}
	if y := c.axes[YAxis]; y.label != "" {
		dc.SetFontFace(Face(c.style.LabelSize))
		x := px - c.style.TickLength - c.style.TickLabelSize*2.2 - y.labelPad
		cy := py + ph/2
		dc.Push()
		dc.RotateAbout(-math.Pi/2, x, cy)
		dc.DrawStringAnchored(y.label, x, cy, 0.5, 0)
		dc.Pop()
	}
	if c.title != "" {
		dc.SetFontFace(Face(c.style.TitleSize))
		dc.DrawStringAnchored(c.title, px+pw/2, py-c.style.TitleSize*0.6, 0.5, 0)
	}
}

func (c *Canvas) drawSizeBar(dc *gg.Context, bar SizeBar) {
	px, py, pw, ph := c.plotRect()
	x0, y0 := c.toPixel(0, 0)
	x1, _ := c.toPixel(bar.Length, 0)
	_, y1 := c.toPixel(0, bar.Thickness)
	length := math.Abs(x1 - x0)
	thick := math.Abs(y1 - y0)

	fontSize := bar.FontSize
	if fontSize <= 0 {
		fontSize = c.style.FontSize
	}
	pad := bar.Pad * fontSize

	var left, top float64
	switch bar.Anchor {
	case AnchorLowerLeft, AnchorUpperLeft:
		left = px + pad
	default:
		left = px + pw - pad - length
	}
	labelSpace := fontSize * 1.3
	switch bar.Anchor {
	case AnchorUpperLeft, AnchorUpperRight:
		top = py + pad
		if bar.LabelTop {
			top += labelSpace
		}
	default:
		top = py + ph - pad - thick
		if !bar.LabelTop {
			top -= labelSpace
		}
	}

	col := bar.Color
	if col == nil {
		col = color.White
	}
	dc.SetColor(col)
	dc.DrawRectangle(left, top, length, thick)
	dc.Fill()

	if bar.Label == "" {
		return
	}
	dc.SetFontFace(Face(fontSize))
	if bar.LabelTop {
		dc.DrawStringAnchored(bar.Label, left+length/2, top-fontSize*0.3, 0.5, 0)
	} else {
		dc.DrawStringAnchored(bar.Label, left+length/2, top+thick+fontSize*0.3, 0.5, 1)
	}
}

// FormatTick renders integral values without a fraction and others with up
// to four significant digits.
func FormatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// AutoTicks returns evenly spaced round positions inside [lo, hi] using
// steps of 1, 2 or 5 times a power of ten.
func AutoTicks(lo, hi float64, target int) []float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	span := hi - lo
	if !(span > 0) || math.IsInf(span, 0) || target < 1 {
		return []float64{lo}
	}
	raw := span / float64(target)
	mag := math.Pow10(int(math.Floor(math.Log10(raw))))
	step := mag
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	start := math.Ceil(lo/step-1e-9) * step
	var ticks []float64
	for v := start; v <= hi+step*1e-9; v += step {
		// Snap accumulated error so 0.30000000000000004 renders as 0.3.
		ticks = append(ticks, math.Round(v/step)*step)
	}
	return ticks
}

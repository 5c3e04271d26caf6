// Package render paints a page's widgets into an image for the desktop
// preview.
package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Canvas is the rendering surface. Every drawing call is limited to the
// current clip rectangle.
type Canvas struct {
	img  *image.RGBA
	clip image.Rectangle
}

// NewCanvas creates a white canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.clip = c.img.Bounds()
	c.Clear(color.RGBA{255, 255, 255, 255})
	return c
}

// Width is the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height is the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Clip narrows the clip rectangle to r and returns the previous one for
// restoring with SetClip.
func (c *Canvas) Clip(r image.Rectangle) image.Rectangle {
	prev := c.clip
	c.clip = c.clip.Intersect(r)
	return prev
}

// SetClip replaces the clip rectangle.
func (c *Canvas) SetClip(r image.Rectangle) {
	c.clip = r.Intersect(c.img.Bounds())
}

// Clear fills the whole canvas, ignoring the clip.
func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// SetPixel sets a single pixel with alpha compositing.
func (c *Canvas) SetPixel(x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(c.clip) {
		return
	}
	r := image.Rect(x, y, x+1, y+1)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// GetPixel returns the color at x, y, or transparent outside the canvas.
func (c *Canvas) GetPixel(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return color.RGBA{}
	}
	return c.img.RGBAAt(x, y)
}

// FillRect fills a rectangle, compositing translucent colors over what is
// already there.
func (c *Canvas) FillRect(x, y, width, height int, col color.RGBA) {
	r := image.Rect(x, y, x+width, y+height).Intersect(c.clip)
	if r.Empty() {
		return
	}
	op := draw.Over
	if col.A == 255 {
		op = draw.Src
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, op)
}

// FillCircle fills a circle centred on cx, cy.
func (c *Canvas) FillCircle(cx, cy, radius int, col color.RGBA) {
	x, y, err := radius, 0, 0
	for x >= y {
		c.hline(cx-x, cx+x, cy+y, col)
		c.hline(cx-x, cx+x, cy-y, col)
		c.hline(cx-y, cx+y, cy+x, col)
		c.hline(cx-y, cx+y, cy-x, col)
		if err <= 0 {
			y++
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func (c *Canvas) hline(x1, x2, y int, col color.RGBA) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	c.FillRect(x1, y, x2-x1+1, 1, col)
}

// DrawImage scales src into dst.
func (c *Canvas) DrawImage(src image.Image, dst image.Rectangle) {
	if src == nil || dst.Empty() || dst.Intersect(c.clip).Empty() {
		return
	}
	// Scale into a full-size scratch image, then copy the visible part.
	scratch := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	xdraw.ApproxBiLinear.Scale(scratch, scratch.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	visible := dst.Intersect(c.clip)
	draw.Draw(c.img, visible, scratch, visible.Min.Sub(dst.Min), draw.Over)
}

// ToImage returns the painted image. The canvas keeps drawing into it.
func (c *Canvas) ToImage() *image.RGBA {
	return c.img
}

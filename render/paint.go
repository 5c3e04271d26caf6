package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/chrisuehlinger/swipekit/css"
	"github.com/chrisuehlinger/swipekit/dom"
)

// ImageSource returns the decoded image for a src attribute, or nil while
// it is not available.
type ImageSource interface {
	Image(src string) image.Image
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(src string) image.Image

// Image calls f(src).
func (f ImageSourceFunc) Image(src string) image.Image { return f(src) }

var (
	placeholder  = color.RGBA{220, 220, 220, 255}
	dotActive    = color.RGBA{60, 60, 60, 255}
	dotInactive  = color.RGBA{180, 180, 180, 255}
	buttonColor  = color.RGBA{0, 0, 0, 90}
	disabledTint = color.RGBA{0, 0, 0, 30}
)

const (
	dotRadius  = 5
	dotSpacing = 16
	buttonSize = 28
)

// Painter draws the body of a document using its block-flow geometry and
// the inline transforms widgets set while animating.
type Painter struct {
	Images ImageSource

	hits []hit
}

type hit struct {
	el  *dom.Element
	box image.Rectangle
}

// Paint renders doc into a new canvas of the given size. The top of the
// canvas is document offset scrollY.
func (p *Painter) Paint(doc *dom.Document, width, height int, scrollY float64) *Canvas {
	c := NewCanvas(width, height)
	p.hits = p.hits[:0]
	body := doc.Body()
	if body == nil {
		return c
	}
	if !body.Hidden() {
		p.paint(c, body, 0, -scrollY)
	}
	return c
}

// paint draws el with its border box at x, y and returns that box.
func (p *Painter) paint(c *Canvas, el *dom.Element, x, y float64) image.Rectangle {
	style := el.Style()
	t := css.Current(el)
	x += t.X
	y += t.Y
	box := rect(x, y, el.OuterWidth()*t.Scale, Extent(el)*t.Scale)
	if style.GetPropertyValue("visibility") == "hidden" {
		return box
	}
	p.record(el, box.Intersect(c.clip))

	if bg, ok := backgroundColor(style); ok {
		c.FillRect(box.Min.X, box.Min.Y, box.Dx(), box.Dy(), bg)
	}
	switch {
	case el.Is("img"):
		p.paintImage(c, el, box)
		return box
	case el.GetAttribute("data-ss-component") == "dots":
		paintDots(c, el, box)
		return box
	}

	if clips(el) {
		prev := c.Clip(box)
		defer c.SetClip(prev)
	}

	cx := x + el.Box("padding-left")
	cy := y + el.Box("padding-top")
	horizontal := el.GetAttribute("data-ss-component") == "container"
	viewport := box
	var buttons []*dom.Element
	for _, child := range el.Children() {
		if child.Hidden() {
			continue
		}
		if child.HasAttribute("data-ss-button-type") {
			buttons = append(buttons, child)
			continue
		}
		mx, my := child.Box("margin-left"), child.Box("margin-top")
		r := p.paint(c, child, cx+mx, cy+my)
		if child.GetAttribute("data-ss-component") == "container_wrapper" {
			viewport = r
		}
		if horizontal {
			cx += (child.OuterWidth() + mx + child.Box("margin-right")) * t.Scale
		} else {
			cy += (Extent(child) + my + child.Box("margin-bottom")) * t.Scale
		}
	}
	for _, btn := range buttons {
		p.record(btn, paintButton(c, btn, viewport))
	}
	return box
}

func (p *Painter) record(el *dom.Element, visible image.Rectangle) {
	if !visible.Empty() {
		p.hits = append(p.hits, hit{el: el, box: visible})
	}
}

// ElementAt returns the topmost element painted at x, y by the last Paint,
// or nil.
func (p *Painter) ElementAt(x, y int) *dom.Element {
	pt := image.Point{X: x, Y: y}
	for i := len(p.hits) - 1; i >= 0; i-- {
		if pt.In(p.hits[i].box) {
			return p.hits[i].el
		}
	}
	return nil
}

func (p *Painter) paintImage(c *Canvas, el *dom.Element, box image.Rectangle) {
	var img image.Image
	if p.Images != nil {
		img = p.Images.Image(el.GetAttribute("src"))
	}
	if img == nil {
		c.FillRect(box.Min.X, box.Min.Y, box.Dx(), box.Dy(), placeholder)
		return
	}
	c.DrawImage(img, box)
}

// paintDots draws one circle per dot, centred in the dots row.
func paintDots(c *Canvas, dots *dom.Element, box image.Rectangle) {
	children := dots.Children()
	if len(children) == 0 {
		return
	}
	total := (len(children)-1)*dotSpacing + 2*dotRadius
	x := box.Min.X + (box.Dx()-total)/2 + dotRadius
	y := box.Min.Y + dotSpacing/2
	for _, dot := range children {
		col := dotInactive
		if dot.GetAttribute("data-ss-state") == "active" {
			col = dotActive
		}
		c.FillCircle(x, y, dotRadius, col)
		x += dotSpacing
	}
}

// paintButton draws a carousel arrow at the side of area, vertically
// centred on it.
func paintButton(c *Canvas, btn *dom.Element, area image.Rectangle) image.Rectangle {
	mid := area.Min.Y + area.Dy()/2
	x := area.Min.X + 4
	if btn.GetAttribute("data-ss-button-type") == "next" {
		x = area.Max.X - buttonSize - 4
	}
	c.FillRect(x, mid-buttonSize/2, buttonSize, buttonSize, buttonColor)
	if btn.GetAttribute("data-ss-state") == "disabled" {
		c.FillRect(x, mid-buttonSize/2, buttonSize, buttonSize, disabledTint)
	}
	return image.Rect(x, mid-buttonSize/2, x+buttonSize, mid+buttonSize/2).Intersect(c.clip)
}

// Extent is the painted height of el. It follows the dom geometry except
// that a carousel container lays its items out in a row, so it is as tall as
// its tallest item.
func Extent(el *dom.Element) float64 {
	if _, ok := el.Style().Pixels("height"); ok || el.HasAttribute("height") {
		return el.OuterHeight()
	}
	children := el.Children()
	if len(children) == 0 {
		return el.OuterHeight()
	}
	row := el.GetAttribute("data-ss-component") == "container"
	var h float64
	for _, child := range children {
		if child.Hidden() || child.HasAttribute("data-ss-button-type") {
			continue
		}
		ch := Extent(child) + child.Box("margin-top") + child.Box("margin-bottom")
		if row {
			h = math.Max(h, ch)
		} else {
			h += ch
		}
	}
	if min, ok := el.Style().Pixels("min-height"); ok && min > h {
		h = min
	}
	return h + el.Box("padding-top") + el.Box("padding-bottom")
}

// clips reports whether el's box limits its descendants: an explicit
// height, overflow hidden, or a carousel's item viewport.
func clips(el *dom.Element) bool {
	if _, ok := el.Style().Pixels("height"); ok {
		return true
	}
	if el.Style().GetPropertyValue("overflow") == "hidden" {
		return true
	}
	return el.GetAttribute("data-ss-component") == "container_wrapper"
}

func rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
}

var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"orange":      {255, 165, 0, 255},
	"yellow":      {255, 255, 0, 255},
	"purple":      {128, 0, 128, 255},
	"transparent": {0, 0, 0, 0},
}

func backgroundColor(style *dom.CSSStyleDeclaration) (color.RGBA, bool) {
	v := style.GetPropertyValue("background-color")
	if v == "" {
		v = style.GetPropertyValue("background")
	}
	return ParseColor(v)
}

// ParseColor reads a named color, #rgb, #rrggbb, rgb() or rgba() value.
func ParseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return color.RGBA{}, false
	}
	if col, ok := namedColors[v]; ok {
		return col, true
	}
	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.RGBA{}, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, false
		}
		return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if !strings.HasPrefix(v, fn) || !strings.HasSuffix(v, ")") {
			continue
		}
		parts := strings.Split(v[len(fn):len(v)-1], ",")
		if len(parts) < 3 {
			return color.RGBA{}, false
		}
		var ch [4]float64
		ch[3] = 1
		for i, part := range parts {
			if i > 3 {
				break
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return color.RGBA{}, false
			}
			ch[i] = f
		}
		// color.RGBA is alpha-premultiplied.
		a := math.Max(0, math.Min(1, ch[3]))
		return color.RGBA{clamp8(ch[0] * a), clamp8(ch[1] * a), clamp8(ch[2] * a), clamp8(a * 255)}, true
	}
	return color.RGBA{}, false
}

func clamp8(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}

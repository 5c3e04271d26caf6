package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/chrisuehlinger/swipekit/dom"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestCanvasFillRectClip(t *testing.T) {
	c := NewCanvas(20, 20)
	prev := c.Clip(image.Rect(5, 5, 10, 10))
	c.FillRect(0, 0, 20, 20, red)
	if got := c.GetPixel(7, 7); got != red {
		t.Errorf("Expected red inside the clip, got %v", got)
	}
	if got := c.GetPixel(2, 2); got != white {
		t.Errorf("Expected white outside the clip, got %v", got)
	}
	c.SetClip(prev)
	c.FillRect(0, 0, 2, 2, blue)
	if got := c.GetPixel(1, 1); got != blue {
		t.Errorf("Expected blue after restoring the clip, got %v", got)
	}
	if got := c.GetPixel(50, 50); got != (color.RGBA{}) {
		t.Errorf("Expected transparent outside the canvas, got %v", got)
	}
}

func TestCanvasTranslucentFill(t *testing.T) {
	c := NewCanvas(4, 4)
	c.FillRect(0, 0, 4, 4, color.RGBA{0, 0, 0, 128})
	got := c.GetPixel(1, 1)
	if got.R < 120 || got.R > 135 || got.A != 255 {
		t.Errorf("Expected a half-darkened pixel, got %v", got)
	}
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(21, 21)
	c.FillCircle(10, 10, 5, red)
	if got := c.GetPixel(10, 10); got != red {
		t.Errorf("Expected the centre filled, got %v", got)
	}
	if got := c.GetPixel(14, 10); got != red {
		t.Errorf("Expected a point inside the radius filled, got %v", got)
	}
	if got := c.GetPixel(14, 14); got != white {
		t.Errorf("Expected the bounding box corner untouched, got %v", got)
	}
}

func TestCanvasDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, blue)
		}
	}
	c := NewCanvas(20, 20)
	c.Clip(image.Rect(0, 0, 10, 20))
	c.DrawImage(src, image.Rect(5, 5, 15, 15))
	if got := c.GetPixel(8, 8); got != blue {
		t.Errorf("Expected the scaled image, got %v", got)
	}
	if got := c.GetPixel(12, 8); got != white {
		t.Errorf("Expected the image clipped, got %v", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"red", red, true},
		{"#00f", blue, true},
		{"#102030", color.RGBA{0x10, 0x20, 0x30, 255}, true},
		{"rgb(1, 2, 3)", color.RGBA{1, 2, 3, 255}, true},
		{"rgba(0,0,0,0.5)", color.RGBA{0, 0, 0, 128}, true},
		{"url(x.png)", color.RGBA{}, false},
		{"#12", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q): expected %v %v, got %v %v", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}

func parse(t *testing.T, body string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTMLString("<html><body>" + body + "</body></html>")
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}
	doc.SetViewport(100, 100)
	return doc
}

func TestPaintBlockFlow(t *testing.T) {
	doc := parse(t, `<div style="height: 20px; background: red"></div>
<div style="height: 20px; background-color: #00f"></div>
<div style="height: 20px; background: red; display: none"></div>`)
	c := (&Painter{}).Paint(doc, 100, 100, 0)
	if got := c.GetPixel(50, 10); got != red {
		t.Errorf("Expected the first block red, got %v", got)
	}
	if got := c.GetPixel(50, 30); got != blue {
		t.Errorf("Expected the second block blue, got %v", got)
	}
	if got := c.GetPixel(50, 50); got != white {
		t.Errorf("Expected the hidden block skipped, got %v", got)
	}

	scrolled := (&Painter{}).Paint(doc, 100, 100, 20)
	if got := scrolled.GetPixel(50, 10); got != blue {
		t.Errorf("Expected the second block at the top when scrolled, got %v", got)
	}
}

const carouselMarkup = `<div data-ss-widget="carousel">
<div data-ss-component="container_wrapper">
<div data-ss-component="container" style="width: 300px; transform: translate(-100px, 0px)">
<div data-ss-component="item" style="width: 100px; height: 50px; background: red"></div>
<div data-ss-component="item" style="width: 100px; height: 50px; background: blue"></div>
<div data-ss-component="item" style="width: 100px; height: 50px; background: red"></div>
</div>
</div>
<div data-ss-component="dots" style="height: 16px">
<div data-ss-component="dot" data-ss-state="inactive"></div>
<div data-ss-component="dot" data-ss-state="active"></div>
<div data-ss-component="dot" data-ss-state="inactive"></div>
</div>
<div data-ss-component="button" data-ss-button-type="prev" data-ss-state="enabled"></div>
<div data-ss-component="button" data-ss-button-type="next" data-ss-state="enabled"></div>
</div>`

func TestPaintCarousel(t *testing.T) {
	doc := parse(t, carouselMarkup)
	c := (&Painter{}).Paint(doc, 100, 100, 0)

	if got := c.GetPixel(50, 5); got != blue {
		t.Errorf("Expected the translated row to show the second item, got %v", got)
	}
	// Dots sit below the 50px row: three circles centred in 100px.
	if got := c.GetPixel(50, 58); got != dotActive {
		t.Errorf("Expected the active dot in the middle, got %v", got)
	}
	if got := c.GetPixel(34, 58); got != dotInactive {
		t.Errorf("Expected an inactive dot on the left, got %v", got)
	}
	// Buttons are translucent squares over the item row.
	left := c.GetPixel(10, 25)
	if left == blue || left.B < 100 {
		t.Errorf("Expected the prev button to darken the item, got %v", left)
	}
	if got := c.GetPixel(50, 25); got != blue {
		t.Errorf("Expected the row centre uncovered, got %v", got)
	}
}

func TestPaintImages(t *testing.T) {
	doc := parse(t, `<img src="/a.png" width="50" height="40"><img src="/missing.png" width="50" height="40">`)
	solid := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(solid.Pix); i += 4 {
		copy(solid.Pix[i:], []uint8{blue.R, blue.G, blue.B, blue.A})
	}
	src := ImageSourceFunc(func(s string) image.Image {
		if s == "/a.png" {
			return solid
		}
		return nil
	})
	c := (&Painter{Images: src}).Paint(doc, 100, 100, 0)
	if got := c.GetPixel(25, 20); got != blue {
		t.Errorf("Expected the decoded image drawn, got %v", got)
	}
	if got := c.GetPixel(25, 60); got != placeholder {
		t.Errorf("Expected a placeholder for the missing image, got %v", got)
	}
}

func TestElementAt(t *testing.T) {
	doc := parse(t, carouselMarkup)
	p := &Painter{}
	if p.ElementAt(10, 10) != nil {
		t.Error("Expected nothing before the first paint")
	}
	p.Paint(doc, 100, 100, 0)

	items := doc.QuerySelectorAll("[data-ss-component=item]")
	if got := p.ElementAt(50, 25); got != items[1] {
		t.Errorf("Expected the visible item under the pointer, got %v", got)
	}
	if got := p.ElementAt(10, 25); got == nil || got.GetAttribute("data-ss-button-type") != "prev" {
		t.Errorf("Expected the prev button on top, got %v", got)
	}
	if got := p.ElementAt(50, 60); got == nil || got.GetAttribute("data-ss-component") != "dots" {
		t.Errorf("Expected the dots row, got %v", got)
	}
	if got := p.ElementAt(50, 95); got != nil {
		t.Errorf("Expected nothing below the page, got %v", got)
	}
}

package dom

import (
	"testing"
)

func TestWidthFallsBackToViewport(t *testing.T) {
	doc, _ := ParseHTMLString(`<div id="a"><div id="b"></div></div>`)
	doc.SetViewport(320, 480)
	if got := doc.GetElementByID("b").Width(); got != 320 {
		t.Errorf("Expected 320, got %v", got)
	}
}

func TestWidthExplicitAndPercent(t *testing.T) {
	doc, _ := ParseHTMLString(`<div id="a" style="width: 400px"><div id="b" style="width: 50%"></div><div id="c" style="padding-left: 10px; padding-right: 10px"></div></div>`)
	if got := doc.GetElementByID("b").Width(); got != 200 {
		t.Errorf("Expected 200, got %v", got)
	}
	if got := doc.GetElementByID("c").Width(); got != 380 {
		t.Errorf("Expected 380, got %v", got)
	}
}

func TestHeightStacksChildren(t *testing.T) {
	doc, _ := ParseHTMLString(`<div id="a"><div style="height: 30px"></div><img height="20"><div style="display: none; height: 100px"></div></div>`)
	a := doc.GetElementByID("a")
	if got := a.Height(); got != 50 {
		t.Errorf("Expected 50, got %v", got)
	}
	a.Style().SetProperty("min-height", "80px")
	if got := a.Height(); got != 80 {
		t.Errorf("Expected min-height to win, got %v", got)
	}
}

func TestOffsetTop(t *testing.T) {
	doc, _ := ParseHTMLString(`<div style="height: 100px"></div><div id="wrap"><p style="height: 40px"></p><img id="img" height="10"></div>`)
	if got := doc.GetElementByID("img").OffsetTop(); got != 140 {
		t.Errorf("Expected 140, got %v", got)
	}
}

func TestHidden(t *testing.T) {
	doc, _ := ParseHTMLString(`<div id="a" style="display: none"><span id="b"></span></div>`)
	b := doc.GetElementByID("b")
	if !b.Hidden() {
		t.Error("Expected descendant of display:none to be hidden")
	}
	if b.Width() != 0 {
		t.Errorf("Expected hidden width 0, got %v", b.Width())
	}
}

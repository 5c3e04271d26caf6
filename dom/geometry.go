package dom

import (
	"strings"
)

// The geometry here is a block-flow approximation: elements without an
// explicit width fill their parent, elements without an explicit height
// stack their children vertically. It is enough for widgets that size
// themselves from their container and from declared item heights.

// Hidden reports whether the element or any ancestor has display:none.
func (e *Element) Hidden() bool {
	for cur := e; cur != nil; cur = cur.ParentElement() {
		if strings.TrimSpace(cur.Style().GetPropertyValue("display")) == "none" {
			return true
		}
	}
	return false
}

// Width returns the content width of the element in px.
func (e *Element) Width() float64 {
	if e.Hidden() {
		return 0
	}
	return e.width()
}

func (e *Element) width() float64 {
	style := e.Style()
	if w, ok := style.Pixels("width"); ok {
		return w
	}
	if v := style.GetPropertyValue("width"); strings.HasSuffix(v, "%") {
		if pct, ok := ParsePx(strings.TrimSuffix(v, "%")); ok {
			return e.containerWidth() * pct / 100
		}
	}
	if w, ok := ParsePx(e.GetAttribute("width")); ok {
		return w
	}
	return e.containerWidth() - e.horizontalExtras()
}

func (e *Element) containerWidth() float64 {
	if parent := e.ParentElement(); parent != nil {
		return parent.width()
	}
	if doc := e.ownerDoc; doc != nil {
		w, _ := doc.Viewport()
		return w
	}
	return 0
}

// horizontalExtras is padding plus margin on both sides.
func (e *Element) horizontalExtras() float64 {
	return e.box("padding-left") + e.box("padding-right") + e.box("margin-left") + e.box("margin-right")
}

// Height returns the content height of the element in px.
func (e *Element) Height() float64 {
	if e.Hidden() {
		return 0
	}
	return e.height()
}

func (e *Element) height() float64 {
	style := e.Style()
	if h, ok := style.Pixels("height"); ok {
		return h
	}
	if h, ok := ParsePx(e.GetAttribute("height")); ok {
		return h
	}
	var total float64
	for _, c := range e.Children() {
		if c.Hidden() {
			continue
		}
		total += c.OuterHeight()
	}
	if min, ok := style.Pixels("min-height"); ok && min > total {
		return min
	}
	return total
}

// OuterHeight returns the height including vertical padding.
func (e *Element) OuterHeight() float64 {
	if e.Hidden() {
		return 0
	}
	return e.height() + e.box("padding-top") + e.box("padding-bottom")
}

// OuterWidth returns the width including horizontal padding.
func (e *Element) OuterWidth() float64 {
	if e.Hidden() {
		return 0
	}
	return e.width() + e.box("padding-left") + e.box("padding-right")
}

// OffsetTop returns the distance in px from the top of the document to the
// top of the element, summing the heights of preceding block siblings.
func (e *Element) OffsetTop() float64 {
	var top float64
	for cur := e; cur != nil; cur = cur.ParentElement() {
		top += cur.box("margin-top")
		for prev := cur.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if !prev.Hidden() {
				top += prev.OuterHeight() + prev.box("margin-top") + prev.box("margin-bottom")
			}
		}
		if parent := cur.ParentElement(); parent != nil {
			top += parent.box("padding-top")
		}
	}
	return top
}

// Box returns the px value of a box-model property such as padding-left,
// or 0 when unset.
func (e *Element) Box(property string) float64 {
	return e.box(property)
}

func (e *Element) box(property string) float64 {
	v, _ := e.Style().Pixels(property)
	return v
}

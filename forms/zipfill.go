package forms

import (
	"fmt"

	"github.com/chrisuehlinger/swipekit/dom"
)

// ZipFill fills city and state inputs once a 5-digit zip is entered.
type ZipFill struct {
	base
	zips  ZipLookup
	zip   *dom.Element
	city  *dom.Element
	state *dom.Element
}

// NewZipFill enhances root, which must contain a zip component input.
func NewZipFill(root *dom.Element, opts ...Option) (*ZipFill, error) {
	s := newSettings(root, ZipFillType, opts)
	w := &ZipFill{
		base:  base{id: s.id, typ: ZipFillType, root: root, logger: s.logger},
		zips:  s.zips,
		zip:   root.QuerySelector("[data-ss-component=zip]"),
		city:  root.QuerySelector("[data-ss-component=city]"),
		state: root.QuerySelector("[data-ss-component=state]"),
	}
	if w.zip == nil {
		return nil, fmt.Errorf("%s %d: %w", ZipFillType, s.id, ErrNoInput)
	}
	if w.city == nil || w.state == nil {
		s.logger.Warn("autofill-zip without city or state input")
	}
	w.on(w.zip, "input keyup change", func(*dom.Event) { w.update() })
	return w, nil
}

func (w *ZipFill) update() {
	zip := digits(Value(w.zip))
	if len(zip) < 5 {
		w.root.RemoveAttribute("data-ss-state")
		return
	}
	zip = zip[:5]
	place, ok := w.zips.Lookup(zip)
	if !ok {
		w.root.SetAttribute("data-ss-state", "notfound")
		w.logger.Debug("zip not found", "zip", zip)
		return
	}
	if w.city != nil {
		SetValue(w.city, place.City)
	}
	if w.state != nil {
		SetValue(w.state, place.State)
	}
	w.root.SetAttribute("data-ss-state", "filled")
}

// Destroy detaches listeners.
func (w *ZipFill) Destroy() {
	if w.teardown() {
		w.root.RemoveAttribute("data-ss-state")
	}
}

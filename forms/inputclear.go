package forms

import (
	"fmt"

	"github.com/chrisuehlinger/swipekit/dom"
)

// InputClear adds a clear button to a text input and tracks whether the
// input is empty.
type InputClear struct {
	base
	input *dom.Element
	clear *dom.Element
}

// NewInputClear enhances root, which is an input or contains one.
func NewInputClear(root *dom.Element, opts ...Option) (*InputClear, error) {
	s := newSettings(root, InputClearType, opts)
	input := findInput(root, "input")
	if input == nil {
		return nil, fmt.Errorf("%s %d: %w", InputClearType, s.id, ErrNoInput)
	}
	w := &InputClear{
		base:  base{id: s.id, typ: InputClearType, root: root, logger: s.logger},
		input: input,
	}

	w.clear = root.OwnerDocument().CreateElement("span")
	w.clear.SetAttribute("data-ss-component", "clear")
	if input == root {
		if err := root.After(w.clear.AsNode()); err != nil {
			return nil, fmt.Errorf("%s %d: %w", InputClearType, s.id, err)
		}
	} else {
		root.AppendElement(w.clear)
	}
	w.added = append(w.added, w.clear)

	w.on(input, "input keyup change", func(*dom.Event) { w.update() })
	w.on(w.clear, "click", func(ev *dom.Event) {
		ev.Stifle()
		w.Clear()
	})
	w.update()
	return w, nil
}

func (w *InputClear) update() {
	if Value(w.input) != "" {
		w.root.SetAttribute("data-ss-state", "on")
	} else {
		w.root.SetAttribute("data-ss-state", "off")
	}
}

// Clear empties the input and notifies its listeners.
func (w *InputClear) Clear() {
	SetValue(w.input, "")
	w.root.SetAttribute("data-ss-state", "off")
	w.input.Trigger("input", nil)
	w.input.Trigger("change", nil)
}

// Destroy detaches listeners and removes the clear button.
func (w *InputClear) Destroy() {
	if w.teardown() {
		w.root.RemoveAttribute("data-ss-state")
	}
}

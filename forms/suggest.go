package forms

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/swipekit/dom"
)

// Suggest renders prefix-matching candidates under an input.
type Suggest struct {
	base
	input      *dom.Element
	list       *dom.Element
	candidates []string
	source     SuggestSource
	maxResults int
}

// NewSuggest enhances root, which must contain an input component.
func NewSuggest(root *dom.Element, opts ...Option) (*Suggest, error) {
	s := newSettings(root, SuggestType, opts)
	input := root.QuerySelector("[data-ss-component=input]")
	if input == nil {
		input = findInput(root, "input")
	}
	if input == nil {
		return nil, fmt.Errorf("%s %d: %w", SuggestType, s.id, ErrNoInput)
	}
	w := &Suggest{
		base:       base{id: s.id, typ: SuggestType, root: root, logger: s.logger},
		input:      input,
		source:     s.source,
		maxResults: max(s.maxResults, 1),
	}
	if v, ok := root.LookupAttribute("data-ss-suggestions"); ok {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				w.candidates = append(w.candidates, c)
			}
		}
	}
	if w.candidates == nil && w.source == nil {
		s.logger.Warn("autosuggest without data-ss-suggestions or a source")
	}

	w.list = root.QuerySelector("[data-ss-component=suggestions]")
	if w.list == nil {
		w.list = root.OwnerDocument().CreateElement("ul")
		w.list.SetAttribute("data-ss-component", "suggestions")
		root.AppendElement(w.list)
		w.added = append(w.added, w.list)
	}

	w.on(input, "input keyup", func(*dom.Event) { w.update() })
	w.on(w.list, "click", func(ev *dom.Event) {
		target := ev.TargetElement()
		if target == nil {
			return
		}
		item := target.Closest("[data-ss-component=suggestion]")
		if item == nil || !w.list.Contains(item) {
			return
		}
		ev.Stifle()
		w.Choose(item.TextContent())
	})
	return w, nil
}

// Matches returns the candidates starting with query, ignoring case,
// capped at the configured maximum. An empty query matches nothing.
func (w *Suggest) Matches(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	candidates := w.candidates
	if candidates == nil && w.source != nil {
		candidates = w.source.Suggest(query)
	}
	lower := strings.ToLower(query)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
			if len(out) == w.maxResults {
				break
			}
		}
	}
	return out
}

func (w *Suggest) update() {
	w.render(w.Matches(Value(w.input)))
}

func (w *Suggest) render(matches []string) {
	w.list.Empty()
	doc := w.root.OwnerDocument()
	for _, m := range matches {
		item := doc.CreateElement("li")
		item.SetAttribute("data-ss-component", "suggestion")
		item.SetTextContent(m)
		w.list.AppendElement(item)
	}
	if len(matches) > 0 {
		w.root.SetAttribute("data-ss-state", "open")
	} else {
		w.root.SetAttribute("data-ss-state", "closed")
	}
}

// Choose fills the input with v and clears the suggestions.
func (w *Suggest) Choose(v string) {
	SetValue(w.input, v)
	w.render(nil)
	w.input.Trigger("change", nil)
}

// Suggestions returns the rendered suggestion texts.
func (w *Suggest) Suggestions() []string {
	var out []string
	for _, item := range w.list.QuerySelectorAll("[data-ss-component=suggestion]") {
		out = append(out, item.TextContent())
	}
	return out
}

// Destroy detaches listeners and removes a created suggestion list.
func (w *Suggest) Destroy() {
	if !w.teardown() {
		return
	}
	if w.list.ParentElement() != nil {
		w.list.Empty()
	}
	w.root.RemoveAttribute("data-ss-state")
}

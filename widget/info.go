package widget

import (
	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/forms"
	"github.com/chrisuehlinger/swipekit/toggler"
)

// Info is a read-only snapshot of one widget, used by the CLI, the debug
// server and page scripts.
type Info struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	State       string `json:"state"`
	Initialized bool   `json:"initialized"`
	Frozen      bool   `json:"frozen"`

	Index      *int   `json:"index,omitempty"`
	Items      int    `json:"items,omitempty"`
	Dots       int    `json:"dots,omitempty"`
	Zoomed     bool   `json:"zoomed,omitempty"`
	Autoscroll bool   `json:"autoscroll,omitempty"`
	Orphan     bool   `json:"orphan,omitempty"`
	Card       string `json:"card,omitempty"`
	Pending    int    `json:"pending,omitempty"`
}

// Describe snapshots w. It must be called on the loop goroutine.
func (r *Registry) Describe(w Widget) Info {
	info := Info{
		ID:          w.ID(),
		Type:        w.Type(),
		State:       w.Root().GetAttribute("data-ss-state"),
		Initialized: r.initialized[w.ID()],
	}
	if f, ok := w.(interface{ Frozen() bool }); ok {
		info.Frozen = f.Frozen()
	}

	switch w := w.(type) {
	case *carousel.Carousel:
		index := w.LogicalIndex()
		info.State = w.State().String()
		info.Index = &index
		info.Items = len(w.Items())
		info.Dots = len(w.Dots())
		info.Zoomed = w.Zoomed()
		info.Autoscroll = w.Autoscrolling()
	case *toggler.Toggler:
		info.State = string(w.State())
		info.Orphan = w.Orphan()
	case *forms.CardDetect:
		info.Card = string(w.Card())
	case *Lazyloader:
		info.Pending = len(w.Pending())
		info.State = "pending"
		if w.Complete() {
			info.State = "complete"
		}
	}
	return info
}

// Snapshot describes every widget in creation order.
func (r *Registry) Snapshot() []Info {
	ws := r.Widgets()
	out := make([]Info, 0, len(ws))
	for _, w := range ws {
		out = append(out, r.Describe(w))
	}
	return out
}

// Package forms implements the form-enhancement widgets: input-clear,
// autodetect-cc, autofill-zip and autosuggest. Input values live in the
// value attribute.
package forms

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
)

// Widget types handled by this package.
const (
	InputClearType = "input-clear"
	CardDetectType = "autodetect-cc"
	ZipFillType    = "autofill-zip"
	SuggestType    = "autosuggest"
)

// ErrNoInput is returned when a form widget has no input to enhance.
var ErrNoInput = errors.New("forms: no input found")

// ZipLookup resolves a 5-digit zip code.
type ZipLookup interface {
	Lookup(zip string) (config.Place, bool)
}

// ZipTable is a ZipLookup backed by a map.
type ZipTable map[string]config.Place

// Lookup returns the place for zip.
func (t ZipTable) Lookup(zip string) (config.Place, bool) {
	p, ok := t[zip]
	return p, ok
}

// SuggestSource supplies autosuggest candidates for a query.
type SuggestSource interface {
	Suggest(query string) []string
}

// SuggestFunc adapts a function to SuggestSource.
type SuggestFunc func(query string) []string

// Suggest calls f(query).
func (f SuggestFunc) Suggest(query string) []string { return f(query) }

type settings struct {
	id         int
	logger     *slog.Logger
	zips       ZipLookup
	source     SuggestSource
	maxResults int
}

// Option configures a form widget.
type Option func(*settings)

// WithID sets the widget id.
func WithID(id int) Option {
	return func(s *settings) { s.id = id }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithZipLookup sets where autofill-zip resolves zip codes.
func WithZipLookup(z ZipLookup) Option {
	return func(s *settings) { s.zips = z }
}

// WithSuggestSource sets the autosuggest candidate source used when the
// markup declares no data-ss-suggestions.
func WithSuggestSource(src SuggestSource) Option {
	return func(s *settings) { s.source = src }
}

// WithMaxResults caps the number of rendered suggestions.
func WithMaxResults(n int) Option {
	return func(s *settings) { s.maxResults = n }
}

func newSettings(root *dom.Element, typ string, opts []Option) settings {
	s := settings{
		zips:       ZipTable(config.Default().Zips),
		maxResults: config.Default().Autosuggest.MaxResults,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.id == 0 {
		s.id, _ = strconv.Atoi(root.GetAttribute("data-ss-id"))
	}
	s.logger = s.logger.With("widget", typ, "id", s.id)
	return s
}

// base carries what every form widget shares.
type base struct {
	id        int
	typ       string
	root      *dom.Element
	logger    *slog.Logger
	frozen    bool
	destroyed bool
	subs      []*dom.Subscription
	added     []*dom.Element
}

func (b *base) ID() int            { return b.id }
func (b *base) Type() string       { return b.typ }
func (b *base) Root() *dom.Element { return b.root }
func (b *base) HandleResize()      {}
func (b *base) HandleFreeze()      { b.frozen = true }
func (b *base) HandleUnfreeze()    { b.frozen = false }
func (b *base) Frozen() bool       { return b.frozen }

// on subscribes fn to el, skipping calls while frozen or destroyed.
func (b *base) on(el *dom.Element, types string, fn dom.Listener) {
	b.subs = append(b.subs, el.On(types, func(ev *dom.Event) {
		if b.frozen || b.destroyed {
			return
		}
		fn(ev)
	})...)
}

// teardown detaches listeners and removes the elements the widget added.
func (b *base) teardown() bool {
	if b.destroyed {
		return false
	}
	b.destroyed = true
	dom.RemoveAll(b.subs)
	b.subs = nil
	for _, el := range b.added {
		el.Remove()
	}
	b.added = nil
	b.logger.Debug("form widget destroyed")
	return true
}

// findInput returns root when it is an input, else the first descendant
// matching selector.
func findInput(root *dom.Element, selector string) *dom.Element {
	if root.Is("input") || root.Is("textarea") {
		return root
	}
	return root.QuerySelector(selector)
}

// Value is the current value of an input.
func Value(input *dom.Element) string {
	return input.GetAttribute("value")
}

// SetValue sets the value of an input without dispatching events.
func SetValue(input *dom.Element, v string) {
	input.SetAttribute("value", v)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

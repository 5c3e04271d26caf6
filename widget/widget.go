// Package widget owns every enhanced element on a page: it allocates ids,
// dispatches data-ss-widget types to their constructors, signals readiness
// and broadcasts resize and freeze requests.
package widget

import (
	"errors"
	"fmt"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/dom"
)

var (
	// ErrUnknownType is returned for a data-ss-widget value with no factory.
	ErrUnknownType = errors.New("widget: unknown type")
	// ErrAlreadyInitialized is returned when an element already carries a
	// data-ss-id.
	ErrAlreadyInitialized = errors.New("widget: already initialized")
)

// ConfigError describes page markup that degrades a widget without
// preventing its construction.
type ConfigError struct {
	Widget string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Widget, e.Field, e.Reason)
}

// Widget is implemented by every enhanced element.
type Widget interface {
	ID() int
	Type() string
	Root() *dom.Element
	HandleResize()
	HandleFreeze()
	HandleUnfreeze()
	Destroy()
}

// Factory builds a widget of one type on root.
type Factory func(r *Registry, root *dom.Element, id int) (Widget, error)

// Observer receives registry lifecycle notifications in addition to the
// carousel hooks it forwards to every carousel it creates.
type Observer interface {
	carousel.Observer
	WidgetInitialized(id int, typ string)
	WidgetReady(id int, typ string)
	WidgetDestroyed(id int, typ string)
	InitFailed(typ string, err error)
}

// NopObserver ignores every notification.
type NopObserver struct {
	carousel.NopObserver
}

// WidgetInitialized does nothing.
func (NopObserver) WidgetInitialized(int, string) {}

// WidgetReady does nothing.
func (NopObserver) WidgetReady(int, string) {}

// WidgetDestroyed does nothing.
func (NopObserver) WidgetDestroyed(int, string) {}

// InitFailed does nothing.
func (NopObserver) InitFailed(string, error) {}

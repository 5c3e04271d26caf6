// Package css applies and reads back the 2D transforms and transition
// timings that widgets animate with.
package css

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chrisuehlinger/swipekit/dom"
)

// Transform is the translation and uniform scale encoded in a transform
// value.
type Transform struct {
	X, Y  float64
	Scale float64
}

// Identity is the transform with no translation and scale 1.
var Identity = Transform{Scale: 1}

// Applier writes transforms to element inline styles. Use3D selects
// translate3d/scale3d, which some engines composite on the GPU.
type Applier struct {
	Use3D bool
}

// Translate formats a translate function for x, y.
func (a Applier) Translate(x, y float64) string {
	if a.Use3D {
		return "translate3d(" + num(x) + "px," + num(y) + "px,0)"
	}
	return "translate(" + num(x) + "px," + num(y) + "px)"
}

// Scale formats a uniform scale function.
func (a Applier) Scale(m float64) string {
	if a.Use3D {
		return "scale3d(" + num(m) + "," + num(m) + ",1)"
	}
	return "scale(" + num(m) + "," + num(m) + ")"
}

// SetTranslate sets el's transform to a translation.
func (a Applier) SetTranslate(el *dom.Element, x, y float64) {
	el.Style().SetProperty("transform", a.Translate(x, y))
}

// SetTransform sets el's transform to a translation followed by a scale.
func (a Applier) SetTransform(el *dom.Element, t Transform) {
	el.Style().SetProperty("transform", a.Translate(t.X, t.Y)+" "+a.Scale(t.Scale))
}

// Clear removes el's inline transform.
func (a Applier) Clear(el *dom.Element) {
	el.Style().RemoveProperty("transform")
}

// Current returns the transform currently set inline on el. An unset or
// unparseable transform reads as Identity.
func Current(el *dom.Element) Transform {
	t, err := ParseTransform(el.Style().GetPropertyValue("transform"))
	if err != nil {
		return Identity
	}
	return t
}

// ParseTransform reads translate, translateX, translateY, translate3d,
// scale, scale3d and matrix functions, composing them left to right.
// "none" and "" are the identity.
func ParseTransform(value string) (Transform, error) {
	t := Identity
	rest := strings.TrimSpace(value)
	if rest == "" || rest == "none" {
		return t, nil
	}
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		close := strings.IndexByte(rest, ')')
		if open <= 0 || close < open {
			return Identity, fmt.Errorf("malformed transform %q", value)
		}
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		args, err := parseArgs(rest[open+1 : close])
		if err != nil {
			return Identity, fmt.Errorf("transform %q: %w", value, err)
		}
		if err := t.apply(name, args); err != nil {
			return Identity, fmt.Errorf("transform %q: %w", value, err)
		}
		rest = strings.TrimSpace(rest[close+1:])
	}
	return t, nil
}

func (t *Transform) apply(name string, args []float64) error {
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs %d arguments, got %d", name, n, len(args))
		}
		return nil
	}
	switch name {
	case "translate", "translate3d":
		if err := need(1); err != nil {
			return err
		}
		t.X += args[0] * t.Scale
		if len(args) > 1 {
			t.Y += args[1] * t.Scale
		}
	case "translatex":
		if err := need(1); err != nil {
			return err
		}
		t.X += args[0] * t.Scale
	case "translatey":
		if err := need(1); err != nil {
			return err
		}
		t.Y += args[0] * t.Scale
	case "scale", "scale3d":
		if err := need(1); err != nil {
			return err
		}
		t.Scale *= args[0]
	case "matrix":
		// matrix(a, b, c, d, tx, ty); only uniform scale is tracked.
		if err := need(6); err != nil {
			return err
		}
		t.X += args[4] * t.Scale
		t.Y += args[5] * t.Scale
		t.Scale *= args[0]
	default:
		return fmt.Errorf("unsupported function %q", name)
	}
	return nil
}

func parseArgs(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, ok := dom.ParsePx(part)
		if !ok {
			return nil, fmt.Errorf("bad argument %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseDuration parses a CSS time such as "0.65s" or "650ms". For a
// comma-separated list only the first entry is read.
func ParseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ','); i != -1 {
		value = strings.TrimSpace(value[:i])
	}
	scale := float64(time.Second)
	switch {
	case strings.HasSuffix(value, "ms"):
		value = strings.TrimSuffix(value, "ms")
		scale = float64(time.Millisecond)
	case strings.HasSuffix(value, "s"):
		value = strings.TrimSuffix(value, "s")
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return time.Duration(f * scale), true
}

// TransitionDuration returns el's inline transition-duration, or fallback
// when it is unset or zero.
func TransitionDuration(el *dom.Element, fallback time.Duration) time.Duration {
	if d, ok := ParseDuration(el.Style().GetPropertyValue("transition-duration")); ok && d > 0 {
		return d
	}
	return fallback
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

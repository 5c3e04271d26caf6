// Package config holds the toolkit-wide defaults that page markup can
// override per element with data-ss-* attributes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the optional swipekit.yaml configuration.
type Config struct {
	Carousel    CarouselConfig    `yaml:"carousel"`
	Toggler     TogglerConfig     `yaml:"toggler"`
	Overlay     OverlayConfig     `yaml:"overlay"`
	Lazyloader  LazyloaderConfig  `yaml:"lazyloader"`
	Autosuggest AutosuggestConfig `yaml:"autosuggest"`
	Zips        map[string]Place  `yaml:"zips,omitempty"`
	Viewport    ViewportConfig    `yaml:"viewport"`
	Log         LogConfig         `yaml:"log"`
}

// CarouselConfig contains carousel defaults.
type CarouselConfig struct {
	AutoscrollInterval Duration `yaml:"autoscroll_interval"`
	AutoscrollRestart  Duration `yaml:"autoscroll_restart"`
	PeekWidth          int      `yaml:"peek_width"`
	MultiItems         int      `yaml:"multi_items"`
	ZoomMultiplier     float64  `yaml:"zoom_multiplier"`
	ZoomMin            float64  `yaml:"zoom_min"`
	ZoomMax            float64  `yaml:"zoom_max"`
	PinchSensitivity   float64  `yaml:"pinch_sensitivity"`
	Transition         Duration `yaml:"transition"`
	FastTransition     Duration `yaml:"fast_transition"`
	ZoomTransition     Duration `yaml:"zoom_transition"`
	SwipeDebounce      Duration `yaml:"swipe_debounce"`
	Use3D              bool     `yaml:"use_3d"`
}

// TogglerConfig contains toggler defaults.
type TogglerConfig struct {
	ResponsiveThreshold int      `yaml:"responsive_threshold"`
	SlideDuration       Duration `yaml:"slide_duration"`
}

// OverlayConfig contains overlay defaults.
type OverlayConfig struct {
	Transition Duration `yaml:"transition"`
}

// LazyloaderConfig contains lazyloader defaults.
type LazyloaderConfig struct {
	Threshold int `yaml:"threshold"`
}

// AutosuggestConfig contains autosuggest defaults.
type AutosuggestConfig struct {
	MaxResults int `yaml:"max_results"`
}

// Place is a zip table entry.
type Place struct {
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

// ViewportConfig is the simulated viewport size.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Carousel: CarouselConfig{
			AutoscrollInterval: Duration(5 * time.Second),
			AutoscrollRestart:  Duration(time.Second),
			PeekWidth:          40,
			MultiItems:         2,
			ZoomMultiplier:     2,
			ZoomMin:            1.2,
			ZoomMax:            4,
			PinchSensitivity:   1500,
			Transition:         Duration(650 * time.Millisecond),
			FastTransition:     Duration(350 * time.Millisecond),
			ZoomTransition:     Duration(300 * time.Millisecond),
			SwipeDebounce:      Duration(225 * time.Millisecond),
		},
		Toggler: TogglerConfig{
			ResponsiveThreshold: 768,
			SlideDuration:       Duration(400 * time.Millisecond),
		},
		Overlay: OverlayConfig{
			Transition: Duration(300 * time.Millisecond),
		},
		Lazyloader: LazyloaderConfig{
			Threshold: 200,
		},
		Autosuggest: AutosuggestConfig{
			MaxResults: 8,
		},
		Zips: map[string]Place{},
		Viewport: ViewportConfig{
			Width:  375,
			Height: 667,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. name is used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if cfg.Zips == nil {
		cfg.Zips = map[string]Place{}
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate returns a description of every questionable setting. Callers
// log them as warnings; none are fatal.
func (c *Config) Validate() []string {
	var problems []string
	cc := c.Carousel
	if cc.ZoomMin < 1.2 {
		problems = append(problems, fmt.Sprintf("carousel.zoom_min %.2f is below the 1.2 floor", cc.ZoomMin))
	}
	if cc.ZoomMin > cc.ZoomMax {
		problems = append(problems, fmt.Sprintf("carousel.zoom_min %.2f is greater than zoom_max %.2f", cc.ZoomMin, cc.ZoomMax))
	}
	if cc.PeekWidth%2 != 0 {
		problems = append(problems, fmt.Sprintf("carousel.peek_width %d is odd and will be rounded up", cc.PeekWidth))
	}
	if cc.MultiItems < 1 {
		problems = append(problems, "carousel.multi_items must be at least 1")
	}
	if cc.PinchSensitivity <= 0 {
		problems = append(problems, "carousel.pinch_sensitivity must be positive")
	}
	for name, d := range map[string]Duration{
		"carousel.autoscroll_interval": cc.AutoscrollInterval,
		"carousel.transition":          cc.Transition,
		"carousel.fast_transition":     cc.FastTransition,
		"carousel.zoom_transition":     cc.ZoomTransition,
	} {
		if d <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}
	if c.Lazyloader.Threshold < 0 {
		problems = append(problems, "lazyloader.threshold must not be negative")
	}
	if c.Autosuggest.MaxResults < 1 {
		problems = append(problems, "autosuggest.max_results must be at least 1")
	}
	for zip := range c.Zips {
		if len(zip) != 5 || strings.Trim(zip, "0123456789") != "" {
			problems = append(problems, fmt.Sprintf("zips: %q is not a 5-digit zip code", zip))
		}
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		problems = append(problems, "viewport width and height must be positive")
	}
	return problems
}

// Duration is a time.Duration written in YAML as a Go duration string
// ("650ms") or as an integer number of milliseconds.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if err := node.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string or milliseconds", node.Line)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

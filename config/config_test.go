package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if problems := Default().Validate(); len(problems) != 0 {
		t.Errorf("Expected default config to validate, got %v", problems)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "swipekit.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional failed: %v", err)
	}
	if cfg.Carousel.Transition.D() != 650*time.Millisecond {
		t.Errorf("Expected default transition, got %v", cfg.Carousel.Transition.D())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
carousel:
  transition: 500ms
  fast_transition: 200
  zoom_max: 6
  use_3d: true
zips:
  "94107": {city: San Francisco, state: CA}
log:
  level: debug
`), "test.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Carousel.Transition.D() != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", cfg.Carousel.Transition.D())
	}
	if cfg.Carousel.FastTransition.D() != 200*time.Millisecond {
		t.Errorf("Expected integer milliseconds, got %v", cfg.Carousel.FastTransition.D())
	}
	if cfg.Carousel.ZoomMax != 6 || !cfg.Carousel.Use3D {
		t.Errorf("Expected overrides, got %+v", cfg.Carousel)
	}
	if cfg.Carousel.ZoomMin != 1.2 || cfg.Carousel.PeekWidth != 40 {
		t.Errorf("Expected untouched keys to keep defaults, got %+v", cfg.Carousel)
	}
	if p := cfg.Zips["94107"]; p.City != "San Francisco" || p.State != "CA" {
		t.Errorf("Unexpected zip entry %+v", p)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug, got %s", cfg.Log.Level)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("carousel: ["), "bad.yaml"); err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("Expected error naming the file, got %v", err)
	}
	if _, err := Parse([]byte("carousel:\n  transition: soon\n"), "bad.yaml"); err == nil {
		t.Error("Expected error for unparseable duration")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swipekit.yaml")
	if err := os.WriteFile(path, []byte("lazyloader:\n  threshold: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Lazyloader.Threshold != 50 {
		t.Errorf("Expected 50, got %d", cfg.Lazyloader.Threshold)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	cfg := Default()
	cfg.Carousel.ZoomMin = 5
	cfg.Carousel.PeekWidth = 41
	cfg.Zips = map[string]Place{"abc": {}}

	problems := cfg.Validate()
	joined := strings.Join(problems, "\n")
	for _, want := range []string{"zoom_min", "peek_width", `"abc"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected a problem mentioning %s, got %v", want, problems)
		}
	}
}

func TestMarshalRoundTripsDurations(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "transition: 650ms") {
		t.Errorf("Expected durations written as strings, got:\n%s", data)
	}
	cfg, err := Parse(data, "roundtrip")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Carousel.SwipeDebounce.D() != 225*time.Millisecond {
		t.Errorf("Expected 225ms, got %v", cfg.Carousel.SwipeDebounce.D())
	}
}

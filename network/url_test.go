package network

import (
	"errors"
	"testing"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://shop.example.com/p/1", "img/a.png", "https://shop.example.com/p/img/a.png"},
		{"https://shop.example.com/p/1", "/a.png", "https://shop.example.com/a.png"},
		{"https://shop.example.com/p/1", "//cdn.example.com/a-2x.png", "https://cdn.example.com/a-2x.png"},
		{"https://shop.example.com/", "http://other.example.com/b.jpg", "http://other.example.com/b.jpg"},
		{"https://shop.example.com/", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"", "img/a.png", "img/a.png"},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.ref)
		if err != nil {
			t.Errorf("ResolveURL(%q, %q) returned error: %v", tt.base, tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, expected %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestDecodeDataURL(t *testing.T) {
	data, mediaType, err := DecodeDataURL("data:image/gif;base64,R0lG")
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if mediaType != "image/gif" || string(data) != "GIF" {
		t.Errorf("Expected image/gif GIF, got %s %q", mediaType, data)
	}

	data, mediaType, err = DecodeDataURL("DATA:,hello%20world")
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if mediaType != "text/plain" || string(data) != "hello world" {
		t.Errorf("Expected text/plain hello world, got %s %q", mediaType, data)
	}

	if _, _, err := DecodeDataURL("data:image/png;base64"); !errors.Is(err, errMalformedDataURL) {
		t.Errorf("Expected a malformed data URL error without comma, got %v", err)
	}
	if _, _, err := DecodeDataURL("https://example.com"); err == nil {
		t.Error("Expected error for non-data URL")
	}
	if _, _, err := DecodeDataURL("data:image/png;base64,!!"); err == nil {
		t.Error("Expected error for a bad base64 payload")
	}
}

func TestImageType(t *testing.T) {
	tests := map[string]string{
		"a.PNG":                        "image/png",
		"https://x.example/b.jpeg?v=2": "image/jpeg",
		"/img/c.webp#frag":             "image/webp",
		"d.svg":                        "image/svg+xml",
		"e.txt":                        "application/octet-stream",
		"noext":                        "application/octet-stream",
	}
	for in, want := range tests {
		if got := ImageType(in); got != want {
			t.Errorf("ImageType(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestMediaType(t *testing.T) {
	if got := MediaType("Image/PNG; charset=binary"); got != "image/png" {
		t.Errorf("Expected image/png, got %q", got)
	}
	if !IsImageContentType("image/webp") || IsImageContentType("text/html") {
		t.Error("IsImageContentType misclassified")
	}
}

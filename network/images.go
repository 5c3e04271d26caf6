package network

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
)

// Images decodes and keeps the pixels of loaded images for painting.
// The Loader itself only keeps dimensions.
type Images struct {
	loader *Loader

	mu      sync.Mutex
	decoded map[string]image.Image
	pending map[string]bool
}

// NewImages creates an image store reading through l.
func NewImages(l *Loader) *Images {
	return &Images{
		loader:  l,
		decoded: make(map[string]image.Image),
		pending: make(map[string]bool),
	}
}

// Decode reads and decodes src, caching the result.
func (im *Images) Decode(ctx context.Context, src string) (image.Image, error) {
	key := im.loader.Resolve(src)
	im.mu.Lock()
	img, ok := im.decoded[key]
	im.mu.Unlock()
	if ok {
		return img, nil
	}

	data, _, err := im.loader.read(ctx, key)
	if err != nil {
		return nil, err
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	im.mu.Lock()
	im.decoded[key] = img
	im.mu.Unlock()
	return img, nil
}

// Image returns the decoded image for src, or nil while it is still being
// decoded in the background or could not be decoded.
func (im *Images) Image(src string) image.Image {
	key := im.loader.Resolve(src)
	im.mu.Lock()
	defer im.mu.Unlock()
	if img, ok := im.decoded[key]; ok {
		return img
	}
	if im.pending[key] {
		return nil
	}
	im.pending[key] = true
	im.loader.inflight.Add(1)
	go func() {
		defer im.loader.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), im.loader.timeout)
		defer cancel()
		if _, err := im.Decode(ctx, key); err != nil {
			im.loader.logger.Debug("image not decoded", "src", key, "error", err)
		}
	}()
	return nil
}

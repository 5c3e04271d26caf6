package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/imageload"
)

// ErrNoSource is returned for sources the loader cannot reach: relative
// paths with neither a base URL nor an asset directory.
var ErrNoSource = errors.New("no way to load image source")

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLocalPath sets a directory to serve image paths from before trying
// HTTP.
func WithLocalPath(path string) LoaderOption {
	return func(l *Loader) {
		l.localPath = path
	}
}

// WithBaseURL sets the URL relative sources are resolved against.
func WithBaseURL(base string) LoaderOption {
	return func(l *Loader) {
		l.baseURL = base
	}
}

// WithCache replaces the default cache.
func WithCache(cache *Cache) LoaderOption {
	return func(l *Loader) {
		l.cache = cache
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithConcurrency bounds the number of simultaneous loads in Prefetch.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// Loader loads images and remembers the outcome. It implements
// imageload.Probe.
type Loader struct {
	client      *Client
	cache       *Cache
	localPath   string
	baseURL     string
	logger      *slog.Logger
	concurrency int
	timeout     time.Duration

	inflight sync.WaitGroup
}

// NewLoader creates an image loader. client may be nil, in which case
// http(s) sources fail.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{
		client:      client,
		cache:       NewCache(1000),
		logger:      slog.Default(),
		concurrency: 8,
		timeout:     15 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "images")
	return l
}

// Resolve returns the cache key for src: data URLs unchanged, everything
// else resolved against the base URL.
func (l *Loader) Resolve(src string) string {
	if IsDataURL(src) || l.baseURL == "" {
		return src
	}
	resolved, err := ResolveURL(l.baseURL, src)
	if err != nil {
		return src
	}
	return resolved
}

// Status implements imageload.Probe. Unknown sources start loading in the
// background and report Pending.
func (l *Loader) Status(src string) imageload.Status {
	key := l.Resolve(src)
	if e, ok := l.cache.Get(key); ok {
		return e.Status
	}
	if l.cache.MarkPending(key) {
		l.inflight.Add(1)
		go func() {
			defer l.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
			defer cancel()
			l.cache.Set(l.fetch(ctx, key))
		}()
	}
	return imageload.Pending
}

// Lookup returns the cached entry for src, if any.
func (l *Loader) Lookup(src string) (Entry, bool) {
	return l.cache.Get(l.Resolve(src))
}

// Wait blocks until every background load started by Status finishes.
func (l *Loader) Wait() {
	l.inflight.Wait()
}

// Load loads src synchronously, using the cache when the result is
// already settled.
func (l *Loader) Load(ctx context.Context, src string) Entry {
	key := l.Resolve(src)
	if e, ok := l.cache.Get(key); ok && e.Status.Settled() {
		return e
	}
	e := l.fetch(ctx, key)
	l.cache.Set(e)
	return e
}

// PrefetchResult counts the outcome of a Prefetch.
type PrefetchResult struct {
	Loaded int
	Failed int
}

// Prefetch loads every image source in doc: img src values and lazy
// data-ss-ll-src values. Loads run concurrently; a failed image is
// recorded, not returned. The error is non-nil only if ctx ends first.
func (l *Loader) Prefetch(ctx context.Context, doc *dom.Document) (PrefetchResult, error) {
	seen := make(map[string]bool)
	var sources []string
	add := func(src string) {
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		sources = append(sources, src)
	}
	for _, img := range doc.QuerySelectorAll("img[src]") {
		add(img.GetAttribute("src"))
	}
	for _, el := range doc.QuerySelectorAll("[data-ss-ll-src]") {
		add(el.GetAttribute("data-ss-ll-src"))
	}

	entries := make([]Entry, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = l.Load(gctx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PrefetchResult{}, fmt.Errorf("prefetch interrupted: %w", err)
	}

	var res PrefetchResult
	for _, e := range entries {
		if e.Status == imageload.Loaded {
			res.Loaded++
		} else {
			res.Failed++
			l.logger.Warn("image failed to load", "src", e.URL, "error", e.Err)
		}
	}
	l.logger.Debug("prefetched images", "loaded", res.Loaded, "failed", res.Failed)
	return res, nil
}

// fetch loads one resolved source without touching the cache.
func (l *Loader) fetch(ctx context.Context, src string) Entry {
	data, contentType, err := l.read(ctx, src)
	if err != nil {
		return Entry{URL: src, Status: imageload.Failed, Err: err}
	}
	e := Entry{URL: src, Status: imageload.Loaded, ContentType: contentType}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	switch {
	case err == nil:
		e.Width, e.Height = cfg.Width, cfg.Height
	case decodable(contentType) || !IsImageContentType(contentType) || len(data) == 0:
		// Formats without a decoder here (svg, ico) are trusted by type.
		e.Status = imageload.Failed
		e.Err = fmt.Errorf("not an image: %w", err)
	}
	return e
}

func decodable(contentType string) bool {
	switch MediaType(contentType) {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}

// Read returns the raw bytes and content type of src, resolved against the
// base URL. It does not touch the image cache.
func (l *Loader) Read(ctx context.Context, src string) ([]byte, string, error) {
	return l.read(ctx, l.Resolve(src))
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, string, error) {
	if IsDataURL(src) {
		return DecodeDataURL(src)
	}

	if file, ok := l.localFile(src); ok {
		if data, err := os.ReadFile(file); err == nil {
			return data, ImageType(src), nil
		}
	}

	lower := strings.ToLower(src)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, "", fmt.Errorf("%s: %w", src, ErrNoSource)
	}
	if l.client == nil {
		return nil, "", fmt.Errorf("%s: http disabled: %w", src, ErrNoSource)
	}
	resp, err := l.client.Get(ctx, src)
	if err != nil {
		return nil, "", err
	}
	if !resp.OK() {
		return nil, "", fmt.Errorf("%s: status %d", src, resp.StatusCode)
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = ImageType(src)
	}
	return resp.Body, contentType, nil
}

// localFile maps a source onto the asset directory by its URL path. Paths
// that climb out of the directory are refused.
func (l *Loader) localFile(src string) (string, bool) {
	if l.localPath == "" {
		return "", false
	}
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(sourcePath(src), "/")))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		l.logger.Warn("source escapes the asset directory", "src", src)
		return "", false
	}
	return filepath.Join(l.localPath, rel), true
}

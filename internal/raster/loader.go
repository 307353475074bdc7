package raster

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"sync/atomic"
)

// ImageCache provides thread-safe caching of loaded images to avoid redundant
// disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). The workbench holds at most three images at a time (photograph,
// prior-step mask, label image), so growth is naturally bounded, but a host
// that cycles through many runs should Clear() between them.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats
//     are PNG, JPEG, and GIF.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the image
//     format and color model.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Fetcher issues asynchronous image loads with most-recent-wins semantics.
//
// Every Fetch increments a request sequence number. When a load completes,
// its result is committed only if no newer Fetch has been issued since;
// otherwise the completion is discarded. There is no true cancellation of an
// in-flight load — superseding is advisory discard-on-arrival.
//
// Commits are serialized under a mutex, so the callback never runs
// concurrently with another callback from the same Fetcher.
type Fetcher struct {
	cache *ImageCache
	seq   atomic.Uint64
	mu    sync.Mutex
}

// NewFetcher creates a Fetcher backed by the given cache.
// A nil cache gets a private one.
func NewFetcher(cache *ImageCache) *Fetcher {
	if cache == nil {
		cache = NewImageCache()
	}
	return &Fetcher{cache: cache}
}

// Fetch starts loading path in the background and returns the request's
// sequence number immediately.
//
// On completion, commit is invoked with the decoded image, or with nil when
// the load failed. If a newer request superseded this one the completion is
// dropped and commit never runs. Callers treat a nil image as "no asset" and
// degrade to an empty visual state; load failures never propagate into the
// editing engines.
func (f *Fetcher) Fetch(path string, commit func(img image.Image)) uint64 {
	seq := f.seq.Add(1)
	go func() {
		img, err := f.cache.Load(path)
		if err != nil {
			img = nil
		}
		f.commitIfLatest(seq, img, commit)
	}()
	return seq
}

// commitIfLatest runs commit with img only when seq is still the most recent
// request; a stale completion is discarded. Returns whether commit ran.
func (f *Fetcher) commitIfLatest(seq uint64, img image.Image, commit func(img image.Image)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seq.Load() != seq {
		// A newer request won; discard this completion.
		return false
	}
	if commit != nil {
		commit(img)
	}
	return true
}

// Latest returns the sequence number of the most recently issued request.
// A completion whose sequence number is older than Latest() is stale.
func (f *Fetcher) Latest() uint64 {
	return f.seq.Load()
}

package canvas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/lyric2video/internal/palette"
)

// gradientSteps is the height of the strip a background is scaled from.
const gradientSteps = 64

// BackgroundCache keeps one pre-rendered gradient per (chapter, colors, size).
// Titles are not unique, so the colors are part of the key.
// Resizing or a change of direction calls Invalidate; both happen on the
// calling goroutine and never wait on a bake.
type BackgroundCache struct {
	mu      sync.Mutex
	entries map[string]*image.RGBA
	builds  int
}

// NewBackgroundCache creates an empty cache.
func NewBackgroundCache() *BackgroundCache {
	return &BackgroundCache{entries: make(map[string]*image.RGBA)}
}

func backgroundKey(chapter string, w, h int, top, bottom color.RGBA) string {
	return fmt.Sprintf("%s@%dx%d/%02x%02x%02x%02x-%02x%02x%02x%02x", chapter, w, h,
		top.R, top.G, top.B, top.A, bottom.R, bottom.G, bottom.B, bottom.A)
}

// Get returns the gradient for chapter at w×h, building it from top to
// bottom on first use. The returned image is shared and must not be
// modified.
func (c *BackgroundCache) Get(chapter string, w, h int, top, bottom color.RGBA) *image.RGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	key := backgroundKey(chapter, w, h, top, bottom)

	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.entries[key]; ok {
		return img
	}
	img := buildGradient(w, h, top, bottom)
	c.entries[key] = img
	c.builds++
	return img
}

// Invalidate drops every cached background.
func (c *BackgroundCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*image.RGBA)
	c.mu.Unlock()
}

// Len returns the number of cached backgrounds.
func (c *BackgroundCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Builds returns how many gradients have been rendered since creation.
func (c *BackgroundCache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

func buildGradient(w, h int, top, bottom color.RGBA) *image.RGBA {
	strip := image.NewRGBA(image.Rect(0, 0, 1, gradientSteps))
	for y := 0; y < gradientSteps; y++ {
		strip.SetRGBA(0, y, palette.Blend(top, bottom, float64(y)/float64(gradientSteps-1)))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), strip, strip.Bounds(), xdraw.Src, nil)
	return dst
}

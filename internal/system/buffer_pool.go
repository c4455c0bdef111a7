package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадровые буферы *image.RGBA одного размера,
// чтобы экспорт не нагружал GC.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

// NewImagePool создает пустой пул
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()
	if exists {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Double check
	if pool, exists = p.pools[size]; exists {
		return pool
	}
	pool = &sync.Pool{
		New: func() interface{} {
			return image.NewRGBA(image.Rectangle{Max: size})
		},
	}
	p.pools[size] = pool
	return pool
}

// Get возвращает буфер w×h с нулевыми пикселями
func (p *ImagePool) Get(w, h int) *image.RGBA {
	img := p.pool(image.Pt(w, h)).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put возвращает буфер в пул; буферы с ненулевым началом не принимаются
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	p.pool(img.Rect.Max).Put(img)
}

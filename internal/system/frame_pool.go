package system

import (
	"image"
	"sync"
)

// FramePool переиспользует кадровые буферы *image.RGBA между тиками
// рендера, чтобы планировщики на 60 fps не нагружали GC.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &FramePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame возвращает кадр нужного размера из пула или создает новый.
// Содержимое не обнуляется: рендер всегда перезаписывает фон целиком.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutFrame возвращает кадр в пул для повторного использования.
func PutFrame(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

package media

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

const maxImageSize = 20 * 1024 * 1024

var ErrInvalidImage = errors.New("invalid image data")

// ImageLoader turns release image paths into fyne resources, keeping the
// recently used ones in memory.
type ImageLoader struct {
	assets   types.AssetSource
	lruCache *LRUCache
	timeout  time.Duration
	dispatch func(func())

	inflight sync.Map
}

type CachedResource struct {
	resource   fyne.Resource
	lastAccess time.Time
	size       int64
}

type LRUCache struct {
	capacity int
	cache    map[string]*list.Element
	list     *list.List
	mu       sync.Mutex
}

type lruItem struct {
	key   string
	value *CachedResource
}

func NewLRUCache(capacity int) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		list:     list.New(),
	}
}

func (lru *LRUCache) Get(key string) (*CachedResource, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		lru.list.MoveToFront(elem)
		item := elem.Value.(*lruItem)
		item.value.lastAccess = time.Now()
		return item.value, true
	}
	return nil, false
}

func (lru *LRUCache) Put(key string, value *CachedResource) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		lru.list.MoveToFront(elem)
		elem.Value.(*lruItem).value = value
		return
	}

	if lru.list.Len() >= lru.capacity {
		if oldest := lru.list.Back(); oldest != nil {
			lru.list.Remove(oldest)
			delete(lru.cache, oldest.Value.(*lruItem).key)
		}
	}

	lru.cache[key] = lru.list.PushFront(&lruItem{key: key, value: value})
}

func (lru *LRUCache) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.list.Len()
}

// NewImageLoader creates a loader reading from assets. dispatch runs async
// callbacks; nil runs them on the loading goroutine.
func NewImageLoader(assets types.AssetSource, timeout time.Duration, dispatch func(func())) *ImageLoader {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageLoader{
		assets:   assets,
		lruCache: NewLRUCache(16),
		timeout:  timeout,
		dispatch: dispatch,
	}
}

// GetResource loads the image at p. An empty path yields the placeholder.
func (l *ImageLoader) GetResource(ctx context.Context, p string) (fyne.Resource, error) {
	if p == "" {
		return Placeholder(), nil
	}

	if cached, ok := l.lruCache.Get(p); ok {
		return cached.resource, nil
	}

	mu, _ := l.inflight.LoadOrStore(p, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	if cached, ok := l.lruCache.Get(p); ok {
		return cached.resource, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rc, err := l.assets.Open(ctx, p)
	if err != nil {
		return Placeholder(), fmt.Errorf("open image %q: %w", p, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxImageSize))
	if err != nil {
		return Placeholder(), fmt.Errorf("read image %q: %w", p, err)
	}

	if !isValidImageData(data) {
		return Placeholder(), fmt.Errorf("%w: %q", ErrInvalidImage, p)
	}

	res := fyne.NewStaticResource(path.Base(p), data)
	l.lruCache.Put(p, &CachedResource{
		resource:   res,
		lastAccess: time.Now(),
		size:       int64(len(data)),
	})

	log.Debug().Str("component", "media").Str("path", p).Int("bytes", len(data)).Msg("Loaded image")

	return res, nil
}

// GetResourceAsync loads in the background and hands the result to callback
// through the dispatcher.
func (l *ImageLoader) GetResourceAsync(ctx context.Context, p string, callback func(fyne.Resource, error)) {
	if cached, ok := l.lruCache.Get(p); ok {
		l.dispatch(func() { callback(cached.resource, nil) })
		return
	}

	go func() {
		res, err := l.GetResource(ctx, p)
		if err != nil {
			log.Warn().Str("component", "media").Err(err).Msg("Image load failed")
		}
		l.dispatch(func() { callback(res, err) })
	}()
}

func (l *ImageLoader) CacheStats() (itemCount int, totalSize int64) {
	l.lruCache.mu.Lock()
	defer l.lruCache.mu.Unlock()

	for elem := l.lruCache.list.Front(); elem != nil; elem = elem.Next() {
		itemCount++
		totalSize += elem.Value.(*lruItem).value.size
	}
	return itemCount, totalSize
}

// Placeholder is shown while an image is missing.
func Placeholder() fyne.Resource {
	return theme.MediaMusicIcon()
}

func isValidImageData(data []byte) bool {
	if len(data) < 10 {
		return false
	}

	headers := [][]byte{
		{0xFF, 0xD8, 0xFF},
		{0x89, 0x50, 0x4E, 0x47},
		{0x47, 0x49, 0x46},
		{0x52, 0x49, 0x46, 0x46},
	}
	for _, h := range headers {
		if bytes.HasPrefix(data, h) {
			return true
		}
	}
	return false
}

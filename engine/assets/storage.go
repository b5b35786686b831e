package assets

import (
	"sort"
	"sync"
)

// Handle is an opaque reference to an asset of type T. The zero value is
// invalid.
type Handle[T any] struct {
	id uint32
}

func (h Handle[T]) ID() uint32 {
	return h.id
}

func (h Handle[T]) IsValid() bool {
	return h.id != 0
}

// Storage resolves handles to loaded assets. A handle can be allocated before
// its asset finishes loading; Get returns nil until Load is called for it.
type Storage[T any] struct {
	mutex  sync.RWMutex
	next   uint32
	loaded map[uint32]*T
}

func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{loaded: make(map[uint32]*T)}
}

// Allocate reserves a handle whose asset is still streaming in.
func (s *Storage[T]) Allocate() Handle[T] {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.next++
	return Handle[T]{id: s.next}
}

// Insert stores an already loaded asset under a new handle.
func (s *Storage[T]) Insert(asset *T) Handle[T] {
	h := s.Allocate()
	s.Load(h, asset)
	return h
}

// Load marks the asset behind h as ready.
func (s *Storage[T]) Load(h Handle[T], asset *T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.loaded[h.id] = asset
}

// Get returns the asset for h, or nil when it is not loaded.
func (s *Storage[T]) Get(h Handle[T]) *T {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.loaded[h.id]
}

// Unload forgets the asset behind h and returns it so the caller can release
// its GPU resources.
func (s *Storage[T]) Unload(h Handle[T]) *T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	asset := s.loaded[h.id]
	delete(s.loaded, h.id)
	return asset
}

// Each visits every loaded asset in handle order.
func (s *Storage[T]) Each(fn func(h Handle[T], asset *T)) {
	s.mutex.RLock()
	ids := make([]uint32, 0, len(s.loaded))
	for id := range s.loaded {
		ids = append(ids, id)
	}
	s.mutex.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if asset := s.Get(Handle[T]{id: id}); asset != nil {
			fn(Handle[T]{id: id}, asset)
		}
	}
}

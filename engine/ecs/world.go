package ecs

import (
	"reflect"
)

type remover interface {
	Remove(e Entity)
}

// World owns the component storages and the singleton resources of a scene.
type World struct {
	next      Entity
	alive     Set
	storages  map[reflect.Type]remover
	resources map[reflect.Type]any
}

func NewWorld() *World {
	return &World{
		alive:     NewSet(),
		storages:  make(map[reflect.Type]remover),
		resources: make(map[reflect.Type]any),
	}
}

// Create allocates a fresh entity id.
func (w *World) Create() Entity {
	w.next++
	w.alive.Add(w.next)
	return w.next
}

// Delete drops e and every component it carries.
func (w *World) Delete(e Entity) {
	w.alive.Remove(e)
	for _, s := range w.storages {
		s.Remove(e)
	}
}

func (w *World) IsAlive(e Entity) bool {
	return w.alive.Contains(e)
}

// Entities returns every live entity, ascending.
func (w *World) Entities() []Entity {
	return w.alive.Entities()
}

// Components returns the storage for T, creating it on first use.
func Components[T any](w *World) *Storage[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.storages[key]; ok {
		return s.(*Storage[T])
	}
	s := NewStorage[T]()
	w.storages[key] = s
	return s
}

// Insert attaches a component to e.
func Insert[T any](w *World, e Entity, value T) {
	Components[T](w).Insert(e, value)
}

// InsertResource stores a singleton of type T, replacing any previous one.
func InsertResource[T any](w *World, value T) {
	w.resources[reflect.TypeOf((*T)(nil)).Elem()] = value
}

// Resource fetches the singleton of type T, if present.
func Resource[T any](w *World) (T, bool) {
	v, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// ResourceOr fetches the singleton of type T or returns fallback.
func ResourceOr[T any](w *World, fallback T) T {
	if v, ok := Resource[T](w); ok {
		return v
	}
	return fallback
}

func RemoveResource[T any](w *World) {
	delete(w.resources, reflect.TypeOf((*T)(nil)).Elem())
}

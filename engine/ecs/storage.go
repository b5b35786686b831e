package ecs

// Storage holds one component type keyed by entity.
type Storage[T any] struct {
	data map[Entity]T
}

func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{data: make(map[Entity]T)}
}

func (s *Storage[T]) Insert(e Entity, value T) {
	s.data[e] = value
}

func (s *Storage[T]) Remove(e Entity) {
	delete(s.data, e)
}

// Get returns the component of e and whether it was present.
func (s *Storage[T]) Get(e Entity) (T, bool) {
	v, ok := s.data[e]
	return v, ok
}

// GetOr returns the component of e, or fallback when e does not carry one.
func (s *Storage[T]) GetOr(e Entity, fallback T) T {
	if v, ok := s.data[e]; ok {
		return v
	}
	return fallback
}

func (s *Storage[T]) Contains(e Entity) bool {
	_, ok := s.data[e]
	return ok
}

func (s *Storage[T]) Len() int {
	return len(s.data)
}

// Entities returns every entity carrying the component, ascending.
func (s *Storage[T]) Entities() []Entity {
	out := make([]Entity, 0, len(s.data))
	for e := range s.data {
		out = append(out, e)
	}
	sortEntities(out)
	return out
}

package ecs

import "sort"

// Entity identifies a row across every component storage. The zero value is
// never handed out by a World and stands for "no entity".
type Entity uint32

const Null Entity = 0

// Presence reports whether an entity carries some component.
type Presence interface {
	Contains(e Entity) bool
}

// Lister is a Presence that can also enumerate its entities in ascending order.
type Lister interface {
	Presence
	Entities() []Entity
}

// Set is an unordered collection of entities.
type Set map[Entity]struct{}

func NewSet(entities ...Entity) Set {
	s := make(Set, len(entities))
	for _, e := range entities {
		s[e] = struct{}{}
	}
	return s
}

func (s Set) Add(e Entity) {
	s[e] = struct{}{}
}

func (s Set) Remove(e Entity) {
	delete(s, e)
}

func (s Set) Contains(e Entity) bool {
	_, ok := s[e]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Entities returns the members sorted by id.
func (s Set) Entities() []Entity {
	out := make([]Entity, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sortEntities(out)
	return out
}

func sortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })
}

package ecs

// Join selects the entities that are present in every required storage, in
// none of the absent ones and, when a restriction is set, inside it.
// Optional ("maybe") components are not part of the selection: callers read
// them with Storage.Get for each joined entity.
type Join struct {
	required []Lister
	absent   []Presence
	within   Lister
}

func NewJoin(required ...Lister) *Join {
	return &Join{required: required}
}

// Without excludes every entity carrying any of the given components.
func (j *Join) Without(absent ...Presence) *Join {
	j.absent = append(j.absent, absent...)
	return j
}

// Within restricts the join to the members of set.
func (j *Join) Within(set Lister) *Join {
	j.within = set
	return j
}

// Entities runs the join. The result is ascending by entity id.
func (j *Join) Entities() []Entity {
	driver := j.driver()
	if driver == nil {
		return nil
	}
	var out []Entity
	for _, e := range driver.Entities() {
		if j.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Each calls fn for every joined entity in ascending order.
func (j *Join) Each(fn func(e Entity)) {
	for _, e := range j.Entities() {
		fn(e)
	}
}

func (j *Join) matches(e Entity) bool {
	for _, r := range j.required {
		if !r.Contains(e) {
			return false
		}
	}
	for _, a := range j.absent {
		if a.Contains(e) {
			return false
		}
	}
	if j.within != nil && !j.within.Contains(e) {
		return false
	}
	return true
}

// driver picks the smallest candidate list to walk.
func (j *Join) driver() Lister {
	candidates := make([]Lister, 0, len(j.required)+1)
	candidates = append(candidates, j.required...)
	if j.within != nil {
		candidates = append(candidates, j.within)
	}
	var best Lister
	bestLen := -1
	for _, c := range candidates {
		n := sizeOf(c)
		if bestLen < 0 || n < bestLen {
			best = c
			bestLen = n
		}
	}
	return best
}

type sized interface {
	Len() int
}

func sizeOf(l Lister) int {
	if s, ok := l.(sized); ok {
		return s.Len()
	}
	return len(l.Entities())
}

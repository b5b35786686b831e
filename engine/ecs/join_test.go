package ecs

import (
	"reflect"
	"testing"
)

type position struct{ x, y float32 }
type hidden struct{}

func TestJoin(t *testing.T) {
	w := NewWorld()
	a, b, c, d := w.Create(), w.Create(), w.Create(), w.Create()

	Insert(w, a, position{1, 2})
	Insert(w, b, position{3, 4})
	Insert(w, c, position{5, 6})
	Insert(w, c, hidden{})
	Insert(w, d, hidden{})

	positions := Components[position](w)
	hiddens := Components[hidden](w)

	tests := []struct {
		name string
		join *Join
		want []Entity
	}{
		{
			name: "required only",
			join: NewJoin(positions),
			want: []Entity{a, b, c},
		},
		{
			name: "absent filter",
			join: NewJoin(positions).Without(hiddens),
			want: []Entity{a, b},
		},
		{
			name: "within set",
			join: NewJoin(positions).Within(NewSet(c, b, d)),
			want: []Entity{b, c},
		},
		{
			name: "within and absent",
			join: NewJoin(positions).Without(hiddens).Within(NewSet(c, d)),
			want: nil,
		},
		{
			name: "nothing required",
			join: NewJoin(),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.join.Entities()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Entities() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinEachAscending(t *testing.T) {
	s := NewStorage[int]()
	for _, e := range []Entity{9, 3, 7, 1} {
		s.Insert(e, int(e))
	}
	var seen []Entity
	NewJoin(s).Each(func(e Entity) { seen = append(seen, e) })
	want := []Entity{1, 3, 7, 9}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("Each order = %v, want %v", seen, want)
	}
}

package assets

import "testing"

type blob struct{ name string }

func TestStorageLifecycle(t *testing.T) {
	s := NewStorage[blob]()

	var zero Handle[blob]
	if zero.IsValid() {
		t.Fatal("zero handle reported valid")
	}
	if s.Get(zero) != nil {
		t.Fatal("zero handle resolved to an asset")
	}

	pending := s.Allocate()
	if !pending.IsValid() {
		t.Fatal("allocated handle invalid")
	}
	if s.Get(pending) != nil {
		t.Fatal("pending handle resolved before load")
	}

	s.Load(pending, &blob{name: "sphere"})
	if got := s.Get(pending); got == nil || got.name != "sphere" {
		t.Fatalf("Get after load = %v", got)
	}

	ready := s.Insert(&blob{name: "cube"})
	if ready == pending {
		t.Fatal("Insert reused a handle")
	}

	var names []string
	s.Each(func(_ Handle[blob], b *blob) { names = append(names, b.name) })
	if len(names) != 2 || names[0] != "sphere" || names[1] != "cube" {
		t.Fatalf("Each visited %v", names)
	}

	if got := s.Unload(pending); got == nil || got.name != "sphere" {
		t.Fatalf("Unload returned %v", got)
	}
	if s.Get(pending) != nil {
		t.Fatal("asset still resolvable after unload")
	}
}

package gfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStd140Layout(t *testing.T) {
	w := NewStd140(64)
	w.Vec3(mgl32.Vec3{1, 2, 3}).Float(4) // float packs into the vec3 tail
	w.Vec2(mgl32.Vec2{5, 6})
	w.Vec4(mgl32.Vec4{7, 8, 9, 10}) // realigned to 32
	w.Int(-1)
	w.EndStruct()

	b := w.Bytes()
	if len(b) != 64 {
		t.Fatalf("len = %d, want 64", len(b))
	}
	checks := []struct {
		off  int
		want float32
	}{
		{0, 1}, {4, 2}, {8, 3}, {12, 4}, {16, 5}, {20, 6}, {32, 7}, {44, 10},
	}
	for _, c := range checks {
		if got := Float32At(b, c.off); got != c.want {
			t.Errorf("float at %d = %v, want %v", c.off, got, c.want)
		}
	}
}

func TestStd140Mat4RoundTrip(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	w := NewStd140(80)
	w.Float(9).Mat4(m)
	if w.Len() != 80 {
		t.Fatalf("len = %d, want 80", w.Len())
	}
	if got := Mat4At(w.Bytes(), 16); got != m {
		t.Fatalf("Mat4At = %v, want %v", got, m)
	}
}

func TestDepthModeTest(t *testing.T) {
	tests := []struct {
		mode DepthMode
		want DepthTest
		ok   bool
	}{
		{DepthModeNone, DepthTest{}, false},
		{DepthModeLessEqualTest, DepthTest{Fun: CompareLessEqual}, true},
		{DepthModeLessEqualWrite, DepthTest{Fun: CompareLessEqual, Write: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got, ok := tt.mode.Test()
			if got != tt.want || ok != tt.ok {
				t.Fatalf("Test() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

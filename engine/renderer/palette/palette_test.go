package palette

import "testing"

func TestConstructorsClamp(t *testing.T) {
	if got := NewSrgb(1.5, -1, 0.25); got != (Srgb{1, 0, 0.25}) {
		t.Fatalf("NewSrgb = %v", got)
	}
	if got := NewRgba(0.5, 2, 0, -3); got != (Rgba{0.5, 1, 0, 0}) {
		t.Fatalf("NewRgba = %v", got)
	}
	if got := SrgbFromArray([3]float32{0.1, 0.3, 0.35}); got != (Srgb{0.1, 0.3, 0.35}) {
		t.Fatalf("SrgbFromArray = %v", got)
	}
}

func TestConversions(t *testing.T) {
	c := Srgb{0.2, 0.4, 0.6}
	if v := c.Vec3(); v[0] != 0.2 || v[1] != 0.4 || v[2] != 0.6 {
		t.Fatalf("Vec3 = %v", v)
	}
	if got := c.Rgba(1).Srgb(); got != c {
		t.Fatalf("round trip through Rgba = %v", got)
	}
	if got := (Srgb{0.6, 0.6, 0.6}).Scale(2); got != (Srgb{1, 1, 1}) {
		t.Fatalf("Scale = %v", got)
	}
}

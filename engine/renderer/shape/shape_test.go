package shape

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVertexCounts(t *testing.T) {
	tests := []struct {
		name  string
		shape *Shape
		want  int
	}{
		{"sphere 16x16", Sphere(16, 16), 2 * 16 * 15 * 3},
		{"sphere clamps", Sphere(1, 1), 2 * 3 * 1 * 3},
		{"plane 2x3", Plane(2, 2, 2, 3, 1, 1), 2 * 3 * 6},
		{"cube", Cube(1, 1, 1, 1, 1), 36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.shape
			if s.Len() != tt.want {
				t.Fatalf("Len() = %d, want %d", s.Len(), tt.want)
			}
			if len(s.Normals) != s.Len() || len(s.TexCoords) != s.Len() {
				t.Fatalf("attribute counts differ: %d normals, %d texcoords", len(s.Normals), len(s.TexCoords))
			}
		})
	}
}

func TestSphereIsUnit(t *testing.T) {
	for i, p := range Sphere(16, 16).Positions {
		if d := stdmath.Abs(float64(p.Len()) - 1); d > 1e-5 {
			t.Fatalf("vertex %d at distance %v from origin", i, p.Len())
		}
	}
}

func TestCubeNormalsPointOutward(t *testing.T) {
	s := Cube(2, 2, 2, 1, 1)
	for i, p := range s.Positions {
		if p.Dot(s.Normals[i]) <= 0 {
			t.Fatalf("vertex %d normal %v points inward at %v", i, s.Normals[i], p)
		}
	}
}

func TestPosTex(t *testing.T) {
	s := Plane(1, 1, 1, 1, 2, 2)
	pt := s.PosTex()
	if len(pt) != 6 {
		t.Fatalf("len = %d", len(pt))
	}
	if pt[1].Position != (mgl32.Vec3{0.5, 0.5, 0}) || pt[1].TexCoord != (mgl32.Vec2{2, 2}) {
		t.Fatalf("second vertex = %+v", pt[1])
	}
}

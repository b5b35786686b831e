// Package shape generates procedural, non-indexed triangle list geometry.
package shape

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

// Shape holds per-vertex attributes of a triangle list.
type Shape struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
}

func (s *Shape) Len() int {
	return len(s.Positions)
}

func (s *Shape) push(p, n mgl32.Vec3, uv mgl32.Vec2) {
	s.Positions = append(s.Positions, p)
	s.Normals = append(s.Normals, n)
	s.TexCoords = append(s.TexCoords, uv)
}

// PosTex interleaves positions and texture coordinates.
func (s *Shape) PosTex() []vertex.PosTexVertex {
	out := make([]vertex.PosTexVertex, len(s.Positions))
	for i := range s.Positions {
		out[i] = vertex.PosTexVertex{Position: s.Positions[i], TexCoord: s.TexCoords[i]}
	}
	return out
}

// SeparateBuilder prepares a mesh with one buffer per base attribute.
func (s *Shape) SeparateBuilder() *mesh.Builder {
	return mesh.NewBuilder().
		WithPositions(s.Positions).
		WithNormals(s.Normals).
		WithTexCoords(s.TexCoords)
}

// PosTexBuilder prepares a mesh with a single interleaved PosTex buffer.
func (s *Shape) PosTexBuilder() *mesh.Builder {
	return mesh.NewBuilder().WithPosTex(s.PosTex())
}

// Sphere builds a unit UV sphere with u segments around the Y axis and v
// rings from pole to pole. The pole rings are triangle fans, so the result
// has 2*u*(v-1) triangles.
func Sphere(u, v int) *Shape {
	if u < 3 {
		core.LogWarn("sphere needs at least 3 segments. Defaulting to 3.")
		u = 3
	}
	if v < 2 {
		core.LogWarn("sphere needs at least 2 rings. Defaulting to 2.")
		v = 2
	}

	at := func(i, j int) (mgl32.Vec3, mgl32.Vec2) {
		phi := float64(i) / float64(u) * 2 * stdmath.Pi
		theta := float64(j) / float64(v) * stdmath.Pi
		p := mgl32.Vec3{
			float32(stdmath.Sin(theta) * stdmath.Cos(phi)),
			float32(stdmath.Cos(theta)),
			float32(stdmath.Sin(theta) * stdmath.Sin(phi)),
		}
		return p, mgl32.Vec2{float32(i) / float32(u), float32(j) / float32(v)}
	}

	s := &Shape{}
	vert := func(i, j int) {
		p, uv := at(i, j)
		s.push(p, p, uv)
	}
	for i := 0; i < u; i++ {
		// top fan
		vert(i, 0)
		vert(i+1, 1)
		vert(i, 1)
		for j := 1; j < v-1; j++ {
			vert(i, j)
			vert(i+1, j)
			vert(i+1, j+1)

			vert(i, j)
			vert(i+1, j+1)
			vert(i, j+1)
		}
		// bottom fan
		vert(i, v-1)
		vert(i+1, v-1)
		vert(i, v)
	}
	return s
}

// Plane builds a plane in the XY plane facing +Z, split into segments with
// tiled texture coordinates.
func Plane(width, height float32, xSegments, ySegments int, tileX, tileY float32) *Shape {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegments < 1 {
		xSegments = 1
	}
	if ySegments < 1 {
		ySegments = 1
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	segWidth := width / float32(xSegments)
	segHeight := height / float32(ySegments)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	normal := mgl32.Vec3{0, 0, 1}

	s := &Shape{}
	for y := 0; y < ySegments; y++ {
		for x := 0; x < xSegments; x++ {
			minX := float32(x)*segWidth - halfWidth
			minY := float32(y)*segHeight - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minU := float32(x) / float32(xSegments) * tileX
			minV := float32(y) / float32(ySegments) * tileY
			maxU := float32(x+1) / float32(xSegments) * tileX
			maxV := float32(y+1) / float32(ySegments) * tileY

			v0 := mgl32.Vec3{minX, minY, 0}
			v1 := mgl32.Vec3{maxX, maxY, 0}
			v2 := mgl32.Vec3{minX, maxY, 0}
			v3 := mgl32.Vec3{maxX, minY, 0}

			s.push(v0, normal, mgl32.Vec2{minU, minV})
			s.push(v1, normal, mgl32.Vec2{maxU, maxV})
			s.push(v2, normal, mgl32.Vec2{minU, maxV})
			s.push(v0, normal, mgl32.Vec2{minU, minV})
			s.push(v3, normal, mgl32.Vec2{maxU, minV})
			s.push(v1, normal, mgl32.Vec2{maxU, maxV})
		}
	}
	return s
}

// Cube builds an axis aligned box centred on the origin.
func Cube(width, height, depth, tileX, tileY float32) *Shape {
	if width == 0 {
		width = 1.0
	}
	if height == 0 {
		height = 1.0
	}
	if depth == 0 {
		depth = 1.0
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5

	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3 // bottom-left, bottom-right, top-right, top-left
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {tileX, 0}, {tileX, tileY}, {0, tileY}}

	s := &Shape{}
	for _, f := range faces {
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			s.push(f.corners[i], f.normal, uvs[i])
		}
	}
	return s
}

package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

func TestTransformMatrix(t *testing.T) {
	tr := NewTransformAt(mgl32.Vec3{1, 2, 3})
	tr.Scale = mgl32.Vec3{2, 2, 2}
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{3, 2, 3, 1}
	if !got.ApproxEqual(want) {
		t.Fatalf("Matrix * x = %v, want %v", got, want)
	}
	if !tr.View().Mul4(tr.Matrix()).ApproxEqual(mgl32.Ident4()) {
		t.Fatal("View is not the inverse of Matrix")
	}
}

func TestIdentityTransform(t *testing.T) {
	if !NewTransform().Matrix().ApproxEqual(mgl32.Ident4()) {
		t.Fatal("NewTransform is not identity")
	}
}

func TestFlyCameraPitchClamp(t *testing.T) {
	c := &FlyCamera{}
	c.Pitch(10)
	if c.EulerRotation[0] != pitchLimit {
		t.Fatalf("pitch = %v, want %v", c.EulerRotation[0], pitchLimit)
	}
	c.Pitch(-20)
	if c.EulerRotation[0] != -pitchLimit {
		t.Fatalf("pitch = %v, want %v", c.EulerRotation[0], -pitchLimit)
	}
}

func TestFlyCameraMove(t *testing.T) {
	c := &FlyCamera{}
	c.MoveForward(2)
	if !c.Position.ApproxEqual(mgl32.Vec3{0, 0, -2}) {
		t.Fatalf("position after MoveForward = %v", c.Position)
	}
	c.MoveUp(1)
	c.MoveRight(1)
	if !c.Position.ApproxEqual(mgl32.Vec3{1, 1, -2}) {
		t.Fatalf("position = %v", c.Position)
	}
}

func TestStandardCameraFlipsY(t *testing.T) {
	cam := StandardCamera(gfx.Extent{Width: 1280, Height: 720})
	p := cam.Proj.Mul4x1(mgl32.Vec4{0, 1, -10, 1})
	if p[1] >= 0 {
		t.Fatalf("up maps to clip y %v, want negative", p[1])
	}
	ndcZ := p[2] / p[3]
	if ndcZ < 0 || ndcZ > 1 {
		t.Fatalf("depth %v outside [0, 1]", ndcZ)
	}
}

func TestLookAt(t *testing.T) {
	tr := NewTransformAt(mgl32.Vec3{0, 0, 5})
	tr.LookAt(mgl32.Vec3{5, 0, 5}, mgl32.Vec3{0, 1, 0})
	if !tr.Forward().ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("Forward() = %v, want +X", tr.Forward())
	}
}

package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in world space.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func NewTransformAt(translation mgl32.Vec3) Transform {
	t := NewTransform()
	t.Translation = translation
	return t
}

// Matrix composes translation, rotation and scale into a model matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// View is the inverse of Matrix, used when the transform belongs to a camera.
func (t Transform) View() mgl32.Mat4 {
	return t.Matrix().Inv()
}

func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) Right() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

// LookAt orients the transform towards target.
func (t *Transform) LookAt(target, up mgl32.Vec3) {
	// QuatLookAtV yields the view rotation; the transform holds its inverse.
	t.Rotation = mgl32.QuatLookAtV(t.Translation, target, up).Inverse()
}

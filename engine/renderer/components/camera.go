package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/math"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// clipCorrection maps OpenGL clip space onto Vulkan's flipped Y and [0, 1] depth.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

/**
 * @brief Projection of a camera entity. The view comes from the
 * Transform of the same entity.
 */
type Camera struct {
	Proj mgl32.Mat4
}

func NewPerspectiveCamera(aspect, fovy, znear, zfar float32) Camera {
	return Camera{Proj: clipCorrection.Mul4(mgl32.Perspective(fovy, aspect, znear, zfar))}
}

func NewOrthographicCamera(left, right, bottom, top, znear, zfar float32) Camera {
	return Camera{Proj: clipCorrection.Mul4(mgl32.Ortho(left, right, bottom, top, znear, zfar))}
}

// StandardCamera is a 45 degree perspective sized for the framebuffer.
func StandardCamera(framebuffer gfx.Extent) Camera {
	return NewPerspectiveCamera(framebuffer.Aspect(), mgl32.DegToRad(45.0), 0.1, 1000.0)
}

/** @brief Selects which camera entity renders the scene. */
type ActiveCamera struct {
	Entity ecs.Entity
}

/**
 * @brief First person controller state. Position and Euler rotation
 * (pitch, yaw, roll) are turned into a Transform for the camera entity.
 */
type FlyCamera struct {
	Position      mgl32.Vec3
	EulerRotation mgl32.Vec3
}

// pitchLimit is 89 degrees.
const pitchLimit = float32(1.55334306)

func (c *FlyCamera) Transform() Transform {
	t := NewTransformAt(c.Position)
	t.Rotation = mgl32.AnglesToQuat(c.EulerRotation[0], c.EulerRotation[1], c.EulerRotation[2], mgl32.XYZ)
	return t
}

func (c *FlyCamera) Forward() mgl32.Vec3 {
	return c.Transform().Forward()
}

func (c *FlyCamera) Right() mgl32.Vec3 {
	return c.Transform().Right()
}

func (c *FlyCamera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward().Mul(amount))
}

func (c *FlyCamera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *FlyCamera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().Mul(amount))
}

func (c *FlyCamera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *FlyCamera) MoveUp(amount float32) {
	c.Position = c.Position.Add(mgl32.Vec3{0, amount, 0})
}

func (c *FlyCamera) Yaw(amount float32) {
	c.EulerRotation[1] += amount
}

func (c *FlyCamera) Pitch(amount float32) {
	// Clamp to avoid Gimbal lock.
	c.EulerRotation[0] = math.Clamp(c.EulerRotation[0]+amount, -pitchLimit, pitchLimit)
}

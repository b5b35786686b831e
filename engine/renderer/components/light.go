package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

// Light is one of PointLight, DirectionalLight or SpotLight. Point and spot
// lights take their position from the entity Transform. Lights share one
// storage, so insert them as ecs.Insert[components.Light].
type Light interface {
	isLight()
}

type PointLight struct {
	Color      palette.Srgb
	Intensity  float32
	Radius     float32
	Smoothness float32
}

type DirectionalLight struct {
	Color     palette.Srgb
	Intensity float32
	Direction mgl32.Vec3
}

type SpotLight struct {
	Angle      float32
	Color      palette.Srgb
	Direction  mgl32.Vec3
	Intensity  float32
	Range      float32
	Smoothness float32
}

func (PointLight) isLight()       {}
func (DirectionalLight) isLight() {}
func (SpotLight) isLight()        {}

func NewPointLight(color palette.Srgb) PointLight {
	return PointLight{Color: color, Intensity: 10.0, Radius: 10.0, Smoothness: 4.0}
}

func NewDirectionalLight(color palette.Srgb, direction mgl32.Vec3) DirectionalLight {
	return DirectionalLight{Color: color, Intensity: 1.0, Direction: direction}
}

func NewSpotLight(color palette.Srgb, direction mgl32.Vec3) SpotLight {
	return SpotLight{Angle: mgl32.DegToRad(60), Color: color, Direction: direction, Intensity: 10.0, Range: 10.0, Smoothness: 4.0}
}

// AmbientColor lights every surface uniformly.
type AmbientColor struct {
	Color palette.Rgba
}

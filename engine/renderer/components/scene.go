package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

// Hidden removes an entity from rendering.
type Hidden struct{}

// HiddenPropagate hides an entity and, for a hierarchy, all its children.
type HiddenPropagate struct{}

// MaxJoints is the size of the joint matrix array available to skinned meshes.
const MaxJoints = 100

// JointTransforms are the skinning matrices of a skinned mesh entity.
type JointTransforms struct {
	Skin     ecs.Entity
	Matrices []mgl32.Mat4
}

// Visibility is the output of a culling system.
type Visibility struct {
	// VisibleUnordered can be drawn in any order.
	VisibleUnordered ecs.Set
	// VisibleOrdered must be drawn in sequence, typically back to front.
	VisibleOrdered []ecs.Entity
}

// SkyboxSettings overrides the colours of the skybox pass for the scene.
type SkyboxSettings struct {
	NadirColor  palette.Srgb
	ZenithColor palette.Srgb
}

func NewSkyboxSettings(nadir, zenith palette.Srgb) SkyboxSettings {
	return SkyboxSettings{NadirColor: nadir, ZenithColor: zenith}
}

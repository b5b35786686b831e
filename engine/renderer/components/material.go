package components

import (
	"github.com/spaghettifunk/anima-render/engine/assets"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/texture"
)

type (
	MeshHandle    = assets.Handle[mesh.Mesh]
	TextureHandle = assets.Handle[texture.Texture]
)

// TextureOffset selects the [start, end] sub range of a texture along U and V.
type TextureOffset struct {
	U [2]float32
	V [2]float32
}

var FullTexture = TextureOffset{U: [2]float32{0, 1}, V: [2]float32{0, 1}}

type Material struct {
	Albedo         TextureHandle
	AlbedoOffset   TextureOffset
	Emission       TextureHandle
	EmissionOffset TextureOffset
}

func NewMaterial(albedo, emission TextureHandle) Material {
	return Material{
		Albedo:         albedo,
		AlbedoOffset:   FullTexture,
		Emission:       emission,
		EmissionOffset: FullTexture,
	}
}

// MaterialDefaults supplies a texture for every slot a material leaves empty
// or whose texture has not loaded yet.
type MaterialDefaults struct {
	Material Material
}

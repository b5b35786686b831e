package pass

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/assets"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/effect"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/renderer/submodules"
	"github.com/spaghettifunk/anima-render/engine/renderer/texture"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

const (
	vertexArgsSize     = 208
	textureOffsetsSize = 32

	albedoTexture   = "albedo"
	emissionTexture = "emission"
)

// vertexArgs is the per draw block read by the vertex programs.
type vertexArgs struct {
	Proj  mgl32.Mat4
	View  mgl32.Mat4
	Model mgl32.Mat4
	Rgba  mgl32.Vec4
}

func (a vertexArgs) Std140() []byte {
	return gfx.NewStd140(vertexArgsSize).Mat4(a.Proj).Mat4(a.View).Mat4(a.Model).Vec4(a.Rgba).Bytes()
}

func getCamera(world *ecs.World) submodules.CameraView {
	return submodules.GatherCamera(world)
}

func setupVertexArgs(b *effect.Builder) {
	b.WithRawConstantBuffer("VertexArgs", vertexArgsSize, gfx.StageVertex)
}

// setupTextures declares the offsets block followed by one sampler per name.
func setupTextures(b *effect.Builder, names ...string) {
	b.WithRawConstantBuffer("TextureOffsets", textureOffsetsSize, gfx.StageFragment)
	for _, name := range names {
		b.WithTexture(name)
	}
}

// setVertexArgs uploads the camera, the model matrix and the tint of a draw.
// A missing transform draws at the origin.
func setVertexArgs(eff *effect.Effect, camera submodules.CameraView, transform *components.Transform, rgba palette.Rgba) {
	model := mgl32.Ident4()
	if transform != nil {
		model = transform.Matrix()
	}
	args := vertexArgs{Proj: camera.Proj, View: camera.View, Model: model, Rgba: rgba.Vec4()}
	eff.UpdateConstantBuffer("VertexArgs", args.Std140())
}

func textureOffsets(m *components.Material) []byte {
	return gfx.NewStd140(textureOffsetsSize).
		Vec2(mgl32.Vec2(m.AlbedoOffset.U)).
		Vec2(mgl32.Vec2(m.AlbedoOffset.V)).
		Vec2(mgl32.Vec2(m.EmissionOffset.U)).
		Vec2(mgl32.Vec2(m.EmissionOffset.V)).
		Bytes()
}

// resolveTexture returns the texture of h, or the default for the slot when
// h has not loaded.
func resolveTexture(storage *assets.Storage[texture.Texture], h, fallback components.TextureHandle) *texture.Texture {
	if storage == nil {
		return nil
	}
	if tex := storage.Get(h); tex != nil {
		return tex
	}
	return storage.Get(fallback)
}

// addTextures binds the material textures and their offsets. Without a
// material the defaults are used as a whole.
func addTextures(eff *effect.Effect, storage *assets.Storage[texture.Texture], material *components.Material, defaults components.MaterialDefaults) {
	if material == nil {
		material = &defaults.Material
	}
	slots := []struct {
		name     string
		handle   components.TextureHandle
		fallback components.TextureHandle
	}{
		{albedoTexture, material.Albedo, defaults.Material.Albedo},
		{emissionTexture, material.Emission, defaults.Material.Emission},
	}
	for _, s := range slots {
		if tex := resolveTexture(storage, s.handle, s.fallback); tex != nil {
			eff.SetTexture(s.name, tex.View, tex.Sampler)
		}
	}
	eff.UpdateConstantBuffer("TextureOffsets", textureOffsets(material))
}

// setAttributeBuffers hands the mesh streams to the effect in binding order.
func setAttributeBuffers(eff *effect.Effect, m *mesh.Mesh, attributes []vertex.Semantic) bool {
	for _, s := range attributes {
		b, ok := m.Buffer(s)
		if !ok {
			return false
		}
		eff.SetVertexBuffer(b)
	}
	return true
}

// drawable is one entity selected for drawing. Only the mesh is mandatory.
type drawable struct {
	entity    ecs.Entity
	mesh      components.MeshHandle
	material  *components.Material
	transform *components.Transform
	joints    *components.JointTransforms
	tint      *palette.Rgba
}

// drawContext is the state shared by every draw of one Apply.
type drawContext struct {
	enc      gfx.Encoder
	effect   *effect.Effect
	skinning bool
	meshes   *assets.Storage[mesh.Mesh]
	textures *assets.Storage[texture.Texture]
	defaults components.MaterialDefaults
	camera   submodules.CameraView
}

// drawMesh issues the draw of d. Meshes that have not loaded are skipped;
// meshes lacking a stream the effect needs clear the effect and are skipped.
func (c *drawContext) drawMesh(d drawable) bool {
	m := c.meshes.Get(d.mesh)
	if m == nil {
		return false
	}
	if !setAttributeBuffers(c.effect, m, attributes(c.skinning)) {
		c.effect.Clear()
		return false
	}

	tint := palette.White
	if d.tint != nil {
		tint = *d.tint
	}
	setVertexArgs(c.effect, c.camera, d.transform, tint)
	if c.skinning {
		setJointTransforms(c.effect, d.joints)
	}
	addTextures(c.effect, c.textures, d.material, c.defaults)

	drawn := c.effect.Draw(c.enc, gfx.Range{Start: 0, End: m.Len()})
	c.effect.Clear()
	return drawn
}

func attributes(skinning bool) []vertex.Semantic {
	if skinning {
		return vertex.Skinned
	}
	return vertex.Base
}

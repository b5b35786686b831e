package pass

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/assets"
	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/effect"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
	"github.com/spaghettifunk/anima-render/engine/renderer/texture"
)

// Transparency is the colour and depth state of a blended shaded pass.
type Transparency struct {
	Mask  gfx.ColorMask
	Blend gfx.Blend
	Depth gfx.DepthMode
}

// DefaultTransparency blends "over" with all channels written and depth
// tested and written.
func DefaultTransparency() Transparency {
	return Transparency{Mask: gfx.ColorMaskAll, Blend: gfx.BlendAlpha, Depth: gfx.DepthModeLessEqualWrite}
}

// DrawShadedSeparate draws meshes with non-interleaved position, normal and
// texture coordinate streams, lit by the scene lights.
type DrawShadedSeparate struct {
	skinning     bool
	transparency *Transparency
}

// NewDrawShadedSeparate returns the pass with transparency enabled.
func NewDrawShadedSeparate() DrawShadedSeparate {
	t := DefaultTransparency()
	return DrawShadedSeparate{transparency: &t}
}

func (p DrawShadedSeparate) WithVertexSkinning() DrawShadedSeparate {
	p.skinning = true
	return p
}

// WithTransparency(false) disables blending. WithTransparency(true) restores
// the default settings if blending was disabled and keeps custom ones
// otherwise.
func (p DrawShadedSeparate) WithTransparency(enabled bool) DrawShadedSeparate {
	if !enabled {
		p.transparency = nil
		return p
	}
	if p.transparency == nil {
		t := DefaultTransparency()
		p.transparency = &t
	}
	return p
}

func (p DrawShadedSeparate) WithTransparencySettings(mask gfx.ColorMask, blend gfx.Blend, depth gfx.DepthMode) DrawShadedSeparate {
	p.transparency = &Transparency{Mask: mask, Blend: blend, Depth: depth}
	return p
}

func (p DrawShadedSeparate) Skinning() bool {
	return p.skinning
}

// Transparency returns the blend settings, ok is false for an opaque pass.
func (p DrawShadedSeparate) Transparency() (t Transparency, ok bool) {
	if p.transparency == nil {
		return Transparency{}, false
	}
	return *p.transparency, true
}

func (p DrawShadedSeparate) Compile(n *effect.NewEffect) (*effect.Effect, error) {
	core.LogDebug("Building shaded pass")
	vs := shaders.ShadedVertex
	if p.skinning {
		vs = shaders.SkinnedVertex
	}
	b := n.Simple(vs, shaders.ShadedFragment)

	core.LogDebug("Effect compiled, adding vertex/uniform buffers")
	for _, s := range attributes(p.skinning) {
		b.WithRawVertexBuffer(s.Format(), gfx.RateVertex)
	}
	setupVertexArgs(b)
	setupLightBuffers(b)
	setupTextures(b, albedoTexture, emissionTexture)
	if p.skinning {
		setupSkinningBuffers(b)
	}

	if t, ok := p.Transparency(); ok {
		b.WithBlendedOutput("color", t.Mask, t.Blend, t.Depth)
	} else {
		b.WithOutput("color", gfx.DepthModeLessEqualWrite)
	}
	eff, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build shaded effect")
	}
	return eff, nil
}

// Apply draws every visible mesh of the world. Entities whose mesh has not
// loaded or lacks a stream are skipped.
func (p DrawShadedSeparate) Apply(enc gfx.Encoder, eff *effect.Effect, factory gfx.Factory, world *ecs.World) {
	meshes, ok := ecs.Resource[*assets.Storage[mesh.Mesh]](world)
	if !ok || meshes == nil {
		return
	}
	textures, _ := ecs.Resource[*assets.Storage[texture.Texture]](world)

	ctx := &drawContext{
		enc:      enc,
		effect:   eff,
		skinning: p.skinning,
		meshes:   meshes,
		textures: textures,
		defaults: ecs.ResourceOr(world, components.MaterialDefaults{}),
		camera:   getCamera(world),
	}
	setLightArgs(eff, world, ctx.camera)
	for _, d := range visibleDrawables(world) {
		ctx.drawMesh(d)
	}
}

var _ Pass = DrawShadedSeparate{}

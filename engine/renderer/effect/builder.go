// Package effect compiles a vertex/fragment program pair into a pipeline and
// feeds it per-draw uniform data, textures and vertex buffers.
//
// Every constant buffer, the globals block and every texture live in
// descriptor set 0. Bindings are numbered in declaration order, so the order
// of the With* calls must match the binding numbers of the shaders.
package effect

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/math"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

// GlobalSize is the slot every global occupies in the globals block.
const GlobalSize = 16

// DefaultDrawCapacity is how many draws one uniform chunk holds when every
// draw rewrites every block. Busier frames allocate further chunks.
const DefaultDrawCapacity = 128

// NewEffect carries what every effect built for one subpass shares.
type NewEffect struct {
	factory     gfx.Factory
	loader      shaders.Loader
	subpass     gfx.Subpass
	framebuffer gfx.Extent
}

func New(factory gfx.Factory, loader shaders.Loader, subpass gfx.Subpass, framebuffer gfx.Extent) *NewEffect {
	return &NewEffect{factory: factory, loader: loader, subpass: subpass, framebuffer: framebuffer}
}

func (n *NewEffect) Factory() gfx.Factory {
	return n.factory
}

// Simple starts an effect made of one vertex and one fragment program.
func (n *NewEffect) Simple(vs, fs shaders.Program) *Builder {
	return &Builder{
		owner:    n,
		vs:       vs,
		fs:       fs,
		topology: gfx.TopologyTriangleList,
		cull:     gfx.CullBack,
		capacity: DefaultDrawCapacity,
	}
}

type blockDecl struct {
	name    string
	binding uint32
	size    uint64
	stages  gfx.ShaderStage
}

type textureDecl struct {
	name    string
	binding uint32
}

type outputDecl struct {
	name  string
	blend gfx.ColorBlend
	depth gfx.DepthMode
}

// Builder accumulates the interface of an effect.
type Builder struct {
	owner *NewEffect
	vs    shaders.Program
	fs    shaders.Program

	vertex    []gfx.VertexBufferDesc
	blocks    []blockDecl
	globals   []string
	globalsAt int
	textures  []textureDecl
	outputs   []outputDecl
	bindings  uint32
	topology  gfx.Topology
	cull      gfx.CullMode
	capacity  int
}

func (b *Builder) nextBinding() uint32 {
	n := b.bindings
	b.bindings++
	return n
}

// WithRawVertexBuffer declares the next vertex buffer binding.
func (b *Builder) WithRawVertexBuffer(format gfx.VertexFormat, rate gfx.VertexRate) *Builder {
	b.vertex = append(b.vertex, gfx.VertexBufferDesc{
		Binding: uint32(len(b.vertex)),
		Format:  format,
		Rate:    rate,
	})
	return b
}

// WithRawConstantBuffer declares a uniform block of size bytes.
func (b *Builder) WithRawConstantBuffer(name string, size uint64, stages gfx.ShaderStage) *Builder {
	b.blocks = append(b.blocks, blockDecl{name: name, binding: b.nextBinding(), size: size, stages: stages})
	return b
}

// WithRawGlobal declares a value of the globals block. The block takes the
// binding following whatever was declared before the first global.
func (b *Builder) WithRawGlobal(name string) *Builder {
	if len(b.globals) == 0 {
		b.globalsAt = len(b.blocks)
		b.blocks = append(b.blocks, blockDecl{name: globalsBlock, binding: b.nextBinding(), stages: gfx.StageAllGraphics})
	}
	b.globals = append(b.globals, name)
	b.blocks[b.globalsAt].size = uint64(len(b.globals) * GlobalSize)
	return b
}

// WithTexture declares a combined image sampler used by the fragment program.
func (b *Builder) WithTexture(name string) *Builder {
	b.textures = append(b.textures, textureDecl{name: name, binding: b.nextBinding()})
	return b
}

// WithOutput declares an opaque colour attachment.
func (b *Builder) WithOutput(name string, depth gfx.DepthMode) *Builder {
	b.outputs = append(b.outputs, outputDecl{name: name, blend: gfx.ColorBlend{Mask: gfx.ColorMaskAll}, depth: depth})
	return b
}

// WithBlendedOutput declares a colour attachment with blending.
func (b *Builder) WithBlendedOutput(name string, mask gfx.ColorMask, blend gfx.Blend, depth gfx.DepthMode) *Builder {
	b.outputs = append(b.outputs, outputDecl{name: name, blend: gfx.ColorBlend{Mask: mask, Blend: &blend}, depth: depth})
	return b
}

func (b *Builder) WithPrimitiveType(topology gfx.Topology) *Builder {
	b.topology = topology
	return b
}

func (b *Builder) WithCullMode(cull gfx.CullMode) *Builder {
	b.cull = cull
	return b
}

// WithDrawCapacity sizes the uniform chunks for n draws.
func (b *Builder) WithDrawCapacity(n int) *Builder {
	if n > 0 {
		b.capacity = n
	}
	return b
}

// descriptorBindings lists every binding of set 0 in binding order.
func (b *Builder) descriptorBindings() []gfx.DescriptorBinding {
	out := make([]gfx.DescriptorBinding, b.bindings)
	for _, blk := range b.blocks {
		out[blk.binding] = gfx.DescriptorBinding{Binding: blk.binding, Type: gfx.DescriptorUniformBuffer, Count: 1, Stages: blk.stages}
	}
	for _, tex := range b.textures {
		out[tex.binding] = gfx.DescriptorBinding{Binding: tex.binding, Type: gfx.DescriptorCombinedImageSampler, Count: 1, Stages: gfx.StageFragment}
	}
	return out
}

// chunkSize is the arena space capacity draws need when every draw rewrites
// every block.
func (b *Builder) chunkSize() uint64 {
	var perDraw uint64
	for _, blk := range b.blocks {
		perDraw += math.AlignUp(blk.size, gfx.UniformAlignment)
	}
	return perDraw * uint64(b.capacity)
}

// Build creates the pipeline and its per-frame resources. On failure
// everything created so far is released.
func (b *Builder) Build() (*Effect, error) {
	factory := b.owner.factory
	if len(b.outputs) == 0 {
		return nil, errors.Errorf("effect %s+%s declares no output", b.vs.Name, b.fs.Name)
	}

	vs, err := b.loadModule(b.vs)
	if err != nil {
		return nil, err
	}
	defer factory.DestroyShaderModule(vs)
	fs, err := b.loadModule(b.fs)
	if err != nil {
		return nil, err
	}
	defer factory.DestroyShaderModule(fs)

	e := newEffect(b)

	if e.setLayout, err = factory.CreateDescriptorSetLayout(b.descriptorBindings()); err != nil {
		e.Dispose()
		return nil, errors.Wrap(err, "failed to create effect descriptor set layout")
	}
	if e.layout, err = factory.CreatePipelineLayout([]gfx.DescriptorSetLayout{e.setLayout}, nil); err != nil {
		e.Dispose()
		return nil, errors.Wrap(err, "failed to create effect pipeline layout")
	}

	desc := &gfx.PipelineDesc{
		Layout: e.layout,
		Shaders: []gfx.ShaderStageDesc{
			{Stage: gfx.StageVertex, Module: vs, Entry: "main"},
			{Stage: gfx.StageFragment, Module: fs, Entry: "main"},
		},
		VertexBuffers: b.vertex,
		Topology:      b.topology,
		Cull:          b.cull,
		Subpass:       b.owner.subpass,
		Framebuffer:   b.owner.framebuffer,
	}
	if test, ok := b.outputs[0].depth.Test(); ok {
		desc.Depth = &test
	}
	for _, o := range b.outputs {
		desc.Blends = append(desc.Blends, o.blend)
	}
	if e.pipeline, err = factory.CreateGraphicsPipeline(desc); err != nil {
		e.Dispose()
		return nil, errors.Wrap(err, "failed to create effect pipeline")
	}

	if err = e.arena.allocate(factory, b.chunkSize()); err != nil {
		e.Dispose()
		return nil, errors.Wrap(err, "failed to create effect uniform arena")
	}

	core.LogDebug("effect %s+%s built with %d bindings and %d vertex buffers", b.vs.Name, b.fs.Name, b.bindings, len(b.vertex))
	return e, nil
}

func (b *Builder) loadModule(p shaders.Program) (gfx.ShaderModule, error) {
	code, err := b.owner.loader.Load(p)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load %s", p.Name)
	}
	m, err := b.owner.factory.CreateShaderModule(code)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create shader module %s", p.Name)
	}
	return m, nil
}

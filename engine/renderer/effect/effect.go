package effect

import (
	"bytes"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

const globalsBlock = "globals"

type block struct {
	name    string
	binding uint32
	data    []byte
	dirty   bool
	buffer  gfx.Buffer
	offset  uint64
	// placed is the generation offset was reserved in.
	placed uint64
}

type boundTexture struct {
	name    string
	binding uint32
	view    gfx.ImageView
	sampler gfx.Sampler
	set     bool
}

// Effect is a built pipeline together with the data of the draw being
// assembled. Between Begin and the last Draw of a frame it is used from a
// single goroutine.
type Effect struct {
	factory   gfx.Factory
	pipeline  gfx.Pipeline
	layout    gfx.PipelineLayout
	setLayout gfx.DescriptorSetLayout

	blocks   []block
	byName   map[string]int
	globals  map[string]int
	globalAt int
	textures []boundTexture

	vertexCount int
	vertexBufs  []gfx.Buffer

	arena      arena
	frame      uint32
	generation uint64
	bound      bool
	disposed   bool
}

func newEffect(b *Builder) *Effect {
	e := &Effect{
		factory:     b.owner.factory,
		byName:      make(map[string]int),
		globals:     make(map[string]int),
		globalAt:    -1,
		vertexCount: len(b.vertex),
		generation:  1,
	}
	for i, decl := range b.blocks {
		e.blocks = append(e.blocks, block{name: decl.name, binding: decl.binding, data: make([]byte, decl.size)})
		if len(b.globals) > 0 && i == b.globalsAt {
			e.globalAt = i
			continue
		}
		e.byName[decl.name] = i
	}
	for i, name := range b.globals {
		e.globals[name] = i
	}
	for _, tex := range b.textures {
		e.textures = append(e.textures, boundTexture{name: tex.name, binding: tex.binding})
	}
	return e
}

func (e *Effect) Pipeline() gfx.Pipeline {
	return e.pipeline
}

func (e *Effect) Layout() gfx.PipelineLayout {
	return e.layout
}

// Begin starts recording frame. Uniform space and descriptor sets of the
// frame are recycled and the pipeline is bound again by the next Draw.
func (e *Effect) Begin(frame uint32) {
	e.frame = frame % gfx.MaxFramesInFlight
	e.generation++
	e.bound = false
	e.arena.frames[e.frame].reset()
}

// UpdateConstantBuffer replaces the contents of a constant buffer. Shorter
// data leaves the rest of the block zeroed.
func (e *Effect) UpdateConstantBuffer(name string, data []byte) bool {
	i, ok := e.byName[name]
	if !ok {
		core.LogWarn("effect has no constant buffer named %s", name)
		return false
	}
	return e.update(&e.blocks[i], 0, len(e.blocks[i].data), data)
}

// UpdateGlobal replaces one value of the globals block.
func (e *Effect) UpdateGlobal(name string, data []byte) bool {
	slot, ok := e.globals[name]
	if !ok {
		core.LogWarn("effect has no global named %s", name)
		return false
	}
	return e.update(&e.blocks[e.globalAt], slot*GlobalSize, GlobalSize, data)
}

func (e *Effect) update(blk *block, offset, size int, data []byte) bool {
	if len(data) > size {
		core.LogError("effect %s: %d bytes do not fit in %d", blk.name, len(data), size)
		return false
	}
	next := make([]byte, size)
	copy(next, data)
	if !bytes.Equal(next, blk.data[offset:offset+size]) {
		copy(blk.data[offset:], next)
		blk.dirty = true
	}
	return true
}

// SetVertexBuffer binds the next declared vertex buffer of the draw.
func (e *Effect) SetVertexBuffer(b gfx.Buffer) {
	e.vertexBufs = append(e.vertexBufs, b)
}

func (e *Effect) SetTexture(name string, view gfx.ImageView, sampler gfx.Sampler) bool {
	for i := range e.textures {
		if e.textures[i].name == name {
			e.textures[i].view = view
			e.textures[i].sampler = sampler
			e.textures[i].set = true
			return true
		}
	}
	core.LogWarn("effect has no texture named %s", name)
	return false
}

// Clear drops the vertex buffers and textures of the draw being assembled.
// Constant buffers and globals keep their contents.
func (e *Effect) Clear() {
	e.vertexBufs = e.vertexBufs[:0]
	for i := range e.textures {
		e.textures[i].set = false
	}
}

// Draw records one instance of vertices with the current data. It returns
// false without recording anything when the draw is incomplete or the device
// refuses more uniform space.
func (e *Effect) Draw(enc gfx.Encoder, vertices gfx.Range) bool {
	if e.disposed || len(e.vertexBufs) != e.vertexCount {
		return false
	}
	for _, t := range e.textures {
		if !t.set {
			return false
		}
	}

	slot := &e.arena.frames[e.frame]
	for i := range e.blocks {
		blk := &e.blocks[i]
		if blk.placed == e.generation && !blk.dirty {
			continue
		}
		buffer, offset, err := slot.reserve(e.factory, uint64(len(blk.data)))
		if err != nil {
			core.LogError("effect draw skipped: %s", err)
			return false
		}
		if err := e.factory.WriteBuffer(buffer, offset, blk.data); err != nil {
			core.LogError("effect failed to write %s: %s", blk.name, err)
			return false
		}
		blk.buffer = buffer
		blk.offset = offset
		blk.placed = e.generation
		blk.dirty = false
	}

	set, err := slot.descriptorSet(e.factory, e.setLayout)
	if err != nil {
		core.LogError("effect failed to allocate a descriptor set: %s", err)
		return false
	}
	for _, blk := range e.blocks {
		if err := e.factory.WriteUniformDescriptor(set, blk.binding, blk.buffer, blk.offset, uint64(len(blk.data))); err != nil {
			core.LogError("effect failed to write %s descriptor: %s", blk.name, err)
			return false
		}
	}
	for _, t := range e.textures {
		if err := e.factory.WriteTextureDescriptor(set, t.binding, t.view, t.sampler); err != nil {
			core.LogError("effect failed to write %s descriptor: %s", t.name, err)
			return false
		}
	}

	if !e.bound {
		enc.BindPipeline(e.pipeline)
		e.bound = true
	}
	enc.BindDescriptorSets(e.layout, 0, []gfx.DescriptorSet{set})
	if len(e.vertexBufs) > 0 {
		enc.BindVertexBuffers(0, e.vertexBufs, make([]uint64, len(e.vertexBufs)))
	}
	enc.Draw(vertices, gfx.Range{Start: 0, End: 1})
	return true
}

// Dispose releases the pipeline and every per-frame resource. Later calls
// do nothing.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.arena.release(e.factory)
	if e.pipeline != 0 {
		e.factory.DestroyPipeline(e.pipeline)
	}
	if e.layout != 0 {
		e.factory.DestroyPipelineLayout(e.layout)
	}
	if e.setLayout != 0 {
		e.factory.DestroyDescriptorSetLayout(e.setLayout)
	}
	e.pipeline, e.layout, e.setLayout = 0, 0, 0
}

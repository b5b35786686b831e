package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// Encoder records gfx commands into a command buffer that is inside the
// subpass the pipelines were built for. Unknown handles are logged and the
// command is dropped.
type Encoder struct {
	factory *Factory
	Handle  vk.CommandBuffer
}

func NewEncoder(factory *Factory, cb vk.CommandBuffer) *Encoder {
	return &Encoder{factory: factory, Handle: cb}
}

func (e *Encoder) BindPipeline(p gfx.Pipeline) {
	e.factory.mutex.RLock()
	pipeline, ok := e.factory.pipelines[p]
	e.factory.mutex.RUnlock()
	if !ok {
		core.LogError(unknown("pipeline", uint64(p)).Error())
		return
	}
	vk.CmdBindPipeline(e.Handle, vk.PipelineBindPointGraphics, pipeline)
}

func (e *Encoder) BindDescriptorSets(layout gfx.PipelineLayout, first uint32, sets []gfx.DescriptorSet) {
	e.factory.mutex.RLock()
	vkLayout, ok := e.factory.layouts[layout]
	vkSets := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		set, found := e.factory.sets[s]
		if !found {
			ok = false
			break
		}
		vkSets[i] = set.handle
	}
	e.factory.mutex.RUnlock()
	if !ok {
		core.LogError("bind descriptor sets: unknown layout %d or sets %v", layout, sets)
		return
	}
	vk.CmdBindDescriptorSets(e.Handle, vk.PipelineBindPointGraphics, vkLayout, first, uint32(len(vkSets)), vkSets, 0, nil)
}

func (e *Encoder) BindVertexBuffers(first uint32, buffers []gfx.Buffer, offsets []uint64) {
	e.factory.mutex.RLock()
	vkBuffers := make([]vk.Buffer, len(buffers))
	vkOffsets := make([]vk.DeviceSize, len(buffers))
	ok := true
	for i, b := range buffers {
		buffer, found := e.factory.buffers[b]
		if !found {
			ok = false
			break
		}
		vkBuffers[i] = buffer.Handle
		if i < len(offsets) {
			vkOffsets[i] = vk.DeviceSize(offsets[i])
		}
	}
	e.factory.mutex.RUnlock()
	if !ok {
		core.LogError("bind vertex buffers: unknown buffer in %v", buffers)
		return
	}
	vk.CmdBindVertexBuffers(e.Handle, first, uint32(len(vkBuffers)), vkBuffers, vkOffsets)
}

func (e *Encoder) PushConstants(layout gfx.PipelineLayout, stages gfx.ShaderStage, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	e.factory.mutex.RLock()
	vkLayout, ok := e.factory.layouts[layout]
	e.factory.mutex.RUnlock()
	if !ok {
		core.LogError(unknown("pipeline layout", uint64(layout)).Error())
		return
	}
	vk.CmdPushConstants(e.Handle, vkLayout, shaderStageFlags(stages), offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (e *Encoder) Draw(vertices gfx.Range, instances gfx.Range) {
	vk.CmdDraw(e.Handle, vertices.Len(), instances.Len(), vertices.Start, instances.Start)
}

var _ gfx.Encoder = (*Encoder)(nil)

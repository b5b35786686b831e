package gfx

// Opaque device object handles. Zero is the null handle for every kind.
type (
	Pipeline            uint64
	PipelineLayout      uint64
	ShaderModule        uint64
	DescriptorSetLayout uint64
	DescriptorSet       uint64
	Buffer              uint64
	ImageView           uint64
	Sampler             uint64
	RenderPass          uint64
)

// QueueID selects one of the device queues owned by the backend.
type QueueID uint32

// MaxFramesInFlight bounds how many frames may be recorded ahead of the GPU.
// Per-frame resources are kept in arrays of this size and indexed by frame.
const MaxFramesInFlight = 3

// UniformAlignment is the offset alignment used for sub-allocated uniform
// ranges. It covers minUniformBufferOffsetAlignment on every desktop device.
const UniformAlignment = 256

// Subpass identifies where a pipeline will be used.
type Subpass struct {
	RenderPass RenderPass
	Index      uint32
}

type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) Aspect() float32 {
	if e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// Range is a half open [Start, End) interval of vertices or instances.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

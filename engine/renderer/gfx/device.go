package gfx

type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

type ShaderStageDesc struct {
	Stage  ShaderStage
	Module ShaderModule
	Entry  string
}

// PipelineDesc carries everything needed to create one graphics pipeline.
type PipelineDesc struct {
	Layout        PipelineLayout
	Shaders       []ShaderStageDesc
	VertexBuffers []VertexBufferDesc
	Topology      Topology
	Cull          CullMode
	// Depth is nil when depth testing is disabled.
	Depth       *DepthTest
	Blends      []ColorBlend
	Subpass     Subpass
	Framebuffer Extent
}

type TextureDesc struct {
	Width  uint32
	Height uint32
	// Pixels are tightly packed RGBA8.
	Pixels []byte
}

// Factory creates and destroys device objects and performs memory uploads.
// Every Create call has a matching Destroy call; backends do not release
// anything implicitly.
type Factory interface {
	CreateShaderModule(code []byte) (ShaderModule, error)
	DestroyShaderModule(m ShaderModule)

	CreateDescriptorSetLayout(bindings []DescriptorBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(l DescriptorSetLayout)

	CreateDescriptorSet(layout DescriptorSetLayout) (DescriptorSet, error)
	DestroyDescriptorSet(s DescriptorSet)
	// WriteUniformDescriptor points a uniform binding of set at a buffer range.
	WriteUniformDescriptor(set DescriptorSet, binding uint32, buffer Buffer, offset, size uint64) error
	// WriteTextureDescriptor points a sampler binding of set at a texture.
	WriteTextureDescriptor(set DescriptorSet, binding uint32, view ImageView, sampler Sampler) error

	CreatePipelineLayout(sets []DescriptorSetLayout, push []PushConstantRange) (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)

	CreateGraphicsPipeline(desc *PipelineDesc) (Pipeline, error)
	DestroyPipeline(p Pipeline)

	// CreateBuffer allocates a host visible buffer.
	CreateBuffer(usage BufferUsage, size uint64) (Buffer, error)
	DestroyBuffer(b Buffer)
	// WriteBuffer copies data into a host visible buffer at offset.
	WriteBuffer(b Buffer, offset uint64, data []byte) error
	// UploadBuffer creates a device local buffer filled with data through a
	// transfer on queue, and waits for the transfer to complete.
	UploadBuffer(queue QueueID, usage BufferUsage, data []byte) (Buffer, error)

	CreateTexture(queue QueueID, desc TextureDesc) (ImageView, Sampler, error)
	DestroyTexture(view ImageView, sampler Sampler)
}

// Encoder records commands into the command buffer of the current subpass.
type Encoder interface {
	BindPipeline(p Pipeline)
	BindDescriptorSets(layout PipelineLayout, first uint32, sets []DescriptorSet)
	BindVertexBuffers(first uint32, buffers []Buffer, offsets []uint64)
	PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte)
	Draw(vertices Range, instances Range)
}

package gfx

type ShaderStage uint32

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment

	StageAllGraphics = StageVertex | StageFragment
)

type DescriptorType uint8

const (
	DescriptorUniformBuffer DescriptorType = iota
	DescriptorCombinedImageSampler
)

type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

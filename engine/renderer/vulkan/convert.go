package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

func shaderStageFlags(stages gfx.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&gfx.StageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&gfx.StageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return flags
}

// shaderStageBit converts a single stage, as used by pipeline stage descriptions.
func shaderStageBit(stage gfx.ShaderStage) (vk.ShaderStageFlagBits, error) {
	switch stage {
	case gfx.StageVertex:
		return vk.ShaderStageVertexBit, nil
	case gfx.StageFragment:
		return vk.ShaderStageFragmentBit, nil
	}
	return 0, fmt.Errorf("shader stage %d is not a single stage", stage)
}

func descriptorType(t gfx.DescriptorType) vk.DescriptorType {
	if t == gfx.DescriptorCombinedImageSampler {
		return vk.DescriptorTypeCombinedImageSampler
	}
	return vk.DescriptorTypeUniformBuffer
}

func vertexFormat(f gfx.Format) (vk.Format, error) {
	switch f {
	case gfx.FormatR32Sfloat:
		return vk.FormatR32Sfloat, nil
	case gfx.FormatRG32Sfloat:
		return vk.FormatR32g32Sfloat, nil
	case gfx.FormatRGB32Sfloat:
		return vk.FormatR32g32b32Sfloat, nil
	case gfx.FormatRGBA32Sfloat:
		return vk.FormatR32g32b32a32Sfloat, nil
	case gfx.FormatRGBA16Uint:
		return vk.FormatR16g16b16a16Uint, nil
	case gfx.FormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm, nil
	}
	return vk.FormatUndefined, fmt.Errorf("vertex format %d has no device format", f)
}

func vertexInputRate(r gfx.VertexRate) vk.VertexInputRate {
	if r == gfx.RateInstance {
		return vk.VertexInputRateInstance
	}
	return vk.VertexInputRateVertex
}

func compareOp(c gfx.Comparison) vk.CompareOp {
	switch c {
	case gfx.CompareNever:
		return vk.CompareOpNever
	case gfx.CompareLess:
		return vk.CompareOpLess
	case gfx.CompareEqual:
		return vk.CompareOpEqual
	case gfx.CompareLessEqual:
		return vk.CompareOpLessOrEqual
	case gfx.CompareGreater:
		return vk.CompareOpGreater
	case gfx.CompareNotEqual:
		return vk.CompareOpNotEqual
	case gfx.CompareGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	}
	return vk.CompareOpAlways
}

func blendFactor(f gfx.BlendFactor) vk.BlendFactor {
	switch f {
	case gfx.BlendZero:
		return vk.BlendFactorZero
	case gfx.BlendSrcColor:
		return vk.BlendFactorSrcColor
	case gfx.BlendOneMinusSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case gfx.BlendDstColor:
		return vk.BlendFactorDstColor
	case gfx.BlendOneMinusDstColor:
		return vk.BlendFactorOneMinusDstColor
	case gfx.BlendSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case gfx.BlendOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case gfx.BlendDstAlpha:
		return vk.BlendFactorDstAlpha
	case gfx.BlendOneMinusDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	}
	return vk.BlendFactorOne
}

func blendOp(op gfx.BlendOp) vk.BlendOp {
	switch op {
	case gfx.BlendOpSubtract:
		return vk.BlendOpSubtract
	case gfx.BlendOpReverseSubtract:
		return vk.BlendOpReverseSubtract
	case gfx.BlendOpMin:
		return vk.BlendOpMin
	case gfx.BlendOpMax:
		return vk.BlendOpMax
	}
	return vk.BlendOpAdd
}

func colorWriteMask(m gfx.ColorMask) vk.ColorComponentFlags {
	var flags vk.ColorComponentFlags
	if m&gfx.ColorMaskRed != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentRBit)
	}
	if m&gfx.ColorMaskGreen != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentGBit)
	}
	if m&gfx.ColorMaskBlue != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentBBit)
	}
	if m&gfx.ColorMaskAlpha != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentABit)
	}
	return flags
}

func colorBlendAttachment(b gfx.ColorBlend) vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		BlendEnable:    vk.False,
		ColorWriteMask: colorWriteMask(b.Mask),
	}
	if b.Blend != nil {
		state.BlendEnable = vk.True
		state.SrcColorBlendFactor = blendFactor(b.Blend.Color.Src)
		state.DstColorBlendFactor = blendFactor(b.Blend.Color.Dst)
		state.ColorBlendOp = blendOp(b.Blend.Color.Op)
		state.SrcAlphaBlendFactor = blendFactor(b.Blend.Alpha.Src)
		state.DstAlphaBlendFactor = blendFactor(b.Blend.Alpha.Dst)
		state.AlphaBlendOp = blendOp(b.Blend.Alpha.Op)
	}
	return state
}

func cullMode(c gfx.CullMode) vk.CullModeFlags {
	switch c {
	case gfx.CullNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case gfx.CullFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	}
	return vk.CullModeFlags(vk.CullModeBackBit)
}

func topology(t gfx.Topology) vk.PrimitiveTopology {
	switch t {
	case gfx.TopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case gfx.TopologyLineList:
		return vk.PrimitiveTopologyLineList
	}
	return vk.PrimitiveTopologyTriangleList
}

func bufferUsage(u gfx.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlags
	if u&gfx.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if u&gfx.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if u&gfx.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	if u&gfx.BufferUsageTransferSrc != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	if u&gfx.BufferUsageTransferDst != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	}
	return flags
}

// vertexAttributes numbers shader locations across all vertex buffers in
// binding order.
func vertexAttributes(buffers []gfx.VertexBufferDesc) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	bindings := make([]vk.VertexInputBindingDescription, 0, len(buffers))
	var attributes []vk.VertexInputAttributeDescription
	location := uint32(0)
	for _, b := range buffers {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Format.Stride,
			InputRate: vertexInputRate(b.Rate),
		})
		for _, a := range b.Format.Attributes {
			format, err := vertexFormat(a.Format)
			if err != nil {
				return nil, nil, fmt.Errorf("attribute %s: %w", a.Name, err)
			}
			attributes = append(attributes, vk.VertexInputAttributeDescription{
				Location: location,
				Binding:  b.Binding,
				Format:   format,
				Offset:   a.Offset,
			})
			location++
		}
	}
	return bindings, attributes, nil
}

// descriptorPoolSizes sizes a pool for count sets of the given bindings.
func descriptorPoolSizes(bindings []gfx.DescriptorBinding, count uint32) []vk.DescriptorPoolSize {
	perType := make(map[gfx.DescriptorType]uint32)
	var order []gfx.DescriptorType
	for _, b := range bindings {
		if _, seen := perType[b.Type]; !seen {
			order = append(order, b.Type)
		}
		n := b.Count
		if n == 0 {
			n = 1
		}
		perType[b.Type] += n
	}
	sizes := make([]vk.DescriptorPoolSize, 0, len(order))
	for _, t := range order {
		sizes = append(sizes, vk.DescriptorPoolSize{
			Type:            descriptorType(t),
			DescriptorCount: perType[t] * count,
		})
	}
	return sizes
}

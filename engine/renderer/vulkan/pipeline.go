package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// pipelineInputs are the device objects a pipeline description refers to.
type pipelineInputs struct {
	layout     vk.PipelineLayout
	renderpass vk.RenderPass
	modules    []vk.ShaderModule
}

func vulkanSafeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

/**
 * @brief Creates a graphics pipeline for desc. Viewport and scissor are
 * fixed to the framebuffer extent.
 */
func (vd *VulkanDevice) NewGraphicsPipeline(desc *gfx.PipelineDesc, in pipelineInputs) (vk.Pipeline, error) {
	if len(in.modules) != len(desc.Shaders) {
		return nil, fmt.Errorf("func NewGraphicsPipeline: %d shader stages, %d modules", len(desc.Shaders), len(in.modules))
	}
	stages := make([]vk.PipelineShaderStageCreateInfo, len(desc.Shaders))
	for i, s := range desc.Shaders {
		bit, err := shaderStageBit(s.Stage)
		if err != nil {
			return nil, err
		}
		entry := s.Entry
		if entry == "" {
			entry = "main"
		}
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  bit,
			Module: in.modules[i],
			PName:  vulkanSafeString(entry),
		}
	}

	// Viewport state
	viewport := vk.Viewport{
		Width:    float32(desc.Framebuffer.Width),
		Height:   float32(desc.Framebuffer.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{Width: desc.Framebuffer.Width, Height: desc.Framebuffer.Height},
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	// Rasterizer
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                cullMode(desc.Cull),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	// Multisampling.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	// Depth and stencil testing.
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}
	if desc.Depth != nil {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthCompareOp = compareOp(desc.Depth.Fun)
		if desc.Depth.Write {
			depthStencil.DepthWriteEnable = vk.True
		}
	}

	attachments := make([]vk.PipelineColorBlendAttachmentState, len(desc.Blends))
	for i, b := range desc.Blends {
		attachments[i] = colorBlendAttachment(b)
	}
	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}

	// Vertex input
	bindings, attributes, err := vertexAttributes(desc.VertexBuffers)
	if err != nil {
		return nil, err
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topology(desc.Topology),
		PrimitiveRestartEnable: vk.False,
	}

	// Pipeline create
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		Layout:              in.layout,
		RenderPass:          in.renderpass,
		Subpass:             desc.Subpass.Index,
		BasePipelineIndex:   -1,
	}

	pPipelines := make([]vk.Pipeline, 1)
	if err := vd.locks.SafeCall(PipelineManagement, func() error {
		return check("vkCreateGraphicsPipelines", vk.CreateGraphicsPipelines(
			vd.LogicalDevice,
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			vd.Allocator,
			pPipelines))
	}); err != nil {
		return nil, err
	}
	if pPipelines[0] == nil {
		return nil, fmt.Errorf("vulkan pipeline handle is nil")
	}

	core.LogDebug("Graphics pipeline created!")
	return pPipelines[0], nil
}

func (vd *VulkanDevice) NewPipelineLayout(sets []vk.DescriptorSetLayout, push []gfx.PushConstantRange) (vk.PipelineLayout, error) {
	// NOTE: 32 is the max number of ranges, as devices only guarantee 128 bytes with 4-byte alignment.
	if len(push) > 32 {
		return nil, fmt.Errorf("func NewPipelineLayout: cannot have more than 32 push constant ranges. Passed count: %d", len(push))
	}
	ranges := make([]vk.PushConstantRange, len(push))
	for i, r := range push {
		ranges[i] = vk.PushConstantRange{
			StageFlags: shaderStageFlags(r.Stages),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(sets)),
		PSetLayouts:            sets,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}

	var layout vk.PipelineLayout
	if err := vd.locks.SafeCall(PipelineManagement, func() error {
		return check("vkCreatePipelineLayout", vk.CreatePipelineLayout(vd.LogicalDevice, &pipelineLayoutCreateInfo, vd.Allocator, &layout))
	}); err != nil {
		return nil, err
	}
	return layout, nil
}

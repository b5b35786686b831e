package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

func TestShaderStageFlags(t *testing.T) {
	tests := []struct {
		name   string
		stages gfx.ShaderStage
		want   vk.ShaderStageFlags
	}{
		{"vertex", gfx.StageVertex, vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		{"fragment", gfx.StageFragment, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		{"all", gfx.StageAllGraphics, vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		{"none", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shaderStageFlags(tt.stages); got != tt.want {
				t.Fatalf("shaderStageFlags(%d) = %d, want %d", tt.stages, got, tt.want)
			}
		})
	}
	if _, err := shaderStageBit(gfx.StageAllGraphics); err == nil {
		t.Fatal("a stage mask is not a single stage")
	}
}

func TestCompareOp(t *testing.T) {
	tests := []struct {
		in   gfx.Comparison
		want vk.CompareOp
	}{
		{gfx.CompareNever, vk.CompareOpNever},
		{gfx.CompareLess, vk.CompareOpLess},
		{gfx.CompareEqual, vk.CompareOpEqual},
		{gfx.CompareLessEqual, vk.CompareOpLessOrEqual},
		{gfx.CompareGreater, vk.CompareOpGreater},
		{gfx.CompareNotEqual, vk.CompareOpNotEqual},
		{gfx.CompareGreaterEqual, vk.CompareOpGreaterOrEqual},
		{gfx.CompareAlways, vk.CompareOpAlways},
	}
	for _, tt := range tests {
		if got := compareOp(tt.in); got != tt.want {
			t.Errorf("compareOp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestColorBlendAttachment(t *testing.T) {
	opaque := colorBlendAttachment(gfx.ColorBlend{Mask: gfx.ColorMaskAll})
	if opaque.BlendEnable != vk.False {
		t.Fatal("blending enabled without a blend")
	}
	all := vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
		vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit)
	if opaque.ColorWriteMask != all {
		t.Fatalf("mask = %d, want %d", opaque.ColorWriteMask, all)
	}

	blend := gfx.BlendAlpha
	alpha := colorBlendAttachment(gfx.ColorBlend{Mask: gfx.ColorMaskRed, Blend: &blend})
	if alpha.BlendEnable != vk.True {
		t.Fatal("blending disabled")
	}
	if alpha.SrcColorBlendFactor != vk.BlendFactorSrcAlpha || alpha.DstColorBlendFactor != vk.BlendFactorOneMinusSrcAlpha {
		t.Fatalf("colour factors = %d/%d", alpha.SrcColorBlendFactor, alpha.DstColorBlendFactor)
	}
	if alpha.SrcAlphaBlendFactor != vk.BlendFactorOne || alpha.DstAlphaBlendFactor != vk.BlendFactorOne {
		t.Fatalf("alpha factors = %d/%d", alpha.SrcAlphaBlendFactor, alpha.DstAlphaBlendFactor)
	}
	if alpha.ColorWriteMask != vk.ColorComponentFlags(vk.ColorComponentRBit) {
		t.Fatalf("mask = %d", alpha.ColorWriteMask)
	}
}

func TestFixedFunctionState(t *testing.T) {
	if cullMode(gfx.CullNone) != vk.CullModeFlags(vk.CullModeNone) {
		t.Error("CullNone")
	}
	if cullMode(gfx.CullBack) != vk.CullModeFlags(vk.CullModeBackBit) {
		t.Error("CullBack")
	}
	if topology(gfx.TopologyTriangleList) != vk.PrimitiveTopologyTriangleList {
		t.Error("TopologyTriangleList")
	}
	want := vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit) | vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	if got := bufferUsage(gfx.BufferUsageUniform | gfx.BufferUsageVertex); got != want {
		t.Errorf("bufferUsage = %d, want %d", got, want)
	}
}

func TestVertexAttributes(t *testing.T) {
	position := gfx.VertexFormat{
		Attributes: []gfx.VertexAttribute{{Name: "position", Format: gfx.FormatRGB32Sfloat}},
		Stride:     12,
	}
	posTex := gfx.VertexFormat{
		Attributes: []gfx.VertexAttribute{
			{Name: "position", Format: gfx.FormatRGB32Sfloat},
			{Name: "tex_coord", Format: gfx.FormatRG32Sfloat, Offset: 12},
		},
		Stride: 20,
	}
	bindings, attributes, err := vertexAttributes([]gfx.VertexBufferDesc{
		{Binding: 0, Format: position, Rate: gfx.RateVertex},
		{Binding: 1, Format: posTex, Rate: gfx.RateInstance},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 2 || bindings[1].Stride != 20 || bindings[1].InputRate != vk.VertexInputRateInstance {
		t.Fatalf("bindings = %+v", bindings)
	}
	want := []struct {
		location, binding, offset uint32
		format                    vk.Format
	}{
		{0, 0, 0, vk.FormatR32g32b32Sfloat},
		{1, 1, 0, vk.FormatR32g32b32Sfloat},
		{2, 1, 12, vk.FormatR32g32Sfloat},
	}
	if len(attributes) != len(want) {
		t.Fatalf("%d attributes, want %d", len(attributes), len(want))
	}
	for i, w := range want {
		a := attributes[i]
		if a.Location != w.location || a.Binding != w.binding || a.Offset != w.offset || a.Format != w.format {
			t.Errorf("attribute %d = %+v, want %+v", i, a, w)
		}
	}

	_, _, err = vertexAttributes([]gfx.VertexBufferDesc{{Format: gfx.VertexFormat{
		Attributes: []gfx.VertexAttribute{{Name: "broken"}},
	}}})
	if err == nil {
		t.Fatal("expected an error for an undefined format")
	}
}

func TestDescriptorPoolSizes(t *testing.T) {
	sizes := descriptorPoolSizes([]gfx.DescriptorBinding{
		{Binding: 0, Type: gfx.DescriptorUniformBuffer, Count: 1},
		{Binding: 1, Type: gfx.DescriptorCombinedImageSampler, Count: 1},
		{Binding: 2, Type: gfx.DescriptorUniformBuffer},
	}, 10)
	if len(sizes) != 2 {
		t.Fatalf("sizes = %+v", sizes)
	}
	if sizes[0].Type != vk.DescriptorTypeUniformBuffer || sizes[0].DescriptorCount != 20 {
		t.Errorf("uniform size = %+v", sizes[0])
	}
	if sizes[1].Type != vk.DescriptorTypeCombinedImageSampler || sizes[1].DescriptorCount != 10 {
		t.Errorf("sampler size = %+v", sizes[1])
	}
}

func TestResult(t *testing.T) {
	if err := check("vkCreateBuffer", vk.Success); err != nil {
		t.Fatal(err)
	}
	err := check("vkCreateBuffer", vk.ErrorOutOfDeviceMemory)
	if err == nil || err.Error() != "vkCreateBuffer failed with VK_ERROR_OUT_OF_DEVICE_MEMORY" {
		t.Fatalf("err = %v", err)
	}
	if !VulkanResultIsSuccess(vk.Incomplete) {
		t.Fatal("VK_INCOMPLETE is a success code")
	}
}

func TestLockPool(t *testing.T) {
	pool := NewVulkanLockPool()
	calls := 0
	if err := pool.SafeCall(BufferManagement, func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := pool.SafeQueueCall(7, func() error { return nil }); err == nil {
		t.Fatal("expected an error for an unregistered queue family")
	}
	pool.SetQueueFamily(7)
	if err := pool.SafeQueueCall(7, func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestVulkanSafeString(t *testing.T) {
	for _, in := range []string{"main", "main\x00", ""} {
		got := vulkanSafeString(in)
		if got[len(got)-1] != 0 || (in != "" && got[:len(got)-1] != "main") {
			t.Errorf("vulkanSafeString(%q) = %q", in, got)
		}
	}
}

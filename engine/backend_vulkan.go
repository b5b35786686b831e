package engine

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/vulkan"
)

// VulkanFrames is implemented by the windowing layer that owns the swapchain.
// BeginFrame returns the command buffer of frame slot index, already begun and
// inside the render pass handed to NewVulkanBackend. EndFrame ends the render
// pass, submits and presents.
type VulkanFrames interface {
	BeginFrame(index uint32) (vk.CommandBuffer, error)
	EndFrame(index uint32) error
}

// VulkanBackend renders through a Vulkan device. The host keeps ownership of
// the swapchain, the render pass and the command buffers.
type VulkanBackend struct {
	factory  *vulkan.Factory
	frames   VulkanFrames
	subpass  gfx.Subpass
	encoders [gfx.MaxFramesInFlight]*vulkan.Encoder
}

// NewVulkanBackend builds the factory on device, usually made by
// vulkan.NewDevice from the host's physical and logical devices.
func NewVulkanBackend(device *vulkan.VulkanDevice, renderPass vk.RenderPass, subpass uint32, frames VulkanFrames) (*VulkanBackend, error) {
	if frames == nil {
		return nil, fmt.Errorf("func NewVulkanBackend - frames are required: %w", core.ErrInvalidConfig)
	}
	factory := vulkan.NewFactory(device)
	b := &VulkanBackend{
		factory: factory,
		frames:  frames,
		subpass: gfx.Subpass{RenderPass: factory.RegisterRenderPass(renderPass), Index: subpass},
	}
	core.LogDebug("vulkan backend created on subpass %d", subpass)
	return b, nil
}

func (b *VulkanBackend) Factory() gfx.Factory {
	return b.factory
}

func (b *VulkanBackend) Vulkan() *vulkan.Factory {
	return b.factory
}

func (b *VulkanBackend) Subpass() gfx.Subpass {
	return b.subpass
}

// BeginFrame asks the host for the command buffer of slot index and wraps it
// in the encoder of that slot.
func (b *VulkanBackend) BeginFrame(index uint32) (gfx.Encoder, error) {
	if index >= gfx.MaxFramesInFlight {
		return nil, fmt.Errorf("frame slot %d out of range [0, %d)", index, gfx.MaxFramesInFlight)
	}
	cb, err := b.frames.BeginFrame(index)
	if err != nil {
		return nil, fmt.Errorf("failed to begin frame %d: %w", index, err)
	}
	enc := b.encoders[index]
	if enc == nil {
		enc = vulkan.NewEncoder(b.factory, cb)
		b.encoders[index] = enc
	}
	enc.Handle = cb
	return enc, nil
}

func (b *VulkanBackend) EndFrame(index uint32) error {
	if index >= gfx.MaxFramesInFlight {
		return fmt.Errorf("frame slot %d out of range [0, %d)", index, gfx.MaxFramesInFlight)
	}
	if err := b.frames.EndFrame(index); err != nil {
		return fmt.Errorf("failed to end frame %d: %w", index, err)
	}
	return nil
}

// Close forgets the render pass. It must run after the engine shut down,
// anything still alive on the device at that point is reported.
func (b *VulkanBackend) Close() {
	b.factory.UnregisterRenderPass(b.subpass.RenderPass)
	b.subpass = gfx.Subpass{}
	if n := b.factory.Leaks(); n != 0 {
		core.LogWarn("%d vulkan objects were not released", n)
	}
}

var _ Backend = (*VulkanBackend)(nil)

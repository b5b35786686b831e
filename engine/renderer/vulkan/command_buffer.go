package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
)

/**
 * Allocates a primary command buffer from the queue's pool, records into it
 * with fn, submits it and waits for the queue to become idle. The command
 * buffer is freed in every case.
 */
func (vd *VulkanDevice) singleUse(q VulkanQueue, fn func(cb vk.CommandBuffer)) error {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        q.CommandPool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if err := vd.locks.SafeCall(CommandBufferManagement, func() error {
		return check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(vd.LogicalDevice, &allocateInfo, buffers))
	}); err != nil {
		core.LogError(err.Error())
		return err
	}
	cb := buffers[0]
	defer vd.locks.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(vd.LogicalDevice, q.CommandPool, 1, buffers)
		return nil
	})

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(cb, &beginInfo)); err != nil {
		return err
	}
	fn(cb)
	if err := check("vkEndCommandBuffer", vk.EndCommandBuffer(cb)); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}
	return vd.locks.SafeQueueCall(q.FamilyIndex, func() error {
		if err := check("vkQueueSubmit", vk.QueueSubmit(q.Handle, 1, []vk.SubmitInfo{submitInfo}, nil)); err != nil {
			return err
		}
		// Wait for it to finish
		return check("vkQueueWaitIdle", vk.QueueWaitIdle(q.Handle))
	})
}

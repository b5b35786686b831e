// Package vulkan implements the gfx device interfaces on top of goki/vulkan.
// Instance, surface, swapchain and render pass creation belong to the
// windowing layer, which hands the created objects to NewDevice.
package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// VulkanQueue is a device queue with the command pool used for transfers on it.
type VulkanQueue struct {
	Handle      vk.Queue
	FamilyIndex uint32
	CommandPool vk.CommandPool
}

// DeviceConfig carries the objects created by the windowing layer.
type DeviceConfig struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Allocator      *vk.AllocationCallbacks
	// Queues maps the gfx queue ids to device queues. Queue 0 must exist.
	Queues map[gfx.QueueID]VulkanQueue
}

type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Allocator      *vk.AllocationCallbacks

	Queues map[gfx.QueueID]VulkanQueue
	Memory vk.PhysicalDeviceMemoryProperties

	locks *VulkanLockPool
}

func NewDevice(config DeviceConfig) (*VulkanDevice, error) {
	if config.LogicalDevice == nil || config.PhysicalDevice == nil {
		return nil, fmt.Errorf("func NewDevice - physical and logical device are required")
	}
	if _, ok := config.Queues[0]; !ok {
		return nil, fmt.Errorf("func NewDevice - queue 0 is required")
	}
	device := &VulkanDevice{
		PhysicalDevice: config.PhysicalDevice,
		LogicalDevice:  config.LogicalDevice,
		Allocator:      config.Allocator,
		Queues:         config.Queues,
		locks:          NewVulkanLockPool(),
	}
	for _, q := range config.Queues {
		device.locks.SetQueueFamily(q.FamilyIndex)
	}

	vk.GetPhysicalDeviceMemoryProperties(device.PhysicalDevice, &device.Memory)
	device.Memory.Deref()
	for i := uint32(0); i < device.Memory.MemoryTypeCount; i++ {
		device.Memory.MemoryTypes[i].Deref()
	}
	core.LogInfo("Vulkan device ready with %d queue(s) and %d memory types.", len(config.Queues), device.Memory.MemoryTypeCount)
	return device, nil
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has every flag of propertyFlags, or -1.
func (vd *VulkanDevice) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	for i := uint32(0); i < vd.Memory.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		if (typeFilter&(1<<i)) != 0 && (vd.Memory.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

func (vd *VulkanDevice) queue(id gfx.QueueID) (VulkanQueue, error) {
	q, ok := vd.Queues[id]
	if !ok {
		return VulkanQueue{}, fmt.Errorf("unknown queue %d", id)
	}
	return q, nil
}

// WaitIdle blocks until the device finished all submitted work.
func (vd *VulkanDevice) WaitIdle() error {
	return check("vkDeviceWaitIdle", vk.DeviceWaitIdle(vd.LogicalDevice))
}

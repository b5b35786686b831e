package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

var (
	hostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	deviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	// mapped is set for host visible buffers, which stay mapped until destroyed.
	mapped unsafe.Pointer
}

func (vd *VulkanDevice) allocate(requirements vk.MemoryRequirements, properties vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	requirements.Deref()
	index := vd.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if index == -1 {
		return nil, fmt.Errorf("unable to allocate %d bytes: no suitable memory type", requirements.Size)
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	var memory vk.DeviceMemory
	if err := check("vkAllocateMemory", vk.AllocateMemory(vd.LogicalDevice, &allocateInfo, vd.Allocator, &memory)); err != nil {
		return nil, err
	}
	return memory, nil
}

func (vd *VulkanDevice) NewBuffer(usage vk.BufferUsageFlags, size uint64, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("func NewBuffer - size must be > 0")
	}
	buffer := &VulkanBuffer{Size: size}
	err := vd.locks.SafeCall(BufferManagement, func() error {
		createInfo := vk.BufferCreateInfo{
			SType:       vk.StructureTypeBufferCreateInfo,
			Size:        vk.DeviceSize(size),
			Usage:       usage,
			SharingMode: vk.SharingModeExclusive,
		}
		if err := check("vkCreateBuffer", vk.CreateBuffer(vd.LogicalDevice, &createInfo, vd.Allocator, &buffer.Handle)); err != nil {
			return err
		}

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(vd.LogicalDevice, buffer.Handle, &requirements)
		memory, err := vd.allocate(requirements, properties)
		if err != nil {
			return err
		}
		buffer.Memory = memory
		if err := check("vkBindBufferMemory", vk.BindBufferMemory(vd.LogicalDevice, buffer.Handle, buffer.Memory, 0)); err != nil {
			return err
		}

		if properties&hostVisible != 0 {
			var data unsafe.Pointer
			if err := check("vkMapMemory", vk.MapMemory(vd.LogicalDevice, buffer.Memory, 0, vk.DeviceSize(size), 0, &data)); err != nil {
				return err
			}
			buffer.mapped = data
		}
		return nil
	})
	if err != nil {
		vd.DestroyBuffer(buffer)
		return nil, err
	}
	return buffer, nil
}

// Write copies data into a host visible buffer at offset.
func (b *VulkanBuffer) Write(offset uint64, data []byte) error {
	if b.mapped == nil {
		return fmt.Errorf("buffer is not host visible")
	}
	if offset+uint64(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes at %d overflows buffer of %d bytes", len(data), offset, b.Size)
	}
	if len(data) == 0 {
		return nil
	}
	vk.Memcopy(unsafe.Add(b.mapped, int(offset)), data)
	return nil
}

func (vd *VulkanDevice) DestroyBuffer(b *VulkanBuffer) {
	vd.locks.SafeCall(BufferManagement, func() error {
		if b.mapped != nil {
			vk.UnmapMemory(vd.LogicalDevice, b.Memory)
			b.mapped = nil
		}
		if b.Handle != nil {
			vk.DestroyBuffer(vd.LogicalDevice, b.Handle, vd.Allocator)
			b.Handle = nil
		}
		if b.Memory != nil {
			vk.FreeMemory(vd.LogicalDevice, b.Memory, vd.Allocator)
			b.Memory = nil
		}
		return nil
	})
}

// UploadBuffer creates a device local buffer holding data, copied through a
// host visible staging buffer on queue q.
func (vd *VulkanDevice) UploadBuffer(q VulkanQueue, usage vk.BufferUsageFlags, data []byte) (*VulkanBuffer, error) {
	size := uint64(len(data))
	staging, err := vd.NewBuffer(vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), size, hostVisible)
	if err != nil {
		return nil, err
	}
	defer vd.DestroyBuffer(staging)
	if err := staging.Write(0, data); err != nil {
		return nil, err
	}

	buffer, err := vd.NewBuffer(usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), size, deviceLocal)
	if err != nil {
		return nil, err
	}
	if err := vd.singleUse(q, func(cb vk.CommandBuffer) {
		region := vk.BufferCopy{Size: vk.DeviceSize(size)}
		vk.CmdCopyBuffer(cb, staging.Handle, buffer.Handle, 1, []vk.BufferCopy{region})
	}); err != nil {
		vd.DestroyBuffer(buffer)
		return nil, err
	}
	return buffer, nil
}

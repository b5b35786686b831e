package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

const textureFormat = vk.FormatR8g8b8a8Unorm

type VulkanImage struct {
	Handle  vk.Image
	Memory  vk.DeviceMemory
	View    vk.ImageView
	Sampler vk.Sampler
	Width   uint32
	Height  uint32
}

var colorSubresource = vk.ImageSubresourceRange{
	AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	LevelCount: 1,
	LayerCount: 1,
}

// NewTexture creates a sampled RGBA8 image filled with desc.Pixels.
func (vd *VulkanDevice) NewTexture(q VulkanQueue, desc gfx.TextureDesc) (*VulkanImage, error) {
	if want := int(desc.Width * desc.Height * 4); len(desc.Pixels) != want || want == 0 {
		return nil, fmt.Errorf("texture %dx%d needs %d bytes of pixels, got %d", desc.Width, desc.Height, want, len(desc.Pixels))
	}
	img := &VulkanImage{Width: desc.Width, Height: desc.Height}
	if err := vd.createImage(img); err != nil {
		vd.DestroyImage(img)
		return nil, err
	}

	staging, err := vd.NewBuffer(vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), uint64(len(desc.Pixels)), hostVisible)
	if err != nil {
		vd.DestroyImage(img)
		return nil, err
	}
	defer vd.DestroyBuffer(staging)
	if err := staging.Write(0, desc.Pixels); err != nil {
		vd.DestroyImage(img)
		return nil, err
	}

	if err := vd.singleUse(q, func(cb vk.CommandBuffer) {
		transitionLayout(cb, img.Handle, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		region := vk.BufferImageCopy{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
		}
		vk.CmdCopyBufferToImage(cb, staging.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
		transitionLayout(cb, img.Handle, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	}); err != nil {
		vd.DestroyImage(img)
		return nil, err
	}
	return img, nil
}

func (vd *VulkanDevice) createImage(img *VulkanImage) error {
	return vd.locks.SafeCall(ImageManagement, func() error {
		imageInfo := vk.ImageCreateInfo{
			SType:         vk.StructureTypeImageCreateInfo,
			ImageType:     vk.ImageType2d,
			Format:        textureFormat,
			Extent:        vk.Extent3D{Width: img.Width, Height: img.Height, Depth: 1},
			MipLevels:     1,
			ArrayLayers:   1,
			Samples:       vk.SampleCount1Bit,
			Tiling:        vk.ImageTilingOptimal,
			Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit),
			SharingMode:   vk.SharingModeExclusive,
			InitialLayout: vk.ImageLayoutUndefined,
		}
		if err := check("vkCreateImage", vk.CreateImage(vd.LogicalDevice, &imageInfo, vd.Allocator, &img.Handle)); err != nil {
			return err
		}

		var requirements vk.MemoryRequirements
		vk.GetImageMemoryRequirements(vd.LogicalDevice, img.Handle, &requirements)
		memory, err := vd.allocate(requirements, deviceLocal)
		if err != nil {
			return err
		}
		img.Memory = memory
		if err := check("vkBindImageMemory", vk.BindImageMemory(vd.LogicalDevice, img.Handle, img.Memory, 0)); err != nil {
			return err
		}

		viewInfo := vk.ImageViewCreateInfo{
			SType:            vk.StructureTypeImageViewCreateInfo,
			Image:            img.Handle,
			ViewType:         vk.ImageViewType2d,
			Format:           textureFormat,
			SubresourceRange: colorSubresource,
		}
		if err := check("vkCreateImageView", vk.CreateImageView(vd.LogicalDevice, &viewInfo, vd.Allocator, &img.View)); err != nil {
			return err
		}

		samplerInfo := vk.SamplerCreateInfo{
			SType:            vk.StructureTypeSamplerCreateInfo,
			MagFilter:        vk.FilterLinear,
			MinFilter:        vk.FilterLinear,
			MipmapMode:       vk.SamplerMipmapModeLinear,
			AddressModeU:     vk.SamplerAddressModeRepeat,
			AddressModeV:     vk.SamplerAddressModeRepeat,
			AddressModeW:     vk.SamplerAddressModeRepeat,
			MaxAnisotropy:    1,
			CompareOp:        vk.CompareOpAlways,
			BorderColor:      vk.BorderColorIntOpaqueBlack,
			AnisotropyEnable: vk.False,
		}
		return check("vkCreateSampler", vk.CreateSampler(vd.LogicalDevice, &samplerInfo, vd.Allocator, &img.Sampler))
	})
}

func transitionLayout(cb vk.CommandBuffer, image vk.Image, from, to vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    colorSubresource,
	}
	var srcStage, dstStage vk.PipelineStageFlags
	if from == vk.ImageLayoutUndefined {
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	} else {
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}
	vk.CmdPipelineBarrier(cb, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (vd *VulkanDevice) DestroyImage(img *VulkanImage) {
	vd.locks.SafeCall(ImageManagement, func() error {
		if img.Sampler != nil {
			vk.DestroySampler(vd.LogicalDevice, img.Sampler, vd.Allocator)
			img.Sampler = nil
		}
		if img.View != nil {
			vk.DestroyImageView(vd.LogicalDevice, img.View, vd.Allocator)
			img.View = nil
		}
		if img.Handle != nil {
			vk.DestroyImage(vd.LogicalDevice, img.Handle, vd.Allocator)
			img.Handle = nil
		}
		if img.Memory != nil {
			vk.FreeMemory(vd.LogicalDevice, img.Memory, vd.Allocator)
			img.Memory = nil
		}
		return nil
	})
}

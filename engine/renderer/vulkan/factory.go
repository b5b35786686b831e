package vulkan

import (
	"encoding/binary"
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

// DescriptorSetsPerLayout is how many sets can be allocated from one
// descriptor set layout at a time.
const DescriptorSetsPerLayout = 1024

type setLayout struct {
	handle vk.DescriptorSetLayout
	pool   vk.DescriptorPool
}

type descriptorSet struct {
	handle vk.DescriptorSet
	pool   vk.DescriptorPool
}

// Factory implements gfx.Factory on a VulkanDevice. Device objects are kept
// in tables keyed by the gfx handles it hands out.
type Factory struct {
	device *VulkanDevice

	mutex        sync.RWMutex
	next         uint64
	modules      map[gfx.ShaderModule]vk.ShaderModule
	setLayouts   map[gfx.DescriptorSetLayout]setLayout
	sets         map[gfx.DescriptorSet]descriptorSet
	layouts      map[gfx.PipelineLayout]vk.PipelineLayout
	pipelines    map[gfx.Pipeline]vk.Pipeline
	buffers      map[gfx.Buffer]*VulkanBuffer
	images       map[gfx.ImageView]*VulkanImage
	samplers     map[gfx.Sampler]gfx.ImageView
	renderpasses map[gfx.RenderPass]vk.RenderPass
}

func NewFactory(device *VulkanDevice) *Factory {
	return &Factory{
		device:       device,
		modules:      make(map[gfx.ShaderModule]vk.ShaderModule),
		setLayouts:   make(map[gfx.DescriptorSetLayout]setLayout),
		sets:         make(map[gfx.DescriptorSet]descriptorSet),
		layouts:      make(map[gfx.PipelineLayout]vk.PipelineLayout),
		pipelines:    make(map[gfx.Pipeline]vk.Pipeline),
		buffers:      make(map[gfx.Buffer]*VulkanBuffer),
		images:       make(map[gfx.ImageView]*VulkanImage),
		samplers:     make(map[gfx.Sampler]gfx.ImageView),
		renderpasses: make(map[gfx.RenderPass]vk.RenderPass),
	}
}

func (f *Factory) handle() uint64 {
	f.next++
	return f.next
}

// RegisterRenderPass makes a render pass created by the windowing layer
// usable as a pipeline subpass.
func (f *Factory) RegisterRenderPass(rp vk.RenderPass) gfx.RenderPass {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.RenderPass(f.handle())
	f.renderpasses[h] = rp
	return h
}

func (f *Factory) UnregisterRenderPass(h gfx.RenderPass) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.renderpasses, h)
}

func unknown(kind string, h uint64) error {
	return errors.Wrapf(core.ErrUnknownHandle, "%s %d", kind, h)
}

func (f *Factory) CreateShaderModule(code []byte) (gfx.ShaderModule, error) {
	if !shaders.IsSPIRV(code) {
		return 0, core.ErrNotSPIRV
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}
	var module vk.ShaderModule
	if err := f.device.locks.SafeCall(ShaderManagement, func() error {
		return check("vkCreateShaderModule", vk.CreateShaderModule(f.device.LogicalDevice, &createInfo, f.device.Allocator, &module))
	}); err != nil {
		return 0, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.ShaderModule(f.handle())
	f.modules[h] = module
	return h, nil
}

func (f *Factory) DestroyShaderModule(m gfx.ShaderModule) {
	if m == 0 {
		return
	}
	f.mutex.Lock()
	module, ok := f.modules[m]
	delete(f.modules, m)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("shader module", uint64(m)).Error())
		return
	}
	f.device.locks.SafeCall(ShaderManagement, func() error {
		vk.DestroyShaderModule(f.device.LogicalDevice, module, f.device.Allocator)
		return nil
	})
}

// CreateDescriptorSetLayout creates the layout together with the pool its
// sets are allocated from.
func (f *Factory) CreateDescriptorSetLayout(bindings []gfx.DescriptorBinding) (gfx.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		count := b.Count
		if count == 0 {
			count = 1
		}
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  descriptorType(b.Type),
			DescriptorCount: count,
			StageFlags:      shaderStageFlags(b.Stages),
		}
	}

	var out setLayout
	err := f.device.locks.SafeCall(DescriptorManagement, func() error {
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(vkBindings)),
			PBindings:    vkBindings,
		}
		if err := check("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(f.device.LogicalDevice, &layoutInfo, f.device.Allocator, &out.handle)); err != nil {
			return err
		}
		sizes := descriptorPoolSizes(bindings, DescriptorSetsPerLayout)
		poolInfo := vk.DescriptorPoolCreateInfo{
			SType:         vk.StructureTypeDescriptorPoolCreateInfo,
			Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
			MaxSets:       DescriptorSetsPerLayout,
			PoolSizeCount: uint32(len(sizes)),
			PPoolSizes:    sizes,
		}
		if err := check("vkCreateDescriptorPool", vk.CreateDescriptorPool(f.device.LogicalDevice, &poolInfo, f.device.Allocator, &out.pool)); err != nil {
			vk.DestroyDescriptorSetLayout(f.device.LogicalDevice, out.handle, f.device.Allocator)
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.DescriptorSetLayout(f.handle())
	f.setLayouts[h] = out
	return h, nil
}

func (f *Factory) DestroyDescriptorSetLayout(l gfx.DescriptorSetLayout) {
	if l == 0 {
		return
	}
	f.mutex.Lock()
	layout, ok := f.setLayouts[l]
	delete(f.setLayouts, l)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("descriptor set layout", uint64(l)).Error())
		return
	}
	f.device.locks.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorPool(f.device.LogicalDevice, layout.pool, f.device.Allocator)
		vk.DestroyDescriptorSetLayout(f.device.LogicalDevice, layout.handle, f.device.Allocator)
		return nil
	})
}

func (f *Factory) CreateDescriptorSet(l gfx.DescriptorSetLayout) (gfx.DescriptorSet, error) {
	f.mutex.RLock()
	layout, ok := f.setLayouts[l]
	f.mutex.RUnlock()
	if !ok {
		return 0, unknown("descriptor set layout", uint64(l))
	}

	var set vk.DescriptorSet
	if err := f.device.locks.SafeCall(DescriptorManagement, func() error {
		allocateInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     layout.pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout.handle},
		}
		return check("vkAllocateDescriptorSets", vk.AllocateDescriptorSets(f.device.LogicalDevice, &allocateInfo, &set))
	}); err != nil {
		return 0, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.DescriptorSet(f.handle())
	f.sets[h] = descriptorSet{handle: set, pool: layout.pool}
	return h, nil
}

func (f *Factory) DestroyDescriptorSet(s gfx.DescriptorSet) {
	if s == 0 {
		return
	}
	f.mutex.Lock()
	set, ok := f.sets[s]
	delete(f.sets, s)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("descriptor set", uint64(s)).Error())
		return
	}
	f.device.locks.SafeCall(DescriptorManagement, func() error {
		vk.FreeDescriptorSets(f.device.LogicalDevice, set.pool, 1, &set.handle)
		return nil
	})
}

func (f *Factory) WriteUniformDescriptor(s gfx.DescriptorSet, binding uint32, b gfx.Buffer, offset, size uint64) error {
	f.mutex.RLock()
	set, okSet := f.sets[s]
	buffer, okBuffer := f.buffers[b]
	f.mutex.RUnlock()
	if !okSet {
		return unknown("descriptor set", uint64(s))
	}
	if !okBuffer {
		return unknown("buffer", uint64(b))
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set.handle,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer.Handle,
			Offset: vk.DeviceSize(offset),
			Range:  vk.DeviceSize(size),
		}},
	}
	return f.device.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(f.device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
		return nil
	})
}

func (f *Factory) WriteTextureDescriptor(s gfx.DescriptorSet, binding uint32, view gfx.ImageView, sampler gfx.Sampler) error {
	f.mutex.RLock()
	set, okSet := f.sets[s]
	img, okView := f.images[view]
	owner, okSampler := f.samplers[sampler]
	samplerImage := f.images[owner]
	f.mutex.RUnlock()
	if !okSet {
		return unknown("descriptor set", uint64(s))
	}
	if !okView {
		return unknown("image view", uint64(view))
	}
	if !okSampler || samplerImage == nil {
		return unknown("sampler", uint64(sampler))
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set.handle,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     samplerImage.Sampler,
			ImageView:   img.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
	return f.device.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(f.device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
		return nil
	})
}

func (f *Factory) CreatePipelineLayout(sets []gfx.DescriptorSetLayout, push []gfx.PushConstantRange) (gfx.PipelineLayout, error) {
	f.mutex.RLock()
	vkSets := make([]vk.DescriptorSetLayout, len(sets))
	for i, s := range sets {
		layout, ok := f.setLayouts[s]
		if !ok {
			f.mutex.RUnlock()
			return 0, unknown("descriptor set layout", uint64(s))
		}
		vkSets[i] = layout.handle
	}
	f.mutex.RUnlock()

	layout, err := f.device.NewPipelineLayout(vkSets, push)
	if err != nil {
		return 0, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.PipelineLayout(f.handle())
	f.layouts[h] = layout
	return h, nil
}

func (f *Factory) DestroyPipelineLayout(l gfx.PipelineLayout) {
	if l == 0 {
		return
	}
	f.mutex.Lock()
	layout, ok := f.layouts[l]
	delete(f.layouts, l)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("pipeline layout", uint64(l)).Error())
		return
	}
	f.device.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(f.device.LogicalDevice, layout, f.device.Allocator)
		return nil
	})
}

func (f *Factory) CreateGraphicsPipeline(desc *gfx.PipelineDesc) (gfx.Pipeline, error) {
	f.mutex.RLock()
	in := pipelineInputs{
		layout:     f.layouts[desc.Layout],
		renderpass: f.renderpasses[desc.Subpass.RenderPass],
	}
	for _, s := range desc.Shaders {
		in.modules = append(in.modules, f.modules[s.Module])
	}
	f.mutex.RUnlock()
	if in.layout == nil {
		return 0, unknown("pipeline layout", uint64(desc.Layout))
	}
	if in.renderpass == nil {
		return 0, unknown("render pass", uint64(desc.Subpass.RenderPass))
	}
	for i, m := range in.modules {
		if m == nil {
			return 0, unknown("shader module", uint64(desc.Shaders[i].Module))
		}
	}

	pipeline, err := f.device.NewGraphicsPipeline(desc, in)
	if err != nil {
		return 0, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.Pipeline(f.handle())
	f.pipelines[h] = pipeline
	return h, nil
}

func (f *Factory) DestroyPipeline(p gfx.Pipeline) {
	if p == 0 {
		return
	}
	f.mutex.Lock()
	pipeline, ok := f.pipelines[p]
	delete(f.pipelines, p)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("pipeline", uint64(p)).Error())
		return
	}
	f.device.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(f.device.LogicalDevice, pipeline, f.device.Allocator)
		return nil
	})
}

func (f *Factory) addBuffer(b *VulkanBuffer) gfx.Buffer {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	h := gfx.Buffer(f.handle())
	f.buffers[h] = b
	return h
}

func (f *Factory) CreateBuffer(usage gfx.BufferUsage, size uint64) (gfx.Buffer, error) {
	b, err := f.device.NewBuffer(bufferUsage(usage), size, hostVisible)
	if err != nil {
		return 0, err
	}
	return f.addBuffer(b), nil
}

func (f *Factory) DestroyBuffer(b gfx.Buffer) {
	if b == 0 {
		return
	}
	f.mutex.Lock()
	buffer, ok := f.buffers[b]
	delete(f.buffers, b)
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(unknown("buffer", uint64(b)).Error())
		return
	}
	f.device.DestroyBuffer(buffer)
}

func (f *Factory) WriteBuffer(b gfx.Buffer, offset uint64, data []byte) error {
	f.mutex.RLock()
	buffer, ok := f.buffers[b]
	f.mutex.RUnlock()
	if !ok {
		return unknown("buffer", uint64(b))
	}
	return buffer.Write(offset, data)
}

func (f *Factory) UploadBuffer(queue gfx.QueueID, usage gfx.BufferUsage, data []byte) (gfx.Buffer, error) {
	q, err := f.device.queue(queue)
	if err != nil {
		return 0, err
	}
	b, err := f.device.UploadBuffer(q, bufferUsage(usage), data)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to upload %d bytes", len(data))
	}
	return f.addBuffer(b), nil
}

// CreateTexture returns a view and a sampler that both refer to one image.
// DestroyTexture takes the pair back.
func (f *Factory) CreateTexture(queue gfx.QueueID, desc gfx.TextureDesc) (gfx.ImageView, gfx.Sampler, error) {
	q, err := f.device.queue(queue)
	if err != nil {
		return 0, 0, err
	}
	img, err := f.device.NewTexture(q, desc)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to create %dx%d texture", desc.Width, desc.Height)
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	view := gfx.ImageView(f.handle())
	sampler := gfx.Sampler(f.handle())
	f.images[view] = img
	f.samplers[sampler] = view
	return view, sampler, nil
}

func (f *Factory) DestroyTexture(view gfx.ImageView, sampler gfx.Sampler) {
	if view == 0 && sampler == 0 {
		return
	}
	f.mutex.Lock()
	img, ok := f.images[view]
	owner := f.samplers[sampler]
	delete(f.images, view)
	delete(f.samplers, sampler)
	f.mutex.Unlock()
	if !ok || owner != view {
		core.LogWarn("destroy texture: view %d and sampler %d do not belong together", view, sampler)
	}
	if ok {
		f.device.DestroyImage(img)
	}
}

// Leaks returns how many objects created through f are still alive.
func (f *Factory) Leaks() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return len(f.modules) + len(f.setLayouts) + len(f.sets) + len(f.layouts) + len(f.pipelines) + len(f.buffers) + len(f.images)
}

var _ gfx.Factory = (*Factory)(nil)

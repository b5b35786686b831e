// Package record provides a gfx backend that keeps every device object in
// memory and records encoder commands. It backs the headless demo and the
// package tests.
package record

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

type Kind string

const (
	KindShaderModule        Kind = "shader_module"
	KindDescriptorSetLayout Kind = "descriptor_set_layout"
	KindDescriptorSet       Kind = "descriptor_set"
	KindPipelineLayout      Kind = "pipeline_layout"
	KindPipeline            Kind = "pipeline"
	KindBuffer              Kind = "buffer"
	KindTexture             Kind = "texture"
)

type uniformBinding struct {
	buffer gfx.Buffer
	offset uint64
	size   uint64
}

type failure struct {
	err   error
	after int
}

type bindingKey struct {
	set     gfx.DescriptorSet
	binding uint32
}

// Factory implements gfx.Factory without a device.
type Factory struct {
	mutex sync.Mutex

	id        uuid.UUID
	next      uint64
	live      map[uint64]Kind
	created   map[Kind]int
	destroyed map[Kind]int
	failures  map[Kind]failure
	misuse    []error
	null      map[Kind]int

	buffers   map[gfx.Buffer][]byte
	uniforms  map[bindingKey]uniformBinding
	textures  map[bindingKey]gfx.ImageView
	pipelines map[gfx.Pipeline]gfx.PipelineDesc
	uploads   int
}

func NewFactory() *Factory {
	return &Factory{
		id:        uuid.New(),
		live:      make(map[uint64]Kind),
		created:   make(map[Kind]int),
		destroyed: make(map[Kind]int),
		failures:  make(map[Kind]failure),
		null:      make(map[Kind]int),
		buffers:   make(map[gfx.Buffer][]byte),
		uniforms:  make(map[bindingKey]uniformBinding),
		textures:  make(map[bindingKey]gfx.ImageView),
		pipelines: make(map[gfx.Pipeline]gfx.PipelineDesc),
	}
}

// ID identifies this factory in logs.
func (f *Factory) ID() uuid.UUID {
	return f.id
}

// FailOn makes every subsequent creation of kind fail with err. A nil err
// clears the failure.
func (f *Factory) FailOn(kind Kind, err error) {
	f.FailAfter(kind, 0, err)
}

// FailAfter lets n more creations of kind succeed, then fails the rest with err.
func (f *Factory) FailAfter(kind Kind, n int, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err == nil {
		delete(f.failures, kind)
		return
	}
	f.failures[kind] = failure{err: err, after: n}
}

func (f *Factory) Created(kind Kind) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.created[kind]
}

func (f *Factory) Destroyed(kind Kind) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.destroyed[kind]
}

// Live returns how many objects of kind are currently allocated.
func (f *Factory) Live(kind Kind) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Leaks returns the number of objects of any kind still allocated.
func (f *Factory) Leaks() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.live)
}

// Misuse lists destroy calls on unknown handles and writes to released objects.
func (f *Factory) Misuse() []error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]error(nil), f.misuse...)
}

// NullDestroys returns how many destroy calls passed the null handle for kind.
func (f *Factory) NullDestroys(kind Kind) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.null[kind]
}

func (f *Factory) Uploads() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.uploads
}

// BufferData returns a copy of the buffer contents.
func (f *Factory) BufferData(b gfx.Buffer) []byte {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]byte(nil), f.buffers[b]...)
}

// Pipeline returns the description a pipeline was created with.
func (f *Factory) Pipeline(p gfx.Pipeline) (gfx.PipelineDesc, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	desc, ok := f.pipelines[p]
	return desc, ok
}

func (f *Factory) create(kind Kind) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if fl, ok := f.failures[kind]; ok {
		if fl.after == 0 {
			return 0, fl.err
		}
		fl.after--
		f.failures[kind] = fl
	}
	f.next++
	f.live[f.next] = kind
	f.created[kind]++
	return f.next, nil
}

func (f *Factory) destroy(kind Kind, handle uint64) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if handle == 0 {
		f.null[kind]++
		return false
	}
	if got, ok := f.live[handle]; !ok || got != kind {
		err := fmt.Errorf("destroy %s %d: %w", kind, handle, core.ErrUnknownHandle)
		f.misuse = append(f.misuse, err)
		core.LogWarn(err.Error())
		return false
	}
	delete(f.live, handle)
	f.destroyed[kind]++
	return true
}

func (f *Factory) isLive(kind Kind, handle uint64) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.live[handle] == kind
}

func (f *Factory) CreateShaderModule(code []byte) (gfx.ShaderModule, error) {
	if len(code) == 0 {
		return 0, fmt.Errorf("empty shader code")
	}
	h, err := f.create(KindShaderModule)
	return gfx.ShaderModule(h), err
}

func (f *Factory) DestroyShaderModule(m gfx.ShaderModule) {
	f.destroy(KindShaderModule, uint64(m))
}

func (f *Factory) CreateDescriptorSetLayout(bindings []gfx.DescriptorBinding) (gfx.DescriptorSetLayout, error) {
	h, err := f.create(KindDescriptorSetLayout)
	return gfx.DescriptorSetLayout(h), err
}

func (f *Factory) DestroyDescriptorSetLayout(l gfx.DescriptorSetLayout) {
	f.destroy(KindDescriptorSetLayout, uint64(l))
}

func (f *Factory) CreateDescriptorSet(layout gfx.DescriptorSetLayout) (gfx.DescriptorSet, error) {
	if !f.isLive(KindDescriptorSetLayout, uint64(layout)) {
		return 0, fmt.Errorf("descriptor set layout %d: %w", layout, core.ErrUnknownHandle)
	}
	h, err := f.create(KindDescriptorSet)
	return gfx.DescriptorSet(h), err
}

func (f *Factory) DestroyDescriptorSet(s gfx.DescriptorSet) {
	if !f.destroy(KindDescriptorSet, uint64(s)) {
		return
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for k := range f.uniforms {
		if k.set == s {
			delete(f.uniforms, k)
		}
	}
	for k := range f.textures {
		if k.set == s {
			delete(f.textures, k)
		}
	}
}

func (f *Factory) WriteUniformDescriptor(set gfx.DescriptorSet, binding uint32, buffer gfx.Buffer, offset, size uint64) error {
	if !f.isLive(KindDescriptorSet, uint64(set)) || !f.isLive(KindBuffer, uint64(buffer)) {
		return fmt.Errorf("write uniform descriptor %d/%d: %w", set, binding, core.ErrUnknownHandle)
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.uniforms[bindingKey{set, binding}] = uniformBinding{buffer: buffer, offset: offset, size: size}
	return nil
}

func (f *Factory) WriteTextureDescriptor(set gfx.DescriptorSet, binding uint32, view gfx.ImageView, sampler gfx.Sampler) error {
	if !f.isLive(KindDescriptorSet, uint64(set)) || !f.isLive(KindTexture, uint64(view)) {
		return fmt.Errorf("write texture descriptor %d/%d: %w", set, binding, core.ErrUnknownHandle)
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.textures[bindingKey{set, binding}] = view
	return nil
}

func (f *Factory) CreatePipelineLayout(sets []gfx.DescriptorSetLayout, push []gfx.PushConstantRange) (gfx.PipelineLayout, error) {
	for _, s := range sets {
		if !f.isLive(KindDescriptorSetLayout, uint64(s)) {
			return 0, fmt.Errorf("pipeline layout set %d: %w", s, core.ErrUnknownHandle)
		}
	}
	h, err := f.create(KindPipelineLayout)
	return gfx.PipelineLayout(h), err
}

func (f *Factory) DestroyPipelineLayout(l gfx.PipelineLayout) {
	f.destroy(KindPipelineLayout, uint64(l))
}

func (f *Factory) CreateGraphicsPipeline(desc *gfx.PipelineDesc) (gfx.Pipeline, error) {
	if !f.isLive(KindPipelineLayout, uint64(desc.Layout)) {
		return 0, fmt.Errorf("pipeline layout %d: %w", desc.Layout, core.ErrUnknownHandle)
	}
	for _, s := range desc.Shaders {
		if !f.isLive(KindShaderModule, uint64(s.Module)) {
			return 0, fmt.Errorf("shader module %d: %w", s.Module, core.ErrUnknownHandle)
		}
	}
	h, err := f.create(KindPipeline)
	if err != nil {
		return 0, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.pipelines[gfx.Pipeline(h)] = *desc
	return gfx.Pipeline(h), nil
}

func (f *Factory) DestroyPipeline(p gfx.Pipeline) {
	f.destroy(KindPipeline, uint64(p))
}

func (f *Factory) CreateBuffer(usage gfx.BufferUsage, size uint64) (gfx.Buffer, error) {
	h, err := f.create(KindBuffer)
	if err != nil {
		return 0, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.buffers[gfx.Buffer(h)] = make([]byte, size)
	return gfx.Buffer(h), nil
}

func (f *Factory) DestroyBuffer(b gfx.Buffer) {
	if f.destroy(KindBuffer, uint64(b)) {
		f.mutex.Lock()
		delete(f.buffers, b)
		f.mutex.Unlock()
	}
}

func (f *Factory) WriteBuffer(b gfx.Buffer, offset uint64, data []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	buf, ok := f.buffers[b]
	if !ok {
		err := fmt.Errorf("write buffer %d: %w", b, core.ErrUnknownHandle)
		f.misuse = append(f.misuse, err)
		return err
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return fmt.Errorf("write buffer %d: range %d+%d exceeds size %d", b, offset, len(data), len(buf))
	}
	copy(buf[offset:], data)
	return nil
}

func (f *Factory) UploadBuffer(queue gfx.QueueID, usage gfx.BufferUsage, data []byte) (gfx.Buffer, error) {
	b, err := f.CreateBuffer(usage, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	if err := f.WriteBuffer(b, 0, data); err != nil {
		f.DestroyBuffer(b)
		return 0, err
	}
	f.mutex.Lock()
	f.uploads++
	f.mutex.Unlock()
	return b, nil
}

// CreateTexture returns the same handle as view and sampler.
func (f *Factory) CreateTexture(queue gfx.QueueID, desc gfx.TextureDesc) (gfx.ImageView, gfx.Sampler, error) {
	if uint32(len(desc.Pixels)) != desc.Width*desc.Height*4 {
		return 0, 0, fmt.Errorf("texture %dx%d: got %d bytes of pixels", desc.Width, desc.Height, len(desc.Pixels))
	}
	h, err := f.create(KindTexture)
	if err != nil {
		return 0, 0, err
	}
	f.mutex.Lock()
	f.uploads++
	f.mutex.Unlock()
	return gfx.ImageView(h), gfx.Sampler(h), nil
}

func (f *Factory) DestroyTexture(view gfx.ImageView, sampler gfx.Sampler) {
	f.destroy(KindTexture, uint64(view))
}

func (f *Factory) uniformBytes(set gfx.DescriptorSet, binding uint32) ([]byte, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	u, ok := f.uniforms[bindingKey{set, binding}]
	if !ok {
		return nil, false
	}
	buf := f.buffers[u.buffer]
	end := u.offset + u.size
	if end > uint64(len(buf)) {
		end = uint64(len(buf))
	}
	return append([]byte(nil), buf[u.offset:end]...), true
}

func (f *Factory) setBindings(set gfx.DescriptorSet) (map[uint32][]byte, map[uint32]gfx.ImageView) {
	f.mutex.Lock()
	var keys []uint32
	for k := range f.uniforms {
		if k.set == set {
			keys = append(keys, k.binding)
		}
	}
	textures := make(map[uint32]gfx.ImageView)
	for k, v := range f.textures {
		if k.set == set {
			textures[k.binding] = v
		}
	}
	f.mutex.Unlock()

	uniforms := make(map[uint32][]byte, len(keys))
	for _, b := range keys {
		if data, ok := f.uniformBytes(set, b); ok {
			uniforms[b] = data
		}
	}
	return uniforms, textures
}

var _ gfx.Factory = (*Factory)(nil)

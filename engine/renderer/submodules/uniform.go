package submodules

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// Uniform is a value that can be stored in a uniform block.
type Uniform interface {
	comparable
	Std140() []byte
}

type uniformSlot[T Uniform] struct {
	buffer  gfx.Buffer
	set     gfx.DescriptorSet
	value   T
	written bool
}

// DynamicUniform owns one uniform buffer and descriptor set per frame in
// flight, each holding a single T at binding 0.
type DynamicUniform[T Uniform] struct {
	layout gfx.DescriptorSetLayout
	size   uint64
	slots  [gfx.MaxFramesInFlight]uniformSlot[T]
}

func NewDynamicUniform[T Uniform](factory gfx.Factory, stages gfx.ShaderStage) (*DynamicUniform[T], error) {
	var zero T
	size := uint64(len(zero.Std140()))

	layout, err := factory.CreateDescriptorSetLayout([]gfx.DescriptorBinding{
		{Binding: 0, Type: gfx.DescriptorUniformBuffer, Count: 1, Stages: stages},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create uniform set layout")
	}

	u := &DynamicUniform[T]{layout: layout, size: size}
	for i := range u.slots {
		s := &u.slots[i]
		if s.buffer, err = factory.CreateBuffer(gfx.BufferUsageUniform, size); err != nil {
			u.Dispose(factory)
			return nil, errors.Wrapf(err, "failed to create uniform buffer for frame %d", i)
		}
		if s.set, err = factory.CreateDescriptorSet(layout); err != nil {
			u.Dispose(factory)
			return nil, errors.Wrapf(err, "failed to create uniform set for frame %d", i)
		}
		if err = factory.WriteUniformDescriptor(s.set, 0, s.buffer, 0, size); err != nil {
			u.Dispose(factory)
			return nil, errors.Wrapf(err, "failed to bind uniform buffer for frame %d", i)
		}
	}
	return u, nil
}

func (u *DynamicUniform[T]) RawLayout() gfx.DescriptorSetLayout {
	return u.layout
}

// Write stores value in the slot of frame index. It reports whether the slot
// contents changed; the first write to a slot always counts as a change.
func (u *DynamicUniform[T]) Write(factory gfx.Factory, index uint32, value T) bool {
	s := &u.slots[index%gfx.MaxFramesInFlight]
	if s.written && s.value == value {
		return false
	}
	if err := factory.WriteBuffer(s.buffer, 0, value.Std140()); err != nil {
		core.LogError("failed to write uniform for frame %d: %s", index, err.Error())
		return false
	}
	s.value = value
	s.written = true
	return true
}

// Bind binds the set of frame index at setIndex of layout.
func (u *DynamicUniform[T]) Bind(enc gfx.Encoder, layout gfx.PipelineLayout, setIndex, index uint32) {
	s := &u.slots[index%gfx.MaxFramesInFlight]
	enc.BindDescriptorSets(layout, setIndex, []gfx.DescriptorSet{s.set})
}

func (u *DynamicUniform[T]) Dispose(factory gfx.Factory) {
	for i := range u.slots {
		s := &u.slots[i]
		factory.DestroyDescriptorSet(s.set)
		factory.DestroyBuffer(s.buffer)
		u.slots[i] = uniformSlot[T]{}
	}
	factory.DestroyDescriptorSetLayout(u.layout)
	u.layout = 0
}

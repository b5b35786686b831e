package effect

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/math"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// uniformChunk is one uniform buffer of a frame slot.
type uniformChunk struct {
	buffer gfx.Buffer
	cursor uint64
}

// frameSlot is the uniform space and descriptor sets of one frame in flight.
// Draws reserve ranges linearly through the chunks; Begin rewinds them.
// A frame that outgrows its chunks allocates another one, which is kept for
// the following frames.
type frameSlot struct {
	chunks    []uniformChunk
	current   int
	chunkSize uint64
	sets      []gfx.DescriptorSet
	used      int
}

func (s *frameSlot) reset() {
	for i := range s.chunks {
		s.chunks[i].cursor = 0
	}
	s.current = 0
	s.used = 0
}

func (s *frameSlot) reserve(factory gfx.Factory, size uint64) (gfx.Buffer, uint64, error) {
	if size > s.chunkSize {
		return 0, 0, fmt.Errorf("%d bytes do not fit a %d byte chunk: %w", size, s.chunkSize, core.ErrArenaExhausted)
	}
	for {
		if s.current == len(s.chunks) {
			buffer, err := factory.CreateBuffer(gfx.BufferUsageUniform, s.chunkSize)
			if err != nil {
				return 0, 0, errors.Wrap(err, "failed to grow uniform arena")
			}
			s.chunks = append(s.chunks, uniformChunk{buffer: buffer})
			core.LogDebug("uniform arena grown to %d chunks", len(s.chunks))
		}
		c := &s.chunks[s.current]
		offset := math.AlignUp(c.cursor, gfx.UniformAlignment)
		if offset+size <= s.chunkSize {
			c.cursor = offset + size
			return c.buffer, offset, nil
		}
		s.current++
	}
}

// descriptorSet hands out the next set of the frame, allocating it the first
// time the frame reaches that many draws.
func (s *frameSlot) descriptorSet(factory gfx.Factory, layout gfx.DescriptorSetLayout) (gfx.DescriptorSet, error) {
	if s.used == len(s.sets) {
		set, err := factory.CreateDescriptorSet(layout)
		if err != nil {
			return 0, err
		}
		s.sets = append(s.sets, set)
	}
	set := s.sets[s.used]
	s.used++
	return set, nil
}

type arena struct {
	frames [gfx.MaxFramesInFlight]frameSlot
}

// allocate creates the first chunk of every frame slot.
func (a *arena) allocate(factory gfx.Factory, chunkSize uint64) error {
	if chunkSize == 0 {
		return nil
	}
	for i := range a.frames {
		buffer, err := factory.CreateBuffer(gfx.BufferUsageUniform, chunkSize)
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		a.frames[i].chunks = []uniformChunk{{buffer: buffer}}
		a.frames[i].chunkSize = chunkSize
	}
	return nil
}

func (a *arena) release(factory gfx.Factory) {
	for i := range a.frames {
		f := &a.frames[i]
		for _, set := range f.sets {
			factory.DestroyDescriptorSet(set)
		}
		for _, c := range f.chunks {
			factory.DestroyBuffer(c.buffer)
		}
		a.frames[i] = frameSlot{}
	}
}

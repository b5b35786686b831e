package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

type Op string

const (
	OpBindPipeline       Op = "bind_pipeline"
	OpBindDescriptorSets Op = "bind_descriptor_sets"
	OpBindVertexBuffers  Op = "bind_vertex_buffers"
	OpPushConstants      Op = "push_constants"
	OpDraw               Op = "draw"
)

// DrawState is the binding state captured when a draw is recorded. Uniform
// contents are copied at that moment, so later writes do not alter it.
type DrawState struct {
	Pipeline      gfx.Pipeline
	Sets          map[uint32]gfx.DescriptorSet
	VertexBuffers map[uint32]gfx.Buffer
	uniforms      map[[2]uint32][]byte
	textures      map[[2]uint32]gfx.ImageView
}

// Uniform returns the bytes a uniform binding of the set bound at index
// points at.
func (s *DrawState) Uniform(set, binding uint32) []byte {
	return s.uniforms[[2]uint32{set, binding}]
}

func (s *DrawState) Texture(set, binding uint32) gfx.ImageView {
	return s.textures[[2]uint32{set, binding}]
}

type Command struct {
	Op        Op
	Pipeline  gfx.Pipeline
	Layout    gfx.PipelineLayout
	First     uint32
	Sets      []gfx.DescriptorSet
	Buffers   []gfx.Buffer
	Stages    gfx.ShaderStage
	Data      []byte
	Vertices  gfx.Range
	Instances gfx.Range
	State     *DrawState
}

func (c Command) String() string {
	switch c.Op {
	case OpBindPipeline:
		return fmt.Sprintf("%s(%d)", c.Op, c.Pipeline)
	case OpBindDescriptorSets:
		return fmt.Sprintf("%s(first=%d, %v)", c.Op, c.First, c.Sets)
	case OpBindVertexBuffers:
		return fmt.Sprintf("%s(first=%d, %v)", c.Op, c.First, c.Buffers)
	case OpDraw:
		return fmt.Sprintf("%s(%d..%d, %d..%d)", c.Op, c.Vertices.Start, c.Vertices.End, c.Instances.Start, c.Instances.End)
	}
	return string(c.Op)
}

// Encoder implements gfx.Encoder by appending to a command log.
type Encoder struct {
	factory  *Factory
	commands []Command

	pipeline gfx.Pipeline
	sets     map[uint32]gfx.DescriptorSet
	vertex   map[uint32]gfx.Buffer
}

// NewEncoder returns an encoder that resolves descriptor contents through f.
func NewEncoder(f *Factory) *Encoder {
	e := &Encoder{factory: f}
	e.Reset()
	return e
}

func (e *Encoder) Reset() {
	e.commands = nil
	e.pipeline = 0
	e.sets = make(map[uint32]gfx.DescriptorSet)
	e.vertex = make(map[uint32]gfx.Buffer)
}

func (e *Encoder) Commands() []Command {
	return e.commands
}

// Ops returns the sequence of recorded operations.
func (e *Encoder) Ops() []Op {
	ops := make([]Op, len(e.commands))
	for i, c := range e.commands {
		ops[i] = c.Op
	}
	return ops
}

func (e *Encoder) Draws() []Command {
	var out []Command
	for _, c := range e.commands {
		if c.Op == OpDraw {
			out = append(out, c)
		}
	}
	return out
}

// Summary counts recorded commands per operation, for logging.
func (e *Encoder) Summary() string {
	counts := make(map[Op]int)
	for _, c := range e.commands {
		counts[c.Op]++
	}
	keys := make([]string, 0, len(counts))
	for op := range counts {
		keys = append(keys, string(op))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[Op(k)])
	}
	return strings.Join(parts, " ")
}

func (e *Encoder) BindPipeline(p gfx.Pipeline) {
	e.pipeline = p
	e.commands = append(e.commands, Command{Op: OpBindPipeline, Pipeline: p})
}

func (e *Encoder) BindDescriptorSets(layout gfx.PipelineLayout, first uint32, sets []gfx.DescriptorSet) {
	for i, s := range sets {
		e.sets[first+uint32(i)] = s
	}
	e.commands = append(e.commands, Command{
		Op:     OpBindDescriptorSets,
		Layout: layout,
		First:  first,
		Sets:   append([]gfx.DescriptorSet(nil), sets...),
	})
}

func (e *Encoder) BindVertexBuffers(first uint32, buffers []gfx.Buffer, offsets []uint64) {
	for i, b := range buffers {
		e.vertex[first+uint32(i)] = b
	}
	e.commands = append(e.commands, Command{
		Op:      OpBindVertexBuffers,
		First:   first,
		Buffers: append([]gfx.Buffer(nil), buffers...),
	})
}

func (e *Encoder) PushConstants(layout gfx.PipelineLayout, stages gfx.ShaderStage, offset uint32, data []byte) {
	e.commands = append(e.commands, Command{
		Op:     OpPushConstants,
		Layout: layout,
		First:  offset,
		Stages: stages,
		Data:   append([]byte(nil), data...),
	})
}

func (e *Encoder) Draw(vertices gfx.Range, instances gfx.Range) {
	e.commands = append(e.commands, Command{
		Op:        OpDraw,
		Pipeline:  e.pipeline,
		Vertices:  vertices,
		Instances: instances,
		State:     e.snapshot(),
	})
}

func (e *Encoder) snapshot() *DrawState {
	s := &DrawState{
		Pipeline:      e.pipeline,
		Sets:          make(map[uint32]gfx.DescriptorSet, len(e.sets)),
		VertexBuffers: make(map[uint32]gfx.Buffer, len(e.vertex)),
		uniforms:      make(map[[2]uint32][]byte),
		textures:      make(map[[2]uint32]gfx.ImageView),
	}
	for i, b := range e.vertex {
		s.VertexBuffers[i] = b
	}
	for index, set := range e.sets {
		s.Sets[index] = set
		if e.factory == nil {
			continue
		}
		uniforms, textures := e.factory.setBindings(set)
		for binding, data := range uniforms {
			s.uniforms[[2]uint32{index, binding}] = data
		}
		for binding, view := range textures {
			s.textures[[2]uint32{index, binding}] = view
		}
	}
	return s
}

var _ gfx.Encoder = (*Encoder)(nil)

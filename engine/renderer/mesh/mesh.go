package mesh

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

// Mesh is uploaded, non-indexed geometry stored as one vertex buffer per
// stream.
type Mesh struct {
	buffers map[vertex.Semantic]gfx.Buffer
	len     uint32
}

// Buffer returns the buffer of a stream, if the mesh has one.
func (m *Mesh) Buffer(s vertex.Semantic) (gfx.Buffer, bool) {
	b, ok := m.buffers[s]
	return b, ok
}

func (m *Mesh) Has(s vertex.Semantic) bool {
	_, ok := m.buffers[s]
	return ok
}

// Len is the vertex count.
func (m *Mesh) Len() uint32 {
	return m.len
}

// Bind binds the given streams to consecutive bindings starting at first.
// It returns false without binding anything when a stream is missing.
func (m *Mesh) Bind(enc gfx.Encoder, first uint32, streams ...vertex.Semantic) bool {
	buffers := make([]gfx.Buffer, len(streams))
	for i, s := range streams {
		b, ok := m.buffers[s]
		if !ok {
			return false
		}
		buffers[i] = b
	}
	enc.BindVertexBuffers(first, buffers, make([]uint64, len(buffers)))
	return true
}

func (m *Mesh) Dispose(factory gfx.Factory) {
	for s, b := range m.buffers {
		factory.DestroyBuffer(b)
		delete(m.buffers, s)
	}
}

type stream struct {
	semantic vertex.Semantic
	count    int
	data     []byte
}

// Builder collects vertex streams and uploads them as a Mesh.
type Builder struct {
	streams []stream
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(s vertex.Semantic, count int, data []byte) *Builder {
	for i := range b.streams {
		if b.streams[i].semantic == s {
			b.streams[i] = stream{semantic: s, count: count, data: data}
			return b
		}
	}
	b.streams = append(b.streams, stream{semantic: s, count: count, data: data})
	return b
}

func (b *Builder) WithPositions(v []mgl32.Vec3) *Builder {
	return b.add(vertex.Position, len(v), vec3Bytes(v))
}

func (b *Builder) WithNormals(v []mgl32.Vec3) *Builder {
	return b.add(vertex.Normal, len(v), vec3Bytes(v))
}

func (b *Builder) WithTexCoords(v []mgl32.Vec2) *Builder {
	out := make([]byte, 0, len(v)*8)
	for _, t := range v {
		out = appendFloats(out, t[0], t[1])
	}
	return b.add(vertex.TexCoord, len(v), out)
}

func (b *Builder) WithJointIds(v [][4]uint16) *Builder {
	out := make([]byte, 0, len(v)*8)
	for _, ids := range v {
		for _, id := range ids {
			out = binary.LittleEndian.AppendUint16(out, id)
		}
	}
	return b.add(vertex.JointIds, len(v), out)
}

func (b *Builder) WithJointWeights(v []mgl32.Vec4) *Builder {
	out := make([]byte, 0, len(v)*16)
	for _, w := range v {
		out = appendFloats(out, w[0], w[1], w[2], w[3])
	}
	return b.add(vertex.JointWeights, len(v), out)
}

func (b *Builder) WithPosTex(v []vertex.PosTexVertex) *Builder {
	out := make([]byte, 0, len(v)*20)
	for _, p := range v {
		out = appendFloats(out, p.Position[0], p.Position[1], p.Position[2], p.TexCoord[0], p.TexCoord[1])
	}
	return b.add(vertex.PosTex, len(v), out)
}

// Len is the vertex count shared by every stream, or an error when the
// streams disagree.
func (b *Builder) Len() (uint32, error) {
	if len(b.streams) == 0 {
		return 0, fmt.Errorf("mesh has no vertex streams")
	}
	n := b.streams[0].count
	for _, s := range b.streams[1:] {
		if s.count != n {
			return 0, fmt.Errorf("stream %s has %d vertices, %s has %d", s.semantic, s.count, b.streams[0].semantic, n)
		}
	}
	return uint32(n), nil
}

// Build uploads every stream through queue. Buffers uploaded before a failure
// are released.
func (b *Builder) Build(factory gfx.Factory, queue gfx.QueueID) (*Mesh, error) {
	n, err := b.Len()
	if err != nil {
		return nil, errors.Wrap(err, "invalid mesh")
	}
	m := &Mesh{buffers: make(map[vertex.Semantic]gfx.Buffer, len(b.streams)), len: n}
	for _, s := range b.streams {
		buf, err := factory.UploadBuffer(queue, gfx.BufferUsageVertex, s.data)
		if err != nil {
			m.Dispose(factory)
			return nil, errors.Wrapf(err, "failed to upload %s stream", s.semantic)
		}
		m.buffers[s.semantic] = buf
	}
	return m, nil
}

func vec3Bytes(v []mgl32.Vec3) []byte {
	out := make([]byte, 0, len(v)*12)
	for _, p := range v {
		out = appendFloats(out, p[0], p[1], p[2])
	}
	return out
}

func appendFloats(out []byte, fs ...float32) []byte {
	for _, f := range fs {
		out = binary.LittleEndian.AppendUint32(out, stdmath.Float32bits(f))
	}
	return out
}

package gfx

import (
	"encoding/binary"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Std140 packs uniform block members following the std140 layout rules for
// the scalar, vector and column major matrix types the shaders use.
type Std140 struct {
	buf []byte
}

func NewStd140(capacity int) *Std140 {
	return &Std140{buf: make([]byte, 0, capacity)}
}

func (w *Std140) align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *Std140) putFloat(f float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, stdmath.Float32bits(f))
}

func (w *Std140) Float(f float32) *Std140 {
	w.align(4)
	w.putFloat(f)
	return w
}

func (w *Std140) Int(i int32) *Std140 {
	w.align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(i))
	return w
}

func (w *Std140) Uint(u uint32) *Std140 {
	w.align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, u)
	return w
}

func (w *Std140) Vec2(v mgl32.Vec2) *Std140 {
	w.align(8)
	w.putFloat(v[0])
	w.putFloat(v[1])
	return w
}

// Vec3 is aligned to 16 bytes but only occupies 12, so a following scalar
// packs into its fourth component.
func (w *Std140) Vec3(v mgl32.Vec3) *Std140 {
	w.align(16)
	w.putFloat(v[0])
	w.putFloat(v[1])
	w.putFloat(v[2])
	return w
}

func (w *Std140) Vec4(v mgl32.Vec4) *Std140 {
	w.align(16)
	for _, f := range v {
		w.putFloat(f)
	}
	return w
}

func (w *Std140) Mat4(m mgl32.Mat4) *Std140 {
	w.align(16)
	for _, f := range m {
		w.putFloat(f)
	}
	return w
}

// EndStruct pads to the 16 byte boundary required after a struct or array
// element.
func (w *Std140) EndStruct() *Std140 {
	w.align(16)
	return w
}

// PadTo zero fills the block up to size bytes.
func (w *Std140) PadTo(size int) *Std140 {
	for len(w.buf) < size {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *Std140) Len() int {
	return len(w.buf)
}

func (w *Std140) Bytes() []byte {
	return w.buf
}

// Float32At decodes the float stored at byte offset off of a packed block.
func Float32At(block []byte, off int) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(block[off:]))
}

// Mat4At decodes a column major matrix stored at byte offset off.
func Mat4At(block []byte, off int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = Float32At(block, off+4*i)
	}
	return m
}

// Vec4At decodes a vec4 stored at byte offset off.
func Vec4At(block []byte, off int) mgl32.Vec4 {
	return mgl32.Vec4{Float32At(block, off), Float32At(block, off+4), Float32At(block, off+8), Float32At(block, off+12)}
}

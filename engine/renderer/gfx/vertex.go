package gfx

// Format describes one vertex attribute element.
type Format uint8

const (
	FormatUndefined Format = iota
	FormatR32Sfloat
	FormatRG32Sfloat
	FormatRGB32Sfloat
	FormatRGBA32Sfloat
	FormatRGBA16Uint
	FormatRGBA8Unorm
)

// Size returns the byte size of one element of the format.
func (f Format) Size() uint32 {
	switch f {
	case FormatR32Sfloat:
		return 4
	case FormatRG32Sfloat:
		return 8
	case FormatRGB32Sfloat:
		return 12
	case FormatRGBA32Sfloat:
		return 16
	case FormatRGBA16Uint:
		return 8
	case FormatRGBA8Unorm:
		return 4
	}
	return 0
}

type VertexAttribute struct {
	Name   string
	Format Format
	Offset uint32
}

// VertexFormat is the layout of one vertex buffer binding.
type VertexFormat struct {
	Attributes []VertexAttribute
	Stride     uint32
}

type VertexRate uint8

const (
	RateVertex VertexRate = iota
	RateInstance
)

type VertexBufferDesc struct {
	Binding uint32
	Format  VertexFormat
	Rate    VertexRate
}

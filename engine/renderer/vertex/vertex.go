// Package vertex names the vertex attribute streams understood by the
// renderer and their buffer layouts.
package vertex

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// Semantic identifies one vertex buffer stream of a mesh.
type Semantic uint8

const (
	Position Semantic = iota
	Normal
	TexCoord
	JointIds
	JointWeights
	// PosTex is an interleaved position + texcoord stream.
	PosTex
)

func (s Semantic) String() string {
	switch s {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case TexCoord:
		return "tex_coord"
	case JointIds:
		return "joint_ids"
	case JointWeights:
		return "joint_weights"
	case PosTex:
		return "pos_tex"
	}
	return "unknown"
}

// Format returns the buffer layout of the stream.
func (s Semantic) Format() gfx.VertexFormat {
	switch s {
	case Position:
		return single("position", gfx.FormatRGB32Sfloat)
	case Normal:
		return single("normal", gfx.FormatRGB32Sfloat)
	case TexCoord:
		return single("tex_coord", gfx.FormatRG32Sfloat)
	case JointIds:
		return single("joint_ids", gfx.FormatRGBA16Uint)
	case JointWeights:
		return single("joint_weights", gfx.FormatRGBA32Sfloat)
	case PosTex:
		return gfx.VertexFormat{
			Attributes: []gfx.VertexAttribute{
				{Name: "position", Format: gfx.FormatRGB32Sfloat, Offset: 0},
				{Name: "tex_coord", Format: gfx.FormatRG32Sfloat, Offset: 12},
			},
			Stride: 20,
		}
	}
	return gfx.VertexFormat{}
}

// Size is the stride of the stream in bytes.
func (s Semantic) Size() uint32 {
	return s.Format().Stride
}

func single(name string, f gfx.Format) gfx.VertexFormat {
	return gfx.VertexFormat{
		Attributes: []gfx.VertexAttribute{{Name: name, Format: f}},
		Stride:     f.Size(),
	}
}

// Base is the attribute set every shaded mesh provides.
var Base = []Semantic{Position, Normal, TexCoord}

// Skinned extends Base with the skinning streams.
var Skinned = []Semantic{Position, Normal, TexCoord, JointIds, JointWeights}

// PosTexVertex is one element of a PosTex stream.
type PosTexVertex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec2
}

package gfx

type Comparison uint8

const (
	CompareNever Comparison = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// DepthTest is the fixed function depth state of a pipeline.
type DepthTest struct {
	Fun   Comparison
	Write bool
}

// DepthMode names the depth configurations the passes use.
type DepthMode uint8

const (
	DepthModeNone DepthMode = iota
	DepthModeLessEqualTest
	DepthModeLessEqualWrite
)

// Test expands the mode into a depth state. ok is false for DepthModeNone.
func (m DepthMode) Test() (test DepthTest, ok bool) {
	switch m {
	case DepthModeLessEqualTest:
		return DepthTest{Fun: CompareLessEqual, Write: false}, true
	case DepthModeLessEqualWrite:
		return DepthTest{Fun: CompareLessEqual, Write: true}, true
	}
	return DepthTest{}, false
}

func (m DepthMode) String() string {
	switch m {
	case DepthModeLessEqualTest:
		return "less_equal_test"
	case DepthModeLessEqualWrite:
		return "less_equal_write"
	}
	return "none"
}

type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

type BlendChannel struct {
	Src BlendFactor
	Dst BlendFactor
	Op  BlendOp
}

type Blend struct {
	Color BlendChannel
	Alpha BlendChannel
}

var (
	// BlendAlpha is classic "over" compositing on colour with additive alpha.
	BlendAlpha = Blend{
		Color: BlendChannel{Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha, Op: BlendOpAdd},
		Alpha: BlendChannel{Src: BlendOne, Dst: BlendOne, Op: BlendOpAdd},
	}
	BlendAdd = Blend{
		Color: BlendChannel{Src: BlendOne, Dst: BlendOne, Op: BlendOpAdd},
		Alpha: BlendChannel{Src: BlendOne, Dst: BlendOne, Op: BlendOpAdd},
	}
	BlendReplace = Blend{
		Color: BlendChannel{Src: BlendOne, Dst: BlendZero, Op: BlendOpAdd},
		Alpha: BlendChannel{Src: BlendOne, Dst: BlendZero, Op: BlendOpAdd},
	}
)

type ColorMask uint8

const (
	ColorMaskRed ColorMask = 1 << iota
	ColorMaskGreen
	ColorMaskBlue
	ColorMaskAlpha

	ColorMaskNone ColorMask = 0
	ColorMaskAll            = ColorMaskRed | ColorMaskGreen | ColorMaskBlue | ColorMaskAlpha
)

// ColorBlend is the state of one colour attachment. A nil Blend disables
// blending for it.
type ColorBlend struct {
	Mask  ColorMask
	Blend *Blend
}

type Topology uint8

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

package submodules

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// ViewArgs is the per-frame camera block.
type ViewArgs struct {
	Proj           mgl32.Mat4
	View           mgl32.Mat4
	CameraPosition mgl32.Vec3
}

func (a ViewArgs) Std140() []byte {
	return gfx.NewStd140(144).Mat4(a.Proj).Mat4(a.View).Vec3(a.CameraPosition).EndStruct().Bytes()
}

// FlatEnvironment provides camera data to every pass that binds it, without
// any lighting.
type FlatEnvironment struct {
	uniform *DynamicUniform[ViewArgs]
}

func NewFlatEnvironment(factory gfx.Factory) (*FlatEnvironment, error) {
	u, err := NewDynamicUniform[ViewArgs](factory, gfx.StageAllGraphics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create flat environment")
	}
	return &FlatEnvironment{uniform: u}, nil
}

func (e *FlatEnvironment) RawLayout() gfx.DescriptorSetLayout {
	return e.uniform.RawLayout()
}

// Process refreshes the camera block of frame index and reports whether it
// changed.
func (e *FlatEnvironment) Process(factory gfx.Factory, index uint32, world *ecs.World) bool {
	cam := GatherCamera(world)
	return e.uniform.Write(factory, index, ViewArgs{Proj: cam.Proj, View: cam.View, CameraPosition: cam.Position})
}

func (e *FlatEnvironment) Bind(enc gfx.Encoder, layout gfx.PipelineLayout, setIndex, index uint32) {
	e.uniform.Bind(enc, layout, setIndex, index)
}

func (e *FlatEnvironment) Dispose(factory gfx.Factory) {
	e.uniform.Dispose(factory)
}

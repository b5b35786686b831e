package submodules

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
)

// CameraView is the projection and view a frame is rendered with.
type CameraView struct {
	Entity   ecs.Entity
	Proj     mgl32.Mat4
	View     mgl32.Mat4
	Position mgl32.Vec3
}

// IdentityView is used when the scene has no usable camera.
func IdentityView() CameraView {
	return CameraView{Entity: ecs.Null, Proj: mgl32.Ident4(), View: mgl32.Ident4()}
}

// GatherCamera resolves the camera of the frame: the ActiveCamera entity when
// it has both a Camera and a Transform, else the first entity that does, else
// the identity view.
func GatherCamera(world *ecs.World) CameraView {
	cameras := ecs.Components[components.Camera](world)
	transforms := ecs.Components[components.Transform](world)

	if active, ok := ecs.Resource[components.ActiveCamera](world); ok && active.Entity != ecs.Null {
		if view, ok := cameraView(cameras, transforms, active.Entity); ok {
			return view
		}
	}
	for _, e := range ecs.NewJoin(cameras, transforms).Entities() {
		if view, ok := cameraView(cameras, transforms, e); ok {
			return view
		}
	}
	return IdentityView()
}

func cameraView(cameras *ecs.Storage[components.Camera], transforms *ecs.Storage[components.Transform], e ecs.Entity) (CameraView, bool) {
	cam, ok := cameras.Get(e)
	if !ok {
		return CameraView{}, false
	}
	tr, ok := transforms.Get(e)
	if !ok {
		return CameraView{}, false
	}
	return CameraView{Entity: e, Proj: cam.Proj, View: tr.View(), Position: tr.Translation}, true
}

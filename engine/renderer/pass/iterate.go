package pass

import (
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

// sceneStorages are the component storages the shaded pass reads.
type sceneStorages struct {
	meshes          *ecs.Storage[components.MeshHandle]
	materials       *ecs.Storage[components.Material]
	transforms      *ecs.Storage[components.Transform]
	joints          *ecs.Storage[components.JointTransforms]
	tints           *ecs.Storage[palette.Rgba]
	hidden          *ecs.Storage[components.Hidden]
	hiddenPropagate *ecs.Storage[components.HiddenPropagate]
}

func fetchScene(world *ecs.World) sceneStorages {
	return sceneStorages{
		meshes:          ecs.Components[components.MeshHandle](world),
		materials:       ecs.Components[components.Material](world),
		transforms:      ecs.Components[components.Transform](world),
		joints:          ecs.Components[components.JointTransforms](world),
		tints:           ecs.Components[palette.Rgba](world),
		hidden:          ecs.Components[components.Hidden](world),
		hiddenPropagate: ecs.Components[components.HiddenPropagate](world),
	}
}

func lookup[T any](s *ecs.Storage[T], e ecs.Entity) *T {
	v, ok := s.Get(e)
	if !ok {
		return nil
	}
	return &v
}

func (s sceneStorages) drawable(e ecs.Entity) (drawable, bool) {
	h, ok := s.meshes.Get(e)
	if !ok {
		return drawable{}, false
	}
	return drawable{
		entity:    e,
		mesh:      h,
		material:  lookup(s.materials, e),
		transform: lookup(s.transforms, e),
		joints:    lookup(s.joints, e),
		tint:      lookup(s.tints, e),
	}, true
}

// visibleDrawables selects what the shaded pass draws, in draw order.
//
// Without a Visibility resource every entity with a mesh, a material and a
// transform is drawn unless it is hidden. With one, the unordered set is
// joined the same way (hiding is the culling system's business), then the
// ordered list is drawn in sequence, needing only a mesh.
func visibleDrawables(world *ecs.World) []drawable {
	s := fetchScene(world)
	join := ecs.NewJoin(s.meshes, s.materials, s.transforms)

	vis, ok := ecs.Resource[components.Visibility](world)
	if !ok {
		join.Without(s.hidden, s.hiddenPropagate)
	} else {
		join.Within(vis.VisibleUnordered)
	}

	var out []drawable
	for _, e := range join.Entities() {
		d, _ := s.drawable(e)
		out = append(out, d)
	}
	if ok {
		for _, e := range vis.VisibleOrdered {
			if d, found := s.drawable(e); found {
				out = append(out, d)
			}
		}
	}
	return out
}

package pass

import (
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/effect"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/renderer/submodules"
)

const (
	MaxPointLights       = 128
	MaxDirectionalLights = 16
	MaxSpotLights        = 64

	pointLightSize       = 32
	directionalLightSize = 32
	spotLightSize        = 64
)

func setupLightBuffers(b *effect.Builder) {
	b.WithRawConstantBuffer("PointLights", MaxPointLights*pointLightSize, gfx.StageFragment).
		WithRawConstantBuffer("DirectionalLights", MaxDirectionalLights*directionalLightSize, gfx.StageFragment).
		WithRawConstantBuffer("SpotLights", MaxSpotLights*spotLightSize, gfx.StageFragment).
		WithRawGlobal("ambient_color").
		WithRawGlobal("camera_position").
		WithRawGlobal("point_light_count").
		WithRawGlobal("directional_light_count").
		WithRawGlobal("spot_light_count")
}

// lightArrays packs every light of the world into the std140 arrays of the
// fragment program. Lights beyond the array sizes are dropped.
type lightArrays struct {
	point       *gfx.Std140
	directional *gfx.Std140
	spot        *gfx.Std140
	counts      [3]int32
}

func gatherLights(world *ecs.World) *lightArrays {
	out := &lightArrays{
		point:       gfx.NewStd140(MaxPointLights * pointLightSize),
		directional: gfx.NewStd140(MaxDirectionalLights * directionalLightSize),
		spot:        gfx.NewStd140(MaxSpotLights * spotLightSize),
	}
	lights := ecs.Components[components.Light](world)
	transforms := ecs.Components[components.Transform](world)

	for _, e := range lights.Entities() {
		light, _ := lights.Get(e)
		switch l := light.(type) {
		case components.PointLight:
			tr, ok := transforms.Get(e)
			if !ok || out.counts[0] == MaxPointLights {
				continue
			}
			out.point.Vec3(tr.Translation).Float(l.Intensity).
				Vec3(l.Color.Vec3()).Float(l.Radius).EndStruct()
			out.counts[0]++
		case components.DirectionalLight:
			if out.counts[1] == MaxDirectionalLights {
				continue
			}
			out.directional.Vec3(l.Color.Vec3()).Float(l.Intensity).
				Vec3(l.Direction).EndStruct()
			out.counts[1]++
		case components.SpotLight:
			tr, ok := transforms.Get(e)
			if !ok || out.counts[2] == MaxSpotLights {
				continue
			}
			out.spot.Vec3(tr.Translation).Float(l.Angle).
				Vec3(l.Color.Vec3()).Float(l.Range).
				Vec3(l.Direction).Float(l.Smoothness).
				Float(l.Intensity).EndStruct()
			out.counts[2]++
		}
	}
	return out
}

// setLightArgs uploads the lights, the ambient colour and the camera position.
// It runs once per frame; the blocks stay in place for every draw.
func setLightArgs(eff *effect.Effect, world *ecs.World, camera submodules.CameraView) {
	lights := gatherLights(world)
	ambient := ecs.ResourceOr(world, components.AmbientColor{Color: palette.Black})

	eff.UpdateConstantBuffer("PointLights", lights.point.Bytes())
	eff.UpdateConstantBuffer("DirectionalLights", lights.directional.Bytes())
	eff.UpdateConstantBuffer("SpotLights", lights.spot.Bytes())

	eff.UpdateGlobal("ambient_color", gfx.NewStd140(16).Vec3(ambient.Color.Srgb().Vec3()).Bytes())
	eff.UpdateGlobal("camera_position", gfx.NewStd140(16).Vec3(camera.Position).Bytes())
	eff.UpdateGlobal("point_light_count", gfx.NewStd140(4).Int(lights.counts[0]).Bytes())
	eff.UpdateGlobal("directional_light_count", gfx.NewStd140(4).Int(lights.counts[1]).Bytes())
	eff.UpdateGlobal("spot_light_count", gfx.NewStd140(4).Int(lights.counts[2]).Bytes())
}

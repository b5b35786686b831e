package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine"
	"github.com/spaghettifunk/anima-render/engine/assets"
	"github.com/spaghettifunk/anima-render/engine/config"
	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/renderer/shape"
	"github.com/spaghettifunk/anima-render/engine/renderer/texture"
	"github.com/spaghettifunk/anima-render/engine/systems"
)

const (
	checkerSize = 8
	jobWorkers  = 2
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	meshes   *assets.Storage[mesh.Mesh]
	textures *assets.Storage[texture.Texture]
	jobs     *systems.JobSystem

	camera ecs.Entity
	cubes  []ecs.Entity
}

func NewTestGame(cfg config.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:   "Anima Render Testbed",
				Render: cfg,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

// Initialize builds a small scene: three textured cubes over a floor plane,
// a sphere, a camera and a handful of lights. The checker texture and the
// sphere stream in through the job system; until they arrive the materials
// fall back to the defaults and the sphere is skipped.
func (g *TestGame) Initialize(world *ecs.World, factory gfx.Factory, framebuffer gfx.Extent) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.meshes = assets.NewStorage[mesh.Mesh]()
	state.textures = assets.NewStorage[texture.Texture]()
	ecs.InsertResource(world, state.meshes)
	ecs.InsertResource(world, state.textures)

	white, err := texture.SolidColor(factory, 0, palette.White)
	if err != nil {
		return err
	}
	black, err := texture.SolidColor(factory, 0, palette.Black)
	if err != nil {
		return err
	}
	defaults := components.NewMaterial(state.textures.Insert(white), state.textures.Insert(black))
	ecs.InsertResource(world, components.MaterialDefaults{Material: defaults})

	state.jobs, err = systems.NewJobSystem(jobWorkers, 8)
	if err != nil {
		return err
	}
	checkerHandle := state.textures.Allocate()
	err = state.jobs.Submit(systems.JobTask{
		Name: "checker texture",
		OnStart: func() (interface{}, error) {
			return checkerPixels(checkerSize), nil
		},
		OnComplete: func(result interface{}) {
			t, err := texture.Load(factory, 0, checkerSize, checkerSize, result.([]byte))
			if err != nil {
				core.LogError("checker texture not uploaded: %s", err)
				return
			}
			state.textures.Load(checkerHandle, t)
		},
	})
	if err != nil {
		return err
	}
	sphereHandle := state.meshes.Allocate()
	err = state.jobs.Submit(systems.JobTask{
		Name: "sphere",
		OnStart: func() (interface{}, error) {
			return shape.Sphere(32, 16), nil
		},
		OnComplete: func(result interface{}) {
			m, err := result.(*shape.Shape).SeparateBuilder().Build(factory, 0)
			if err != nil {
				core.LogError("sphere not uploaded: %s", err)
				return
			}
			state.meshes.Load(sphereHandle, m)
		},
	})
	if err != nil {
		return err
	}

	cube, err := shape.Cube(1, 1, 1, 1, 1).SeparateBuilder().Build(factory, 0)
	if err != nil {
		return err
	}
	plane, err := shape.Plane(20, 20, 1, 1, 10, 10).SeparateBuilder().Build(factory, 0)
	if err != nil {
		return err
	}
	cubeHandle := state.meshes.Insert(cube)

	// Cubes. The second one only sets an emission texture, its albedo falls
	// back to the defaults.
	for i, x := range []float32{-3, 0, 3} {
		e := world.Create()
		ecs.Insert(world, e, cubeHandle)
		ecs.Insert(world, e, components.NewTransformAt(mgl32.Vec3{x, 0.5, 0}))
		switch i {
		case 1:
			ecs.Insert(world, e, components.Material{Emission: checkerHandle, EmissionOffset: components.FullTexture})
		default:
			ecs.Insert(world, e, components.NewMaterial(checkerHandle, components.TextureHandle{}))
		}
		state.cubes = append(state.cubes, e)
	}
	ecs.Insert(world, state.cubes[2], palette.NewRgba(1.0, 0.5, 0.5, 0.6))

	floor := world.Create()
	ecs.Insert(world, floor, state.meshes.Insert(plane))
	ecs.Insert(world, floor, components.NewTransform())
	ecs.Insert(world, floor, components.NewMaterial(checkerHandle, components.TextureHandle{}))

	ball := world.Create()
	ecs.Insert(world, ball, sphereHandle)
	ecs.Insert(world, ball, components.NewTransformAt(mgl32.Vec3{0, 2.5, -2}))
	ecs.Insert(world, ball, defaults)

	// Camera
	state.camera = world.Create()
	view := components.NewTransformAt(mgl32.Vec3{6, 5, 9})
	view.LookAt(mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 1, 0})
	ecs.Insert(world, state.camera, view)
	ecs.Insert(world, state.camera, components.StandardCamera(framebuffer))
	ecs.InsertResource(world, components.ActiveCamera{Entity: state.camera})

	// Lights
	ecs.InsertResource(world, components.AmbientColor{Color: palette.NewRgba(0.05, 0.05, 0.08, 1.0)})

	sun := world.Create()
	ecs.Insert[components.Light](world, sun, components.NewDirectionalLight(palette.NewSrgb(1.0, 0.95, 0.8), mgl32.Vec3{-1, -3, -1}.Normalize()))

	lamp := world.Create()
	ecs.Insert[components.Light](world, lamp, components.NewPointLight(palette.NewSrgb(0.2, 0.4, 1.0)))
	ecs.Insert(world, lamp, components.NewTransformAt(mgl32.Vec3{0, 3, 2}))

	spot := world.Create()
	ecs.Insert[components.Light](world, spot, components.NewSpotLight(palette.White.Srgb(), mgl32.Vec3{0, -1, 0}))
	ecs.Insert(world, spot, components.NewTransformAt(mgl32.Vec3{3, 5, 0}))

	core.LogInfo("testbed scene ready: %d entities", len(world.Entities()))
	return nil
}

// Update finishes streamed assets and spins the cubes around the Y axis.
func (g *TestGame) Update(world *ecs.World, deltaTime float64) error {
	state := g.State.(*gameState)
	state.jobs.Update()
	rotation := mgl32.QuatRotate(float32(0.5*deltaTime), mgl32.Vec3{0, 1, 0})

	transforms := ecs.Components[components.Transform](world)
	for _, e := range state.cubes {
		t, ok := transforms.Get(e)
		if !ok {
			continue
		}
		t.Rotation = rotation.Mul(t.Rotation).Normalize()
		transforms.Insert(e, t)
	}
	return nil
}

func (g *TestGame) OnResize(world *ecs.World, width uint32, height uint32) error {
	state := g.State.(*gameState)
	ecs.Insert(world, state.camera, components.StandardCamera(gfx.Extent{Width: width, Height: height}))
	return nil
}

func (g *TestGame) Shutdown(world *ecs.World, factory gfx.Factory) error {
	state := g.State.(*gameState)
	if state.jobs != nil {
		if err := state.jobs.Shutdown(); err != nil {
			return err
		}
	}
	if state.meshes != nil {
		state.meshes.Each(func(h components.MeshHandle, m *mesh.Mesh) {
			state.meshes.Unload(h)
			m.Dispose(factory)
		})
	}
	if state.textures != nil {
		state.textures.Each(func(h components.TextureHandle, t *texture.Texture) {
			state.textures.Unload(h)
			t.Dispose(factory)
		})
	}
	return nil
}

// checkerPixels returns a size x size RGBA8 checkerboard.
func checkerPixels(size uint32) []byte {
	pixels := make([]byte, 0, size*size*4)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			v := byte(64)
			if (x+y)%2 == 0 {
				v = 255
			}
			pixels = append(pixels, v, v, v, 255)
		}
	}
	return pixels
}

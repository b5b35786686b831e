package engine

import (
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

// Game populates the world the engine renders and keeps it updated.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(world *ecs.World, factory gfx.Factory, framebuffer gfx.Extent) error
type Update func(world *ecs.World, deltaTime float64) error
type OnResize func(world *ecs.World, width uint32, height uint32) error
type Shutdown func(world *ecs.World, factory gfx.Factory) error

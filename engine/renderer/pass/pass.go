// Package pass holds the render groups the graph drives every frame: the
// shaded mesh pass and the skybox pass.
package pass

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/effect"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

// PrepareResult tells the graph whether the commands recorded for a frame
// slot can be replayed.
type PrepareResult uint8

const (
	DrawReuse PrepareResult = iota
	DrawRecord
)

func (r PrepareResult) String() string {
	if r == DrawRecord {
		return "record"
	}
	return "reuse"
}

// BuildContext is everything a group may use while it is built.
type BuildContext struct {
	Factory     gfx.Factory
	Queue       gfx.QueueID
	World       *ecs.World
	Subpass     gfx.Subpass
	Framebuffer gfx.Extent
	Shaders     shaders.Loader
}

// RenderGroupDesc describes a render group. Descriptors own no device
// objects and may be built any number of times.
type RenderGroupDesc interface {
	Build(ctx BuildContext) (RenderGroup, error)
}

// RenderGroup is a built group. Prepare and DrawInline are called for every
// frame with the frame slot index, Dispose once at shutdown.
type RenderGroup interface {
	Prepare(factory gfx.Factory, index uint32, world *ecs.World) PrepareResult
	DrawInline(enc gfx.Encoder, index uint32, world *ecs.World)
	Dispose(factory gfx.Factory, world *ecs.World)
}

// Pass is a group expressed as an effect: Compile declares its interface
// once and Apply draws with it every frame.
type Pass interface {
	Compile(n *effect.NewEffect) (*effect.Effect, error)
	Apply(enc gfx.Encoder, eff *effect.Effect, factory gfx.Factory, world *ecs.World)
}

// NewPassGroup adapts a Pass to the render group contract.
func NewPassGroup(p Pass) RenderGroupDesc {
	return passGroupDesc{pass: p}
}

type passGroupDesc struct {
	pass Pass
}

func (d passGroupDesc) Build(ctx BuildContext) (RenderGroup, error) {
	eff, err := d.pass.Compile(effect.New(ctx.Factory, ctx.Shaders, ctx.Subpass, ctx.Framebuffer))
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile pass")
	}
	return &passGroup{pass: d.pass, effect: eff, factory: ctx.Factory}, nil
}

type passGroup struct {
	pass     Pass
	effect   *effect.Effect
	factory  gfx.Factory
	disposed bool
}

// Prepare always asks for recording: Apply writes the frame data while it
// records.
func (g *passGroup) Prepare(factory gfx.Factory, index uint32, world *ecs.World) PrepareResult {
	return DrawRecord
}

func (g *passGroup) DrawInline(enc gfx.Encoder, index uint32, world *ecs.World) {
	if g.disposed {
		return
	}
	g.effect.Begin(index)
	g.pass.Apply(enc, g.effect, g.factory, world)
}

func (g *passGroup) Dispose(factory gfx.Factory, world *ecs.World) {
	if g.disposed {
		return
	}
	g.disposed = true
	g.effect.Dispose()
}

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/anima-render/engine/config"
	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/pass"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const (
	shadedGroup = "shaded"
	skyboxGroup = "skybox"
	maxGroups   = 8
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	backend      Backend
	world        *ecs.World
	graph        *systems.RenderGraph
	config       config.Config
	clock        *core.Clock
	lastTime     time.Duration
	frame        uint64
}

func New(g *Game, backend Backend) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - a game with an application config is required")
	}
	if err := g.ApplicationConfig.Render.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		backend:      backend,
		world:        ecs.NewWorld(),
		config:       g.ApplicationConfig.Render,
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(e.config.Level())
	core.LogInfo("initializing %s", e.gameInstance.ApplicationConfig.Name)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.world, e.backend.Factory(), e.config.Extent()); err != nil {
			return err
		}
	}
	if err := e.buildGraph(); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	return nil
}

type namedGroup struct {
	name string
	desc pass.RenderGroupDesc
}

// groups returns the render group descriptors enabled by the configuration,
// in draw order.
func groups(cfg config.Config) []namedGroup {
	var out []namedGroup
	if cfg.Shaded.Enabled {
		shaded := pass.NewDrawShadedSeparate().WithTransparency(cfg.Shaded.Transparency)
		if cfg.Shaded.Skinning {
			shaded = shaded.WithVertexSkinning()
		}
		out = append(out, namedGroup{shadedGroup, pass.NewPassGroup(shaded)})
	}
	if cfg.Skybox.Enabled {
		skybox := pass.NewDrawSkyboxDesc().WithColors(
			palette.SrgbFromArray(cfg.Skybox.NadirColor),
			palette.SrgbFromArray(cfg.Skybox.ZenithColor))
		out = append(out, namedGroup{skyboxGroup, skybox})
	}
	return out
}

func (e *Engine) buildGraph() error {
	graph, err := systems.NewRenderGraph(systems.RenderGraphConfig{MaxGroupCount: maxGroups})
	if err != nil {
		return err
	}
	for _, g := range groups(e.config) {
		if _, err := graph.Register(g.name, g.desc); err != nil {
			return err
		}
	}
	ctx := pass.BuildContext{
		Factory:     e.backend.Factory(),
		World:       e.world,
		Subpass:     e.backend.Subpass(),
		Framebuffer: e.config.Extent(),
		Shaders:     e.gameInstance.ApplicationConfig.Shaders(),
	}
	if err := graph.Build(ctx); err != nil {
		graph.Shutdown()
		return err
	}
	e.graph = graph
	return nil
}

// Frame updates the game and renders one frame.
func (e *Engine) Frame() (systems.FrameReport, error) {
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := (currentTime - e.lastTime).Seconds()
	e.lastTime = currentTime

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(e.world, delta); err != nil {
			return systems.FrameReport{}, err
		}
	}

	index := uint32(e.frame % uint64(e.config.FramesInFlight))
	enc, err := e.backend.BeginFrame(index)
	if err != nil {
		return systems.FrameReport{}, err
	}
	report, err := e.graph.RunFrame(enc, index)
	if err != nil {
		return systems.FrameReport{}, err
	}
	if err := e.backend.EndFrame(index); err != nil {
		return systems.FrameReport{}, err
	}
	e.frame++
	return report, nil
}

/**
 * @brief Renders frames until ctx is done, or until frames frames were
 * rendered when frames is not 0. Configurations received on updates are
 * applied between frames.
 */
func (e *Engine) Run(ctx context.Context, frames uint64, updates <-chan config.Config) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.lastTime = 0

	for rendered := uint64(0); frames == 0 || rendered < frames; rendered++ {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				break
			}
			if err := e.ApplyConfig(cfg); err != nil {
				core.LogError("configuration not applied: %s", err)
			}
		default:
		}

		if _, err := e.Frame(); err != nil {
			core.LogError("frame %d failed: %s", e.frame, err)
			return err
		}
	}
	fps, frameTime := e.graph.Metrics().Frame()
	core.LogInfo("rendered %d frames (%.0f fps, %.3f ms per frame)", e.frame, fps, frameTime)
	return nil
}

/**
 * @brief Applies a reloaded configuration. Skybox colours are handed to the
 * skybox pass as a SkyboxSettings resource, a framebuffer change resizes
 * the graph, and enabling or disabling passes rebuilds it.
 */
func (e *Engine) ApplyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	old := e.config
	e.config = cfg
	core.SetLogLevel(cfg.Level())

	if cfg.Skybox.NadirColor != old.Skybox.NadirColor || cfg.Skybox.ZenithColor != old.Skybox.ZenithColor {
		ecs.InsertResource(e.world, cfg.SkyboxSettings())
		core.LogInfo("skybox colours updated")
	}
	resized := cfg.Framebuffer != old.Framebuffer
	if resized && e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.world, cfg.Framebuffer.Width, cfg.Framebuffer.Height); err != nil {
			return err
		}
	}
	if cfg.Shaded != old.Shaded || cfg.Skybox.Enabled != old.Skybox.Enabled || cfg.ShaderDir != old.ShaderDir {
		e.gameInstance.ApplicationConfig.Render = cfg
		e.graph.Shutdown()
		return e.buildGraph()
	}
	if resized {
		return e.graph.Resize(cfg.Extent())
	}
	return nil
}

func (e *Engine) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogInfo("Framebuffer of zero size, keeping the current one.")
		return nil
	}
	core.LogDebug("Framebuffer resize: %d, %d", width, height)
	e.config.Framebuffer = config.Framebuffer{Width: width, Height: height}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.world, width, height); err != nil {
			return err
		}
	}
	return e.graph.Resize(e.config.Extent())
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.graph != nil {
		e.graph.Shutdown()
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(e.world, e.backend.Factory()); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

func (e *Engine) World() *ecs.World {
	return e.world
}

func (e *Engine) Graph() *systems.RenderGraph {
	return e.graph
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.config.Framebuffer.Width, e.config.Framebuffer.Height
}

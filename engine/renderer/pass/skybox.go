package pass

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
	"github.com/spaghettifunk/anima-render/engine/renderer/shape"
	"github.com/spaghettifunk/anima-render/engine/renderer/submodules"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

var (
	DefaultNadirColor  = palette.NewSrgb(0.1, 0.3, 0.35)
	DefaultZenithColor = palette.NewSrgb(0.75, 1.0, 1.0)
)

// SkyboxUniformArgs is the colour block of the skybox fragment program.
type SkyboxUniformArgs struct {
	NadirColor  mgl32.Vec3
	ZenithColor mgl32.Vec3
}

func (a SkyboxUniformArgs) Std140() []byte {
	return gfx.NewStd140(32).Vec3(a.NadirColor).Vec3(a.ZenithColor).EndStruct().Bytes()
}

func skyboxUniform(s components.SkyboxSettings) SkyboxUniformArgs {
	return SkyboxUniformArgs{NadirColor: s.NadirColor.Vec3(), ZenithColor: s.ZenithColor.Vec3()}
}

// DrawSkyboxDesc describes a gradient sky drawn behind everything else.
type DrawSkyboxDesc struct {
	defaultSettings components.SkyboxSettings
}

func NewDrawSkyboxDesc() DrawSkyboxDesc {
	return DrawSkyboxDesc{defaultSettings: components.NewSkyboxSettings(DefaultNadirColor, DefaultZenithColor)}
}

// WithColors sets the colours used when the world has no SkyboxSettings.
func (d DrawSkyboxDesc) WithColors(nadir, zenith palette.Srgb) DrawSkyboxDesc {
	d.defaultSettings = components.NewSkyboxSettings(nadir, zenith)
	return d
}

func (d DrawSkyboxDesc) DefaultSettings() components.SkyboxSettings {
	return d.defaultSettings
}

func (d DrawSkyboxDesc) Build(ctx BuildContext) (RenderGroup, error) {
	core.LogDebug("Building skybox pass")
	factory := ctx.Factory
	s := &DrawSkybox{defaultSettings: d.defaultSettings}

	var err error
	if s.env, err = submodules.NewFlatEnvironment(factory); err != nil {
		return nil, errors.Wrap(err, "failed to build skybox")
	}
	if s.colors, err = submodules.NewDynamicUniform[SkyboxUniformArgs](factory, gfx.StageFragment); err != nil {
		s.release(factory)
		return nil, errors.Wrap(err, "failed to build skybox colours")
	}
	if s.mesh, err = shape.Sphere(16, 16).PosTexBuilder().Build(factory, ctx.Queue); err != nil {
		s.release(factory)
		return nil, errors.Wrap(err, "failed to build skybox sphere")
	}
	if s.pipeline, s.layout, err = buildSkyboxPipeline(ctx, []gfx.DescriptorSetLayout{s.env.RawLayout(), s.colors.RawLayout()}); err != nil {
		s.release(factory)
		return nil, errors.Wrap(err, "failed to build skybox pipeline")
	}
	return s, nil
}

func buildSkyboxPipeline(ctx BuildContext, layouts []gfx.DescriptorSetLayout) (gfx.Pipeline, gfx.PipelineLayout, error) {
	factory := ctx.Factory
	layout, err := factory.CreatePipelineLayout(layouts, nil)
	if err != nil {
		return 0, 0, err
	}

	vs, err := loadShaderModule(ctx, shaders.SkyboxVertex)
	if err != nil {
		factory.DestroyPipelineLayout(layout)
		return 0, 0, err
	}
	fs, err := loadShaderModule(ctx, shaders.SkyboxFragment)
	if err != nil {
		factory.DestroyShaderModule(vs)
		factory.DestroyPipelineLayout(layout)
		return 0, 0, err
	}

	pipeline, err := factory.CreateGraphicsPipeline(&gfx.PipelineDesc{
		Layout: layout,
		Shaders: []gfx.ShaderStageDesc{
			{Stage: gfx.StageVertex, Module: vs, Entry: "main"},
			{Stage: gfx.StageFragment, Module: fs, Entry: "main"},
		},
		VertexBuffers: []gfx.VertexBufferDesc{{Binding: 0, Format: vertex.PosTex.Format(), Rate: gfx.RateVertex}},
		Topology:      gfx.TopologyTriangleList,
		Cull:          gfx.CullNone,
		Depth:         &gfx.DepthTest{Fun: gfx.CompareLessEqual, Write: false},
		Blends:        []gfx.ColorBlend{{Mask: gfx.ColorMaskAll}},
		Subpass:       ctx.Subpass,
		Framebuffer:   ctx.Framebuffer,
	})
	factory.DestroyShaderModule(vs)
	factory.DestroyShaderModule(fs)
	if err != nil {
		factory.DestroyPipelineLayout(layout)
		return 0, 0, err
	}
	return pipeline, layout, nil
}

func loadShaderModule(ctx BuildContext, p shaders.Program) (gfx.ShaderModule, error) {
	code, err := ctx.Shaders.Load(p)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load %s", p.Name)
	}
	return ctx.Factory.CreateShaderModule(code)
}

// DrawSkybox is a built skybox group.
type DrawSkybox struct {
	pipeline        gfx.Pipeline
	layout          gfx.PipelineLayout
	env             *submodules.FlatEnvironment
	colors          *submodules.DynamicUniform[SkyboxUniformArgs]
	mesh            *mesh.Mesh
	defaultSettings components.SkyboxSettings
	disposed        bool
}

// Prepare writes the camera and the colours of frame index. The commands
// must be recorded again only when the colours changed.
func (s *DrawSkybox) Prepare(factory gfx.Factory, index uint32, world *ecs.World) PrepareResult {
	if s.disposed {
		return DrawReuse
	}
	settings := ecs.ResourceOr(world, s.defaultSettings)
	s.env.Process(factory, index, world)
	if s.colors.Write(factory, index, skyboxUniform(settings)) {
		return DrawRecord
	}
	return DrawReuse
}

func (s *DrawSkybox) DrawInline(enc gfx.Encoder, index uint32, world *ecs.World) {
	if s.disposed {
		return
	}
	enc.BindPipeline(s.pipeline)
	s.env.Bind(enc, s.layout, 0, index)
	s.colors.Bind(enc, s.layout, 1, index)
	if !s.mesh.Bind(enc, 0, vertex.PosTex) {
		return
	}
	enc.Draw(gfx.Range{Start: 0, End: s.mesh.Len()}, gfx.Range{Start: 0, End: 1})
}

// Dispose releases the pipeline, its layout and the resources the group
// owns. Later calls do nothing.
func (s *DrawSkybox) Dispose(factory gfx.Factory, world *ecs.World) {
	if s.disposed {
		return
	}
	s.disposed = true
	s.release(factory)
}

func (s *DrawSkybox) release(factory gfx.Factory) {
	if s.pipeline != 0 {
		factory.DestroyPipeline(s.pipeline)
	}
	if s.layout != 0 {
		factory.DestroyPipelineLayout(s.layout)
	}
	s.pipeline, s.layout = 0, 0
	if s.mesh != nil {
		s.mesh.Dispose(factory)
		s.mesh = nil
	}
	if s.colors != nil {
		s.colors.Dispose(factory)
		s.colors = nil
	}
	if s.env != nil {
		s.env.Dispose(factory)
		s.env = nil
	}
}

var (
	_ RenderGroupDesc = DrawSkyboxDesc{}
	_ RenderGroup     = (*DrawSkybox)(nil)
)

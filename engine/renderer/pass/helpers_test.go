package pass

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/assets"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
	"github.com/spaghettifunk/anima-render/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
	"github.com/spaghettifunk/anima-render/engine/renderer/shape"
	"github.com/spaghettifunk/anima-render/engine/renderer/texture"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

type scene struct {
	t        *testing.T
	factory  *record.Factory
	world    *ecs.World
	meshes   *assets.Storage[mesh.Mesh]
	textures *assets.Storage[texture.Texture]
	defaults components.MaterialDefaults
}

func newScene(t *testing.T) *scene {
	t.Helper()
	s := &scene{
		t:        t,
		factory:  record.NewFactory(),
		world:    ecs.NewWorld(),
		meshes:   assets.NewStorage[mesh.Mesh](),
		textures: assets.NewStorage[texture.Texture](),
	}
	s.defaults = components.MaterialDefaults{
		Material: components.NewMaterial(s.texture(palette.White), s.texture(palette.Black)),
	}
	ecs.InsertResource(s.world, s.meshes)
	ecs.InsertResource(s.world, s.textures)
	ecs.InsertResource(s.world, s.defaults)
	return s
}

func (s *scene) ctx() BuildContext {
	return BuildContext{
		Factory:     s.factory,
		World:       s.world,
		Framebuffer: gfx.Extent{Width: 800, Height: 600},
		Shaders:     shaders.SourceLoader{},
	}
}

func (s *scene) build(desc RenderGroupDesc) RenderGroup {
	s.t.Helper()
	g, err := desc.Build(s.ctx())
	if err != nil {
		s.t.Fatal(err)
	}
	return g
}

// frame prepares and records one frame of g.
func (s *scene) frame(g RenderGroup, index uint32) *record.Encoder {
	enc := record.NewEncoder(s.factory)
	g.Prepare(s.factory, index, s.world)
	g.DrawInline(enc, index, s.world)
	return enc
}

func (s *scene) texture(c palette.Rgba) components.TextureHandle {
	s.t.Helper()
	tex, err := texture.SolidColor(s.factory, 0, c)
	if err != nil {
		s.t.Fatal(err)
	}
	return s.textures.Insert(tex)
}

func (s *scene) mesh(b *mesh.Builder) components.MeshHandle {
	s.t.Helper()
	m, err := b.Build(s.factory, 0)
	if err != nil {
		s.t.Fatal(err)
	}
	return s.meshes.Insert(m)
}

func (s *scene) cube() components.MeshHandle {
	return s.mesh(shape.Cube(1, 1, 1, 1, 1).SeparateBuilder())
}

// drawable creates an entity with a cube mesh, the default material and a
// transform at position.
func (s *scene) drawable(position mgl32.Vec3) (ecs.Entity, components.MeshHandle) {
	e := s.world.Create()
	h := s.cube()
	ecs.Insert(s.world, e, h)
	ecs.Insert(s.world, e, s.defaults.Material)
	ecs.Insert(s.world, e, components.NewTransformAt(position))
	return e, h
}

func (s *scene) positionBuffer(h components.MeshHandle) gfx.Buffer {
	b, _ := s.meshes.Get(h).Buffer(vertex.Position)
	return b
}

// drawnMeshes maps every draw to the mesh whose position buffer it used.
func (s *scene) drawnMeshes(enc *record.Encoder, handles ...components.MeshHandle) []components.MeshHandle {
	byBuffer := make(map[gfx.Buffer]components.MeshHandle, len(handles))
	for _, h := range handles {
		byBuffer[s.positionBuffer(h)] = h
	}
	var out []components.MeshHandle
	for _, d := range enc.Draws() {
		out = append(out, byBuffer[d.State.VertexBuffers[0]])
	}
	return out
}

func (s *scene) expectClean(g RenderGroup) {
	s.t.Helper()
	g.Dispose(s.factory, s.world)
	s.meshes.Each(func(_ components.MeshHandle, m *mesh.Mesh) { m.Dispose(s.factory) })
	s.textures.Each(func(_ components.TextureHandle, t *texture.Texture) { t.Dispose(s.factory) })
	if n := s.factory.Leaks(); n != 0 {
		s.t.Fatalf("leaked %d objects", n)
	}
	if m := s.factory.Misuse(); len(m) != 0 {
		s.t.Fatalf("misuse: %v", m)
	}
}

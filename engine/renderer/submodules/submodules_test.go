package submodules

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
)

type colors struct {
	nadir  mgl32.Vec3
	zenith mgl32.Vec3
}

func (c colors) Std140() []byte {
	return gfx.NewStd140(32).Vec3(c.nadir).Vec3(c.zenith).EndStruct().Bytes()
}

func TestDynamicUniformWrite(t *testing.T) {
	f := record.NewFactory()
	u, err := NewDynamicUniform[colors](f, gfx.StageFragment)
	if err != nil {
		t.Fatal(err)
	}

	a := colors{nadir: mgl32.Vec3{0.1, 0.3, 0.35}, zenith: mgl32.Vec3{0.75, 1, 1}}
	b := colors{nadir: mgl32.Vec3{1, 0, 0}, zenith: mgl32.Vec3{0, 0, 1}}

	steps := []struct {
		index uint32
		value colors
		want  bool
	}{
		{0, colors{}, true},
		{0, colors{}, false},
		{0, a, true},
		{0, a, false},
		{1, a, true},
		{1, b, true},
		{0, a, false},
		{gfx.MaxFramesInFlight, a, false},
	}
	for i, s := range steps {
		if got := u.Write(f, s.index, s.value); got != s.want {
			t.Fatalf("step %d: Write(%d) = %v, want %v", i, s.index, got, s.want)
		}
	}

	if got := f.Live(record.KindBuffer); got != gfx.MaxFramesInFlight {
		t.Fatalf("live buffers = %d, want %d", got, gfx.MaxFramesInFlight)
	}
	u.Dispose(f)
	if f.Leaks() != 0 || len(f.Misuse()) != 0 {
		t.Fatalf("after dispose: leaks=%d misuse=%v", f.Leaks(), f.Misuse())
	}
}

func TestDynamicUniformBind(t *testing.T) {
	f := record.NewFactory()
	u, err := NewDynamicUniform[colors](f, gfx.StageFragment)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Dispose(f)

	want := colors{nadir: mgl32.Vec3{1, 2, 3}, zenith: mgl32.Vec3{4, 5, 6}}
	u.Write(f, 2, want)

	enc := record.NewEncoder(f)
	u.Bind(enc, 0, 1, 2)
	enc.Draw(gfx.Range{End: 3}, gfx.Range{End: 1})

	block := enc.Draws()[0].State.Uniform(1, 0)
	if len(block) != 32 {
		t.Fatalf("uniform size = %d, want 32", len(block))
	}
	if got := gfx.Float32At(block, 16); got != 4 {
		t.Fatalf("zenith.x = %v, want 4", got)
	}
}

func TestDynamicUniformReleasesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	f := record.NewFactory()
	f.FailAfter(record.KindDescriptorSet, 1, boom)

	if _, err := NewDynamicUniform[colors](f, gfx.StageFragment); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if f.Leaks() != 0 {
		t.Fatalf("leaks = %d", f.Leaks())
	}
}

func TestGatherCamera(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *ecs.World) ecs.Entity
	}{
		{
			name:  "no camera",
			setup: func(w *ecs.World) ecs.Entity { return ecs.Null },
		},
		{
			name: "first joined camera",
			setup: func(w *ecs.World) ecs.Entity {
				loose := w.Create()
				ecs.Insert(w, loose, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
				e := w.Create()
				ecs.Insert(w, e, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
				ecs.Insert(w, e, components.NewTransformAt(mgl32.Vec3{0, 0, 5}))
				return e
			},
		},
		{
			name: "active camera",
			setup: func(w *ecs.World) ecs.Entity {
				first := w.Create()
				ecs.Insert(w, first, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
				ecs.Insert(w, first, components.NewTransform())
				e := w.Create()
				ecs.Insert(w, e, components.StandardCamera(gfx.Extent{Width: 16, Height: 9}))
				ecs.Insert(w, e, components.NewTransformAt(mgl32.Vec3{1, 2, 3}))
				ecs.InsertResource(w, components.ActiveCamera{Entity: e})
				return e
			},
		},
		{
			name: "active camera without transform",
			setup: func(w *ecs.World) ecs.Entity {
				e := w.Create()
				ecs.Insert(w, e, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
				ecs.Insert(w, e, components.NewTransformAt(mgl32.Vec3{0, 1, 0}))
				broken := w.Create()
				ecs.Insert(w, broken, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
				ecs.InsertResource(w, components.ActiveCamera{Entity: broken})
				return e
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			want := tt.setup(w)
			got := GatherCamera(w)
			if got.Entity != want {
				t.Fatalf("camera entity = %d, want %d", got.Entity, want)
			}
			if want == ecs.Null {
				if !got.Proj.ApproxEqual(mgl32.Ident4()) || !got.View.ApproxEqual(mgl32.Ident4()) {
					t.Fatal("fallback view is not identity")
				}
				return
			}
			tr, _ := ecs.Components[components.Transform](w).Get(want)
			cam, _ := ecs.Components[components.Camera](w).Get(want)
			if !got.View.ApproxEqual(tr.View()) || !got.Proj.ApproxEqual(cam.Proj) {
				t.Fatal("camera matrices do not match the entity")
			}
			if !got.Position.ApproxEqual(tr.Translation) {
				t.Fatalf("position = %v, want %v", got.Position, tr.Translation)
			}
		})
	}
}

func TestFlatEnvironmentProcess(t *testing.T) {
	f := record.NewFactory()
	env, err := NewFlatEnvironment(f)
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	e := w.Create()
	ecs.Insert(w, e, components.StandardCamera(gfx.Extent{Width: 4, Height: 3}))
	ecs.Insert(w, e, components.NewTransformAt(mgl32.Vec3{0, 0, 5}))

	if !env.Process(f, 0, w) {
		t.Fatal("first Process did not report a change")
	}
	if env.Process(f, 0, w) {
		t.Fatal("unchanged camera reported a change")
	}
	ecs.Insert(w, e, components.NewTransformAt(mgl32.Vec3{0, 0, 6}))
	if !env.Process(f, 0, w) {
		t.Fatal("moved camera did not report a change")
	}

	enc := record.NewEncoder(f)
	env.Bind(enc, 0, 0, 0)
	enc.Draw(gfx.Range{End: 3}, gfx.Range{End: 1})
	block := enc.Draws()[0].State.Uniform(0, 0)
	if got := gfx.Float32At(block, 136); got != 6 {
		t.Fatalf("camera_position.z = %v, want 6", got)
	}

	env.Dispose(f)
	if f.Leaks() != 0 {
		t.Fatalf("leaks = %d", f.Leaks())
	}
}

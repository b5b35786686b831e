package systems

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/ecs"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
	"github.com/spaghettifunk/anima-render/engine/renderer/pass"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

// stubDesc builds stubGroups that append to a shared call log.
type stubDesc struct {
	name   string
	calls  *[]string
	err    error
	result pass.PrepareResult
}

func (d stubDesc) Build(ctx pass.BuildContext) (pass.RenderGroup, error) {
	*d.calls = append(*d.calls, "build "+d.name)
	if d.err != nil {
		return nil, d.err
	}
	return &stubGroup{desc: d}, nil
}

type stubGroup struct {
	desc stubDesc
}

func (g *stubGroup) Prepare(factory gfx.Factory, index uint32, world *ecs.World) pass.PrepareResult {
	*g.desc.calls = append(*g.desc.calls, "prepare "+g.desc.name)
	return g.desc.result
}

func (g *stubGroup) DrawInline(enc gfx.Encoder, index uint32, world *ecs.World) {
	*g.desc.calls = append(*g.desc.calls, "draw "+g.desc.name)
}

func (g *stubGroup) Dispose(factory gfx.Factory, world *ecs.World) {
	*g.desc.calls = append(*g.desc.calls, "dispose "+g.desc.name)
}

func newGraph(t *testing.T) *RenderGraph {
	t.Helper()
	rg, err := NewRenderGraph(RenderGraphConfig{MaxGroupCount: 4})
	if err != nil {
		t.Fatal(err)
	}
	return rg
}

func buildContext(f *record.Factory) pass.BuildContext {
	return pass.BuildContext{
		Factory:     f,
		World:       ecs.NewWorld(),
		Framebuffer: gfx.Extent{Width: 800, Height: 600},
		Shaders:     shaders.SourceLoader{},
	}
}

func TestNewRenderGraphRequiresCapacity(t *testing.T) {
	if _, err := NewRenderGraph(RenderGraphConfig{}); err == nil {
		t.Fatal("expected an error for a zero group count")
	}
}

func TestRegister(t *testing.T) {
	var calls []string
	rg, err := NewRenderGraph(RenderGraphConfig{MaxGroupCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	first, err := rg.Register("a", stubDesc{name: "a", calls: &calls})
	if err != nil {
		t.Fatal(err)
	}
	second, err := rg.Register("b", stubDesc{name: "b", calls: &calls})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("groups share an id")
	}

	tests := []struct {
		name      string
		group     string
		desc      pass.RenderGroupDesc
		duplicate bool
	}{
		{"duplicate", "a", stubDesc{name: "a", calls: &calls}, true},
		{"empty name", "", stubDesc{calls: &calls}, false},
		{"nil descriptor", "c", nil, false},
		{"full", "c", stubDesc{name: "c", calls: &calls}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rg.Register(tt.group, tt.desc)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, core.ErrDuplicateGroup); got != tt.duplicate {
				t.Fatalf("errors.Is(ErrDuplicateGroup) = %v for %v", got, err)
			}
		})
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(rg.Groups(), want) {
		t.Fatalf("Groups = %v, want %v", rg.Groups(), want)
	}
}

func TestRunFrameOrder(t *testing.T) {
	var calls []string
	rg := newGraph(t)
	rg.Register("sky", stubDesc{name: "sky", calls: &calls, result: pass.DrawReuse})
	rg.Register("mesh", stubDesc{name: "mesh", calls: &calls, result: pass.DrawRecord})

	if _, err := rg.RunFrame(nil, 0); err == nil {
		t.Fatal("RunFrame before Build should fail")
	}
	if err := rg.Build(buildContext(record.NewFactory())); err != nil {
		t.Fatal(err)
	}
	report, err := rg.RunFrame(nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"build sky", "build mesh", "prepare sky", "draw sky", "prepare mesh", "draw mesh"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	if report.Index != 1 || report.Redraws() != 1 || len(report.Groups) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if m := rg.Metrics(); m.Redraws != 1 || m.Reuses != 1 {
		t.Fatalf("metrics redraws=%d reuses=%d", m.Redraws, m.Reuses)
	}
	if _, err := rg.RunFrame(nil, gfx.MaxFramesInFlight); err == nil {
		t.Fatal("expected an error for an out of range frame index")
	}
}

func TestBuildFailureDisablesGroup(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	rg := newGraph(t)
	rg.Register("broken", stubDesc{name: "broken", calls: &calls, err: boom})
	rg.Register("mesh", stubDesc{name: "mesh", calls: &calls, result: pass.DrawRecord})

	if err := rg.Build(buildContext(record.NewFactory())); err != nil {
		t.Fatal(err)
	}
	if err := rg.Err("broken"); !errors.Is(err, boom) {
		t.Fatalf("Err(broken) = %v", err)
	}
	if err := rg.Err("mesh"); err != nil {
		t.Fatalf("Err(mesh) = %v", err)
	}
	if rg.Err("missing") == nil {
		t.Fatal("expected an error for an unregistered group")
	}
	report, err := rg.RunFrame(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 1 || report.Groups[0].Name != "mesh" {
		t.Fatalf("report = %+v", report)
	}
}

func TestBuildWithoutUsableGroups(t *testing.T) {
	var calls []string
	rg := newGraph(t)
	rg.Register("broken", stubDesc{name: "broken", calls: &calls, err: errors.New("boom")})
	if err := rg.Build(buildContext(record.NewFactory())); !errors.Is(err, core.ErrNoGroupsBuilt) {
		t.Fatalf("err = %v", err)
	}

	empty := newGraph(t)
	if err := empty.Build(buildContext(record.NewFactory())); err != nil {
		t.Fatalf("empty graph: %v", err)
	}
}

func TestResizeAndShutdown(t *testing.T) {
	var calls []string
	rg := newGraph(t)
	rg.Register("mesh", stubDesc{name: "mesh", calls: &calls})
	if err := rg.Resize(gfx.Extent{Width: 1, Height: 1}); err == nil {
		t.Fatal("Resize before Build should fail")
	}
	if err := rg.Build(buildContext(record.NewFactory())); err != nil {
		t.Fatal(err)
	}
	if err := rg.Resize(gfx.Extent{Width: 1024, Height: 768}); err != nil {
		t.Fatal(err)
	}
	rg.Shutdown()
	rg.Shutdown()
	want := []string{"build mesh", "dispose mesh", "build mesh", "dispose mesh"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
}

func TestGraphWithPasses(t *testing.T) {
	f := record.NewFactory()
	rg := newGraph(t)
	if _, err := rg.Register("skybox", pass.NewDrawSkyboxDesc()); err != nil {
		t.Fatal(err)
	}
	if _, err := rg.Register("shaded", pass.NewPassGroup(pass.NewDrawShadedSeparate())); err != nil {
		t.Fatal(err)
	}
	if err := rg.Build(buildContext(f)); err != nil {
		t.Fatal(err)
	}

	// The skybox records once per frame slot and then reuses; the shaded
	// pass records every frame.
	wantRedraws := []int{2, 2, 2, 1, 1}
	for frame, want := range wantRedraws {
		enc := record.NewEncoder(f)
		report, err := rg.RunFrame(enc, uint32(frame%gfx.MaxFramesInFlight))
		if err != nil {
			t.Fatal(err)
		}
		if got := report.Redraws(); got != want {
			t.Fatalf("frame %d: redraws = %d, want %d", frame, got, want)
		}
		if n := len(enc.Draws()); n != 1 {
			t.Fatalf("frame %d: %d draws, want the skybox only", frame, n)
		}
	}

	if err := rg.Resize(gfx.Extent{Width: 320, Height: 200}); err != nil {
		t.Fatal(err)
	}
	enc := record.NewEncoder(f)
	if _, err := rg.RunFrame(enc, 0); err != nil {
		t.Fatal(err)
	}
	desc, ok := f.Pipeline(enc.Draws()[0].State.Pipeline)
	if !ok {
		t.Fatal("draw used an unknown pipeline")
	}
	if desc.Framebuffer != (gfx.Extent{Width: 320, Height: 200}) {
		t.Fatalf("framebuffer = %+v after resize", desc.Framebuffer)
	}

	rg.Shutdown()
	if n := f.Leaks(); n != 0 {
		t.Fatalf("%d device objects leaked", n)
	}
}

package testbed

import (
	"context"
	"testing"

	"github.com/spaghettifunk/anima-render/engine"
	"github.com/spaghettifunk/anima-render/engine/config"
)

func runScene(t *testing.T, cfg config.Config, frames uint64) *engine.HeadlessBackend {
	t.Helper()
	backend := engine.NewHeadlessBackend()
	game := NewTestGame(cfg)
	e, err := engine.New(game.Game, backend)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	game.State.(*gameState).jobs.Flush()
	if err := e.Run(context.Background(), frames, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.OnResize(800, 600); err != nil {
		t.Fatal(err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if n := backend.Recorder().Leaks(); n != 0 {
		t.Fatalf("%d device objects leaked", n)
	}
	return backend
}

func TestSceneDraws(t *testing.T) {
	tests := []struct {
		name  string
		cfg   func() config.Config
		draws int
	}{
		{
			name:  "shaded and skybox",
			cfg:   config.Default,
			draws: 6,
		},
		{
			name: "skybox only",
			cfg: func() config.Config {
				cfg := config.Default()
				cfg.Shaded.Enabled = false
				return cfg
			},
			draws: 1,
		},
		{
			// The scene meshes carry no joint streams.
			name: "skinning",
			cfg: func() config.Config {
				cfg := config.Default()
				cfg.Shaded.Skinning = true
				return cfg
			},
			draws: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := runScene(t, tt.cfg(), 4)
			// The fourth frame reused slot 0.
			if got := len(backend.Encoder(0).Draws()); got != tt.draws {
				t.Fatalf("draws = %d, want %d", got, tt.draws)
			}
		})
	}
}

func TestStreamedAssetsFallBack(t *testing.T) {
	backend := engine.NewHeadlessBackend()
	game := NewTestGame(config.Default())
	e, err := engine.New(game.Game, backend)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	state := game.State.(*gameState)
	// Nothing was handed to Update yet, so the sphere is missing.
	if state.jobs.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", state.jobs.Pending())
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if state.jobs.Pending() != 0 {
		t.Fatalf("pending = %d after shutdown", state.jobs.Pending())
	}
	if n := backend.Recorder().Leaks(); n != 0 {
		t.Fatalf("%d device objects leaked", n)
	}
}

func TestCheckerPixels(t *testing.T) {
	pixels := checkerPixels(2)
	want := []byte{
		255, 255, 255, 255, 64, 64, 64, 255,
		64, 64, 64, 255, 255, 255, 255, 255,
	}
	if string(pixels) != string(want) {
		t.Fatalf("pixels = %v, want %v", pixels, want)
	}
}

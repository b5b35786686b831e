package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

const full = `
log_level = "debug"
frames_in_flight = 2
shader_dir = "build/shaders"

[framebuffer]
width = 640
height = 480

[shaded]
enabled = true
skinning = true
transparency = false

[skybox]
enabled = false
nadir_color = [0.0, 0.0, 0.0]
zenith_color = [1.0, 1.0, 1.0]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(full))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		LogLevel:       "debug",
		FramesInFlight: 2,
		ShaderDir:      "build/shaders",
		Framebuffer:    Framebuffer{Width: 640, Height: 480},
		Shaded:         Shaded{Enabled: true, Skinning: true},
		Skybox:         Skybox{NadirColor: [3]float32{0, 0, 0}, ZenithColor: [3]float32{1, 1, 1}},
	}
	if cfg != want {
		t.Fatalf("Parse = %+v, want %+v", cfg, want)
	}
	if cfg.Level() != core.DebugLevel {
		t.Fatalf("Level = %s", cfg.Level())
	}
	if cfg.Extent() != (gfx.Extent{Width: 640, Height: 480}) {
		t.Fatalf("Extent = %+v", cfg.Extent())
	}
	if got := cfg.SkyboxSettings().ZenithColor; got != palette.NewSrgb(1, 1, 1) {
		t.Fatalf("zenith = %+v", got)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("[framebuffer]\nwidth = 320\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Framebuffer.Width = 320
	if cfg != want {
		t.Fatalf("Parse = %+v, want %+v", cfg, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"malformed", "log_level = ", false},
		{"unknown key", "colour = 1", false},
		{"log level", `log_level = "loud"`, true},
		{"no frames", "frames_in_flight = 0", true},
		{"too many frames", "frames_in_flight = 4", true},
		{"empty framebuffer", "[framebuffer]\nwidth = 0", true},
		{"colour range", "[skybox]\nnadir_color = [0.0, 2.0, 0.0]", true},
		{"negative colour", "[skybox]\nzenith_color = [-0.5, 0.0, 0.0]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, core.ErrInvalidConfig); got != tt.invalid {
				t.Fatalf("errors.Is(ErrInvalidConfig) = %v for %v", got, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	if err := os.WriteFile(path, []byte(full), 0o644); err != nil {
		t.Fatal(err)
	}
	initial, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, initial)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(full+"\n# same values\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := []byte("[skybox]\nnadir_color = [1.0, 0.0, 0.0]\n")
	if err := os.WriteFile(path, changed, 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Skybox.NadirColor == [3]float32{1, 0, 0} {
				cancel()
				for range updates {
				}
				return
			}
		case <-timeout:
			t.Fatal("no reload within 5s")
		}
	}
}

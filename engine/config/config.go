// Package config loads the TOML render configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

type Framebuffer struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Shaded struct {
	Enabled      bool `toml:"enabled"`
	Skinning     bool `toml:"skinning"`
	Transparency bool `toml:"transparency"`
}

type Skybox struct {
	Enabled     bool       `toml:"enabled"`
	NadirColor  [3]float32 `toml:"nadir_color"`
	ZenithColor [3]float32 `toml:"zenith_color"`
}

// Config is the render configuration. Keys missing from a file keep their
// Default values. An empty ShaderDir selects the embedded shader sources
// instead of compiled SPIR-V.
type Config struct {
	LogLevel       string      `toml:"log_level"`
	FramesInFlight int         `toml:"frames_in_flight"`
	ShaderDir      string      `toml:"shader_dir"`
	Framebuffer    Framebuffer `toml:"framebuffer"`
	Shaded         Shaded      `toml:"shaded"`
	Skybox         Skybox      `toml:"skybox"`
}

func Default() Config {
	return Config{
		LogLevel:       "info",
		FramesInFlight: gfx.MaxFramesInFlight,
		Framebuffer:    Framebuffer{Width: 1280, Height: 720},
		Shaded:         Shaded{Enabled: true, Transparency: true},
		Skybox: Skybox{
			Enabled:     true,
			NadirColor:  [3]float32{0.1, 0.3, 0.35},
			ZenithColor: [3]float32{0.75, 1.0, 1.0},
		},
	}
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode render configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid configuration in %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, core.ErrInvalidConfig)
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > gfx.MaxFramesInFlight {
		return fmt.Errorf("frames_in_flight must be in [1, %d], got %d: %w", gfx.MaxFramesInFlight, c.FramesInFlight, core.ErrInvalidConfig)
	}
	if c.Framebuffer.Width == 0 || c.Framebuffer.Height == 0 {
		return fmt.Errorf("framebuffer %dx%d: %w", c.Framebuffer.Width, c.Framebuffer.Height, core.ErrInvalidConfig)
	}
	for name, color := range map[string][3]float32{"nadir_color": c.Skybox.NadirColor, "zenith_color": c.Skybox.ZenithColor} {
		for _, ch := range color {
			if ch < 0 || ch > 1 {
				return fmt.Errorf("skybox %s %v out of [0, 1]: %w", name, color, core.ErrInvalidConfig)
			}
		}
	}
	return nil
}

// Level returns the parsed log level. The configuration is assumed valid.
func (c Config) Level() core.LogLevel {
	level, _ := core.ParseLogLevel(c.LogLevel)
	return level
}

func (c Config) Extent() gfx.Extent {
	return gfx.Extent{Width: c.Framebuffer.Width, Height: c.Framebuffer.Height}
}

func (c Config) SkyboxSettings() components.SkyboxSettings {
	return components.NewSkyboxSettings(palette.SrgbFromArray(c.Skybox.NadirColor), palette.SrgbFromArray(c.Skybox.ZenithColor))
}

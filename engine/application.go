package engine

import (
	"github.com/spaghettifunk/anima-render/engine/config"
	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name   string
	Render config.Config
}

// Shaders selects the compiled SPIR-V when a shader directory is configured
// and the embedded sources otherwise.
func (c *ApplicationConfig) Shaders() shaders.Loader {
	if c.Render.ShaderDir != "" {
		return shaders.SPIRVLoader{Dir: c.Render.ShaderDir}
	}
	return shaders.SourceLoader{}
}

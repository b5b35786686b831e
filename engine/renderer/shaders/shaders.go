// Package shaders ships the built-in GLSL programs and loads their compiled
// SPIR-V form.
package shaders

import (
	"embed"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

type Program struct {
	Name  string
	Stage gfx.ShaderStage
}

var (
	ShadedVertex   = Program{Name: "shaded.vert", Stage: gfx.StageVertex}
	SkinnedVertex  = Program{Name: "skinned.vert", Stage: gfx.StageVertex}
	ShadedFragment = Program{Name: "shaded.frag", Stage: gfx.StageFragment}
	SkyboxVertex   = Program{Name: "skybox.vert", Stage: gfx.StageVertex}
	SkyboxFragment = Program{Name: "skybox.frag", Stage: gfx.StageFragment}
)

// Programs lists every built-in program.
func Programs() []Program {
	return []Program{ShadedVertex, SkinnedVertex, ShadedFragment, SkyboxVertex, SkyboxFragment}
}

// Source returns the GLSL text of a built-in program.
func Source(p Program) ([]byte, error) {
	data, err := sources.ReadFile("glsl/" + p.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, core.ErrShaderNotFound)
	}
	return data, nil
}

// SPIRVName is the file name the compiled form of p is stored under.
func (p Program) SPIRVName() string {
	return p.Name + ".spv"
}

// Loader resolves a program to the code handed to Factory.CreateShaderModule.
type Loader interface {
	Load(p Program) ([]byte, error)
}

// SourceLoader returns the embedded GLSL text. Only backends that do not
// consume SPIR-V, like the recording backend, accept it.
type SourceLoader struct{}

func (SourceLoader) Load(p Program) ([]byte, error) {
	return Source(p)
}

// SPIRVLoader reads programs compiled by `mage build:shaders` from Dir.
type SPIRVLoader struct {
	Dir string
}

func (l SPIRVLoader) Load(p Program) ([]byte, error) {
	path := filepath.Join(l.Dir, p.SPIRVName())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, core.ErrShaderNotFound)
		}
		return nil, err
	}
	if !IsSPIRV(data) {
		return nil, fmt.Errorf("%s: %w", path, core.ErrNotSPIRV)
	}
	return data, nil
}

// IsSPIRV checks the module header and word alignment.
func IsSPIRV(code []byte) bool {
	if len(code) < 20 || len(code)%4 != 0 {
		return false
	}
	return binary.LittleEndian.Uint32(code) == SPIRVMagic
}

//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/anima-render/engine/renderer/shaders"
)

const (
	shaderSourceDir = "engine/renderer/shaders/glsl"
	shaderOutputDir = "build/shaders"
)

type Build mg.Namespace

// Compiles every built-in GLSL program to SPIR-V under build/shaders.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the render binary.
func (Build) Render() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "build/anima-render", "."), withStream())
	return err
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	for _, p := range shaders.Programs() {
		src := filepath.Join(shaderSourceDir, p.Name)
		out := filepath.Join(shaderOutputDir, p.SPIRVName())
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

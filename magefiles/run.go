//go:build mage

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and renders the testbed scene. RENDER_FRAMES sets the
// frame count (default 300) and RENDER_CONFIG an optional TOML configuration.
func (Run) Demo() error {
	if err := buildShaders(); err != nil {
		return err
	}
	frames := 300
	if v := os.Getenv("RENDER_FRAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RENDER_FRAMES %q: %w", v, err)
		}
		frames = n
	}
	args := []string{"run", ".", "-frames", strconv.Itoa(frames)}
	if path := os.Getenv("RENDER_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Tidies the module.
func (Run) Tidy() error {
	return goTidy()
}

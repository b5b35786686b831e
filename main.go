/*
This is an example of application that will use the
engine package to render the testbed scene headless
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-render/engine"
	"github.com/spaghettifunk/anima-render/engine/config"
	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML render configuration")
	frames := flag.Uint64("frames", 0, "number of frames to render, 0 renders until interrupted")
	watch := flag.Bool("watch", false, "reload the configuration when the file changes")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			core.LogFatal("failed to load configuration: %s", err)
		}
		cfg = c
	}

	// capture sigterm and other system calls to stop rendering
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	backend := engine.NewHeadlessBackend()
	e, err := engine.New(testbed.NewTestGame(cfg).Game, backend)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err)
	}

	var updates <-chan config.Config
	if *watch && *configPath != "" {
		updates, err = config.Watch(ctx, *configPath, cfg)
		if err != nil {
			core.LogError("configuration will not be reloaded: %s", err)
		}
	}

	runErr := e.Run(ctx, *frames, updates)
	core.LogInfo("last frame: %s", backend.LastSummary())
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if n := backend.Recorder().Leaks(); n != 0 {
		core.LogWarn("%d device objects were not released", n)
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}

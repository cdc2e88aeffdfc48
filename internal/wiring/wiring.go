// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ecow/internal/adapters/cas"
	_ "go.trai.ch/ecow/internal/adapters/config"
	_ "go.trai.ch/ecow/internal/adapters/fs"
	_ "go.trai.ch/ecow/internal/adapters/linear"
	_ "go.trai.ch/ecow/internal/adapters/logger"
	_ "go.trai.ch/ecow/internal/adapters/shell"
	_ "go.trai.ch/ecow/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/ecow/internal/app"
	_ "go.trai.ch/ecow/internal/engine/scheduler"
)

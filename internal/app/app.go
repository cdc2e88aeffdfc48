// Package app implements the application layer for ecow.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/ecow/internal/adapters/logger"
	"go.trai.ch/ecow/internal/adapters/telemetry"
	"go.trai.ch/ecow/internal/adapters/watcher"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/ecow/internal/engine/scheduler"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	renderer     ports.Renderer
	watcher      ports.Watcher
	logger       ports.Logger

	debounceWindow time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sched *scheduler.Scheduler,
	renderer ports.Renderer,
	w ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader:   loader,
		scheduler:      sched,
		renderer:       renderer,
		watcher:        w,
		logger:         log,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
// This is primarily used for testing.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounceWindow = d
	return a
}

// Options locate the project and override the options declared in it.
type Options struct {
	// File is the project file. When empty it is discovered from the working directory.
	File        string
	CacheDir    string
	Concurrency *int
	FailFast    *bool
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	Options
	// Watch rebuilds the target whenever a file below the project root changes.
	Watch bool
}

// SetLogFormat selects the log record format ("pretty" or "json").
func (a *App) SetLogFormat(format string) error {
	f, ok := a.logger.(interface{ SetFormat(logger.Format) error })
	if !ok {
		return nil
	}
	return f.SetFormat(logger.Format(format))
}

// Build builds the target subtree. An empty target builds the root unit.
func (a *App) Build(ctx context.Context, target string, opts BuildOptions) error {
	project, id, err := a.prepare(target, opts.Options)
	if err != nil {
		return err
	}

	if opts.Watch {
		return a.watch(ctx, project, id)
	}

	report, err := a.build(ctx, project, id)
	if err != nil {
		return err
	}
	return report.Err()
}

// Clean removes the cache records and declared outputs of the target subtree.
func (a *App) Clean(ctx context.Context, target string, opts Options) error {
	project, id, err := a.prepare(target, opts)
	if err != nil {
		return err
	}
	return a.scheduler.Clean(ctx, project.Graph, id, project.Options)
}

// build runs the scheduler with a fresh tracer bridged to the renderer and
// prints the summary once every span has been delivered.
func (a *App) build(ctx context.Context, project *domain.Project, id domain.UnitID) (*domain.Report, error) {
	tracer, shutdown := telemetry.Setup(a.renderer)
	sched := a.scheduler.WithTracer(tracer)

	var report *domain.Report
	g, gctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		return a.renderer.Start(gctx)
	})

	// Scheduler Routine
	g.Go(func() error {
		r, err := sched.Build(gctx, project.Graph, id, project.Options)
		report = r
		return err
	})

	err := g.Wait()
	_ = shutdown(context.WithoutCancel(ctx))
	_ = a.renderer.Stop()
	if err != nil {
		return nil, err
	}

	a.renderer.OnSummary(report)
	return report, nil
}

func (a *App) watch(ctx context.Context, project *domain.Project, id domain.UnitID) error {
	root := project.Graph.BaseDir()
	skip := []string{filepath.Base(project.Options.ResolveCacheDir(root))}
	if err := a.watcher.Start(ctx, root, skip); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	for {
		if _, err := a.build(ctx, project, id); err != nil {
			return err
		}

		// Changes made by the build itself do not trigger another one.
		debouncer.Stop()
		select {
		case <-changes:
		default:
		}

		if ctx.Err() != nil {
			return nil
		}
		a.logger.Info(fmt.Sprintf("watching %s for changes", root))

		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding %s", len(paths), project.Graph.Path(id)))
		}
	}
}

// prepare loads the project, applies overrides and resolves the target.
func (a *App) prepare(target string, opts Options) (*domain.Project, domain.UnitID, error) {
	project, err := a.load(opts)
	if err != nil {
		return nil, domain.NoUnit, err
	}

	id := project.Graph.Root()
	if target != "" {
		if id, err = project.Graph.Resolve(domain.SplitTarget(target)); err != nil {
			return nil, domain.NoUnit, err
		}
	}
	return project, id, nil
}

func (a *App) load(opts Options) (*domain.Project, error) {
	path := opts.File
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root, err := a.configLoader.DiscoverRoot(cwd)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(root, domain.ProjectFileName)
	}

	project, err := a.configLoader.Load(path)
	if err != nil {
		return nil, err
	}

	if opts.CacheDir != "" {
		dir, err := filepath.Abs(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		project.Options.CacheDir = dir
	}
	if opts.Concurrency != nil {
		project.Options.Concurrency = *opts.Concurrency
	}
	if opts.FailFast != nil {
		project.Options.FailFast = *opts.FailFast
	}
	return project, nil
}

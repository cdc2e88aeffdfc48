// Package main is the entry point for the ecow build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/ecow/cmd/ecow/commands"
	"go.trai.ch/ecow/internal/app"
	"go.trai.ch/ecow/internal/core/domain"
	_ "go.trai.ch/ecow/internal/wiring"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageErrors are reported with exit status 2.
var usageErrors = []error{
	domain.ErrUsage,
	domain.ErrConfigNotFound,
	domain.ErrConfigReadFailed,
	domain.ErrConfigParseFailed,
	domain.ErrMissingUnit,
	domain.ErrDuplicateName,
	domain.ErrInvalidUnitName,
	domain.ErrUnknownKind,
	domain.ErrUnknownTarget,
}

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// The logger is not available yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	err = cli.Execute(ctx)
	code := exitCode(err)
	if err != nil && !errors.Is(err, domain.ErrBuildFailed) && !errors.Is(err, domain.ErrBuildCancelled) {
		components.Logger.Error(err)
	}
	return code
}

// exitCode maps the outcome of a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return exitUsage
		}
	}
	return exitFailure
}

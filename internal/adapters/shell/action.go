package shell

import (
	"context"
	"io"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
)

var (
	_ domain.Action       = (*Action)(nil)
	_ ports.ActionFactory = (*Factory)(nil)
)

// Action is a build action that runs a command through an executor.
type Action struct {
	cmd      domain.Command
	executor ports.Executor
}

// NewAction creates an Action for cmd.
func NewAction(cmd domain.Command, executor ports.Executor) *Action {
	return &Action{cmd: cmd, executor: executor}
}

// Signature returns the command line followed by the sorted environment overrides.
func (a *Action) Signature() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(a.cmd.Argv, "\x1f"))
	for _, k := range slices.Sorted(maps.Keys(a.cmd.Environment)) {
		sb.WriteByte(0)
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(a.cmd.Environment[k])
	}
	return sb.String()
}

// Inputs returns the declared input patterns.
func (a *Action) Inputs() []string {
	return slices.Clone(a.cmd.Inputs)
}

// Outputs returns the declared output paths.
func (a *Action) Outputs() []string {
	return slices.Clone(a.cmd.Outputs)
}

// Run executes the command.
func (a *Action) Run(ctx context.Context, stdout, stderr io.Writer) error {
	return a.executor.Execute(ctx, &a.cmd, stdout, stderr)
}

// Factory creates shell actions bound to an executor.
type Factory struct {
	executor ports.Executor
}

// NewFactory creates a new Factory.
func NewFactory(executor ports.Executor) *Factory {
	return &Factory{executor: executor}
}

// NewAction implements ports.ActionFactory.
func (f *Factory) NewAction(cmd domain.Command) domain.Action {
	return NewAction(cmd, f.executor)
}

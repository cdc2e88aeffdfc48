// Package shell runs build actions as operating system processes.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// DefaultWaitDelay bounds how long an interrupted command may take to exit
// before it is killed.
const DefaultWaitDelay = 5 * time.Second

// Executor implements ports.Executor using os/exec.
type Executor struct {
	waitDelay time.Duration
}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{waitDelay: DefaultWaitDelay}
}

// Execute runs cmd with the process environment overlaid by cmd.Environment.
// When ctx is cancelled the process receives an interrupt and is killed if it
// has not exited after the wait delay.
func (e *Executor) Execute(ctx context.Context, command *domain.Command, stdout, stderr io.Writer) error {
	if len(command.Argv) == 0 {
		return nil
	}

	name := command.Argv[0]
	args := command.Argv[1:]

	cmdEnv := resolveEnvironment(os.Environ(), command.Environment)

	// Resolve the executable against the command's PATH, which may differ from ours.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command

	// Preserve the name as invoked in Args[0].
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	if command.WorkingDir != "" {
		cmd.Dir = command.WorkingDir
	}

	cmd.Env = cmdEnv
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = e.waitDelay

	if err := cmd.Run(); err != nil {
		exitCode := -1 // Unknown or signal
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "exit_code", exitCode), "command", name)
	}

	return nil
}

// resolveEnvironment overlays the command environment on the system environment.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(cmdEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

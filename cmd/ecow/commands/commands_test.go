package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/cmd/ecow/commands"
	"go.trai.ch/ecow/internal/app"
	"go.trai.ch/ecow/internal/build"
	"go.trai.ch/ecow/internal/core/domain"
)

type mockApp struct {
	buildFunc     func(ctx context.Context, target string, opts app.BuildOptions) error
	cleanFunc     func(ctx context.Context, target string, opts app.Options) error
	listFunc      func(ctx context.Context, target string, opts app.Options, w io.Writer) error
	logFormatFunc func(format string) error
}

func (m *mockApp) Build(ctx context.Context, target string, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, target, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, target string, opts app.Options) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, target, opts)
	}
	return nil
}

func (m *mockApp) List(ctx context.Context, target string, opts app.Options, w io.Writer) error {
	if m.listFunc != nil {
		return m.listFunc(ctx, target, opts, w)
	}
	return nil
}

func (m *mockApp) SetLogFormat(format string) error {
	if m.logFormatFunc != nil {
		return m.logFormatFunc(format)
	}
	return nil
}

func newCLI(a commands.Application, args ...string) (*commands.CLI, *bytes.Buffer) {
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	return cli, buf
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.BuildOptions
		var capturedTarget string
		called := false

		mock := &mockApp{
			buildFunc: func(_ context.Context, target string, opts app.BuildOptions) error {
				capturedOpts = opts
				capturedTarget = target
				called = true
				return nil
			},
		}

		cli, _ := newCLI(mock, "build", "poc/poc", "--watch", "-j", "3", "--fail-fast",
			"--cache-dir", "/tmp/cache", "-f", "ecow.yaml")
		require.NoError(t, cli.Execute(context.Background()))

		assert.True(t, called)
		assert.Equal(t, "poc/poc", capturedTarget)
		assert.True(t, capturedOpts.Watch)
		assert.Equal(t, "ecow.yaml", capturedOpts.File)
		assert.Equal(t, "/tmp/cache", capturedOpts.CacheDir)
		require.NotNil(t, capturedOpts.Concurrency)
		assert.Equal(t, 3, *capturedOpts.Concurrency)
		require.NotNil(t, capturedOpts.FailFast)
		assert.True(t, *capturedOpts.FailFast)
	})

	t.Run("leaves project options alone without flags", func(t *testing.T) {
		var capturedOpts app.BuildOptions
		capturedTarget := "unset"

		mock := &mockApp{
			buildFunc: func(_ context.Context, target string, opts app.BuildOptions) error {
				capturedOpts = opts
				capturedTarget = target
				return nil
			},
		}

		cli, _ := newCLI(mock, "build")
		require.NoError(t, cli.Execute(context.Background()))

		assert.Empty(t, capturedTarget)
		assert.False(t, capturedOpts.Watch)
		assert.Nil(t, capturedOpts.Concurrency)
		assert.Nil(t, capturedOpts.FailFast)
		assert.Empty(t, capturedOpts.CacheDir)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, string, app.BuildOptions) error {
				return domain.ErrBuildFailed
			},
		}

		cli, _ := newCLI(mock, "build", "poc")
		require.ErrorIs(t, cli.Execute(context.Background()), domain.ErrBuildFailed)
	})

	t.Run("rejects more than one target", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, string, app.BuildOptions) error {
				panic("should not be called")
			},
		}

		cli, _ := newCLI(mock, "build", "poc", "lib")
		require.ErrorIs(t, cli.Execute(context.Background()), domain.ErrUsage)
	})
}

func TestCommands_Clean(t *testing.T) {
	var capturedTarget string
	var capturedOpts app.Options

	mock := &mockApp{
		cleanFunc: func(_ context.Context, target string, opts app.Options) error {
			capturedTarget = target
			capturedOpts = opts
			return nil
		},
	}

	cli, _ := newCLI(mock, "clean", "poc", "-j", "1")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Equal(t, "poc", capturedTarget)
	require.NotNil(t, capturedOpts.Concurrency)
	assert.Equal(t, 1, *capturedOpts.Concurrency)
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{
		listFunc: func(_ context.Context, target string, _ app.Options, w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s (tool)\n", target)
			return err
		},
	}

	cli, buf := newCLI(mock, "list", "poc")
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "poc (tool)\n", buf.String())
}

func TestCommands_LogFormat(t *testing.T) {
	t.Run("passes the format to the app", func(t *testing.T) {
		var format string
		mock := &mockApp{
			logFormatFunc: func(f string) error {
				format = f
				return nil
			},
		}

		cli, _ := newCLI(mock, "build", "--log-format", "json")
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "json", format)
	})

	t.Run("stops before running the command", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, string, app.BuildOptions) error {
				panic("should not be called")
			},
			logFormatFunc: func(string) error {
				return domain.ErrUsage
			},
		}

		cli, _ := newCLI(mock, "build", "--log-format", "xml")
		require.ErrorIs(t, cli.Execute(context.Background()), domain.ErrUsage)
	})
}

func TestCommands_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"build", "--bogus"}},
		{name: "invalid flag value", args: []string{"build", "-j", "many"}},
		{name: "unknown command", args: []string{"bogus"}},
		{name: "version with arguments", args: []string{"version", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _ := newCLI(&mockApp{}, tt.args...)
			err := cli.Execute(context.Background())
			require.ErrorIs(t, err, domain.ErrUsage)
		})
	}
}

func TestCommands_Help(t *testing.T) {
	cli, buf := newCLI(&mockApp{})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "Usage:")
}

func TestCommands_Version(t *testing.T) {
	cli, buf := newCLI(&mockApp{}, "version")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Equal(t, fmt.Sprintf("ecow version %s (commit: %s, date: %s)\n",
		build.Version, build.Commit, build.Date), buf.String())
}

func TestCommands_VersionFlag(t *testing.T) {
	cli, buf := newCLI(&mockApp{}, "--version")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Contains(t, buf.String(), "ecow version "+build.Version)
}

func TestCommands_PropagatesErrors(t *testing.T) {
	mock := &mockApp{
		cleanFunc: func(context.Context, string, app.Options) error {
			return errors.New("simulated error")
		},
	}

	cli, _ := newCLI(mock, "clean")
	err := cli.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

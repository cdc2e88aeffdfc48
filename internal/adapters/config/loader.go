// Package config provides the project file loader for ecow.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger  ports.Logger
	Actions ports.ActionFactory
}

// NewLoader creates a new Loader with the given logger and action factory.
func NewLoader(logger ports.Logger, actions ports.ActionFactory) *Loader {
	return &Loader{Logger: logger, Actions: actions}
}

// DiscoverRoot walks up from cwd and returns the first directory containing the project file.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)

	for {
		candidate := filepath.Join(currentDir, domain.ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "project discovery failed"), "cwd", cwd)
}

// Load reads the project file at path and assembles its unit tree.
// The directory containing the file becomes the graph base directory.
func (l *Loader) Load(path string) (*domain.Project, error) {
	var file Projectfile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "file", path)
	}

	if file.Unit == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingUnit, "cannot assemble project"), "file", path)
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigReadFailed, err), "file", path)
	}

	graph, err := l.buildGraph(file.Unit, baseDir)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	graph.SetBaseDir(baseDir)
	graph.Freeze()

	return &domain.Project{
		File:    path,
		Graph:   graph,
		Options: resolveOptions(&file),
	}, nil
}

func (l *Loader) buildGraph(root *UnitDTO, baseDir string) (*domain.Graph, error) {
	kind, err := parseKind(root)
	if err != nil {
		return nil, err
	}

	graph, err := domain.NewGraph(kind, root.Name, l.unitOptions(root, root.Name, baseDir)...)
	if err != nil {
		return nil, err
	}

	if err := l.addChildren(graph, graph.Root(), root.Units, baseDir); err != nil {
		return nil, err
	}
	return graph, nil
}

func (l *Loader) addChildren(graph *domain.Graph, parent domain.UnitID, units []UnitDTO, baseDir string) error {
	for i := range units {
		dto := &units[i]

		kind, err := parseKind(dto)
		if err != nil {
			return zerr.With(err, "parent", graph.Path(parent))
		}

		path := graph.Path(parent) + domain.PathSeparator + dto.Name
		id, err := graph.AddChild(parent, kind, dto.Name, l.unitOptions(dto, path, baseDir)...)
		if err != nil {
			return err
		}

		if err := l.addChildren(graph, id, dto.Units, baseDir); err != nil {
			return err
		}
	}
	return nil
}

// unitOptions attaches an action to units that declare a command, sources or
// outputs. Without a command, running the action is a no-op and clean still
// removes the declared outputs.
func (l *Loader) unitOptions(dto *UnitDTO, path, baseDir string) []domain.UnitOption {
	if len(dto.Cmd) == 0 && len(dto.Outputs) > 0 {
		l.Logger.Warn(fmt.Sprintf("unit %s declares outputs but no cmd", path))
	}
	if len(dto.Cmd) == 0 && len(dto.Sources) == 0 && len(dto.Outputs) == 0 {
		return nil
	}

	action := l.Actions.NewAction(domain.Command{
		Argv:        slices.Clone(dto.Cmd),
		Environment: dto.Env,
		WorkingDir:  resolveWorkingDir(baseDir, dto.Dir),
		Inputs:      canonicalizeStrings(dto.Sources),
		Outputs:     canonicalizeStrings(dto.Outputs),
	})
	return []domain.UnitOption{domain.WithAction(action)}
}

func parseKind(dto *UnitDTO) (domain.Kind, error) {
	kind, err := domain.ParseKind(dto.Kind)
	if err != nil {
		return 0, zerr.With(err, "unit", dto.Name)
	}
	return kind, nil
}

func resolveOptions(file *Projectfile) domain.Options {
	opts := domain.DefaultOptions()
	if file.CacheDir != "" {
		opts.CacheDir = file.CacheDir
	}
	if file.Concurrency != nil {
		opts.Concurrency = *file.Concurrency
	}
	if file.FailFast != nil {
		opts.FailFast = *file.FailFast
	}
	return opts
}

// readAndUnmarshalYAML reads a YAML file and decodes it strictly into target.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigReadFailed, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, err)
	}

	return nil
}

// resolveWorkingDir resolves a unit's working directory against baseDir.
func resolveWorkingDir(baseDir, configured string) string {
	if configured == "" {
		return baseDir
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(baseDir, configured))
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

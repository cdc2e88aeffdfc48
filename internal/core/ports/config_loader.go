package ports

import "go.trai.ch/ecow/internal/core/domain"

// ConfigLoader assembles a project from its project file.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project file at path and returns the assembled graph and its options.
	// The graph's base directory is the directory containing the file.
	Load(path string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the first directory containing the project file.
	DiscoverRoot(cwd string) (string, error)
}

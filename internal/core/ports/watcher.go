package ports

import (
	"context"
	"iter"
)

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// WatchOp is the kind of file system change.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota + 1
	// OpWrite indicates a file was written.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent is a single file system change below the watched root.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports file system changes below a directory tree.
type Watcher interface {
	// Start watches root recursively, skipping directories whose base name is in skip.
	Start(ctx context.Context, root string, skip []string) error

	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]

	// Stop releases the watcher's resources.
	Stop() error
}

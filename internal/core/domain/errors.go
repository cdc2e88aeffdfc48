package domain

import "go.trai.ch/zerr"

var (
	// ErrUsage is returned when the command line invocation is malformed.
	ErrUsage = zerr.New("invalid usage")

	// ErrDuplicateName is returned when a child is added under a parent that already has a child with that name.
	ErrDuplicateName = zerr.New("duplicate unit name")

	// ErrInvalidUnitName is returned when a unit name is empty or contains a path separator.
	ErrInvalidUnitName = zerr.New("unit name must be non-empty and must not contain '/'")

	// ErrUnknownUnit is returned when a unit id does not belong to the graph.
	ErrUnknownUnit = zerr.New("unknown unit")

	// ErrUnknownKind is returned when a unit kind cannot be parsed.
	ErrUnknownKind = zerr.New("unknown unit kind")

	// ErrUnknownTarget is returned when a target path does not match any unit.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrGraphFrozen is returned when the graph is modified after assembly has finished.
	ErrGraphFrozen = zerr.New("graph is frozen")

	// ErrConfigNotFound is returned when no project file can be found.
	ErrConfigNotFound = zerr.New("could not find ecow.yaml")

	// ErrConfigReadFailed is returned when the project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read project file")

	// ErrConfigParseFailed is returned when the project file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse project file")

	// ErrMissingUnit is returned when the project file does not declare a root unit.
	ErrMissingUnit = zerr.New("project file declares no unit")

	// ErrInputNotFound is returned when a declared input matches no file.
	ErrInputNotFound = zerr.New("input not found")

	// ErrFingerprintFailed is returned when a unit's fingerprint cannot be computed.
	ErrFingerprintFailed = zerr.New("failed to compute fingerprint")

	// ErrActionFailed is returned when a unit's build action fails.
	ErrActionFailed = zerr.New("build action failed")

	// ErrDependencyFailed is recorded on a unit whose child failed.
	ErrDependencyFailed = zerr.New("dependency failed")

	// ErrCancelled is recorded on a unit that did not complete because the build was interrupted.
	ErrCancelled = zerr.New("build interrupted")

	// ErrBuildFailed is returned when at least one unit failed.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBuildCancelled is returned when the build was interrupted.
	ErrBuildCancelled = zerr.New("build cancelled")

	// ErrCleanFailed is returned when cache records or artifacts could not be removed.
	ErrCleanFailed = zerr.New("clean failed")

	// ErrCacheRead is returned when a cache record cannot be read.
	ErrCacheRead = zerr.New("failed to read cache record")

	// ErrCacheCorrupt is returned when a cache record cannot be decoded.
	ErrCacheCorrupt = zerr.New("corrupt cache record")

	// ErrCacheWrite is returned when a cache record cannot be written.
	ErrCacheWrite = zerr.New("failed to write cache record")

	// ErrCacheDelete is returned when a cache record cannot be removed.
	ErrCacheDelete = zerr.New("failed to delete cache record")

	// ErrOutputPathOutsideRoot is returned when an action output is outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrFailedToCleanOutput is returned when removing an action output fails.
	ErrFailedToCleanOutput = zerr.New("failed to clean output")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrCommandFailed is returned when a shell command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch project")
)

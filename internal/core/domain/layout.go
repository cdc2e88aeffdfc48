package domain

import (
	"path/filepath"
	"runtime"
)

const (
	// ProjectFileName is the name of the project file.
	ProjectFileName = "ecow.yaml"

	// DefaultCacheDirName is the cache directory used when none is configured.
	DefaultCacheDirName = ".ecow"

	// RecordsDirName is the directory inside the cache directory holding cache records.
	RecordsDirName = "records"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Options are the recognized build options. They are passed explicitly from the
// CLI into the scheduler and cache.
type Options struct {
	CacheDir    string
	Concurrency int
	FailFast    bool
}

// DefaultOptions returns the options used when neither the project file nor flags set them.
func DefaultOptions() Options {
	return Options{
		CacheDir:    DefaultCacheDirName,
		Concurrency: runtime.NumCPU(),
	}
}

// Parallelism returns the worker pool size, falling back to host parallelism.
func (o Options) Parallelism() int {
	if o.Concurrency <= 0 {
		return runtime.NumCPU()
	}
	return o.Concurrency
}

// ResolveCacheDir returns the cache directory, relative paths taken from baseDir.
func (o Options) ResolveCacheDir(baseDir string) string {
	dir := o.CacheDir
	if dir == "" {
		dir = DefaultCacheDirName
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(baseDir, dir)
}

// RecordsPath returns the directory holding cache records below cacheDir.
func RecordsPath(cacheDir string) string {
	return filepath.Join(cacheDir, RecordsDirName)
}

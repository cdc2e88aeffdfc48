package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Clean removes the cache records and declared outputs of every unit in the
// subtree rooted at target. All units are attempted; failures are joined
// under domain.ErrCleanFailed.
func (s *Scheduler) Clean(
	ctx context.Context,
	graph *domain.Graph,
	target domain.UnitID,
	opts domain.Options,
) error {
	if _, ok := graph.Unit(target); !ok {
		return zerr.With(zerr.Wrap(domain.ErrUnknownUnit, "cannot plan clean"), "unit", int(target))
	}

	graph.Freeze()
	cacheDir := opts.ResolveCacheDir(graph.BaseDir())

	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(opts.Parallelism())

	for id := range graph.Postorder(target) {
		unit, _ := graph.Unit(id)
		path := graph.Path(id)

		g.Go(func() error {
			if err := s.cleanUnit(ctx, graph.BaseDir(), cacheDir, path, unit); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrCleanFailed}, errs...)...)
	}
	return nil
}

func (s *Scheduler) cleanUnit(ctx context.Context, baseDir, cacheDir, path string, unit domain.Unit) error {
	if err := ctx.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCancelled.Error()), "unit", path)
	}

	var errs []error
	if err := s.store.Delete(cacheDir, path); err != nil {
		errs = append(errs, err)
	}

	if unit.HasAction() {
		for _, output := range unit.Action.Outputs() {
			if err := removeOutput(baseDir, output); err != nil {
				errs = append(errs, zerr.With(err, "unit", path))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Info("cleaned " + path)
	return nil
}

// removeOutput deletes an output after verifying it lies inside root.
func removeOutput(root, output string) error {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", output)
	}

	outAbs := output
	if !filepath.IsAbs(outAbs) {
		outAbs = filepath.Join(rootAbs, output)
	}

	rel, err := filepath.Rel(rootAbs, outAbs)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", output)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "refusing to remove output"), "file", output)
	}

	if err := os.RemoveAll(outAbs); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", output)
	}
	return nil
}

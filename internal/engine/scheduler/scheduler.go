// Package scheduler builds and cleans subtrees of the unit graph.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/zerr"
)

// Scheduler executes unit build actions in dependency order.
type Scheduler struct {
	store    ports.CacheStore
	hasher   ports.Hasher
	resolver ports.InputResolver
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewScheduler creates a new Scheduler with the given dependencies.
// Spans are discarded until a tracer is attached with WithTracer.
func NewScheduler(
	store ports.CacheStore,
	hasher ports.Hasher,
	resolver ports.InputResolver,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		store:    store,
		hasher:   hasher,
		resolver: resolver,
		tracer:   noopTracer{},
		logger:   logger,
	}
}

// WithTracer returns a copy of the scheduler that reports units to tracer.
func (s *Scheduler) WithTracer(tracer ports.Tracer) *Scheduler {
	c := *s
	c.tracer = tracer
	return &c
}

// Build builds the subtree rooted at target. Children always finish before
// their parent is evaluated; unrelated units run concurrently up to
// opts.Parallelism().
//
// Per-unit failures are reported in the returned Report. The error is
// non-nil only when the build cannot be planned.
func (s *Scheduler) Build(
	ctx context.Context,
	graph *domain.Graph,
	target domain.UnitID,
	opts domain.Options,
) (*domain.Report, error) {
	if _, ok := graph.Unit(target); !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownUnit, "cannot plan build"), "unit", int(target))
	}

	graph.Freeze()

	state := s.newRunState(ctx, graph, target, opts)
	s.tracer.EmitPlan(ctx, state.planPaths(), graph.Path(target))

	state.runExecutionLoop()

	return state.report(), nil
}

type result struct {
	id          domain.UnitID
	status      domain.Status
	fingerprint domain.Fingerprint
	err         error
	duration    time.Duration
	ran         bool
}

type runState struct {
	s           *Scheduler
	ctx         context.Context
	graph       *domain.Graph
	target      domain.UnitID
	cacheDir    string
	failFast    bool
	parallelism int

	plan      []domain.UnitID
	pending   map[domain.UnitID]int
	results   map[domain.UnitID]result
	ready     []domain.UnitID
	active    int
	halted    bool
	resultsCh chan result
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	target domain.UnitID,
	opts domain.Options,
) *runState {
	state := &runState{
		s:           s,
		ctx:         ctx,
		graph:       graph,
		target:      target,
		cacheDir:    opts.ResolveCacheDir(graph.BaseDir()),
		failFast:    opts.FailFast,
		parallelism: opts.Parallelism(),
		pending:     make(map[domain.UnitID]int),
		results:     make(map[domain.UnitID]result),
	}

	for id := range graph.Postorder(target) {
		state.plan = append(state.plan, id)
		children := len(graph.Children(id))
		state.pending[id] = children
		if children == 0 {
			state.ready = append(state.ready, id)
		}
	}
	state.resultsCh = make(chan result, state.parallelism)

	return state
}

func (state *runState) planPaths() []string {
	paths := make([]string, len(state.plan))
	for i, id := range state.plan {
		paths[i] = state.graph.Path(id)
	}
	return paths
}

// stopped reports whether no further units may start.
func (state *runState) stopped() bool {
	return state.halted || state.ctx.Err() != nil
}

func (state *runState) runExecutionLoop() {
	for {
		state.schedule()

		if state.active == 0 {
			break
		}

		if state.stopped() {
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	state.settleUnstarted()
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && !state.stopped() {
		id := state.ready[0]
		state.ready = state.ready[1:]

		unit, _ := state.graph.Unit(id)
		children := state.graph.Children(id)
		fingerprints := make([]domain.Fingerprint, len(children))
		childrenUpToDate := true
		for i, child := range children {
			res := state.results[child]
			fingerprints[i] = res.fingerprint
			if res.status != domain.StatusUpToDate {
				childrenUpToDate = false
			}
		}

		state.active++
		go state.executeUnit(unit, fingerprints, childrenUpToDate)
	}
}

func (state *runState) handleResult(res result) {
	state.active--
	state.complete(res)
}

// complete records a terminal result and releases the parent once all of its
// children are done. A parent with a failed child fails without being evaluated.
func (state *runState) complete(res result) {
	state.results[res.id] = res

	if res.status == domain.StatusFailed && state.failFast {
		state.halted = true
	}

	if res.id == state.target {
		return
	}

	parent := state.graph.Parent(res.id)
	state.pending[parent]--
	if state.pending[parent] > 0 {
		return
	}

	if failed, ok := state.failedChild(parent); ok {
		state.complete(result{
			id:     parent,
			status: domain.StatusFailed,
			err:    state.dependencyError(parent, failed),
		})
		return
	}

	state.ready = append(state.ready, parent)
}

func (state *runState) failedChild(id domain.UnitID) (domain.UnitID, bool) {
	for _, child := range state.graph.Children(id) {
		if res, ok := state.results[child]; ok && res.status == domain.StatusFailed {
			return child, true
		}
	}
	return domain.NoUnit, false
}

func (state *runState) dependencyError(id, failed domain.UnitID) error {
	return zerr.With(
		zerr.Wrap(domain.ErrDependencyFailed, "child "+state.graph.Path(failed)),
		"unit", state.graph.Path(id),
	)
}

// settleUnstarted assigns a final status to units that never started because
// the build was halted or cancelled. Ancestors of a failed unit fail; all
// others are cancelled.
func (state *runState) settleUnstarted() {
	for _, id := range state.plan {
		if res, done := state.results[id]; done && res.status.Terminal() {
			continue
		}

		if failed, ok := state.failedChild(id); ok {
			state.results[id] = result{
				id:     id,
				status: domain.StatusFailed,
				err:    state.dependencyError(id, failed),
			}
			continue
		}

		state.results[id] = result{
			id:     id,
			status: domain.StatusCancelled,
			err:    domain.ErrCancelled,
		}
	}
}

func (state *runState) report() *domain.Report {
	report := &domain.Report{
		Target: state.graph.Path(state.target),
		Units:  make([]domain.UnitResult, 0, len(state.plan)),
	}

	succeeded := true
	for _, id := range state.plan {
		res := state.results[id]
		unit, _ := state.graph.Unit(id)
		report.Units = append(report.Units, domain.UnitResult{
			ID:       id,
			Path:     state.graph.Path(id),
			Kind:     unit.Kind,
			Status:   res.status,
			Err:      res.err,
			Duration: res.duration,
			Ran:      res.ran,
		})
		if !res.status.Succeeded() {
			succeeded = false
		}
	}

	switch {
	case succeeded:
		report.Outcome = domain.OutcomeSucceeded
	case state.ctx.Err() != nil:
		report.Outcome = domain.OutcomeCancelled
	default:
		report.Outcome = domain.OutcomeFailed
	}

	return report
}

func (state *runState) executeUnit(unit domain.Unit, children []domain.Fingerprint, childrenUpToDate bool) {
	// The span must end before the result is sent, so the renderer has seen
	// the unit complete by the time the loop finishes.
	res := func() result {
		path := state.graph.Path(unit.ID)
		ctx, span := state.s.tracer.Start(state.ctx, path, ports.WithUnitKind(unit.Kind.String()))
		defer span.End()

		start := time.Now()
		res := state.evaluate(ctx, unit, path, children, childrenUpToDate, span)
		res.duration = time.Since(start)

		span.SetAttribute(ports.AttrUnitStatus, res.status.String())
		if res.err != nil {
			span.RecordError(res.err)
		}
		return res
	}()

	state.resultsCh <- res
}

func (state *runState) evaluate(
	ctx context.Context,
	unit domain.Unit,
	path string,
	children []domain.Fingerprint,
	childrenUpToDate bool,
	span ports.Span,
) result {
	res := result{id: unit.ID}

	fingerprint, err := state.fingerprint(unit, children)
	if err != nil {
		res.status = domain.StatusFailed
		res.err = zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "unit", path)
		return res
	}
	res.fingerprint = fingerprint

	if childrenUpToDate && state.recorded(path, fingerprint) {
		res.status = domain.StatusUpToDate
		return res
	}

	if unit.HasAction() {
		if state.ctx.Err() != nil {
			res.status = domain.StatusCancelled
			res.err = domain.ErrCancelled
			return res
		}

		res.ran = true
		span.SetAttribute(ports.AttrUnitStatus, domain.StatusBuilding.String())
		if err := unit.Action.Run(ctx, span, span); err != nil {
			if state.ctx.Err() != nil {
				res.status = domain.StatusCancelled
				res.err = zerr.Wrap(err, domain.ErrCancelled.Error())
				return res
			}
			res.status = domain.StatusFailed
			res.err = zerr.With(zerr.Wrap(err, domain.ErrActionFailed.Error()), "unit", path)
			return res
		}
	}

	state.persist(path, fingerprint)
	res.status = domain.StatusBuilt
	return res
}

func (state *runState) fingerprint(unit domain.Unit, children []domain.Fingerprint) (domain.Fingerprint, error) {
	in := domain.FingerprintInput{
		Kind:     unit.Kind,
		Name:     unit.Name.String(),
		Root:     state.graph.BaseDir(),
		Ignores:  []string{filepath.Base(state.cacheDir)},
		Children: children,
	}

	if unit.HasAction() {
		files, err := state.s.resolver.ResolveInputs(unit.Action.Inputs(), state.graph.BaseDir())
		if err != nil {
			return "", err
		}
		in.Signature = unit.Action.Signature()
		in.Files = files
	}

	return state.s.hasher.ComputeFingerprint(in)
}

// recorded reports whether the last successful build of path had fingerprint.
// An unreadable record is treated as stale.
func (state *runState) recorded(path string, fingerprint domain.Fingerprint) bool {
	record, err := state.s.store.Get(state.cacheDir, path)
	if err != nil {
		state.s.logger.Warn(fmt.Sprintf("ignoring cache record of %s: %v", path, err))
		return false
	}
	return record != nil && record.Fingerprint == fingerprint
}

func (state *runState) persist(path string, fingerprint domain.Fingerprint) {
	err := state.s.store.Put(state.cacheDir, domain.CacheRecord{
		Path:        path,
		Fingerprint: fingerprint,
		Timestamp:   time.Now(),
	})
	if err != nil {
		state.s.logger.Warn(fmt.Sprintf("failed to record build of %s: %v", path, err))
	}
}

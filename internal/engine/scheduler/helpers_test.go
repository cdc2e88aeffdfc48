package scheduler_test

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/ecow/internal/core/ports/mocks"
	"go.trai.ch/ecow/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// memStore is an in-memory ports.CacheStore.
type memStore struct {
	mu      sync.Mutex
	records map[string]domain.CacheRecord
	getErr  map[string]error
	putErr  error
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]domain.CacheRecord),
		getErr:  make(map[string]error),
	}
}

func (s *memStore) Get(_, path string) (*domain.CacheRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.getErr[path]; err != nil {
		return nil, err
	}
	record, ok := s.records[path]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *memStore) Put(_ string, record domain.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.records[record.Path] = record
	return nil
}

func (s *memStore) Delete(_, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *memStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[path]
	return ok
}

// runLog records the order in which actions ran.
type runLog struct {
	mu    sync.Mutex
	order []string
}

func (l *runLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

func (l *runLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.order)
}

// fakeAction is a domain.Action whose behavior is set by the test.
type fakeAction struct {
	name    string
	inputs  []string
	outputs []string
	run     func(ctx context.Context) error
	log     *runLog
	runs    atomic.Int32
}

func (a *fakeAction) Signature() string { return "build " + a.name }
func (a *fakeAction) Inputs() []string  { return a.inputs }
func (a *fakeAction) Outputs() []string { return a.outputs }

func (a *fakeAction) Run(ctx context.Context, stdout, _ io.Writer) error {
	a.runs.Add(1)
	if a.log != nil {
		a.log.add(a.name)
	}
	_, _ = fmt.Fprintln(stdout, a.Signature())
	if a.run != nil {
		return a.run(ctx)
	}
	return nil
}

type testEnv struct {
	sched  *scheduler.Scheduler
	store  *memStore
	logger *mocks.MockLogger
	ctrl   *gomock.Controller

	mu       sync.Mutex
	contents map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := &testEnv{
		store:    newMemStore(),
		logger:   mocks.NewMockLogger(ctrl),
		ctrl:     ctrl,
		contents: make(map[string]string),
	}

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().ComputeFingerprint(gomock.Any()).DoAndReturn(env.fingerprint).AnyTimes()

	resolver := mocks.NewMockInputResolver(ctrl)
	resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any()).DoAndReturn(env.resolve).AnyTimes()

	env.sched = scheduler.NewScheduler(env.store, hasher, resolver, env.logger).WithTracer(permissiveTracer(ctrl))
	return env
}

func permissiveTracer(ctrl *gomock.Controller) *mocks.MockTracer {
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) { return len(p), nil }).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return tracer
}

func (env *testEnv) setContent(path, content string) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.contents[path] = content
}

func (env *testEnv) fingerprint(in domain.FingerprintInput) (domain.Fingerprint, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%s", in.Kind, in.Name, in.Signature)
	for _, f := range in.Files {
		fmt.Fprintf(&sb, "|%s=%s", f, env.contents[f])
	}
	for _, c := range in.Children {
		fmt.Fprintf(&sb, "|<%s>", c)
	}
	return domain.Fingerprint(sb.String()), nil
}

func (env *testEnv) resolve(inputs []string, _ string) ([]string, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	for _, in := range inputs {
		if _, ok := env.contents[in]; !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "cannot resolve input"), "path", in)
		}
	}
	return slices.Sorted(slices.Values(inputs)), nil
}

func (env *testEnv) build(t *testing.T, ctx context.Context, g *domain.Graph, opts domain.Options) *domain.Report {
	t.Helper()
	report, err := env.sched.Build(ctx, g, g.Root(), opts)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

// pocGraph builds Tool("poc") containing Box("poc").
func pocGraph(t *testing.T, tool, box domain.Action) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph(domain.KindTool, "poc", domain.WithAction(tool))
	require.NoError(t, err)
	_, err = g.AddChild(g.Root(), domain.KindBox, "poc", domain.WithAction(box))
	require.NoError(t, err)
	g.SetBaseDir(t.TempDir())
	return g
}

func mustAdd(t *testing.T, g *domain.Graph, parent domain.UnitID, kind domain.Kind, name string, a domain.Action) domain.UnitID {
	t.Helper()
	var opts []domain.UnitOption
	if a != nil {
		opts = append(opts, domain.WithAction(a))
	}
	id, err := g.AddChild(parent, kind, name, opts...)
	require.NoError(t, err)
	return id
}

func statuses(report *domain.Report) map[string]domain.Status {
	out := make(map[string]domain.Status, len(report.Units))
	for _, u := range report.Units {
		out[u.Path] = u.Status
	}
	return out
}

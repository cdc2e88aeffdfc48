package domain_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/zerr"
)

// buildTree creates:
//
//	app (tool)
//	├── core (box)
//	│   └── util (box)
//	└── net (box)
func buildTree(t *testing.T) (*domain.Graph, map[string]domain.UnitID) {
	t.Helper()

	g, err := domain.NewGraph(domain.KindTool, "app")
	require.NoError(t, err)

	ids := map[string]domain.UnitID{"app": g.Root()}
	ids["core"], err = g.AddChild(g.Root(), domain.KindBox, "core")
	require.NoError(t, err)
	ids["util"], err = g.AddChild(ids["core"], domain.KindBox, "util")
	require.NoError(t, err)
	ids["net"], err = g.AddChild(g.Root(), domain.KindBox, "net")
	require.NoError(t, err)

	return g, ids
}

func names(g *domain.Graph, seq func(func(domain.UnitID) bool)) []string {
	var out []string
	for id := range seq {
		u, _ := g.Unit(id)
		out = append(out, u.Name.String())
	}
	return out
}

func TestGraph_AddChild(t *testing.T) {
	g, ids := buildTree(t)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []domain.UnitID{ids["core"], ids["net"]}, g.Children(g.Root()))
	assert.Equal(t, ids["core"], g.Parent(ids["util"]))
	assert.Equal(t, domain.NoUnit, g.Parent(g.Root()))

	u, ok := g.Unit(ids["util"])
	require.True(t, ok)
	assert.Equal(t, "util", u.Name.String())
	assert.Equal(t, domain.KindBox, u.Kind)
	assert.False(t, u.HasAction())
}

func TestGraph_AddChild_DuplicateName(t *testing.T) {
	g, ids := buildTree(t)
	before := g.Children(ids["core"])

	_, err := g.AddChild(ids["core"], domain.KindTool, "util")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "util", zErr.Metadata()["name"])
	assert.Equal(t, "app/core", zErr.Metadata()["parent"])

	assert.Equal(t, before, g.Children(ids["core"]))
	assert.Equal(t, 4, g.Len())
}

func TestGraph_AddChild_SameNameUnderDifferentParents(t *testing.T) {
	g, err := domain.NewGraph(domain.KindTool, "poc")
	require.NoError(t, err)

	box, err := g.AddChild(g.Root(), domain.KindBox, "poc")
	require.NoError(t, err)
	nested, err := g.AddChild(box, domain.KindBox, "poc")
	require.NoError(t, err)

	assert.Equal(t, "poc/poc/poc", g.Path(nested))
}

func TestGraph_AddChild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parent  domain.UnitID
		unit    string
		wantErr error
	}{
		{name: "empty name", parent: 0, unit: "", wantErr: domain.ErrInvalidUnitName},
		{name: "separator in name", parent: 0, unit: "a/b", wantErr: domain.ErrInvalidUnitName},
		{name: "unknown parent", parent: 42, unit: "x", wantErr: domain.ErrUnknownUnit},
		{name: "negative parent", parent: domain.NoUnit, unit: "x", wantErr: domain.ErrUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := domain.NewGraph(domain.KindTool, "root")
			require.NoError(t, err)

			_, err = g.AddChild(tt.parent, domain.KindBox, tt.unit)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, g.Len())
		})
	}
}

func TestGraph_Freeze(t *testing.T) {
	g, _ := buildTree(t)
	g.Freeze()

	_, err := g.AddChild(g.Root(), domain.KindBox, "late")
	require.ErrorIs(t, err, domain.ErrGraphFrozen)
	assert.True(t, g.Frozen())
	assert.Equal(t, 4, g.Len())
}

func TestNewGraph_InvalidName(t *testing.T) {
	_, err := domain.NewGraph(domain.KindTool, "")
	require.ErrorIs(t, err, domain.ErrInvalidUnitName)
}

func TestGraph_Traversal(t *testing.T) {
	g, ids := buildTree(t)

	assert.Equal(t, []string{"app", "core", "util", "net"}, names(g, g.Preorder(g.Root())))
	assert.Equal(t, []string{"util", "core", "net", "app"}, names(g, g.Postorder(g.Root())))
	assert.Equal(t, []string{"util", "core"}, names(g, g.Postorder(ids["core"])))
	assert.Empty(t, names(g, g.Postorder(99)))
}

func TestGraph_Postorder_ChildrenBeforeParents(t *testing.T) {
	g, err := domain.NewGraph(domain.KindTool, "root")
	require.NoError(t, err)

	// A wide and deep tree built in a fixed pseudo-random shape.
	parents := []domain.UnitID{g.Root()}
	for i := range 40 {
		parent := parents[(i*7)%len(parents)]
		id, addErr := g.AddChild(parent, domain.KindBox, string(rune('a'+i%26))+string(rune('0'+i/26)))
		require.NoError(t, addErr)
		parents = append(parents, id)
	}

	order := slices.Collect(g.Postorder(g.Root()))
	require.Len(t, order, g.Len())

	position := make(map[domain.UnitID]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for _, id := range order {
		for _, child := range g.Children(id) {
			assert.Less(t, position[child], position[id], "child %s must precede %s", g.Path(child), g.Path(id))
		}
	}
}

func TestGraph_Traversal_EarlyStop(t *testing.T) {
	g, _ := buildTree(t)

	var seen []domain.UnitID
	for id := range g.Postorder(g.Root()) {
		seen = append(seen, id)
		if len(seen) == 2 {
			break
		}
	}
	assert.Len(t, seen, 2)
}

func TestGraph_Resolve(t *testing.T) {
	g, ids := buildTree(t)

	tests := []struct {
		name    string
		target  string
		want    domain.UnitID
		wantErr bool
		segment string
	}{
		{name: "empty target is root", target: "", want: g.Root()},
		{name: "root by name", target: "app", want: g.Root()},
		{name: "nested", target: "app/core/util", want: ids["util"]},
		{name: "trailing separator", target: "app/net/", want: ids["net"]},
		{name: "unknown root", target: "lib", wantErr: true, segment: "lib"},
		{name: "unknown child", target: "app/core/net", wantErr: true, segment: "net"},
		{name: "case sensitive", target: "app/Core", wantErr: true, segment: "Core"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Resolve(domain.SplitTarget(tt.target))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownTarget)
				var zErr *zerr.Error
				require.True(t, errors.As(err, &zErr))
				assert.Equal(t, tt.segment, zErr.Metadata()["segment"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGraph_Path(t *testing.T) {
	g, ids := buildTree(t)

	assert.Equal(t, "app", g.Path(g.Root()))
	assert.Equal(t, "app/core/util", g.Path(ids["util"]))
	assert.Equal(t, []string{"app", "net"}, g.Segments(ids["net"]))
	assert.Empty(t, g.Path(100))
}

func TestGraph_UnitReturnsCopy(t *testing.T) {
	g, _ := buildTree(t)

	children := g.Children(g.Root())
	children[0] = 99

	assert.NotEqual(t, domain.UnitID(99), g.Children(g.Root())[0])
}

func TestSplitTarget(t *testing.T) {
	assert.Nil(t, domain.SplitTarget(""))
	assert.Equal(t, []string{"poc"}, domain.SplitTarget("poc"))
	assert.Equal(t, []string{"poc", "poc"}, domain.SplitTarget("/poc//poc/"))
}

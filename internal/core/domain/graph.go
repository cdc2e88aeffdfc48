// Package domain contains the core domain models of the unit tree and its builds.
package domain

import (
	"iter"
	"slices"
	"strings"
	"sync/atomic"

	"go.trai.ch/zerr"
)

// PathSeparator separates unit names in a unit path and in CLI targets.
const PathSeparator = "/"

// UnitID is the stable index of a unit inside its graph.
type UnitID int

// NoUnit is the parent of the root unit.
const NoUnit UnitID = -1

// Unit is a named node of the build tree.
type Unit struct {
	ID     UnitID
	Name   InternedString
	Kind   Kind
	Parent UnitID
	Action Action

	children []UnitID
}

// HasAction reports whether the unit performs work when it is stale.
func (u *Unit) HasAction() bool {
	return u.Action != nil
}

// UnitOption configures a unit while it is added to the graph.
type UnitOption func(*Unit)

// WithAction attaches a build action to the unit.
func WithAction(a Action) UnitOption {
	return func(u *Unit) {
		u.Action = a
	}
}

type childKey struct {
	parent UnitID
	name   InternedString
}

// Graph owns a tree of units stored in an arena.
// The root is created with the graph; every other unit is added below an existing one,
// so the tree cannot contain cycles and every unit has exactly one owner.
type Graph struct {
	units    []Unit
	siblings map[childKey]UnitID
	baseDir  string
	frozen   atomic.Bool
}

// NewGraph creates a graph whose root unit has the given kind and name.
func NewGraph(kind Kind, name string, opts ...UnitOption) (*Graph, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	root := Unit{
		ID:     0,
		Name:   NewInternedString(name),
		Kind:   kind,
		Parent: NoUnit,
	}
	for _, opt := range opts {
		opt(&root)
	}

	return &Graph{
		units:    []Unit{root},
		siblings: make(map[childKey]UnitID),
		baseDir:  ".",
	}, nil
}

// AddChild adds a unit below parent and returns its id.
// A name already used by a sibling yields ErrDuplicateName and leaves the tree unchanged.
func (g *Graph) AddChild(parent UnitID, kind Kind, name string, opts ...UnitOption) (UnitID, error) {
	if g.frozen.Load() {
		return NoUnit, zerr.With(zerr.Wrap(ErrGraphFrozen, "cannot add unit"), "name", name)
	}
	if !g.valid(parent) {
		return NoUnit, zerr.With(zerr.Wrap(ErrUnknownUnit, "cannot add unit"), "parent", int(parent))
	}
	if err := validateName(name); err != nil {
		return NoUnit, err
	}

	key := childKey{parent: parent, name: NewInternedString(name)}
	if _, exists := g.siblings[key]; exists {
		err := zerr.Wrap(ErrDuplicateName, "cannot add unit")
		err = zerr.With(err, "parent", g.Path(parent))
		return NoUnit, zerr.With(err, "name", name)
	}

	id := UnitID(len(g.units))
	u := Unit{
		ID:     id,
		Name:   key.name,
		Kind:   kind,
		Parent: parent,
	}
	for _, opt := range opts {
		opt(&u)
	}

	g.units = append(g.units, u)
	g.units[parent].children = append(g.units[parent].children, id)
	g.siblings[key] = id

	return id, nil
}

// Freeze ends assembly. Later calls to AddChild fail with ErrGraphFrozen.
func (g *Graph) Freeze() {
	g.frozen.Store(true)
}

// Frozen reports whether assembly has ended.
func (g *Graph) Frozen() bool {
	return g.frozen.Load()
}

// SetBaseDir sets the directory action inputs and outputs are relative to.
func (g *Graph) SetBaseDir(dir string) {
	g.baseDir = dir
}

// BaseDir returns the directory action inputs and outputs are relative to.
func (g *Graph) BaseDir() string {
	return g.baseDir
}

// Root returns the id of the root unit.
func (g *Graph) Root() UnitID {
	return 0
}

// Len returns the number of units in the graph.
func (g *Graph) Len() int {
	return len(g.units)
}

// Unit returns a copy of the unit with the given id.
func (g *Graph) Unit(id UnitID) (Unit, bool) {
	if !g.valid(id) {
		return Unit{}, false
	}
	u := g.units[id]
	u.children = slices.Clone(u.children)
	return u, true
}

// Children returns the children of id in insertion order.
func (g *Graph) Children(id UnitID) []UnitID {
	if !g.valid(id) {
		return nil
	}
	return slices.Clone(g.units[id].children)
}

// Parent returns the parent of id, or NoUnit for the root.
func (g *Graph) Parent(id UnitID) UnitID {
	if !g.valid(id) {
		return NoUnit
	}
	return g.units[id].Parent
}

// Segments returns the names from the root down to id.
func (g *Graph) Segments(id UnitID) []string {
	if !g.valid(id) {
		return nil
	}
	var segments []string
	for cur := id; cur != NoUnit; cur = g.units[cur].Parent {
		segments = append(segments, g.units[cur].Name.String())
	}
	slices.Reverse(segments)
	return segments
}

// Path returns the full path of id, e.g. "poc/poc". It keys the unit's cache record.
func (g *Graph) Path(id UnitID) string {
	return strings.Join(g.Segments(id), PathSeparator)
}

// Resolve finds the unit named by segments.
// An empty sequence names the root; otherwise the first segment must be the root's name
// and each following segment is matched exactly against the children of the previous one.
func (g *Graph) Resolve(segments []string) (UnitID, error) {
	if len(segments) == 0 {
		return g.Root(), nil
	}

	target := strings.Join(segments, PathSeparator)
	if segments[0] != g.units[0].Name.String() {
		return NoUnit, unknownTarget(target, segments[0])
	}

	cur := g.Root()
	for _, seg := range segments[1:] {
		next, ok := g.siblings[childKey{parent: cur, name: NewInternedString(seg)}]
		if !ok {
			return NoUnit, unknownTarget(target, seg)
		}
		cur = next
	}
	return cur, nil
}

// Preorder yields id and its descendants, each parent before its children.
func (g *Graph) Preorder(id UnitID) iter.Seq[UnitID] {
	return func(yield func(UnitID) bool) {
		if !g.valid(id) {
			return
		}
		var visit func(UnitID) bool
		visit = func(u UnitID) bool {
			if !yield(u) {
				return false
			}
			for _, c := range g.units[u].children {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		visit(id)
	}
}

// Postorder yields the descendants of id and then id itself.
// Every unit is yielded after all of its children, children in insertion order.
func (g *Graph) Postorder(id UnitID) iter.Seq[UnitID] {
	return func(yield func(UnitID) bool) {
		if !g.valid(id) {
			return
		}
		var visit func(UnitID) bool
		visit = func(u UnitID) bool {
			for _, c := range g.units[u].children {
				if !visit(c) {
					return false
				}
			}
			return yield(u)
		}
		visit(id)
	}
}

// SplitTarget splits a CLI target such as "poc/poc" into its segments.
// Empty segments are ignored, so "" names the root.
func SplitTarget(target string) []string {
	var segments []string
	for seg := range strings.SplitSeq(target, PathSeparator) {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func (g *Graph) valid(id UnitID) bool {
	return id >= 0 && int(id) < len(g.units)
}

func validateName(name string) error {
	if name == "" || strings.Contains(name, PathSeparator) {
		return zerr.With(zerr.Wrap(ErrInvalidUnitName, "invalid unit name"), "name", name)
	}
	return nil
}

func unknownTarget(target, segment string) error {
	err := zerr.Wrap(ErrUnknownTarget, "cannot resolve target")
	err = zerr.With(err, "target", target)
	return zerr.With(err, "segment", segment)
}

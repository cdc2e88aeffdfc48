package app

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/ui/style"
)

// List prints the target subtree as a tree of "name (kind)" labels.
func (a *App) List(_ context.Context, target string, opts Options, w io.Writer) error {
	project, id, err := a.prepare(target, opts)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, renderTree(project.Graph, id, lipgloss.NewRenderer(w)).String())
	return err
}

// renderTree lays out the subtree rooted at id in preorder.
func renderTree(g *domain.Graph, id domain.UnitID, r *lipgloss.Renderer) *tree.Tree {
	kindStyle := r.NewStyle().Foreground(style.Slate)
	label := func(id domain.UnitID) string {
		unit, _ := g.Unit(id)
		return unit.Name.String() + " " + kindStyle.Render("("+unit.Kind.String()+")")
	}

	nodes := make(map[domain.UnitID]*tree.Tree, g.Len())
	var root *tree.Tree
	for current := range g.Preorder(id) {
		node := tree.Root(label(current))
		nodes[current] = node
		if current == id {
			root = node.EnumeratorStyle(r.NewStyle().Foreground(style.Iris).PaddingRight(1))
			continue
		}
		parent := nodes[g.Parent(current)]
		parent.Child(node)
	}
	return root
}

// Package discovery finds the units and standalone models in a source tree
// and registers them as roster groups.
package discovery

import (
	"fmt"

	"github.com/lawnchairsociety/rosterforge/server/internal/describe"
	"github.com/lawnchairsociety/rosterforge/server/internal/normalize"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// Discoverer registers groups into a roster.
type Discoverer struct {
	roster    *roster.Roster
	tree      *source.Tree
	describer *describe.Generator
}

// New returns a discoverer that writes into r and renders tooltips with d.
// A nil d renders with the process palette.
func New(r *roster.Roster, tree *source.Tree, d *describe.Generator) *Discoverer {
	return &Discoverer{roster: r, tree: tree, describer: d}
}

// Discover runs both passes over the tree with the process palette.
func Discover(r *roster.Roster, tree *source.Tree) {
	New(r, tree, nil).Run()
}

// Run registers every standalone game piece, then every unit. Each group
// is prepended to the roster order, so the last group found is listed
// first.
func (d *Discoverer) Run() {
	d.gamePieces()
	d.groups(d.tree.Root())
}

// gamePieces registers every game piece not flagged as part of a group,
// at any depth. Pieces directly under the root are registered flagged or
// not, since the root never becomes a unit. A flagged piece inside another
// game piece belongs to no unit and is reported as a roster error.
func (d *Discoverer) gamePieces() {
	root := d.tree.Root()
	d.tree.Walk(func(n *source.Node) {
		if !n.IsGamePiece() {
			return
		}
		if n.PartOfGroup() {
			parent, _ := d.tree.Parent(n)
			if parent.IsGamePiece() {
				d.roster.AddError(fmt.Sprintf("%s: part of a group but nested inside %s, not registered",
					normalize.DisplayName(n), normalize.DisplayName(parent)))
				return
			}
			if parent != root {
				return
			}
		}
		g := d.newGroup(n, roster.TypeGamePiece)
		d.describe(g.GroupAsset, g)
		g.AddGamePiece(d.roster.NewPieceID(), g.GroupAsset)
		d.roster.PrependGroup(g)
	})
}

// groups walks non-game-piece nodes depth first, registering a node as a
// unit once its subtree has been searched. A unit is any node below the
// root with at least one child flagged as part of a group.
func (d *Discoverer) groups(n *source.Node) {
	var members []*source.Node
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if child.IsGamePiece() {
			if child.PartOfGroup() {
				members = append(members, child)
			}
			continue
		}
		d.groups(child)
	}

	if len(members) == 0 || !d.tree.HasParent(n) {
		return
	}

	g := d.newGroup(n, roster.TypeGroup)
	for _, m := range members {
		piece := normalize.Build(m, 0)
		d.describe(piece, g)
		g.AddGamePiece(d.roster.NewPieceID(), piece)
	}
	d.roster.PrependGroup(g)
}

func (d *Discoverer) newGroup(n *source.Node, typ string) *roster.Group {
	g := roster.NewGroup(d.roster.NewGroupID(), normalize.DisplayName(n), typ)
	g.GroupClass = n.Classification
	g.Meta = n.Meta.Clone()
	g.GroupAsset = normalize.Build(n, 0)
	return g
}

func (d *Discoverer) describe(a *roster.Asset, g *roster.Group) {
	if d.describer == nil {
		describe.Generate(a, g)
		return
	}
	d.describer.Describe(a, g)
}

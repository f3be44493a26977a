package rosz

import (
	"strconv"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// Classifications given to converted nodes. With GroupTraits set they
// become the headers of the tooltip sections.
const (
	classUnit      = "Unit"
	classModel     = "Model"
	classAbilities = "Abilities"
	classWeapons   = "Weapons"
	classRoster    = "Roster"
)

const (
	damageStat = "W"
	coherency  = "2,5,5"
)

// buildTree converts parsed units into a source tree rooted at a node
// named after the roster.
func buildTree(name string, units []*Unit) *source.Node {
	root := &source.Node{Designation: name, Classification: classRoster}
	for _, u := range units {
		root.Included = append(root.Included, unitNode(u))
	}
	return root
}

func unitMeta() *roster.OrderedMap[any] {
	meta := roster.NewOrderedMap[any]()
	meta.Set(roster.MetaDamageStat, damageStat)
	meta.Set(roster.MetaCoherency, coherency)
	return meta
}

func unitNode(u *Unit) *source.Node {
	n := &source.Node{
		Designation:    u.Name,
		Classification: classUnit,
		Aspects:        source.Aspects{GroupTraits: true},
		Meta:           unitMeta(),
	}
	if len(u.FactionKeywords) > 0 {
		n.AddKeywords("Faction", u.FactionKeywords...)
	}
	if len(u.Keywords) > 0 {
		n.AddKeywords("Keywords", u.Keywords...)
	}
	for _, a := range u.Abilities {
		n.Traits = append(n.Traits, abilityNode(a))
	}

	if u.SingleModel && len(u.Models) == 1 {
		m := u.Models[0]
		n.Aspects.Type = roster.TypeGamePiece
		n.Stats = profileStats(u.profileFor(m))
		n.Traits = append(n.Traits, weaponNodes(u, m)...)
		return n
	}

	for _, m := range u.Models {
		n.Included = append(n.Included, modelNode(u, m))
	}
	return n
}

func modelNode(u *Unit, m *Model) *source.Node {
	meta := unitMeta()
	meta.Set(roster.MetaPartOfGroup, true)
	return &source.Node{
		Designation:    m.Name,
		Classification: classModel,
		Aspects:        source.Aspects{Type: roster.TypeGamePiece, GroupTraits: true},
		Quantity:       strconv.Itoa(m.Number),
		Stats:          profileStats(u.profileFor(m)),
		Meta:           meta,
		Traits:         weaponNodes(u, m),
	}
}

func weaponNodes(u *Unit, m *Model) []*source.Node {
	var out []*source.Node
	for _, wc := range m.Weapons {
		w, ok := u.Weapons[wc.Name]
		if !ok {
			continue
		}
		n := &source.Node{
			Designation:    wc.Name,
			Classification: classWeapons,
			Aspects:        source.Aspects{GroupTraits: true},
			Quantity:       strconv.Itoa(wc.Number),
			Stats:          weaponStats(w),
		}
		for _, a := range w.Abilities {
			n.Traits = append(n.Traits, abilityNode(a))
		}
		out = append(out, n)
	}
	return out
}

func abilityNode(a Ability) *source.Node {
	return &source.Node{Designation: a.Name, Classification: classAbilities, Text: a.Desc}
}

// profileFor returns the statline for m, falling back to the unit's own.
func (u *Unit) profileFor(m *Model) Characteristics {
	if c, ok := u.Profiles[m.Profile]; ok {
		return c
	}
	return u.Profiles[u.Name]
}

func profileStats(c Characteristics) []source.Stat {
	return orderedStats([][2]string{
		{"M", c.M}, {"T", c.T}, {"Sv", c.Sv}, {"W", c.W}, {"Ld", c.Ld}, {"OC", c.OC},
	})
}

func weaponStats(w *Weapon) []source.Stat {
	skill := "bs"
	if w.IsMelee() {
		skill = "ws"
	}
	return orderedStats([][2]string{
		{"range", w.Range}, {"a", w.A}, {skill, w.BSWS}, {"s", w.S}, {"ap", w.AP}, {"d", w.D},
	})
}

func orderedStats(pairs [][2]string) []source.Stat {
	var out []source.Stat
	for i, p := range pairs {
		if p[1] == "" {
			continue
		}
		out = append(out, source.Stat{Name: p[0], Format: p[1], HasValue: true, StatOrder: float64(i)})
	}
	return out
}

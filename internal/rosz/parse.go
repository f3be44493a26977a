package rosz

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	factionPrefix = "Faction: "
	profileArrow  = "➤ "
	noKeywords    = "-"
	groupSource   = "group"
)

// Profile type names used by the 10th edition data.
const (
	typeUnit          = "Unit"
	typeAbilities     = "Abilities"
	typeMeleeWeapons  = "Melee Weapons"
	typeRangedWeapons = "Ranged Weapons"
)

// Selection types.
const (
	selectionUnit    = "unit"
	selectionModel   = "model"
	selectionUpgrade = "upgrade"
)

// parseUnits returns every unit selection of every force, allocated with
// mode.
func parseUnits(r *Roster, mode AllocationMode) []*Unit {
	var units []*Unit
	for _, force := range r.Forces {
		for _, sel := range force.Selections {
			if sel.Type != selectionUnit && sel.Type != selectionModel {
				continue
			}
			units = append(units, parseUnit(sel, mode))
		}
	}
	return units
}

func parseUnit(sel Selection, mode AllocationMode) *Unit {
	u := newUnit(sel.Name)

	for _, p := range sel.Profiles {
		switch p.TypeName {
		case typeUnit:
			u.addProfile(parseCharacteristics(p))
		case typeAbilities:
			u.addAbility(parseAbility(p))
		}
	}
	// Rules carry the generic text of abilities that may also appear as
	// profiles; profiles go first so the specific text wins.
	for _, rule := range sel.Rules {
		u.addAbility(Ability{Name: rule.Name, Desc: strings.TrimSpace(rule.Description)})
	}

	if sel.Type == selectionModel {
		u.SingleModel = true
		u.addModel(parseModel(sel, u))
	} else {
		for _, child := range sel.Selections {
			switch child.Type {
			case selectionModel:
				u.addModel(parseModel(child, u))
			case selectionUpgrade:
				addUnitSelection(child, u)
			}
		}
		if len(u.Models) == 0 {
			u.Errors = append(u.Errors, fmt.Sprintf("%s: unit has no model selections", u.Name))
		}
	}

	for _, c := range sel.Categories {
		if strings.HasPrefix(c.Name, factionPrefix) {
			u.addFactionKeyword(strings.TrimPrefix(c.Name, factionPrefix))
		} else {
			u.addKeyword(c.Name)
		}
	}

	u.complete(mode)
	return u
}

func parseModel(sel Selection, u *Unit) *Model {
	m := newModel(sel.Name, selectionNumber(sel), u)
	addModelSelection(sel, m)
	for _, p := range sel.Profiles {
		if p.TypeName == typeUnit {
			u.addProfile(parseCharacteristics(p))
		}
	}
	return m
}

// addModelSelection adds the wargear of sel and its descendants to m. A
// selection of X models carrying Y weapons each lists X*Y weapons.
func addModelSelection(sel Selection, m *Model) {
	for _, child := range sel.Selections {
		addModelSelection(child, m)
	}

	perModel := selectionNumber(sel) / m.Number
	if perModel < 1 {
		perModel = 1
	}
	for _, p := range sel.Profiles {
		switch p.TypeName {
		case typeMeleeWeapons, typeRangedWeapons:
			m.addWeapon(parseWeapon(p, perModel))
		case typeAbilities:
			m.addAbility(parseAbility(p))
		}
	}
}

// addUnitSelection handles upgrades taken at unit level. Upgrades taken
// for the whole group go to every model; the rest wait for allocation.
func addUnitSelection(sel Selection, u *Unit) {
	for _, child := range sel.Selections {
		addUnitSelection(child, u)
	}

	if sel.Type == selectionModel {
		u.addModel(parseModel(sel, u))
		return
	}
	for _, p := range sel.Profiles {
		switch p.TypeName {
		case typeMeleeWeapons, typeRangedWeapons:
			w := parseWeapon(p, 1)
			if sel.From == groupSource {
				u.addAllModelsWeapon(w)
			} else {
				u.addUnassignedWeapon(w)
			}
		case typeAbilities:
			a := parseAbility(p)
			if sel.From == groupSource {
				u.addAbility(a)
			} else {
				u.addUnassignedAbility(a)
			}
		}
	}
}

func parseCharacteristics(p Profile) Characteristics {
	c := Characteristics{Name: p.Name}
	for _, ch := range p.Characteristics {
		switch ch.Name {
		case "M":
			c.M = ch.Value
		case "T":
			c.T = ch.Value
		case "SV":
			c.Sv = ch.Value
		case "W":
			c.W = ch.Value
		case "LD":
			c.Ld = ch.Value
		case "OC":
			c.OC = ch.Value
		}
	}
	return c
}

func parseWeapon(p Profile, number int) *Weapon {
	w := &Weapon{Name: strings.TrimPrefix(p.Name, profileArrow), Number: number}
	keywords := noKeywords
	for _, ch := range p.Characteristics {
		switch ch.Name {
		case "Range":
			w.Range = ch.Value
		case "A":
			w.A = ch.Value
		case "BS", "WS":
			w.BSWS = ch.Value
		case "S":
			w.S = ch.Value
		case "AP":
			w.AP = ch.Value
		case "D":
			w.D = ch.Value
		case "Keywords":
			if ch.Value != "" {
				keywords = ch.Value
			}
		}
	}
	if keywords != noKeywords {
		for _, k := range strings.Split(keywords, ", ") {
			w.Abilities = append(w.Abilities, Ability{Name: k})
		}
	}
	return w
}

func parseAbility(p Profile) Ability {
	a := Ability{Name: p.Name}
	if len(p.Characteristics) > 0 {
		a.Desc = p.Characteristics[0].Value
	}
	return a
}

// selectionNumber reads the number attribute, treating a missing or
// invalid value as one.
func selectionNumber(sel Selection) int {
	n, err := strconv.Atoi(strings.TrimSpace(sel.Number))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

package rosz

import (
	"fmt"
	"sort"
	"strings"
)

// AllocationMode decides where wargear that BattleScribe did not assign
// to a specific model ends up.
type AllocationMode string

const (
	// AllModels gives unassigned wargear to every model in the unit.
	AllModels AllocationMode = "allModels"
	// OneModel piles all unassigned wargear onto one model split off
	// from the largest stack.
	OneModel AllocationMode = "oneModel"
	// SeparateModels gives each unassigned item to its own split-off model.
	SeparateModels AllocationMode = "separateModels"
)

// ParseAllocationMode validates a mode name. The empty string selects
// AllModels.
func ParseAllocationMode(s string) (AllocationMode, error) {
	switch m := AllocationMode(s); m {
	case "":
		return AllModels, nil
	case AllModels, OneModel, SeparateModels:
		return m, nil
	}
	return "", fmt.Errorf("unknown allocation mode %q", s)
}

// MeleeRange is the range characteristic of melee weapons.
const MeleeRange = "Melee"

type Ability struct {
	Name     string
	Desc     string
	Keywords []string
}

type Weapon struct {
	Name      string
	Range     string
	A         string
	BSWS      string
	S         string
	AP        string
	D         string
	Number    int
	Abilities []Ability
}

func (w *Weapon) IsMelee() bool {
	return strings.EqualFold(w.Range, MeleeRange)
}

// WeaponCount is how many of a named weapon a single model carries.
type WeaponCount struct {
	Name   string
	Number int
}

// Characteristics is a model statline.
type Characteristics struct {
	Name string
	M    string
	T    string
	Sv   string
	W    string
	Ld   string
	OC   string
}

// Model is a stack of identical models within a unit.
type Model struct {
	Name      string
	Profile   string
	Number    int
	Weapons   []WeaponCount
	Abilities []Ability

	abilityNames map[string]bool
	unit         *Unit
}

func newModel(name string, number int, unit *Unit) *Model {
	return &Model{Name: name, Profile: name, Number: number, unit: unit, abilityNames: make(map[string]bool)}
}

// maybeSplit returns a single model that can be modified on its own. A
// stack of more than one gives up one model to a new singleton carrying
// copies of its wargear and abilities.
func (m *Model) maybeSplit() *Model {
	if m.Number <= 1 {
		return m
	}
	clone := newModel(m.Name, 1, m.unit)
	clone.Profile = m.Profile
	clone.Weapons = append([]WeaponCount(nil), m.Weapons...)
	clone.Abilities = append([]Ability(nil), m.Abilities...)
	for name := range m.abilityNames {
		clone.abilityNames[name] = true
	}
	m.Number--
	m.unit.TotalModels--
	m.unit.addModel(clone)
	return clone
}

func (m *Model) addAbility(a Ability) {
	if m.abilityNames[a.Name] {
		return
	}
	m.abilityNames[a.Name] = true
	m.Abilities = append(m.Abilities, a)
}

// addWeapon adds w to the model, stacking it onto a weapon of the same
// name. A weapon sharing its name with one of the other kind (melee and
// ranged profiles of one weapon) renames both profiles apart.
func (m *Model) addWeapon(w *Weapon) {
	found := false
	for i := range m.Weapons {
		existing := &m.Weapons[i]
		if existing.Name != w.Name {
			continue
		}
		known, ok := m.unit.Weapons[w.Name]
		if !ok || known.IsMelee() == w.IsMelee() {
			existing.Number += w.Number
			found = true
			break
		}
		melee, ranged := w.Name+" (melee)", w.Name+" (ranged)"
		if w.IsMelee() {
			m.unit.renameWeapon(w.Name, ranged)
			existing.Name = ranged
			w.Name = melee
		} else {
			m.unit.renameWeapon(w.Name, melee)
			existing.Name = melee
			w.Name = ranged
		}
	}
	if !found {
		m.Weapons = append(m.Weapons, WeaponCount{Name: w.Name, Number: w.Number})
	}
	m.unit.Weapons[w.Name] = w
}

// Unit is a BattleScribe unit selection.
type Unit struct {
	Name            string
	SingleModel     bool
	FactionKeywords []string
	Keywords        []string
	Abilities       []Ability
	Models          []*Model
	TotalModels     int
	Profiles        map[string]Characteristics
	Weapons         map[string]*Weapon
	Errors          []string

	unassignedWeapons   []*Weapon
	unassignedAbilities []Ability
	allModelWeapons     []*Weapon
}

func newUnit(name string) *Unit {
	return &Unit{
		Name:     name,
		Profiles: make(map[string]Characteristics),
		Weapons:  make(map[string]*Weapon),
	}
}

func (u *Unit) addModel(m *Model) {
	u.Models = append(u.Models, m)
	u.TotalModels += m.Number
}

// addAbility keeps the first ability seen under each name.
func (u *Unit) addAbility(a Ability) {
	for _, existing := range u.Abilities {
		if existing.Name == a.Name {
			return
		}
	}
	u.Abilities = append(u.Abilities, a)
}

func (u *Unit) removeAbility(name string) {
	for i, a := range u.Abilities {
		if a.Name == name {
			u.Abilities = append(u.Abilities[:i], u.Abilities[i+1:]...)
			return
		}
	}
}

func (u *Unit) addProfile(c Characteristics) {
	u.Profiles[c.Name] = c
}

func (u *Unit) addFactionKeyword(k string) {
	if !contains(u.FactionKeywords, k) {
		u.FactionKeywords = append(u.FactionKeywords, k)
	}
}

func (u *Unit) addKeyword(k string) {
	if !contains(u.Keywords, k) {
		u.Keywords = append(u.Keywords, k)
	}
}

func (u *Unit) addUnassignedWeapon(w *Weapon) {
	u.Weapons[w.Name] = w
	u.unassignedWeapons = append(u.unassignedWeapons, w)
}

func (u *Unit) addAllModelsWeapon(w *Weapon) {
	u.Weapons[w.Name] = w
	u.allModelWeapons = append(u.allModelWeapons, w)
}

func (u *Unit) addUnassignedAbility(a Ability) {
	u.unassignedAbilities = append(u.unassignedAbilities, a)
}

func (u *Unit) renameWeapon(oldName, newName string) {
	w, ok := u.Weapons[oldName]
	if !ok {
		return
	}
	delete(u.Weapons, oldName)
	w.Name = newName
	u.Weapons[newName] = w
}

// complete allocates unassigned wargear, shares abilities between the
// unit and its models, gives all-model weapons to every model and folds
// Core and Faction abilities into one entry each.
func (u *Unit) complete(mode AllocationMode) {
	if (mode == OneModel || mode == SeparateModels) && len(u.Models) > 0 {
		u.allocate(mode)
	} else {
		u.allModelWeapons = append(u.allModelWeapons, u.unassignedWeapons...)
		for _, a := range u.unassignedAbilities {
			u.addAbility(a)
		}
	}
	u.unassignedWeapons = nil
	u.unassignedAbilities = nil

	for _, a := range u.Abilities {
		for _, m := range u.Models {
			m.addAbility(a)
		}
	}
	for _, m := range u.Models {
		for _, a := range m.Abilities {
			u.addAbility(a)
		}
		for _, w := range u.allModelWeapons {
			m.addWeapon(w)
		}
	}
	u.allModelWeapons = nil

	u.aggregateTagged()
}

// allocate hands unassigned wargear to models, starting from the largest
// stack. When there are more items than stacks the walk starts over at
// the first stack.
func (u *Unit) allocate(mode AllocationMode) {
	stacks := append([]*Model(nil), u.Models...)
	sort.SliceStable(stacks, func(i, j int) bool { return stacks[i].Number > stacks[j].Number })

	idx := 0
	var target *Model
	pick := func() *Model {
		if target == nil || mode == SeparateModels {
			if target == stacks[idx] {
				idx++
				if idx >= len(stacks) {
					idx = 0
				}
			}
			target = stacks[idx].maybeSplit()
		}
		return target
	}

	for _, w := range u.unassignedWeapons {
		m := pick()
		m.Name += " w/ " + w.Name
		m.addWeapon(w)
	}
	for _, a := range u.unassignedAbilities {
		m := pick()
		m.Name += " w/ " + a.Name
		m.addAbility(a)
	}
}

// aggregateTagged replaces the abilities tagged Faction, then those
// tagged Core, by a single ability named after the tag listing them. An
// ability carrying both tags counts as Core.
func (u *Unit) aggregateTagged() {
	var core, faction []string
	for _, a := range u.Abilities {
		switch {
		case contains(a.Keywords, "Core"):
			core = append(core, a.Name)
		case contains(a.Keywords, "Faction"):
			faction = append(faction, a.Name)
		}
	}
	for _, group := range []struct {
		tag   string
		names []string
	}{{"Faction", faction}, {"Core", core}} {
		if len(group.names) == 0 {
			continue
		}
		for _, name := range group.names {
			u.removeAbility(name)
		}
		u.addAbility(Ability{Name: group.tag, Desc: strings.Join(group.names, ", ")})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

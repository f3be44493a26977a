// Package roster defines the normalized army document handed to the
// tabletop client.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Roster is the complete normalized document.
type Roster struct {
	Name            string              `json:"name"`
	Game            string              `json:"game"`
	DataSet         string              `json:"dataSet,omitempty"`
	Edition         string              `json:"edition"`
	Version         string              `json:"version"`
	App             string              `json:"app"`
	AppVersion      string              `json:"appVersion"`
	Hash            string              `json:"hash"`
	DecorativeNames string              `json:"decorativeNames,omitempty"`
	Meta            *OrderedMap[any]    `json:"meta"`
	Order           []string            `json:"order"`
	Groups          *OrderedMap[*Group] `json:"groups"`
	Errors          []string            `json:"errors"`

	ids map[string]struct{}
}

// New returns an empty roster.
func New(name string) *Roster {
	return &Roster{
		Name:   name,
		Meta:   NewOrderedMap[any](),
		Order:  []string{},
		Groups: NewOrderedMap[*Group](),
		Errors: []string{},
		ids:    make(map[string]struct{}),
	}
}

// AddGroup appends g to the roster.
func (r *Roster) AddGroup(g *Group) {
	r.reserve(g.ID)
	r.Groups.Set(g.ID, g)
	r.Order = append(r.Order, g.ID)
}

// PrependGroup inserts g at the front of the display order.
func (r *Roster) PrependGroup(g *Group) {
	r.reserve(g.ID)
	r.Groups.Set(g.ID, g)
	r.Order = append([]string{g.ID}, r.Order...)
}

// AddError records a roster-level problem.
func (r *Roster) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddMeta stores a roster-level meta value.
func (r *Roster) AddMeta(key string, value any) {
	if r.Meta == nil {
		r.Meta = NewOrderedMap[any]()
	}
	r.Meta.Set(key, value)
}

// NewGroupID returns an 8 hex digit identifier unused in this roster.
func (r *Roster) NewGroupID() string {
	return r.newID(8)
}

// NewPieceID returns a 16 hex digit identifier unused in this roster.
func (r *Roster) NewPieceID() string {
	return r.newID(16)
}

func (r *Roster) newID(n int) string {
	for {
		id := HexID(n)
		if _, taken := r.ids[id]; !taken {
			r.reserve(id)
			return id
		}
	}
}

func (r *Roster) reserve(id string) {
	if r.ids == nil {
		r.ids = make(map[string]struct{})
	}
	r.ids[id] = struct{}{}
}

// HexID returns n random lowercase hex digits, n at most 32.
func HexID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Validate checks the structural invariants of the roster: every ordered
// id names a group, every group is ordered exactly once, and each group's
// pieces agree with its type.
func (r *Roster) Validate() error {
	var errs []error

	if len(r.Order) != r.Groups.Len() {
		errs = append(errs, fmt.Errorf("order lists %d groups, roster holds %d", len(r.Order), r.Groups.Len()))
	}

	seen := make(map[string]bool, len(r.Order))
	for _, id := range r.Order {
		if seen[id] {
			errs = append(errs, fmt.Errorf("group %s ordered twice", id))
		}
		seen[id] = true
		g, ok := r.Groups.Get(id)
		if !ok {
			errs = append(errs, fmt.Errorf("ordered group %s does not exist", id))
			continue
		}
		if g.ID != id {
			errs = append(errs, fmt.Errorf("group %s stored under %s", g.ID, id))
		}
		switch g.Type {
		case TypeGroup:
			if g.GamePieces.Len() == 0 {
				errs = append(errs, fmt.Errorf("group %s has no game pieces", id))
			}
		case TypeGamePiece:
			if g.GamePieces.Len() > 1 {
				errs = append(errs, fmt.Errorf("game piece %s holds %d pieces", id, g.GamePieces.Len()))
			}
		default:
			errs = append(errs, fmt.Errorf("group %s has unknown type %q", id, g.Type))
		}
	}

	return errors.Join(errs...)
}

package roster

// Group is a top-level roster entry: a unit of several models or a single
// standalone model.
type Group struct {
	ID         string              `json:"uuid"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	GroupClass string              `json:"groupClass"`
	GroupAsset *Asset              `json:"groupAsset"`
	Meta       *OrderedMap[any]    `json:"meta"`
	GamePieces *OrderedMap[*Asset] `json:"gamePieces"`
}

// NewGroup returns an empty group.
func NewGroup(id, name, typ string) *Group {
	return &Group{
		ID:         id,
		Name:       name,
		Type:       typ,
		Meta:       NewOrderedMap[any](),
		GamePieces: NewOrderedMap[*Asset](),
	}
}

// AddGamePiece stores a model under id.
func (g *Group) AddGamePiece(id string, a *Asset) {
	if g.GamePieces == nil {
		g.GamePieces = NewOrderedMap[*Asset]()
	}
	g.GamePieces.Set(id, a)
}

// AddMeta stores a meta value.
func (g *Group) AddMeta(key string, value any) {
	if g.Meta == nil {
		g.Meta = NewOrderedMap[any]()
	}
	g.Meta.Set(key, value)
}

// MetaString returns a meta value as text, or "" when absent.
func (g *Group) MetaString(key string) string {
	if g == nil {
		return ""
	}
	return MetaText(g.Meta, key)
}

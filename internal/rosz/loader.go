// Package rosz reads BattleScribe and New Recruit roster exports for
// Warhammer 40,000 10th edition. Wargear that the export leaves
// unassigned is allocated to models according to an AllocationMode.
package rosz

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

const (
	// GameSystemID identifies the 10th edition game system.
	GameSystemID = "sys-352e-adc2-7639-d6a9"
	// AppName is reported as the roster's producing application.
	AppName = "Battlescribe or New Recruit"
)

// ErrUnsupportedGameSystem is returned for rosters of any other system.
var ErrUnsupportedGameSystem = errors.New("unsupported game system: only 10th edition rosters can be read")

// Loader decodes .rosz archives and plain .ros documents.
type Loader struct {
	Mode AllocationMode
}

// Load parses a roster export into a source document.
func (l Loader) Load(data []byte) (*source.Document, error) {
	raw, err := extractXML(data)
	if err != nil {
		return nil, err
	}
	r, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if r.GameSystemID != GameSystemID {
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedGameSystem, r.GameSystemName)
	}

	mode := l.Mode
	if mode == "" {
		mode = AllModels
	}
	units := parseUnits(r, mode)
	logger.Debug("Parsed rosz roster", "name", r.Name, "units", len(units), "mode", string(mode))

	sum := blake2b.Sum256(raw)
	doc := &source.Document{
		Info: source.Info{
			Name:       r.Name,
			Game:       r.GameSystemName,
			Edition:    r.GameSystemRevision,
			App:        AppName,
			AppVersion: r.BattleScribeVersion,
			Hash:       hex.EncodeToString(sum[:]),
		},
		Meta: roster.NewOrderedMap[any](),
		Root: buildTree(r.Name, units),
	}
	for _, u := range units {
		doc.Errors = append(doc.Errors, u.Errors...)
	}
	return doc, nil
}

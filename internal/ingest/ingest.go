// Package ingest turns an uploaded roster file into a normalized roster.
// It picks the input adapter from the file name, builds the parented
// source tree and runs group discovery over it.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/describe"
	"github.com/lawnchairsociety/rosterforge/server/internal/discovery"
	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
	"github.com/lawnchairsociety/rosterforge/server/internal/registry"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/rosz"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// Format is an upload format, named by its file extension.
type Format string

const (
	FormatRegistry Format = ".regiztry"
	FormatRosz     Format = ".rosz"
	FormatRos      Format = ".ros"
)

// ErrUnknownFormat is returned for file names without a supported extension.
var ErrUnknownFormat = errors.New("only .regiztry, .rosz and .ros files can be read")

// FormatFor returns the upload format implied by filename.
func FormatFor(filename string) (Format, error) {
	switch f := Format(strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))); f {
	case FormatRegistry, FormatRosz, FormatRos:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
}

// Options tune a single parse.
type Options struct {
	AllocationMode  rosz.AllocationMode
	MaxDepth        int
	DecorativeNames string
	// Describer renders tooltips; nil uses the process palette.
	Describer *describe.Generator
}

// LoaderFor returns the adapter for format f.
func LoaderFor(f Format, opts Options) (source.Loader, error) {
	switch f {
	case FormatRegistry:
		return registry.Loader{MaxDepth: opts.MaxDepth}, nil
	case FormatRosz, FormatRos:
		return rosz.Loader{Mode: opts.AllocationMode}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Parse reads one uploaded file. Input corruption is returned as an
// error with no roster; problems in the game data are collected into
// the roster's errors.
func Parse(filename string, data []byte, opts Options) (*roster.Roster, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}
	loader, err := LoaderFor(format, opts)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Load(data)
	if err != nil {
		return nil, err
	}
	return Build(doc, opts)
}

// Build runs discovery over a decoded document.
func Build(doc *source.Document, opts Options) (*roster.Roster, error) {
	tree, err := source.NewTree(doc.Root, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	r := roster.New(doc.Info.Name)
	r.Game = doc.Info.Game
	r.DataSet = doc.Info.DataSet
	r.Edition = doc.Info.Edition
	r.Version = doc.Info.Version
	r.App = doc.Info.App
	r.AppVersion = doc.Info.AppVersion
	r.Hash = doc.Info.Hash
	r.DecorativeNames = opts.DecorativeNames
	doc.Meta.Each(func(k string, v any) { r.AddMeta(k, v) })
	for _, msg := range doc.Errors {
		r.AddError(msg)
	}

	discovery.New(r, tree, opts.Describer).Run()

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build roster: %w", err)
	}
	logger.Debug("Built roster", "name", r.Name, "groups", r.Groups.Len(), "errors", len(r.Errors))
	return r, nil
}

// IsInputCorruption reports whether err means the upload itself is
// unreadable rather than a server fault.
func IsInputCorruption(err error) bool {
	var depth *source.DepthError
	return errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, registry.ErrCorruptArchive) ||
		errors.Is(err, registry.ErrArchiveMemberCount) ||
		errors.Is(err, registry.ErrInvalidDocument) ||
		errors.Is(err, rosz.ErrArchiveMemberCount) ||
		errors.Is(err, rosz.ErrInvalidXML) ||
		errors.Is(err, rosz.ErrUnsupportedGameSystem) ||
		errors.As(err, &depth)
}

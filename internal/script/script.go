// Package script loads the Lua modules attached to stored rosters.
//
// The module directory holds a module_mapping.json naming, for each
// module, the files that make it up, plus the base Rosterizer.lua script.
// Every Lua file is compiled once at load time so a broken module fails
// at startup instead of inside the tabletop client.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
)

const (
	MappingFile = "module_mapping.json"
	BaseScript  = "Rosterizer.lua"
	scriptKeys  = "ScriptKeys"
)

// Known module names. Entries in the mapping under any other name are
// ignored.
var KnownModules = []string{"MatchedPlay", "Crusade"}

// ErrUnknownModule is returned by Build for a module that was not loaded.
var ErrUnknownModule = errors.New("unknown script module")

// Module is one loaded script module.
type Module struct {
	Name string
	// Files maps a mapping field (Constants, Module, ...) to file contents.
	Files map[string]string
	// ScriptKeys is the raw JSON of the module's ScriptKeys field.
	ScriptKeys string
}

// Builder produces the script text stored with a roster.
type Builder struct {
	base    string
	modules map[string]*Module
}

// Load reads the mapping and every file it names from dir.
func Load(dir string) (*Builder, error) {
	mapping, err := os.ReadFile(filepath.Join(dir, MappingFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read module mapping: %w", err)
	}
	if !gjson.ValidBytes(mapping) {
		return nil, fmt.Errorf("failed to parse module mapping: %s is not valid JSON", MappingFile)
	}

	base, err := readScript(dir, BaseScript)
	if err != nil {
		return nil, err
	}

	b := &Builder{base: base, modules: make(map[string]*Module)}
	known := make(map[string]bool, len(KnownModules))
	for _, name := range KnownModules {
		known[name] = true
	}

	gjson.ParseBytes(mapping).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if !known[name] {
			logger.Debug("Ignoring unknown script module", "module", name)
			return true
		}
		m := &Module{Name: name, Files: make(map[string]string)}
		value.ForEach(func(field, v gjson.Result) bool {
			if field.String() == scriptKeys {
				m.ScriptKeys = v.Raw
				return true
			}
			var content string
			content, err = readScript(dir, v.String())
			if err != nil {
				return false
			}
			m.Files[field.String()] = content
			return true
		})
		if err != nil {
			return false
		}
		b.modules[name] = m
		return true
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded script modules", "dir", dir, "modules", strings.Join(b.Modules(), ","))
	return b, nil
}

// readScript reads a file from dir, compiling it first when it is Lua.
func readScript(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read script %s: %w", name, err)
	}
	src := string(data)
	if strings.EqualFold(filepath.Ext(name), ".lua") {
		if err := Check(name, src); err != nil {
			return "", err
		}
	}
	return src, nil
}

// Check compiles src without running it.
func Check(name, src string) error {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer l.Close()
	if _, err := l.LoadString(src); err != nil {
		return fmt.Errorf("failed to compile script %s: %w", name, err)
	}
	return nil
}

// Modules returns the loaded module names, sorted.
func (b *Builder) Modules() []string {
	names := make([]string, 0, len(b.modules))
	for name := range b.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module returns a loaded module by name.
func (b *Builder) Module(name string) (*Module, bool) {
	m, ok := b.modules[name]
	return m, ok
}

// Build returns the script for a roster using the named modules. The
// client pulls module code itself, so the result is the base script;
// the names are still checked so a bad request is reported.
func (b *Builder) Build(modules []string) (string, error) {
	for _, name := range modules {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := b.modules[name]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownModule, name)
		}
	}
	return b.base, nil
}

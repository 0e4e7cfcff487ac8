package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/journey"
)

// DefinitionFile is a custom journey together with the file that declared
// it. Journey is the compiled form, ready to register.
type DefinitionFile struct {
	Definition JourneyDefinition
	Journey    journey.Definition[document.Record]
	Path       string
}

// ParseDefinitionYAML decodes and validates one journey definition. Unknown
// keys, such as a misspelled rule, are rejected.
func ParseDefinitionYAML(data []byte) (JourneyDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return JourneyDefinition{}, fmt.Errorf("plugin: definition payload is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def JourneyDefinition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return JourneyDefinition{}, fmt.Errorf("plugin: definition payload is empty")
		}
		return JourneyDefinition{}, fmt.Errorf("plugin: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return JourneyDefinition{}, err
	}
	return def.Normalized(), nil
}

// LoadDefinitionFile reads, validates and compiles the journey in a YAML
// file. Errors name the file.
func LoadDefinitionFile(fsys afero.Fs, path string) (DefinitionFile, error) {
	path = filepath.Clean(path)
	info, err := fsys.Stat(path)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("journey %s: %w", path, err)
	}
	if info.IsDir() {
		return DefinitionFile{}, fmt.Errorf("journey %s: is a directory", path)
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("journey %s: %w", path, err)
	}
	def, err := ParseDefinitionYAML(data)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("journey %s: %w", path, err)
	}
	return compileFile(path, def)
}

// LoadDefinitionDir loads every *.yaml and *.yml journey in dir, sorted by
// path. A missing directory means no custom journeys.
func LoadDefinitionDir(fsys afero.Fs, dir string) ([]DefinitionFile, error) {
	return scanJourneyDir(fsys, dir, isYAMLFile, func(path string) ([]DefinitionFile, error) {
		file, err := LoadDefinitionFile(fsys, path)
		if err != nil {
			return nil, err
		}
		return []DefinitionFile{file}, nil
	})
}

func compileFile(path string, def JourneyDefinition) (DefinitionFile, error) {
	compiled, err := def.Compile()
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("journey %s: %w", path, err)
	}
	return DefinitionFile{Definition: def, Journey: compiled, Path: path}, nil
}

// scanJourneyDir runs load on each file in dir whose name matches and
// returns the definitions sorted by path.
func scanJourneyDir(fsys afero.Fs, dir string, match func(name string) bool, load func(path string) ([]DefinitionFile, error)) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := afero.ReadDir(fsys, trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read journeys dir %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		loaded, err := load(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, loaded...)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

package plugins

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const goPluginSource = `package main

func JourneyDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"key":     "launch",
			"version": "1.0.0",
			"fields": []map[string]any{
				{"key": "date"},
				{"key": "channels", "kind": "list"},
			},
			"steps": []map[string]any{
				{"slug": "when", "require_all": []string{"date"}},
				{"slug": "where", "min_items": map[string]any{"channels": 1}},
			},
		},
	}, nil
}`

func TestLoadGoDefinitionDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/journeys/launch.go", []byte(goPluginSource), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	defs, err := LoadGoDefinitionDir(fsys, "/journeys")
	if err != nil {
		t.Fatalf("load go defs: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Definition.Key != "launch" || defs[0].Path != "/journeys/launch.go#1" {
		t.Fatalf("unexpected definition: %+v", defs[0])
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/journeys/broken.go", []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("write broken plugin: %v", err)
	}
	if _, err := LoadGoDefinitionDir(fsys, "/journeys"); err == nil {
		t.Fatalf("expected error for missing JourneyDefinitions function")
	}
}

func TestLoadGoDefinitionDirNamesTheBrokenDefinition(t *testing.T) {
	fsys := afero.NewMemMapFs()
	broken := strings.Replace(goPluginSource, `"min_items": map[string]any{"channels": 1}`, `"min_items": map[string]any{"date": 1}`, 1)
	if err := afero.WriteFile(fsys, "/journeys/launch.go", []byte(broken), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := afero.WriteFile(fsys, "/journeys/launch_test.go", []byte("not go at all"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	_, err := LoadGoDefinitionDir(fsys, "/journeys")
	if err == nil {
		t.Fatalf("expected min_items on a text field to fail")
	}
	for _, want := range []string{"/journeys/launch.go#1", "steps[1]", "min_items needs a list field"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

package plugins

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const sampleDefinition = `key: pitch
version: 1.0.0
name: Investor Pitch
fields:
  - key: headline
    label: Headline
  - key: bullets
    kind: list
steps:
  - slug: hook
    require_all: [headline]
  - slug: story
    min_items:
      bullets: 2
  - slug: review
    min_prior: 2
`

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(sampleDefinition))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Key != "pitch" || len(def.Steps) != 3 || def.Steps[1].MinItems["bullets"] != 2 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if def.Fields[1].Label != "bullets" {
		t.Fatalf("expected label to default to key, got %q", def.Fields[1].Label)
	}
}

func TestParseDefinitionYAMLErrors(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("")); err == nil {
		t.Fatalf("expected empty payload to fail validation")
	}
	if _, err := ParseDefinitionYAML([]byte("key: [")); err == nil {
		t.Fatalf("expected malformed yaml to fail")
	}
	if _, err := ParseDefinitionYAML([]byte("# nothing here\n")); err == nil {
		t.Fatalf("expected comment-only payload to fail")
	}
	misspelled := strings.Replace(sampleDefinition, "require_all", "require_al", 1)
	if _, err := ParseDefinitionYAML([]byte(misspelled)); err == nil || !strings.Contains(err.Error(), "require_al") {
		t.Fatalf("expected misspelled rule to be rejected, got %v", err)
	}
}

func TestLoadDefinitionDirNamesTheBrokenFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/journeys"
	if err := afero.WriteFile(fsys, filepath.Join(root, "pitch.yaml"), []byte(sampleDefinition), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	broken := strings.Replace(sampleDefinition, "require_all: [headline]", "require_all: [tagline]", 1)
	brokenPath := filepath.Join(root, "zz-broken.yml")
	if err := afero.WriteFile(fsys, brokenPath, []byte(broken), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	_, err := LoadDefinitionDir(fsys, root)
	if err == nil {
		t.Fatalf("expected the broken journey to fail")
	}
	for _, want := range []string{brokenPath, "steps[0]", "hook", "unknown field tagline"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

func TestLoadDefinitionFileCompiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/journeys/pitch.yaml", []byte(sampleDefinition), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	file, err := LoadDefinitionFile(fsys, "/journeys/pitch.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if file.Journey.Info.Key != "pitch" || file.Journey.Info.StorageKey != "custom-pitch" {
		t.Fatalf("unexpected compiled info: %+v", file.Journey.Info)
	}
	if file.Journey.Registry == nil {
		t.Fatalf("expected a compiled step registry")
	}
	if _, err := LoadDefinitionFile(fsys, "/journeys"); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/journeys"
	path := filepath.Join(root, "pitch.yaml")
	if err := afero.WriteFile(fsys, path, []byte(sampleDefinition), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := afero.WriteFile(fsys, filepath.Join(root, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}
	defs, err := LoadDefinitionDir(fsys, root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Path != path {
		t.Fatalf("expected path %s, got %s", path, defs[0].Path)
	}
}

func TestLoadDefinitionDirMissing(t *testing.T) {
	defs, err := LoadDefinitionDir(afero.NewMemMapFs(), "/missing")
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil slice for missing dir, got %v", defs)
	}
}

package plugins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/storage"
	"github.com/kingrea/waypoint/internal/wizard"
)

func testConfig(dir string) *config.Config {
	return &config.Config{Project: config.ProjectConfig{Journeys: config.JourneyConfig{CustomDir: dir}}}
}

func TestRegisterJourneys(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/home/.waypoint/journeys"
	if err := afero.WriteFile(fsys, filepath.Join(dir, "pitch.yaml"), []byte(sampleDefinition), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	catalog := wizard.NewCatalog()
	keys, err := RegisterJourneys(catalog, fsys, testConfig(dir))
	if err != nil {
		t.Fatalf("register journeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "pitch" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	session, err := catalog.Open("pitch", wizard.Env{KV: storage.NewFileStore(fsys, "/state")})
	if err != nil {
		t.Fatalf("open pitch: %v", err)
	}
	ctx := context.Background()
	session.Hydrate(ctx)
	if ok, skipped := session.SetField(ctx, "headline", "Bikes, fixed"); !ok || len(skipped) != 0 {
		t.Fatalf("set headline: ok=%v skipped=%v", ok, skipped)
	}
	if session.CompletedCount() != 1 {
		t.Fatalf("expected hook step complete, got %d", session.CompletedCount())
	}
	if _, ok := catalog.Validators()["custom-pitch"]; !ok {
		t.Fatalf("expected a restore validator for custom-pitch")
	}
}

func TestRegisterJourneysDuplicateKey(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/journeys"
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := afero.WriteFile(fsys, filepath.Join(dir, name), []byte(sampleDefinition), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := RegisterJourneys(wizard.NewCatalog(), fsys, testConfig(dir)); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestRegisterJourneysNoDir(t *testing.T) {
	keys, err := RegisterJourneys(wizard.NewCatalog(), afero.NewMemMapFs(), testConfig("/nowhere"))
	if err != nil || keys != nil {
		t.Fatalf("expected no journeys, got %v (%v)", keys, err)
	}
}

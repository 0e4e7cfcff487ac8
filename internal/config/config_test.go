package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	projectDir := t.TempDir()
	home := filepath.Join(projectDir, WaypointDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, HomeDir: home, Project: defaultProjectConfig()}
	return c
}

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	c := newTestConfig(t)
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.DefaultJourney() != defaultJourneyKey {
		t.Fatalf("expected default journey %q, got %q", defaultJourneyKey, c.DefaultJourney())
	}
	if c.StorageBackend() != "file" {
		t.Fatalf("expected file backend, got %q", c.StorageBackend())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	c := newTestConfig(t)
	configYAML := strings.TrimSpace(`
version: 1
storage:
  backend: SQLite
logging:
  level: WARN
export:
  dir: ../out
  page_size: letter
journeys:
  default: businessplan
  custom_dir: custom
`)
	if err := os.WriteFile(c.ProjectConfigPath(), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.StorageBackend() != "sqlite" {
		t.Fatalf("backend = %q", c.StorageBackend())
	}
	if want := filepath.Join(c.HomeDir, "state", "waypoint.db"); c.StoragePath() != want {
		t.Fatalf("storage path = %q, want %q", c.StoragePath(), want)
	}
	if c.LogLevel() != "warn" {
		t.Fatalf("log level = %q", c.LogLevel())
	}
	if c.PageSize() != "Letter" {
		t.Fatalf("page size = %q", c.PageSize())
	}
	if want := filepath.Join(c.ProjectDir, "out"); c.ExportsDir() != want {
		t.Fatalf("exports dir = %q, want %q", c.ExportsDir(), want)
	}
	if !strings.HasPrefix(c.JourneysDir(), c.HomeDir) {
		t.Fatalf("expected custom dir under home, got %s", c.JourneysDir())
	}
	if c.DefaultJourney() != "businessplan" {
		t.Fatalf("wrong default journey: %s", c.DefaultJourney())
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := []string{
		"storage:\n  backend: redis\n",
		"logging:\n  level: loud\n",
		"export:\n  page_size: tabloid\n",
	}
	for _, configYAML := range cases {
		c := newTestConfig(t)
		if err := os.WriteFile(c.ProjectConfigPath(), []byte(configYAML), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := c.loadProjectConfig(); err == nil {
			t.Fatalf("expected validation error for %q", configYAML)
		}
	}
}

func TestInitDirCreatesLayoutAndConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	for _, dir := range []string{"state", "logs", "exports", "journeys", "backups"} {
		info, err := os.Stat(filepath.Join(projectDir, WaypointDir, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s dir: %v", dir, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.DefaultJourney() != "brand" {
		t.Fatalf("seeded default journey = %q", cfg.DefaultJourney())
	}
}

func TestHomeEnvOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "elsewhere")
	t.Setenv(HomeEnv, override)
	if got := Home("/ignored"); got != override {
		t.Fatalf("Home = %q, want %q", got, override)
	}
}

func TestSetDefaultJourneyPersists(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetDefaultJourney("namecheck"); err != nil {
		t.Fatalf("SetDefaultJourney: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.DefaultJourney() != "namecheck" {
		t.Fatalf("persisted default = %q", reloaded.DefaultJourney())
	}
	if err := cfg.SetDefaultJourney("  "); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

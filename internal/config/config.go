// internal/config/config.go
//
// This package handles configuration and the .waypoint directory structure.
// Every project that uses waypoint gets a .waypoint/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// WaypointDir is the name of the directory we create in each project
	WaypointDir = ".waypoint"

	// HomeEnv overrides the location of the .waypoint directory.
	HomeEnv = "WAYPOINT_HOME"

	defaultJourneyKey = "brand"
	defaultBackend    = "file"
	defaultLogLevel   = "info"
	defaultPageSize   = "A4"
)

const defaultProjectConfigYAML = `# waypoint project configuration
version: 1

# Where journey progress is kept. backend: file stores one JSON file per
# journey under path; backend: sqlite keeps everything in a single database.
storage:
  backend: file
  # path: state

logging:
  level: info

export:
  dir: exports
  page_size: A4

journeys:
  default: brand
  # Directory scanned for custom journey definitions (*.yaml, *.go).
  custom_dir: journeys
`

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// LoggingConfig controls the logbook.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ExportConfig controls the export sink.
type ExportConfig struct {
	Dir      string `yaml:"dir"`
	PageSize string `yaml:"page_size"`
}

// JourneyConfig captures journey preferences.
type JourneyConfig struct {
	Default   string `yaml:"default"`
	CustomDir string `yaml:"custom_dir,omitempty"`
}

// ProjectConfig models .waypoint/config.yaml.
type ProjectConfig struct {
	Version  int           `yaml:"version"`
	Storage  StorageConfig `yaml:"storage"`
	Logging  LoggingConfig `yaml:"logging"`
	Export   ExportConfig  `yaml:"export"`
	Journeys JourneyConfig `yaml:"journeys"`
}

// Config holds the runtime configuration for waypoint.
type Config struct {
	// ProjectDir is the directory where the user ran `waypoint` from
	ProjectDir string

	// HomeDir is ProjectDir/.waypoint unless WAYPOINT_HOME says otherwise
	HomeDir string

	Project ProjectConfig
}

// Home resolves the .waypoint directory for projectDir.
func Home(projectDir string) string {
	if override := strings.TrimSpace(os.Getenv(HomeEnv)); override != "" {
		return filepath.Clean(override)
	}
	return filepath.Join(projectDir, WaypointDir)
}

// InitDir creates the .waypoint directory structure for the given project
// directory and seeds a default config.yaml.
//
// Structure created:
// .waypoint/
// ├── config.yaml
// ├── state/     <- journey progress (file backend or waypoint.db)
// ├── logs/      <- waypoint.log
// ├── exports/   <- PDF, deck, XLSX and Markdown exports
// ├── journeys/  <- custom journey definitions
// └── backups/   <- backup bundles
func InitDir(projectDir string) error {
	home := Home(projectDir)
	for _, dir := range []string{"state", "logs", "exports", "journeys", "backups"} {
		if err := os.MkdirAll(filepath.Join(home, dir), 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(home, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	home := Home(projectDir)
	cfg := &Config{
		ProjectDir: projectDir,
		HomeDir:    home,
		Project:    defaultProjectConfig(),
	}
	cfg.Project.normalize(home)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.HomeDir, "state")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.HomeDir, "logs")
}

// LogPath returns the logbook file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "waypoint.log")
}

// BackupsDir returns the default location for backup bundles
func (c *Config) BackupsDir() string {
	return filepath.Join(c.HomeDir, "backups")
}

// ExportsDir returns the directory export artifacts are written to
func (c *Config) ExportsDir() string {
	return c.Project.Export.Dir
}

// JourneysDir returns the directory scanned for custom journeys
func (c *Config) JourneysDir() string {
	return c.Project.Journeys.CustomDir
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.HomeDir, "config.yaml")
}

// StorageBackend returns the configured backend name.
func (c *Config) StorageBackend() string {
	return c.Project.Storage.Backend
}

// StoragePath returns the directory (file backend) or database file (sqlite
// backend) holding journey state.
func (c *Config) StoragePath() string {
	return c.Project.Storage.Path
}

// LogLevel returns the configured logbook level.
func (c *Config) LogLevel() string {
	return c.Project.Logging.Level
}

// PageSize returns the export page size.
func (c *Config) PageSize() string {
	return c.Project.Export.PageSize
}

// DefaultJourney returns the journey opened when the TUI starts.
func (c *Config) DefaultJourney() string {
	return c.Project.Journeys.Default
}

// SetDefaultJourney updates the default journey and persists the value back
// to .waypoint/config.yaml.
func (c *Config) SetDefaultJourney(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("config: journey key is required")
	}
	c.Project.Journeys.Default = key
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.HomeDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Storage.Backend) == "" {
		pc.Storage.Backend = defaultBackend
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(pc.Export.Dir) == "" {
		pc.Export.Dir = "exports"
	}
	if strings.TrimSpace(pc.Export.PageSize) == "" {
		pc.Export.PageSize = defaultPageSize
	}
	if strings.TrimSpace(pc.Journeys.Default) == "" {
		pc.Journeys.Default = defaultJourneyKey
	}
	if strings.TrimSpace(pc.Journeys.CustomDir) == "" {
		pc.Journeys.CustomDir = "journeys"
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Storage.Backend = strings.ToLower(strings.TrimSpace(pc.Storage.Backend))
	if strings.TrimSpace(pc.Storage.Path) == "" {
		pc.Storage.Path = "state"
		if pc.Storage.Backend == "sqlite" {
			pc.Storage.Path = filepath.Join("state", "waypoint.db")
		}
	}
	pc.Storage.Path = resolvePath(base, pc.Storage.Path)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	pc.Export.Dir = resolvePath(base, pc.Export.Dir)
	pc.Export.PageSize = normalizePageSize(pc.Export.PageSize)
	pc.Journeys.Default = strings.TrimSpace(pc.Journeys.Default)
	pc.Journeys.CustomDir = resolvePath(base, pc.Journeys.CustomDir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be 'file' or 'sqlite'")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch pc.Export.PageSize {
	case "A3", "A4", "A5", "Letter", "Legal":
	default:
		return fmt.Errorf("export.page_size %q is not supported", pc.Export.PageSize)
	}
	if pc.Journeys.Default == "" {
		return fmt.Errorf("journeys.default is required")
	}
	return nil
}

func normalizePageSize(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "a3":
		return "A3"
	case "a4":
		return "A4"
	case "a5":
		return "A5"
	case "letter":
		return "Letter"
	case "legal":
		return "Legal"
	}
	return trimmed
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.HomeDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.HomeDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure waypoint dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

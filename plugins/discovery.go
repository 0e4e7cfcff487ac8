// Package plugins loads custom journeys declared in YAML or in Go source
// evaluated with yaegi, compiles them into journey definitions over
// document.Record, and registers them in the wizard catalog.
package plugins

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/wizard"
)

// RegisterJourneys discovers YAML and Go journey definitions under the
// configured journeys directory and registers them. It returns the keys it
// registered.
func RegisterJourneys(catalog *wizard.Catalog, fsys afero.Fs, cfg *config.Config) ([]string, error) {
	if catalog == nil || cfg == nil {
		return nil, nil
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	defs, err := loadAllDefinitionFiles(fsys, cfg.JourneysDir())
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}
	seen := make(map[string]string)
	var keys []string
	for _, file := range defs {
		key := file.Journey.Info.Key
		if existing, ok := seen[key]; ok {
			return keys, fmt.Errorf("journey %s: duplicate key %s (also declared in %s)", file.Path, key, existing)
		}
		seen[key] = file.Path
		if err := wizard.RegisterDefinition(catalog, file.Journey); err != nil {
			return keys, fmt.Errorf("journey %s: register %s: %w", file.Path, key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func loadAllDefinitionFiles(fsys afero.Fs, dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}

// Package backup bundles every stored journey and worksheet blob into one
// JSON file and restores bundles section by section. A restore keeps going
// past bad sections and reports each one it skipped.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/storage"
)

// Format tags bundles written by this package.
const Format = "waypoint-backup/v1"

// Bundle is a full-state snapshot. Sections map storage keys to the stored
// blob text.
type Bundle struct {
	Format     string            `json:"format"`
	ID         string            `json:"id"`
	ExportedAt time.Time         `json:"exportedAt"`
	Sections   map[string]string `json:"sections"`
}

// Validator checks one section before it overwrites stored state.
type Validator = func(raw []byte) error

// Skip explains why a section was not restored.
type Skip struct {
	Key    string
	Reason string
}

// Result lists the restored and skipped sections, each in key order.
type Result struct {
	Imported []string
	Skipped  []Skip
}

// ErrMalformed is returned for bundles that cannot be read at all.
var ErrMalformed = errors.New("backup: malformed bundle")

// Option configures Export.
type Option func(*exportOptions)

type exportOptions struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the export timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *exportOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Export reads keys from kv into a new bundle. Keys with nothing stored are
// left out.
func Export(ctx context.Context, kv storage.KV, keys []string, opts ...Option) (Bundle, error) {
	o := exportOptions{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	bundle := Bundle{
		Format:     Format,
		ID:         o.newID(),
		ExportedAt: o.now().UTC(),
		Sections:   make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		raw, err := kv.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return Bundle{}, fmt.Errorf("backup: read %s: %w", key, err)
		}
		bundle.Sections[key] = string(raw)
	}
	return bundle, nil
}

// Encode marshals the bundle as indented JSON.
func (b Bundle) Encode() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Keys returns the section keys in order.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b.Sections))
	for key := range b.Sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type wireBundle struct {
	Format     string                     `json:"format"`
	ID         string                     `json:"id"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Sections   map[string]json.RawMessage `json:"sections"`
}

// Parse reads a bundle. Each section may hold the blob as a JSON string or
// embed it directly as an object; any other value is kept verbatim so Import
// can report it.
func Parse(raw []byte) (Bundle, error) {
	var wire wireBundle
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire.Format != "" && wire.Format != Format {
		return Bundle{}, fmt.Errorf("%w: unsupported format %q", ErrMalformed, wire.Format)
	}
	if wire.Sections == nil {
		return Bundle{}, fmt.Errorf("%w: no sections", ErrMalformed)
	}
	out := Bundle{
		Format:     Format,
		ID:         wire.ID,
		ExportedAt: wire.ExportedAt,
		Sections:   make(map[string]string, len(wire.Sections)),
	}
	for key, value := range wire.Sections {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var text string
			if err := json.Unmarshal(trimmed, &text); err == nil {
				out.Sections[key] = text
				continue
			}
		}
		out.Sections[key] = string(trimmed)
	}
	return out, nil
}

// Import restores every section that has a validator and passes it. Unknown
// and invalid sections are skipped; the first storage failure stops the
// restore and is returned with the partial result.
func Import(ctx context.Context, kv storage.KV, bundle Bundle, validators map[string]Validator) (Result, error) {
	result := Result{Imported: []string{}, Skipped: []Skip{}}
	for _, key := range bundle.Keys() {
		validate, ok := validators[key]
		if !ok {
			result.Skipped = append(result.Skipped, Skip{Key: key, Reason: "unknown section"})
			continue
		}
		raw := []byte(bundle.Sections[key])
		if err := validate(raw); err != nil {
			result.Skipped = append(result.Skipped, Skip{Key: key, Reason: err.Error()})
			continue
		}
		if err := kv.Set(ctx, key, raw); err != nil {
			return result, fmt.Errorf("backup: restore %s: %w", key, err)
		}
		result.Imported = append(result.Imported, key)
	}
	return result, nil
}

// Save writes the bundle to path atomically.
func Save(fs afero.Fs, path string, bundle Bundle) error {
	raw, err := bundle.Encode()
	if err != nil {
		return fmt.Errorf("backup: encode: %w", err)
	}
	if err := storage.WriteFileAtomic(fs, path, raw); err != nil {
		return fmt.Errorf("backup: write %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the bundle at path.
func Load(fs afero.Fs, path string) (Bundle, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Bundle{}, fmt.Errorf("backup: read %s: %w", path, err)
	}
	return Parse(raw)
}

// FileName is the default bundle name for an export at t.
func FileName(t time.Time) string {
	return "waypoint-backup-" + t.UTC().Format("20060102-150405") + ".json"
}

package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/storage"
)

// JourneyDefinition describes a custom journey loaded from YAML or Go.
//
// The struct mirrors the on-disk schema under .waypoint/journeys/*.yaml. Field
// values live in a document.Record, and each step's completion rule is built
// from the declared field keys.
type JourneyDefinition struct {
	Key         string            `json:"key" yaml:"key"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string            `json:"version" yaml:"version"`
	StorageKey  string            `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`
	Fields      []FieldDefinition `json:"fields" yaml:"fields"`
	Steps       []StepDefinition  `json:"steps" yaml:"steps"`
}

// FieldDefinition declares one document field.
type FieldDefinition struct {
	Key   string             `json:"key" yaml:"key"`
	Label string             `json:"label,omitempty" yaml:"label,omitempty"`
	Kind  document.FieldKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Hint  string             `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// StepDefinition declares one step and its completion rule. Every listed
// rule must hold:
//
//   - require_all: each field is filled
//   - require_any: at least one field is filled
//   - min_items: each list field holds at least n non-blank entries
//   - min_prior: at least n earlier steps are complete
//
// Fields lists the keys shown on the step; it defaults to the keys the
// rules mention.
type StepDefinition struct {
	Slug       string         `json:"slug" yaml:"slug"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Prompt     string         `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Fields     []string       `json:"fields,omitempty" yaml:"fields,omitempty"`
	RequireAll []string       `json:"require_all,omitempty" yaml:"require_all,omitempty"`
	RequireAny []string       `json:"require_any,omitempty" yaml:"require_any,omitempty"`
	MinItems   map[string]int `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MinPrior   int            `json:"min_prior,omitempty" yaml:"min_prior,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def JourneyDefinition) Normalized() JourneyDefinition {
	clone := JourneyDefinition{
		Key:         strings.TrimSpace(def.Key),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
		StorageKey:  strings.TrimSpace(def.StorageKey),
	}
	if clone.Name == "" {
		clone.Name = clone.Key
	}
	if clone.StorageKey == "" && clone.Key != "" {
		clone.StorageKey = "custom-" + clone.Key
	}
	if len(def.Fields) > 0 {
		clone.Fields = make([]FieldDefinition, len(def.Fields))
		for i, field := range def.Fields {
			clone.Fields[i] = field.normalized()
		}
	}
	if len(def.Steps) > 0 {
		clone.Steps = make([]StepDefinition, len(def.Steps))
		for i, step := range def.Steps {
			clone.Steps[i] = step.normalized()
		}
	}
	return clone
}

func (field FieldDefinition) normalized() FieldDefinition {
	clone := FieldDefinition{
		Key:   strings.TrimSpace(field.Key),
		Label: strings.TrimSpace(field.Label),
		Kind:  document.FieldKind(strings.ToLower(strings.TrimSpace(string(field.Kind)))),
		Hint:  strings.TrimSpace(field.Hint),
	}
	if clone.Kind == "" {
		clone.Kind = document.KindText
	}
	if clone.Label == "" {
		clone.Label = clone.Key
	}
	return clone
}

func (step StepDefinition) normalized() StepDefinition {
	clone := StepDefinition{
		Slug:       strings.TrimSpace(step.Slug),
		Name:       strings.TrimSpace(step.Name),
		Prompt:     strings.TrimSpace(step.Prompt),
		Fields:     trimKeys(step.Fields),
		RequireAll: trimKeys(step.RequireAll),
		RequireAny: trimKeys(step.RequireAny),
		MinPrior:   step.MinPrior,
	}
	if len(step.MinItems) > 0 {
		clone.MinItems = make(map[string]int, len(step.MinItems))
		for key, n := range step.MinItems {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.MinItems[trimmed] = n
		}
	}
	if len(clone.Fields) == 0 {
		clone.Fields = clone.ruleKeys()
	}
	return clone
}

// ruleKeys returns the field keys named by the step's rules, in first-use
// order with min_items keys sorted.
func (step StepDefinition) ruleKeys() []string {
	var keys []string
	seen := map[string]bool{}
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for _, key := range step.RequireAll {
		add(key)
	}
	for _, key := range step.RequireAny {
		add(key)
	}
	for _, key := range sortedKeys(step.MinItems) {
		add(key)
	}
	return keys
}

func (step StepDefinition) hasFieldRule() bool {
	return len(step.RequireAll) > 0 || len(step.RequireAny) > 0 || len(step.MinItems) > 0
}

// Validate ensures the definition is well-formed and every rule references
// a declared field of a suitable kind.
func (def JourneyDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Key == "" {
		return fmt.Errorf("plugin: key is required")
	}
	if err := storage.ValidateKey(normalized.Key); err != nil {
		return fmt.Errorf("plugin %s: %w", normalized.Key, err)
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.Key)
	}
	if err := storage.ValidateKey(normalized.StorageKey); err != nil {
		return fmt.Errorf("plugin %s: storage_key: %w", normalized.Key, err)
	}
	if len(normalized.Fields) == 0 {
		return fmt.Errorf("plugin %s: at least one field is required", normalized.Key)
	}
	specs := make([]document.FieldSpec, len(normalized.Fields))
	for i, field := range normalized.Fields {
		specs[i] = document.FieldSpec{Key: field.Key, Kind: field.Kind}
	}
	codec, err := document.NewRecordCodec(specs)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", normalized.Key, err)
	}
	if len(normalized.Steps) == 0 {
		return fmt.Errorf("plugin %s: at least one step is required", normalized.Key)
	}
	for idx, step := range normalized.Steps {
		if err := step.validate(idx, codec); err != nil {
			return fmt.Errorf("plugin %s: steps[%d]: %w", normalized.Key, idx, err)
		}
	}
	return nil
}

func (step StepDefinition) validate(idx int, codec *document.RecordCodec) error {
	if step.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if !step.hasFieldRule() && step.MinPrior == 0 {
		return fmt.Errorf("%s: at least one of require_all, require_any, min_items or min_prior is required", step.Slug)
	}
	if step.MinPrior < 0 || step.MinPrior > idx {
		return fmt.Errorf("%s: min_prior %d out of range 0..%d", step.Slug, step.MinPrior, idx)
	}
	for _, group := range [][]string{step.Fields, step.RequireAll, step.RequireAny} {
		for _, key := range group {
			if _, ok := codec.Kind(key); !ok {
				return fmt.Errorf("%s: unknown field %s", step.Slug, key)
			}
		}
	}
	for key, n := range step.MinItems {
		kind, ok := codec.Kind(key)
		if !ok {
			return fmt.Errorf("%s: unknown field %s", step.Slug, key)
		}
		if kind != document.KindList {
			return fmt.Errorf("%s: min_items needs a list field, %s is %s", step.Slug, key, kind)
		}
		if n < 1 {
			return fmt.Errorf("%s: min_items for %s must be positive", step.Slug, key)
		}
	}
	return nil
}

func trimKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

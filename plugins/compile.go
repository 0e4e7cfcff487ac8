package plugins

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
)

// Compile turns the definition into a runnable journey over Records.
func (def JourneyDefinition) Compile() (journey.Definition[document.Record], error) {
	if err := def.Validate(); err != nil {
		return journey.Definition[document.Record]{}, err
	}
	normalized := def.Normalized()
	specs := make([]document.FieldSpec, len(normalized.Fields))
	fields := make(map[string]FieldDefinition, len(normalized.Fields))
	for i, field := range normalized.Fields {
		specs[i] = document.FieldSpec{Key: field.Key, Kind: field.Kind}
		fields[field.Key] = field
	}
	codec, err := document.NewRecordCodec(specs)
	if err != nil {
		return journey.Definition[document.Record]{}, fmt.Errorf("plugin %s: %w", normalized.Key, err)
	}

	steps := make([]journey.Step[document.Record], len(normalized.Steps))
	for idx, step := range normalized.Steps {
		steps[idx] = compileStep(idx+1, step, codec, fields)
	}
	registry, err := journey.NewRegistry(steps...)
	if err != nil {
		return journey.Definition[document.Record]{}, fmt.Errorf("plugin %s: %w", normalized.Key, err)
	}
	return journey.Definition[document.Record]{
		Info: journey.Info{
			Key:         normalized.Key,
			Name:        normalized.Name,
			Description: normalized.Description,
			StorageKey:  normalized.StorageKey,
		},
		Registry: registry,
		Codec:    codec,
		Render:   renderer(normalized, fields),
	}, nil
}

func compileStep(id int, step StepDefinition, codec *document.RecordCodec, fields map[string]FieldDefinition) journey.Step[document.Record] {
	out := journey.Step[document.Record]{
		ID:       id,
		Slug:     step.Slug,
		Name:     step.Name,
		MinPrior: step.MinPrior,
		Meta:     stepForm(step, fields),
	}
	if !step.hasFieldRule() {
		return out
	}
	checks := stepChecks(step, codec)
	out.Complete = func(r document.Record) bool {
		for _, check := range checks {
			if !check(r) {
				return false
			}
		}
		return true
	}
	if len(checks) > 1 {
		out.Progress = func(r document.Record) float64 {
			results := make([]bool, len(checks))
			for i, check := range checks {
				results[i] = check(r)
			}
			return journey.FieldFraction(results...)
		}
	}
	return out
}

func stepChecks(step StepDefinition, codec *document.RecordCodec) []func(document.Record) bool {
	var checks []func(document.Record) bool
	for _, key := range step.RequireAll {
		key := key
		kind, _ := codec.Kind(key)
		checks = append(checks, func(r document.Record) bool { return filled(r, key, kind) })
	}
	if len(step.RequireAny) > 0 {
		keys := append([]string{}, step.RequireAny...)
		checks = append(checks, func(r document.Record) bool {
			for _, key := range keys {
				kind, _ := codec.Kind(key)
				if filled(r, key, kind) {
					return true
				}
			}
			return false
		})
	}
	for _, key := range sortedKeys(step.MinItems) {
		key, n := key, step.MinItems[key]
		checks = append(checks, func(r document.Record) bool {
			return journey.CountNonEmpty(r.List(key)) >= n
		})
	}
	return checks
}

// filled reports whether a field holds a meaningful value: non-blank text,
// a non-blank list entry, a non-zero number or a set flag.
func filled(r document.Record, key string, kind document.FieldKind) bool {
	switch kind {
	case document.KindList:
		return journey.CountNonEmpty(r.List(key)) > 0
	case document.KindNumber:
		return r.Number(key) != 0
	case document.KindBool:
		return r.Bool(key)
	default:
		return journey.NonEmpty(r.Text(key))
	}
}

func stepForm(step StepDefinition, fields map[string]FieldDefinition) journey.Form {
	form := journey.Form{Prompt: step.Prompt}
	for _, key := range step.Fields {
		field := fields[key]
		form.Fields = append(form.Fields, journey.FormField{
			Path:  field.Key,
			Label: field.Label,
			Kind:  inputKind(field.Kind),
			Hint:  field.Hint,
		})
	}
	return form
}

func inputKind(kind document.FieldKind) journey.InputKind {
	switch kind {
	case document.KindList:
		return journey.InputList
	case document.KindNumber:
		return journey.InputNumber
	case document.KindBool:
		return journey.InputBool
	default:
		return journey.InputText
	}
}

// renderer emits one section per step holding "Label: value" lines for the
// step's filled fields.
func renderer(def JourneyDefinition, fields map[string]FieldDefinition) func(document.Record) export.Document {
	return func(r document.Record) export.Document {
		out := export.Document{Title: def.Name, Subtitle: def.Description}
		for _, step := range def.Steps {
			heading := step.Name
			if heading == "" {
				heading = step.Slug
			}
			section := export.Section{Heading: heading}
			for _, key := range step.Fields {
				field := fields[key]
				if !filled(r, key, field.Kind) {
					continue
				}
				section.Lines = append(section.Lines, field.Label+": "+valueText(r, key, field.Kind))
			}
			out.Sections = append(out.Sections, section)
		}
		return out
	}
}

func valueText(r document.Record, key string, kind document.FieldKind) string {
	switch kind {
	case document.KindList:
		return strings.Join(r.List(key), ", ")
	case document.KindNumber:
		return strconv.FormatFloat(r.Number(key), 'f', -1, 64)
	case document.KindBool:
		return "yes"
	default:
		return r.Text(key)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

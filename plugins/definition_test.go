package plugins

import (
	"strings"
	"testing"

	"github.com/kingrea/waypoint/internal/document"
)

func pitchDefinition() JourneyDefinition {
	return JourneyDefinition{
		Key:     "pitch",
		Name:    "Investor Pitch",
		Version: "1.0.0",
		Fields: []FieldDefinition{
			{Key: "headline", Label: "Headline"},
			{Key: "bullets", Label: "Bullets", Kind: document.KindList},
			{Key: "ask", Label: "Ask", Kind: document.KindNumber},
			{Key: "deck", Label: "Deck ready", Kind: document.KindBool},
		},
		Steps: []StepDefinition{
			{Slug: "hook", Name: "Hook", RequireAll: []string{"headline"}},
			{Slug: "story", Name: "Story", MinItems: map[string]int{"bullets": 2}},
			{Slug: "ask", Name: "Ask", RequireAny: []string{"ask", "deck"}},
			{Slug: "review", Name: "Review", MinPrior: 2},
		},
	}
}

func TestJourneyDefinitionValidate(t *testing.T) {
	if err := pitchDefinition().Validate(); err != nil {
		t.Fatalf("expected definition to validate, got %v", err)
	}
	normalized := pitchDefinition().Normalized()
	if normalized.StorageKey != "custom-pitch" {
		t.Fatalf("expected default storage key, got %q", normalized.StorageKey)
	}
	if got := normalized.Steps[1].Fields; len(got) != 1 || got[0] != "bullets" {
		t.Fatalf("expected rule keys as default fields, got %v", got)
	}
}

func TestJourneyDefinitionValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JourneyDefinition)
		msg    string
	}{
		{name: "missing key", mutate: func(d *JourneyDefinition) { d.Key = "" }, msg: "key is required"},
		{name: "bad key", mutate: func(d *JourneyDefinition) { d.Key = "My Pitch" }, msg: "invalid character"},
		{name: "missing version", mutate: func(d *JourneyDefinition) { d.Version = " " }, msg: "version is required"},
		{name: "no fields", mutate: func(d *JourneyDefinition) { d.Fields = nil }, msg: "at least one field"},
		{name: "bad kind", mutate: func(d *JourneyDefinition) { d.Fields[0].Kind = "date" }, msg: "unknown kind"},
		{name: "no steps", mutate: func(d *JourneyDefinition) { d.Steps = nil }, msg: "at least one step"},
		{
			name:   "unknown field",
			mutate: func(d *JourneyDefinition) { d.Steps[0].RequireAll = []string{"nope"} },
			msg:    "unknown field nope",
		},
		{
			name:   "min items on text",
			mutate: func(d *JourneyDefinition) { d.Steps[1].MinItems = map[string]int{"headline": 1} },
			msg:    "needs a list field",
		},
		{
			name:   "rule-less step",
			mutate: func(d *JourneyDefinition) { d.Steps[0].RequireAll = nil },
			msg:    "at least one of",
		},
		{
			name:   "min prior too large",
			mutate: func(d *JourneyDefinition) { d.Steps[3].MinPrior = 4 },
			msg:    "out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := pitchDefinition()
			tt.mutate(&def)
			err := def.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected error to contain %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestCompileBuildsRules(t *testing.T) {
	def, err := pitchDefinition().Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if def.Info.StorageKey != "custom-pitch" || def.Registry.Total() != 4 {
		t.Fatalf("unexpected definition: %+v", def.Info)
	}
	doc := def.Codec.Default()
	if def.Registry.CompletedCount(doc) != 0 {
		t.Fatalf("default record should complete nothing")
	}

	doc, _ = def.Codec.Merge(doc, document.Patch{"headline": "Bikes, fixed", "bullets": []string{"one"}})
	if got := def.Registry.CompletedCount(doc); got != 1 {
		t.Fatalf("expected 1 complete step, got %d", got)
	}
	doc, _ = def.Codec.Merge(doc, document.Patch{"bullets": []string{"one", "two"}, "deck": true})
	if !def.Registry.IsJourneyComplete(doc) {
		t.Fatalf("expected every step complete, got %d", def.Registry.CompletedCount(doc))
	}

	rendered := def.Render(doc)
	if rendered.Title != "Investor Pitch" || len(rendered.Sections) != 4 {
		t.Fatalf("unexpected render: %+v", rendered)
	}
	if got := rendered.Sections[1].Lines; len(got) != 1 || got[0] != "Bullets: one, two" {
		t.Fatalf("unexpected story lines: %v", got)
	}
	if got := rendered.Sections[2].Lines; len(got) != 1 || got[0] != "Deck ready: yes" {
		t.Fatalf("unexpected ask lines: %v", got)
	}
}

package brand

import (
	"fmt"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
	"github.com/kingrea/waypoint/internal/wizard"
)

// Key identifies the journey in the catalog.
const Key = "brand"

// StorageKey names the persisted slot.
const StorageKey = "brand-strategy"

// Definition returns the brand identity journey.
func Definition() journey.Definition[document.BrandStrategy] {
	return journey.Definition[document.BrandStrategy]{
		Info: journey.Info{
			Key:         Key,
			Name:        "Brand Identity",
			Description: "Ten stations from name and origin story to a brand DNA statement.",
			StorageKey:  StorageKey,
		},
		Registry: journey.MustRegistry(stations()...),
		Codec:    document.BrandCodec,
		Render:   Render,
	}
}

type doc = document.BrandStrategy

func stations() []journey.Step[doc] {
	return []journey.Step[doc]{
		{
			ID: 1, Slug: "core", Name: "Core",
			Complete: func(d doc) bool {
				return journey.NonEmpty(d.BrandName) && countWords(d.Associations) > 0
			},
			Progress: func(d doc) float64 {
				return journey.FieldFraction(journey.NonEmpty(d.BrandName), countWords(d.Associations) > 0)
			},
			Meta: journey.Form{
				Prompt: "Name the brand and the words it should evoke.",
				Fields: []journey.FormField{
					{Path: "brandName", Label: "Brand name", Kind: journey.InputText},
					{Path: "tagline", Label: "Tagline", Kind: journey.InputText},
					{
						Path: "associations", Label: "Associations", Kind: journey.InputEntries,
						Hint:    "word | weight 1-5; ...",
						Columns: []journey.Column{{Key: "word"}, {Key: "weight", Kind: journey.InputNumber}},
					},
				},
			},
		},
		{
			ID: 2, Slug: "origin", Name: "Origin",
			Complete: func(d doc) bool { return journey.AnyNonEmpty(d.Catalyst, d.CoreTruth) },
			Meta: journey.Form{
				Prompt: "What sparked the brand, and what is true about it?",
				Fields: []journey.FormField{
					{Path: "catalyst", Label: "Catalyst", Kind: journey.InputText},
					{Path: "coreTruth", Label: "Core truth", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 3, Slug: "purpose", Name: "Purpose",
			Complete: func(d doc) bool { return journey.AllNonEmpty(d.Purpose, d.Vision) },
			Progress: func(d doc) float64 {
				return journey.FieldFraction(journey.NonEmpty(d.Purpose), journey.NonEmpty(d.Vision))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "purpose", Label: "Purpose", Kind: journey.InputText},
					{Path: "vision", Label: "Vision", Kind: journey.InputText},
					{Path: "mission", Label: "Mission", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 4, Slug: "audience", Name: "Audience",
			Complete: func(d doc) bool {
				return journey.NonEmpty(d.IdealCustomer) && journey.CountNonEmpty(d.PainPoints) > 0
			},
			Progress: func(d doc) float64 {
				return journey.FieldFraction(journey.NonEmpty(d.IdealCustomer), journey.CountNonEmpty(d.PainPoints) > 0)
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "idealCustomer", Label: "Ideal customer", Kind: journey.InputText},
					{Path: "painPoints", Label: "Pain points", Kind: journey.InputList},
				},
			},
		},
		{
			ID: 5, Slug: "archetype", Name: "Archetype",
			Complete: func(d doc) bool { return journey.NonEmpty(d.Archetype.Primary) },
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "archetype.primary", Label: "Primary archetype", Kind: journey.InputChoice, Choices: Archetypes},
					{Path: "archetype.secondary", Label: "Secondary archetype", Kind: journey.InputChoice, Choices: Archetypes},
				},
			},
		},
		{
			ID: 6, Slug: "emotions", Name: "Emotions",
			Complete: func(d doc) bool { return journey.CountNonEmpty(d.Emotions) > 0 },
			Meta: journey.Form{
				Prompt: "How should people feel after meeting the brand?",
				Fields: []journey.FormField{{Path: "emotions", Label: "Emotions", Kind: journey.InputList}},
			},
		},
		{
			ID: 7, Slug: "voice", Name: "Voice",
			Complete: func(d doc) bool {
				return journey.NonEmpty(d.Voice.Tone) && journey.CountNonEmpty(d.Voice.Traits) > 0
			},
			Progress: func(d doc) float64 {
				return journey.FieldFraction(journey.NonEmpty(d.Voice.Tone), journey.CountNonEmpty(d.Voice.Traits) > 0)
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "voice.tone", Label: "Tone", Kind: journey.InputText},
					{Path: "voice.traits", Label: "Traits", Kind: journey.InputList},
					{Path: "voice.avoid", Label: "Avoid", Kind: journey.InputList},
				},
			},
		},
		{
			ID: 8, Slug: "values", Name: "Values",
			Complete: func(d doc) bool { return journey.CountNonEmpty(d.Values) >= 3 },
			Progress: func(d doc) float64 { return 100 * float64(journey.CountNonEmpty(d.Values)) / 3 },
			Meta: journey.Form{
				Prompt: "List at least three values.",
				Fields: []journey.FormField{{Path: "values", Label: "Values", Kind: journey.InputList}},
			},
		},
		{
			ID: 9, Slug: "visual", Name: "Visual",
			Complete: func(d doc) bool { return journey.AllNonEmpty(d.Visual.PrimaryColor, d.Visual.SecondaryColor) },
			Progress: func(d doc) float64 {
				return journey.FieldFraction(journey.NonEmpty(d.Visual.PrimaryColor), journey.NonEmpty(d.Visual.SecondaryColor))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "visual.primaryColor", Label: "Primary color", Kind: journey.InputText, Hint: "#RRGGBB"},
					{Path: "visual.secondaryColor", Label: "Secondary color", Kind: journey.InputText, Hint: "#RRGGBB"},
					{Path: "visual.accentColor", Label: "Accent color", Kind: journey.InputText, Hint: "#RRGGBB"},
					{Path: "visual.typography", Label: "Typography", Kind: journey.InputText},
					{Path: "visual.logoPath", Label: "Logo file", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 10, Slug: "dna", Name: "Brand DNA",
			MinPrior: 5,
			Meta: journey.Form{
				Prompt: "Summarize the brand in one paragraph once five stations are done.",
				Fields: []journey.FormField{{Path: "brandDNA", Label: "Brand DNA", Kind: journey.InputText}},
			},
		},
	}
}

// Archetypes are the twelve classic brand archetypes offered by the form.
var Archetypes = []string{
	"Innocent", "Everyman", "Hero", "Outlaw", "Explorer", "Creator",
	"Ruler", "Magician", "Lover", "Caregiver", "Jester", "Sage",
}

func countWords(items []document.Association) int {
	n := 0
	for _, item := range items {
		if journey.NonEmpty(item.Word) {
			n++
		}
	}
	return n
}

// Render builds the export snapshot of a brand strategy.
func Render(d doc) export.Document {
	title := "Brand Strategy"
	if journey.NonEmpty(d.BrandName) {
		title = d.BrandName + " Brand Strategy"
	}
	out := export.Document{Title: title, Subtitle: d.Tagline}
	add := func(heading string, lines ...string) {
		out.Sections = append(out.Sections, export.Section{Heading: heading, Lines: compact(lines)})
	}

	var words []string
	for _, a := range d.Associations {
		if !journey.NonEmpty(a.Word) {
			continue
		}
		if a.Weight > 0 {
			words = append(words, fmt.Sprintf("%s (%d)", a.Word, a.Weight))
		} else {
			words = append(words, a.Word)
		}
	}
	add("Core", labeled("Name", d.BrandName), labeled("Associations", strings.Join(words, ", ")))
	add("Origin", labeled("Catalyst", d.Catalyst), labeled("Core truth", d.CoreTruth))
	add("Purpose", labeled("Purpose", d.Purpose), labeled("Vision", d.Vision), labeled("Mission", d.Mission))
	add("Audience", append([]string{labeled("Ideal customer", d.IdealCustomer)}, d.PainPoints...)...)
	add("Archetype", labeled("Primary", d.Archetype.Primary), labeled("Secondary", d.Archetype.Secondary))
	add("Emotions", d.Emotions...)
	add("Voice",
		labeled("Tone", d.Voice.Tone),
		labeled("Traits", strings.Join(d.Voice.Traits, ", ")),
		labeled("Avoid", strings.Join(d.Voice.Avoid, ", ")),
	)
	add("Values", d.Values...)
	add("Visual",
		labeled("Primary", d.Visual.PrimaryColor),
		labeled("Secondary", d.Visual.SecondaryColor),
		labeled("Accent", d.Visual.AccentColor),
		labeled("Typography", d.Visual.Typography),
		labeled("Logo", d.Visual.LogoPath),
	)
	add("Brand DNA", d.BrandDNA)
	return out
}

func labeled(label, value string) string {
	if !journey.NonEmpty(value) {
		return ""
	}
	return label + ": " + strings.TrimSpace(value)
}

func compact(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if journey.NonEmpty(line) {
			out = append(out, line)
		}
	}
	return out
}

// Register installs the brand journey into the catalog.
func Register(c *wizard.Catalog) {
	if err := wizard.RegisterDefinition(c, Definition()); err != nil {
		panic(err)
	}
}

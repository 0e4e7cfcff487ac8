package document

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyObjectYieldsDefaults(t *testing.T) {
	doc, errs, err := BrandCodec.Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, errs)
	if diff := cmp.Diff(DefaultBrandStrategy(), doc); diff != "" {
		t.Fatalf("decoded doc differs from default (-want +got):\n%s", diff)
	}
	assert.NotNil(t, doc.Associations)
	assert.NotNil(t, doc.Voice.Traits)
}

func TestDecodeGarbageFieldsFallBackPerField(t *testing.T) {
	raw := []byte(`{
		"brandName": "Acme",
		"associations": "not-a-list",
		"emotions": ["calm", 4],
		"voice": {"tone": 12},
		"values": ["honest"],
		"lastUpdated": "yesterday",
		"somethingElse": true
	}`)
	doc, errs, err := BrandCodec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Acme", doc.BrandName)
	assert.Equal(t, []string{"honest"}, doc.Values)
	assert.Equal(t, []Association{}, doc.Associations)
	assert.Equal(t, []string{}, doc.Emotions)
	assert.Equal(t, DefaultBrandStrategy().Voice, doc.Voice)
	assert.True(t, doc.LastUpdated.IsZero())

	skipped := map[string]bool{}
	for _, e := range errs {
		skipped[e.Field] = true
	}
	assert.Equal(t, map[string]bool{
		"associations": true,
		"emotions":     true,
		"voice":        true,
		"lastUpdated":  true,
	}, skipped)
}

func TestDecodeNullFieldsKeepDefaults(t *testing.T) {
	doc, errs, err := BusinessPlanCodec.Decode([]byte(`{"risks": null, "idea": "bakery"}`))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, []Risk{}, doc.Risks)
	assert.Equal(t, "bakery", doc.Idea)
}

func TestDecodePartialNestedObjectKeepsNestedDefaults(t *testing.T) {
	doc, errs, err := BrandCodec.Decode([]byte(`{"voice":{"tone":"calm"}}`))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "calm", doc.Voice.Tone)
	assert.Equal(t, []string{}, doc.Voice.Traits)
	assert.Equal(t, []string{}, doc.Voice.Avoid)

	plan, errs := BusinessPlanCodec.Merge(DefaultBusinessPlan(), Patch{"operations": map[string]any{"location": "Leeds"}})
	assert.Empty(t, errs)
	if diff := cmp.Diff(DefaultBusinessPlan().Operations.Team, plan.Operations.Team); diff != "" {
		t.Fatalf("team lost its default (-want +got):\n%s", diff)
	}

	check, _, err := NameCheckCodec.Decode([]byte(`{"trademark":{"searched":true}}`))
	require.NoError(t, err)
	assert.True(t, check.Trademark.Searched)
	assert.Equal(t, []string{}, check.Trademark.Conflicts)
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `"text"`, `{broken`} {
		doc, _, err := NameCheckCodec.Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, "payload %q", raw)
		assert.Equal(t, DefaultNameCheck(), doc)
	}
}

func TestMergeIsShallow(t *testing.T) {
	base := DefaultBrandStrategy()
	base.Voice = Voice{Tone: "warm", Traits: []string{"kind"}, Avoid: []string{"jargon"}}
	merged, errs := BrandCodec.Merge(base, Patch{"voice": map[string]any{"tone": "bold"}})
	assert.Empty(t, errs)
	assert.Equal(t, "bold", merged.Voice.Tone)
	assert.Equal(t, []string{}, merged.Voice.Traits, "omitted nested keys reset to their defaults")
	assert.Equal(t, []string{}, merged.Voice.Avoid)
}

func TestMergeSamePatchTwiceIsIdempotent(t *testing.T) {
	patch := Patch{"brandName": "Acme", "associations": []Association{{Word: "Trustworthy"}}}
	once, _ := BrandCodec.Merge(DefaultBrandStrategy(), patch)
	twice, _ := BrandCodec.Merge(once, patch)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("repeated patch changed document (-once +twice):\n%s", diff)
	}
}

func TestMergeKeepsValidKeysWhenOthersFail(t *testing.T) {
	merged, errs := BusinessPlanCodec.Merge(DefaultBusinessPlan(), Patch{
		"idea":       "coffee cart",
		"financials": "lots",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "financials", errs[0].Field)
	assert.Equal(t, "coffee cart", merged.Idea)
	assert.Equal(t, Financials{}, merged.Financials)
}

func TestMergeSetsTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	merged, errs := SWOTCodec.Merge(DefaultSWOT(), Patch{LastUpdatedKey: now})
	assert.Empty(t, errs)
	assert.True(t, merged.LastUpdated.Equal(now))
}

func TestValidateIsStrict(t *testing.T) {
	assert.NoError(t, CanvasCodec.Validate([]byte(`{"channels": ["web"]}`)))
	assert.Error(t, CanvasCodec.Validate([]byte(`{"channels": "web"}`)))
	assert.ErrorIs(t, CanvasCodec.Validate([]byte(`{"channels": [`)), ErrNotObject)
}

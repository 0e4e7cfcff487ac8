package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pitchCodec(t *testing.T) *RecordCodec {
	t.Helper()
	codec, err := NewRecordCodec([]FieldSpec{
		{Key: "headline", Kind: KindText},
		{Key: "bullets", Kind: KindList},
		{Key: "ask", Kind: KindNumber},
		{Key: "ready", Kind: KindBool},
	})
	require.NoError(t, err)
	return codec
}

func TestRecordDefaultsCoverEveryField(t *testing.T) {
	doc := pitchCodec(t).Default()
	assert.Equal(t, "", doc.Text("headline"))
	assert.Equal(t, []string{}, doc.List("bullets"))
	assert.Equal(t, float64(0), doc.Number("ask"))
	assert.False(t, doc.Bool("ready"))
	assert.Contains(t, doc, LastUpdatedKey)
}

func TestRecordDecodeSkipsMismatchedKinds(t *testing.T) {
	codec := pitchCodec(t)
	doc, errs, err := codec.Decode([]byte(`{"headline": 3, "bullets": ["a"], "ask": 5000, "extra": "x"}`))
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "headline", errs[0].Field)
	assert.Equal(t, "", doc.Text("headline"))
	assert.Equal(t, []string{"a"}, doc.List("bullets"))
	assert.Equal(t, float64(5000), doc.Number("ask"))
	assert.NotContains(t, doc, "extra")
}

func TestRecordMergeDoesNotMutateBase(t *testing.T) {
	codec := pitchCodec(t)
	base := codec.Default()
	merged, errs := codec.Merge(base, Patch{"headline": "Fund us"})
	assert.Empty(t, errs)
	assert.Equal(t, "Fund us", merged.Text("headline"))
	assert.Equal(t, "", base.Text("headline"))
}

func TestRecordCodecRejectsBadSchemas(t *testing.T) {
	_, err := NewRecordCodec([]FieldSpec{{Key: "a"}, {Key: "a"}})
	assert.Error(t, err)
	_, err = NewRecordCodec([]FieldSpec{{Key: LastUpdatedKey}})
	assert.Error(t, err)
	_, err = NewRecordCodec([]FieldSpec{{Key: "a", Kind: "matrix"}})
	assert.Error(t, err)
}

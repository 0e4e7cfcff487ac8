package worksheet

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/storage"
)

type warnings struct{ lines []string }

func (w *warnings) Warn(format string, _ ...any)  { w.lines = append(w.lines, format) }
func (w *warnings) Error(format string, _ ...any) { w.lines = append(w.lines, format) }

func newKV() storage.KV {
	return storage.NewFileStore(afero.NewMemMapFs(), "/state")
}

func TestAddAndRemoveItemsPersist(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	clock := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	swot := SWOT(kv, WithClock(clock))

	require.NoError(t, swot.AddItem(ctx, "strengths", "Loyal customers"))
	require.NoError(t, swot.AddItem(ctx, "strengths", "Low costs"))
	require.NoError(t, swot.AddItem(ctx, "threats", "New entrant"))
	require.NoError(t, swot.RemoveItem(ctx, "strengths", 0))

	reopened := SWOT(kv)
	got := reopened.Document(ctx)
	want := document.DefaultSWOT()
	want.Strengths = []string{"Low costs"}
	want.Threats = []string{"New entrant"}
	want.LastUpdated = clock()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("swot mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidListsAndIndexes(t *testing.T) {
	ctx := context.Background()
	canvas := Canvas(newKV())
	assert.Error(t, canvas.AddItem(ctx, "nonsense", "x"))
	assert.Error(t, canvas.AddItem(ctx, "channels", "   "))
	assert.Error(t, canvas.RemoveItem(ctx, "channels", 0))
	_, err := canvas.Items(ctx, "nonsense")
	assert.Error(t, err)
}

func TestLoadRepairsDamagedFields(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	require.NoError(t, kv.Set(ctx, CanvasKey, []byte(`{"channels":["Web"],"keyPartners":"oops"}`)))

	log := &warnings{}
	canvas := Canvas(kv, WithLogger(log))
	canvas.Load(ctx)
	items, err := canvas.Items(ctx, "channels")
	require.NoError(t, err)
	assert.Equal(t, []string{"Web"}, items)
	partners, err := canvas.Items(ctx, "keyPartners")
	require.NoError(t, err)
	assert.Empty(t, partners)
	assert.Len(t, log.lines, 1)

	assert.Error(t, canvas.Validate([]byte(`{"channels":["Web"],"keyPartners":"oops"}`)))
	assert.NoError(t, canvas.Validate([]byte(`{"channels":["Web"]}`)))
}

func TestClearAndRender(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	canvas := Canvas(kv)
	require.NoError(t, canvas.SetList(ctx, "valuePropositions", []string{"Fast", " ", "Cheap"}))

	out := canvas.Render()
	assert.Equal(t, "Business Model Canvas", out.Title)
	require.Len(t, out.Sections, len(document.CanvasBlocks))
	assert.Equal(t, "Value Propositions", out.Sections[3].Heading)
	assert.Equal(t, []string{"Fast", "Cheap"}, out.Sections[3].Lines)

	require.NoError(t, canvas.Clear(ctx))
	_, err := kv.Get(ctx, CanvasKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	if diff := cmp.Diff(document.DefaultCanvas(), canvas.Document(ctx), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("canvas not reset (-want +got):\n%s", diff)
	}
}

func TestBuiltins(t *testing.T) {
	sheets := Builtins(newKV())
	for _, key := range Keys() {
		require.Contains(t, sheets, key)
		assert.Equal(t, key, sheets[key].Key())
	}
	assert.Equal(t, "Key Partners", Heading("keyPartners"))
}

package namecheck

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/storage"
	"github.com/kingrea/waypoint/internal/wizard"
)

func openSession(t *testing.T) *Session {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	session, err := Factory(wizard.Env{KV: storage.NewFileStore(afero.NewMemMapFs(), "/state"), Now: clock})
	require.NoError(t, err)
	s, ok := session.(*Session)
	require.True(t, ok)
	s.Hydrate(context.Background())
	return s
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Acme Labs ", "acme-labs"},
		{"\uff23\uff41\uff46\u00e9_Bleu!!", "caf-bleu"},
		{"--x--y--", "x-y"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), tc.in)
	}
}

func TestUpdateSearchSeedsRowsOnce(t *testing.T) {
	ctx := context.Background()
	s := openSession(t)

	require.True(t, s.UpdateSearch(ctx, "Acme Labs"))
	doc := s.Document()
	assert.Equal(t, "acme-labs", doc.NormalizedName)
	require.Len(t, doc.Domains, len(TLDs))
	assert.Equal(t, "acme-labs.com", doc.Domains[0].Domain)
	assert.Equal(t, "@acmelabs", doc.Socials[0].Handle)

	_, _ = s.SetField(ctx, "domains", []document.DomainCheck{{TLD: ".com", Domain: "acme-labs.com", Status: document.StatusTaken}})
	require.True(t, s.UpdateSearch(ctx, "acme labs"))
	assert.Equal(t, document.StatusTaken, s.Document().Domains[0].Status, "same normalized name keeps results")

	require.True(t, s.UpdateSearch(ctx, "Zenith"))
	assert.Equal(t, document.StatusUnchecked, s.Document().Domains[0].Status)
}

func TestVerdictNeedsThreePriorStations(t *testing.T) {
	def := Definition()
	r := document.DefaultNameCheck()
	r.Name = "Acme"
	r.Verdict = "keep"
	verdict, _ := def.Registry.StepBySlug("verdict")
	assert.False(t, verdict.Complete(r))

	r.Domains = []document.DomainCheck{{Domain: "acme.com", Status: document.StatusAvailable}}
	r.Trademark.Searched = true
	assert.True(t, verdict.Complete(r))

	r.Verdict = ""
	assert.False(t, verdict.Complete(r))
}

func TestSaveSnapshotUpsertsByNormalizedName(t *testing.T) {
	ctx := context.Background()
	s := openSession(t)

	_, err := s.SaveSnapshot(ctx)
	assert.Error(t, err)

	require.True(t, s.UpdateSearch(ctx, "Acme"))
	first, err := s.SaveSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, first.ID, 26)

	_, _ = s.SetField(ctx, "verdict", "keep")
	second, err := s.SaveSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, s.Saved(), 1)
	assert.Equal(t, "keep", s.Saved()[0].Verdict)

	require.True(t, s.UpdateSearch(ctx, "Zenith"))
	third, err := s.SaveSnapshot(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Len(t, s.Saved(), 2)

	assert.False(t, s.RemoveSaved(ctx, "missing"))
	assert.True(t, s.RemoveSaved(ctx, first.ID))
	require.Len(t, s.Saved(), 1)
	assert.Equal(t, "Zenith", s.Saved()[0].Name)
}

func TestActions(t *testing.T) {
	ctx := context.Background()
	s := openSession(t)
	search, ok := wizard.FindAction(s, "search")
	require.True(t, ok)
	msg, err := search.Run(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Searching acme", msg)

	remove, ok := wizard.FindAction(s, "remove")
	require.True(t, ok)
	_, err = remove.Run(ctx, "nope")
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	r := document.DefaultNameCheck()
	assert.Equal(t, 0, Score(r))
	r.Domains = []document.DomainCheck{{Status: document.StatusAvailable}, {Status: document.StatusTaken}}
	r.Socials = []document.SocialCheck{{Status: document.StatusAvailable}}
	r.Trademark.Searched = true
	r.Linguistic.Pronounceable = 5
	r.Linguistic.Spellable = 5
	assert.Equal(t, 20+30+15+15, Score(r))
}

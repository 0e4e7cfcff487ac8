package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kingrea/waypoint/internal/backup"
	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/storage"
	"github.com/kingrea/waypoint/internal/wizard"
	"github.com/kingrea/waypoint/internal/worksheet"
)

const launchJourney = `key: launch
version: 1.0.0
name: Launch Checklist
fields:
  - key: date
  - key: channels
    kind: list
steps:
  - slug: when
    require_all: [date]
  - slug: where
    min_items:
      channels: 2
`

var fixedNow = func() time.Time { return time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC) }

func openTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	t.Setenv(config.HomeEnv, "")
	dir := t.TempDir()
	ws, err := Open(context.Background(), dir, append([]Option{WithClock(fixedNow)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestOpenRegistersBuiltinAndCustomJourneys(t *testing.T) {
	t.Setenv(config.HomeEnv, "")
	dir := t.TempDir()
	require.NoError(t, config.InitDir(dir))
	path := filepath.Join(config.Home(dir), "journeys", "launch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(launchJourney), 0o644))

	ws, err := Open(context.Background(), dir)
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, []string{"launch"}, ws.Custom)
	assert.Equal(t, []string{"brand", "businessplan", "namecheck", "launch"}, ws.Catalog.Keys())
	assert.Contains(t, ws.BackupKeys(), "custom-launch")
	assert.Contains(t, ws.BackupKeys(), worksheet.SWOTKey)

	session, err := ws.Session(context.Background(), "launch")
	require.NoError(t, err)
	assert.False(t, session.Loading())
	assert.Equal(t, 2, session.Total())
}

func TestSessionIsSharedAndUnknownKeysFail(t *testing.T) {
	ws := openTestWorkspace(t)
	ctx := context.Background()
	first, err := ws.Session(ctx, "brand")
	require.NoError(t, err)
	second, err := ws.Session(ctx, "brand")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = ws.Session(ctx, "missing")
	assert.Error(t, err)
	_, err = ws.Sheet(ctx, "missing")
	assert.Error(t, err)
}

func TestConcurrentSessionOpensShareOneSession(t *testing.T) {
	ws := openTestWorkspace(t)
	const callers = 8
	got := make([]wizard.Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := ws.Session(context.Background(), "businessplan")
			if err == nil {
				got[i] = session
			}
		}(i)
	}
	wg.Wait()
	require.NotNil(t, got[0])
	for _, session := range got[1:] {
		assert.Same(t, got[0], session)
	}
}

func TestDebugLevelRecordsSessionOpens(t *testing.T) {
	t.Setenv(config.HomeEnv, "")
	dir := t.TempDir()
	require.NoError(t, config.InitDir(dir))
	cfgPath := filepath.Join(config.Home(dir), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\nlogging:\n  level: debug\n"), 0o644))

	ws, err := Open(context.Background(), dir)
	require.NoError(t, err)
	defer ws.Close()

	_, err = ws.Session(context.Background(), "brand")
	require.NoError(t, err)
	lines, _ := ws.Log.Tail(10)
	assert.Contains(t, strings.Join(lines, "\n"), "Opened brand at step 1 of 10")
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	ws := openTestWorkspace(t)
	ctx := context.Background()
	session, err := ws.Session(ctx, "brand")
	require.NoError(t, err)
	changed, errs := session.SetField(ctx, "brandName", "Acme")
	require.True(t, changed)
	require.Empty(t, errs)
	sheet, err := ws.Sheet(ctx, worksheet.SWOTKey)
	require.NoError(t, err)
	require.NoError(t, sheet.AddItem(ctx, "strengths", "Fast delivery"))

	path, err := ws.BackupToFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "waypoint-backup-20260304-103000.json", filepath.Base(path))

	require.True(t, session.Reset(ctx))
	require.NoError(t, sheet.Clear(ctx))

	bundle, err := backup.Load(ws.Fs, path)
	require.NoError(t, err)
	result, err := ws.Restore(ctx, bundle)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"brand-strategy", worksheet.SWOTKey}, result.Imported)
	assert.Empty(t, result.Skipped)

	raw, err := session.DocumentJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"brandName": "Acme"`)
	items, err := sheet.Items(ctx, "strengths")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fast delivery"}, items)
}

func TestRestoreSkipsInvalidSections(t *testing.T) {
	ws := openTestWorkspace(t)
	bundle := backup.Bundle{
		Format: backup.Format,
		Sections: map[string]string{
			"brand-strategy": `{"document":{"brandName":7}}`,
			"mystery":        `{}`,
		},
	}
	result, err := ws.Restore(context.Background(), bundle)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.Skipped, 2)
}

func TestExternalEditReloadsOpenSession(t *testing.T) {
	ws := openTestWorkspace(t)
	ctx := context.Background()
	session, err := ws.Session(ctx, "brand")
	require.NoError(t, err)

	other := storage.NewFileStore(afero.NewOsFs(), ws.Config.StoragePath())
	require.NoError(t, other.Set(ctx, "brand-strategy", []byte(`{"document":{"brandName":"Elsewhere"},"currentStepId":2,"completedStepIds":[]}`)))
	ws.handleEvent(storage.Event{Key: "brand-strategy", Op: storage.OpSet, External: true})

	assert.Equal(t, 2, session.CurrentStepID())
	raw, err := session.DocumentJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Elsewhere")
}

func TestBrandKitWritesThroughBrandJourney(t *testing.T) {
	ws := openTestWorkspace(t)
	ctx := context.Background()
	kit, err := ws.BrandKit(ctx)
	require.NoError(t, err)
	again, err := ws.BrandKit(ctx)
	require.NoError(t, err)
	assert.Same(t, kit, again)

	require.NoError(t, kit.SetColors(ctx, "#abc", "", ""))
	session, err := ws.Session(ctx, "brand")
	require.NoError(t, err)
	raw, err := session.DocumentJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "#AABBCC")
}

func TestExportWritesIntoExportsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws := openTestWorkspace(t, WithFs(fs))
	ctx := context.Background()
	session, err := ws.Session(ctx, "brand")
	require.NoError(t, err)
	session.SetField(ctx, "brandName", "Acme")

	path, err := ws.Export(session.Render(), "md", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, ws.Config.ExportsDir()))
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme Brand Strategy")
}

func TestCloseStopsWatcher(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	t.Setenv(config.HomeEnv, "")
	ws, err := Open(context.Background(), t.TempDir(), WithWatch(true))
	require.NoError(t, err)
	require.NoError(t, ws.Close())
}

// Package workspace wires a project's .waypoint directory into the objects
// the TUI and CLI work with: config, logbook, storage, the journey catalog,
// worksheets, the export sink and backups.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/kingrea/waypoint/internal/backup"
	"github.com/kingrea/waypoint/internal/brandkit"
	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journeys"
	"github.com/kingrea/waypoint/internal/journeys/brand"
	"github.com/kingrea/waypoint/internal/logbook"
	"github.com/kingrea/waypoint/internal/storage"
	"github.com/kingrea/waypoint/internal/wizard"
	"github.com/kingrea/waypoint/internal/worksheet"
	"github.com/kingrea/waypoint/plugins"
)

// Option customizes Open.
type Option func(*options)

type options struct {
	fs    afero.Fs
	now   func() time.Time
	watch bool
}

// WithFs sets the filesystem used for exports, backups, logos and custom
// journeys. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithClock overrides the clock stamped into documents, exports and bundles.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWatch starts the fsnotify watcher on file-backed state so edits from
// another process reload open journeys.
func WithWatch(enabled bool) Option {
	return func(o *options) { o.watch = enabled }
}

// Workspace holds everything opened for one project.
type Workspace struct {
	Config  *config.Config
	Log     *logbook.Logbook
	KV      storage.KV
	Catalog *wizard.Catalog
	Sheets  map[string]worksheet.Worksheet
	Sink    *export.Sink
	Fs      afero.Fs

	// Custom lists the keys of journeys loaded from the journeys directory.
	Custom []string

	now    func() time.Time
	closer io.Closer

	opening     singleflight.Group
	mu          sync.Mutex
	sessions    map[string]wizard.Session
	completed   []string
	brandKit    *brandkit.Store
	unsubscribe func()
	stopWatch   context.CancelFunc
	watchDone   chan struct{}
}

// Open initializes the .waypoint directory under projectDir if needed and
// opens every component. Custom journeys that fail to load are logged and
// skipped.
func Open(ctx context.Context, projectDir string, opts ...Option) (*Workspace, error) {
	o := options{fs: afero.NewOsFs(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := config.InitDir(projectDir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath(), logbook.WithLevel(logbook.ParseLevel(cfg.LogLevel())))
	if err != nil {
		return nil, err
	}
	kv, closer, err := storage.Open(ctx, cfg.StorageBackend(), cfg.StoragePath())
	if err != nil {
		_ = lb.Close()
		return nil, err
	}

	catalog := wizard.NewCatalog()
	journeys.RegisterBuiltins(catalog)
	custom, err := plugins.RegisterJourneys(catalog, o.fs, cfg)
	if err != nil {
		lb.Warn("Custom journeys · %v", err)
	}

	ws := &Workspace{
		Config:   cfg,
		Log:      lb,
		KV:       kv,
		Catalog:  catalog,
		Sheets:   worksheet.Builtins(kv, worksheet.WithLogger(lb), worksheet.WithClock(o.now)),
		Sink:     export.NewSink(o.fs, cfg.ExportsDir(), export.WithPageSize(cfg.PageSize()), export.WithLogger(lb), export.WithClock(o.now)),
		Fs:       o.fs,
		Custom:   custom,
		now:      o.now,
		closer:   closer,
		sessions: map[string]wizard.Session{},
	}
	ws.unsubscribe = kv.Subscribe(ws.handleEvent)
	if o.watch {
		ws.startWatch(ctx)
	}
	lb.Info("Workspace opened · %d journey(s), backend %s", len(catalog.Keys()), backendName(cfg.StorageBackend()))
	return ws, nil
}

func backendName(backend string) string {
	if backend == "" {
		return storage.BackendFile
	}
	return backend
}

func (w *Workspace) startWatch(ctx context.Context) {
	store, ok := w.KV.(*storage.FileStore)
	if !ok {
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.stopWatch = cancel
	w.watchDone = done
	go func() {
		defer close(done)
		if err := store.Watch(watchCtx); err != nil && !errors.Is(err, storage.ErrWatchUnsupported) {
			w.Log.Warn("State watcher stopped: %v", err)
		}
	}()
}

// handleEvent reloads whatever is bound to a key another process changed.
func (w *Workspace) handleEvent(ev storage.Event) {
	if !ev.External {
		return
	}
	w.refreshKey(context.Background(), ev.Key)
}

func (w *Workspace) refreshKey(ctx context.Context, key string) {
	w.mu.Lock()
	var targets []wizard.Session
	for _, session := range w.sessions {
		if session.Info().StorageKey == key {
			targets = append(targets, session)
		}
	}
	w.mu.Unlock()
	for _, session := range targets {
		if session.Reload(ctx) {
			w.Log.Info("Reloaded %s after an external change", session.Info().Key)
		}
	}
	if sheet, ok := w.Sheets[key]; ok {
		sheet.Load(ctx)
		w.Log.Info("Reloaded worksheet %s", key)
	}
}

// Session returns the hydrated session for a journey, opening it on first
// use. Sessions are shared by every caller of the workspace.
func (w *Workspace) Session(ctx context.Context, key string) (wizard.Session, error) {
	w.mu.Lock()
	session, ok := w.sessions[key]
	w.mu.Unlock()
	if ok {
		return session, nil
	}
	opened, err, _ := w.opening.Do(key, func() (any, error) {
		w.mu.Lock()
		existing, ok := w.sessions[key]
		w.mu.Unlock()
		if ok {
			return existing, nil
		}
		session, err := w.Catalog.Open(key, wizard.Env{
			KV:         w.KV,
			Log:        w.Log,
			Now:        w.now,
			OnComplete: w.markCompleted,
		})
		if err != nil {
			return nil, err
		}
		session.Hydrate(ctx)
		w.Log.Debug("Opened %s at step %d of %d", key, session.CurrentStepID(), session.Total())
		w.mu.Lock()
		w.sessions[key] = session
		w.mu.Unlock()
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	return opened.(wizard.Session), nil
}

func (w *Workspace) markCompleted(key string) {
	w.Log.Info("Journey %s complete", key)
	w.mu.Lock()
	w.completed = append(w.completed, key)
	w.mu.Unlock()
}

// Completed returns the journeys finished during this process, oldest first.
func (w *Workspace) Completed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.completed...)
}

// Sheet looks up a worksheet by key.
func (w *Workspace) Sheet(ctx context.Context, key string) (worksheet.Worksheet, error) {
	sheet, ok := w.Sheets[key]
	if !ok {
		return nil, fmt.Errorf("workspace: unknown worksheet %s", key)
	}
	sheet.Load(ctx)
	return sheet, nil
}

// BrandKit returns the palette store bound to the brand journey.
func (w *Workspace) BrandKit(ctx context.Context) (*brandkit.Store, error) {
	w.mu.Lock()
	kit := w.brandKit
	w.mu.Unlock()
	if kit != nil {
		return kit, nil
	}
	session, err := w.Session(ctx, brand.Key)
	if err != nil {
		return nil, err
	}
	controller, ok := session.(brandkit.Brand)
	if !ok {
		return nil, fmt.Errorf("workspace: %s journey does not expose the brand document", brand.Key)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.brandKit == nil {
		w.brandKit = brandkit.New(controller, w.Fs)
	}
	return w.brandKit, nil
}

// BackupKeys lists every storage key a backup bundle carries: journey slots
// then worksheets.
func (w *Workspace) BackupKeys() []string {
	keys := w.Catalog.StorageKeys()
	sheetKeys := make([]string, 0, len(w.Sheets))
	for key := range w.Sheets {
		sheetKeys = append(sheetKeys, key)
	}
	sort.Strings(sheetKeys)
	return append(keys, sheetKeys...)
}

// Validators returns the strict per-section checks used on restore.
func (w *Workspace) Validators() map[string]backup.Validator {
	validators := map[string]backup.Validator{}
	for key, validate := range w.Catalog.Validators() {
		validators[key] = validate
	}
	for key, sheet := range w.Sheets {
		validators[key] = sheet.Validate
	}
	return validators
}

// Backup bundles the stored state of every journey and worksheet.
func (w *Workspace) Backup(ctx context.Context) (backup.Bundle, error) {
	bundle, err := backup.Export(ctx, w.KV, w.BackupKeys(), backup.WithClock(w.now))
	if err != nil {
		return backup.Bundle{}, err
	}
	w.Log.Info("Backup %s · %d section(s)", bundle.ID, len(bundle.Sections))
	return bundle, nil
}

// BackupToFile writes a backup bundle into the backups directory and returns
// its path.
func (w *Workspace) BackupToFile(ctx context.Context) (string, error) {
	bundle, err := w.Backup(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.Config.BackupsDir(), backup.FileName(bundle.ExportedAt))
	if err := backup.Save(w.Fs, path, bundle); err != nil {
		return "", err
	}
	return path, nil
}

// Restore imports the valid sections of bundle and reloads what they touch.
func (w *Workspace) Restore(ctx context.Context, bundle backup.Bundle) (backup.Result, error) {
	result, err := backup.Import(ctx, w.KV, bundle, w.Validators())
	for _, key := range result.Imported {
		w.refreshKey(ctx, key)
	}
	for _, skip := range result.Skipped {
		w.Log.Warn("Restore skipped %s: %s", skip.Key, skip.Reason)
	}
	if err != nil {
		w.Log.Error("Restore failed: %v", err)
		return result, err
	}
	w.Log.Info("Restore %s · imported %d, skipped %d", bundle.ID, len(result.Imported), len(result.Skipped))
	return result, nil
}

// Export renders doc into the exports directory.
func (w *Workspace) Export(doc export.Document, format export.Format, fileName string) (string, error) {
	path, err := w.Sink.Export(doc, format, fileName)
	if err != nil {
		w.Log.Error("Export failed: %v", err)
		return "", err
	}
	w.Log.Info("Exported %s", path)
	return path, nil
}

// Close stops the watcher and releases storage and the logbook.
func (w *Workspace) Close() error {
	if w == nil {
		return nil
	}
	if w.stopWatch != nil {
		w.stopWatch()
		<-w.watchDone
	}
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	w.mu.Lock()
	kit := w.brandKit
	w.brandKit = nil
	w.mu.Unlock()
	if kit != nil {
		kit.Close()
	}
	var errs []error
	if w.closer != nil {
		errs = append(errs, w.closer.Close())
	}
	errs = append(errs, w.Log.Close())
	return errors.Join(errs...)
}

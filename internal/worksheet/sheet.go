// Package worksheet holds the standalone planning sheets (business model
// canvas and SWOT). A sheet is a document of named string lists stored as a
// bare blob under its own key, with the same lenient repair and merge-patch
// rules as journey documents but no steps.
package worksheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/storage"
)

// Logger receives repair and save notices.
type Logger interface {
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Worksheet is the type-erased view used by the CLI and TUI.
type Worksheet interface {
	Key() string
	Title() string
	Lists() []string
	Load(ctx context.Context)
	Items(ctx context.Context, list string) ([]string, error)
	SetList(ctx context.Context, list string, items []string) error
	AddItem(ctx context.Context, list, item string) error
	RemoveItem(ctx context.Context, list string, index int) error
	Clear(ctx context.Context) error
	Render() export.Document
	Validate(raw []byte) error
}

// Option configures a Sheet.
type Option func(*options)

type options struct {
	log Logger
	now func() time.Time
}

// WithLogger routes repair and save notices to log.
func WithLogger(log Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClock overrides the lastUpdated timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Sheet persists one worksheet document of type D under key.
type Sheet[D any] struct {
	kv    storage.KV
	key   string
	title string
	lists []string
	codec document.Codec[D]
	opts  options

	mu     sync.Mutex
	loaded bool
	doc    D
}

var _ Worksheet = (*Sheet[document.SWOT])(nil)

// New builds a sheet whose editable lists are the given document keys.
func New[D any](kv storage.KV, key, title string, lists []string, codec document.Codec[D], opts ...Option) *Sheet[D] {
	o := options{log: nopLogger{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Sheet[D]{
		kv:    kv,
		key:   key,
		title: title,
		lists: append([]string{}, lists...),
		codec: codec,
		opts:  o,
		doc:   codec.Default(),
	}
}

// Key returns the storage key.
func (s *Sheet[D]) Key() string { return s.key }

// Title returns the display title.
func (s *Sheet[D]) Title() string { return s.title }

// Lists returns the editable list keys in reading order.
func (s *Sheet[D]) Lists() []string { return append([]string{}, s.lists...) }

// Load reads the stored blob. Missing or unreadable blobs leave the default
// document; damaged fields are reset and logged.
func (s *Sheet[D]) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Sheet[D]) loadLocked(ctx context.Context) {
	s.loaded = true
	s.doc = s.codec.Default()
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.opts.log.Error("worksheet: load %s: %v", s.key, err)
		}
		return
	}
	doc, repaired, err := s.codec.Decode(raw)
	if err != nil {
		s.opts.log.Warn("worksheet: discarding unreadable %s: %v", s.key, err)
		return
	}
	for _, fieldErr := range repaired {
		s.opts.log.Warn("worksheet: %s: reset %s to default: %v", s.key, fieldErr.Field, fieldErr.Err)
	}
	s.doc = doc
}

// Document returns the current document, loading it on first use.
func (s *Sheet[D]) Document(ctx context.Context) D {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.loadLocked(ctx)
	}
	return s.doc
}

// Update merges patch, stamps lastUpdated and saves. Skipped keys are
// returned alongside any storage error.
func (s *Sheet[D]) Update(ctx context.Context, patch document.Patch) ([]document.FieldError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.loadLocked(ctx)
	}
	stamped := make(document.Patch, len(patch)+1)
	for k, v := range patch {
		stamped[k] = v
	}
	stamped[document.LastUpdatedKey] = s.opts.now().UTC()
	merged, skipped := s.codec.Merge(s.doc, stamped)
	s.doc = merged
	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return skipped, fmt.Errorf("worksheet: encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.opts.log.Error("worksheet: save %s: %v", s.key, err)
		return skipped, fmt.Errorf("worksheet: save %s: %w", s.key, err)
	}
	return skipped, nil
}

// Clear restores the default document and removes the stored blob.
func (s *Sheet[D]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.codec.Default()
	s.loaded = true
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("worksheet: clear %s: %w", s.key, err)
	}
	return nil
}

// Items returns the entries of list.
func (s *Sheet[D]) Items(ctx context.Context, list string) ([]string, error) {
	return s.currentItems(ctx, list)
}

// SetList replaces list with items, dropping blanks.
func (s *Sheet[D]) SetList(ctx context.Context, list string, items []string) error {
	if err := s.checkList(list); err != nil {
		return err
	}
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	skipped, err := s.Update(ctx, document.Patch{list: kept})
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		return skipped[0]
	}
	return nil
}

// AddItem appends item to list.
func (s *Sheet[D]) AddItem(ctx context.Context, list, item string) error {
	item = strings.TrimSpace(item)
	if item == "" {
		return fmt.Errorf("worksheet: empty item")
	}
	items, err := s.Items(ctx, list)
	if err != nil {
		return err
	}
	return s.SetList(ctx, list, append(items, item))
}

// RemoveItem deletes the entry at the 0-based index of list.
func (s *Sheet[D]) RemoveItem(ctx context.Context, list string, index int) error {
	items, err := s.currentItems(ctx, list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("worksheet: %s has no item %d", list, index+1)
	}
	return s.SetList(ctx, list, append(items[:index:index], items[index+1:]...))
}

func (s *Sheet[D]) currentItems(ctx context.Context, list string) ([]string, error) {
	if err := s.checkList(list); err != nil {
		return nil, err
	}
	return listOf(s.Document(ctx), list)
}

// Render builds the export snapshot: one section per list.
func (s *Sheet[D]) Render() export.Document {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	out := export.Document{Title: s.title}
	for _, list := range s.lists {
		items, _ := listOf(doc, list)
		out.Sections = append(out.Sections, export.Section{Heading: Heading(list), Lines: items})
	}
	return out
}

// Validate is the strict restore check for the sheet's blob.
func (s *Sheet[D]) Validate(raw []byte) error {
	return s.codec.Validate(raw)
}

func (s *Sheet[D]) checkList(list string) error {
	for _, known := range s.lists {
		if known == list {
			return nil
		}
	}
	return fmt.Errorf("worksheet: %s has no list %q (want one of %s)", s.key, list, strings.Join(s.lists, ", "))
}

func listOf(doc any, list string) ([]string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	items := []string{}
	if value, ok := fields[list]; ok {
		if err := json.Unmarshal(value, &items); err != nil {
			return nil, fmt.Errorf("worksheet: %s is not a list: %w", list, err)
		}
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Heading turns a camelCase key into a title, e.g. keyPartners -> Key Partners.
func Heading(key string) string {
	var b strings.Builder
	for idx, r := range key {
		if idx == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

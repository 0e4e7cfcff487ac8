package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
)

type options struct {
	log        Logger
	now        func() time.Time
	onComplete func()
}

// Option configures a Controller.
type Option func(*options)

// WithLogger routes load repairs and save failures to log.
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

// OnComplete registers the callback GoNext invokes from the last step when
// every step predicate holds.
func OnComplete(fn func()) Option {
	return func(o *options) {
		o.onComplete = fn
	}
}

// Controller drives one journey: it owns the document, the current step and
// the explicitly completed steps, and writes every change through its slot.
//
// A new controller is loading until Hydrate returns. Navigation and mutation
// are refused while loading.
type Controller[D any] struct {
	def  journey.Definition[D]
	slot *Slot[D]
	opts options

	mu      sync.Mutex
	loading bool
	state   State[D]

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

// New creates a controller in the loading state.
func New[D any](def journey.Definition[D], slot *Slot[D], opts ...Option) *Controller[D] {
	o := options{log: nopLogger{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Controller[D]{
		def:     def,
		slot:    slot,
		opts:    o,
		loading: true,
		state:   defaultState(def),
		subs:    map[int]func(){},
	}
}

func defaultState[D any](def journey.Definition[D]) State[D] {
	return State[D]{Document: def.Codec.Default(), CurrentStepID: 1, CompletedStepIDs: []int{}}
}

// Info describes the journey.
func (c *Controller[D]) Info() journey.Info {
	return c.def.Info
}

// Definition returns the journey definition.
func (c *Controller[D]) Definition() journey.Definition[D] {
	return c.def
}

// Hydrate performs the one-shot read from the slot. Missing or unreadable
// state falls back to defaults at step 1. Later calls are no-ops.
func (c *Controller[D]) Hydrate(ctx context.Context) {
	c.mu.Lock()
	if !c.loading {
		c.mu.Unlock()
		return
	}
	if state, ok := c.slot.Load(ctx); ok {
		c.state = state
	}
	c.loading = false
	c.mu.Unlock()
	c.notify()
}

// Reload re-reads the slot after an external change. It is a no-op while
// loading.
func (c *Controller[D]) Reload(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	state, ok := c.slot.Load(ctx)
	if !ok {
		state = defaultState(c.def)
	}
	c.state = state
	c.mu.Unlock()
	c.notify()
	return true
}

// Loading reports whether hydration is still pending.
func (c *Controller[D]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// State returns a snapshot of the current state.
func (c *Controller[D]) State() State[D] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[D]{
		Document:         c.state.Document,
		CurrentStepID:    c.state.CurrentStepID,
		CompletedStepIDs: append([]int{}, c.state.CompletedStepIDs...),
	}
}

// Document returns the current document.
func (c *Controller[D]) Document() D {
	return c.State().Document
}

// CurrentStepID returns the 1-based current step.
func (c *Controller[D]) CurrentStepID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CurrentStepID
}

// Total returns the number of steps.
func (c *Controller[D]) Total() int {
	return c.def.Registry.Total()
}

// CurrentStep returns the current step descriptor.
func (c *Controller[D]) CurrentStep() journey.Step[D] {
	step, _ := c.def.Registry.Step(c.CurrentStepID())
	return step
}

// Statuses returns the per-step view used for navigation pills.
func (c *Controller[D]) Statuses() []journey.StepStatus {
	state := c.State()
	return c.def.Registry.Statuses(state.Document, state.CurrentStepID, state.CompletedStepIDs)
}

// CompletedCount returns the number of predicate-complete steps.
func (c *Controller[D]) CompletedCount() int {
	return c.def.Registry.CompletedCount(c.Document())
}

// Percent returns overall journey progress.
func (c *Controller[D]) Percent() float64 {
	return c.def.Registry.OverallProgressPercent(c.Document())
}

// CurrentStepPercent returns how far the current step is filled in, 0..100.
func (c *Controller[D]) CurrentStepPercent() float64 {
	state := c.State()
	return c.def.Registry.StepProgress(state.CurrentStepID, state.Document)
}

// IsComplete reports whether every step predicate holds. Explicit marks do
// not count.
func (c *Controller[D]) IsComplete() bool {
	return c.def.Registry.IsJourneyComplete(c.Document())
}

// StepMeta returns the display metadata of step id.
func (c *Controller[D]) StepMeta(id int) any {
	step, ok := c.def.Registry.Step(id)
	if !ok {
		return nil
	}
	return step.Meta
}

// GoTo jumps to step id. Out-of-range ids and the current id are no-ops.
func (c *Controller[D]) GoTo(ctx context.Context, id int) bool {
	c.mu.Lock()
	if c.loading || !c.def.Registry.InRange(id) || id == c.state.CurrentStepID {
		c.mu.Unlock()
		return false
	}
	c.state.CurrentStepID = id
	c.persistLocked(ctx)
	c.mu.Unlock()
	c.notify()
	return true
}

// GoNext advances one step. From the last step it invokes the OnComplete
// callback when the journey is complete and reports false.
func (c *Controller[D]) GoNext(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	current := c.state.CurrentStepID
	total := c.def.Registry.Total()
	if current >= total {
		complete := c.def.Registry.IsJourneyComplete(c.state.Document)
		c.mu.Unlock()
		if complete && c.opts.onComplete != nil {
			c.opts.onComplete()
		}
		return false
	}
	c.mu.Unlock()
	return c.GoTo(ctx, current+1)
}

// GoPrev moves back one step. At step 1 it is a no-op.
func (c *Controller[D]) GoPrev(ctx context.Context) bool {
	c.mu.Lock()
	current := c.state.CurrentStepID
	loading := c.loading
	c.mu.Unlock()
	if loading || current <= 1 {
		return false
	}
	return c.GoTo(ctx, current-1)
}

// UpdateDocument shallow-merges patch, stamps lastUpdated, persists and
// notifies subscribers. Keys that do not fit the document are skipped and
// returned. It reports false while loading.
func (c *Controller[D]) UpdateDocument(ctx context.Context, patch document.Patch) (bool, []document.FieldError) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false, nil
	}
	stamped := make(document.Patch, len(patch)+1)
	for k, v := range patch {
		stamped[k] = v
	}
	stamped[document.LastUpdatedKey] = c.opts.now().UTC()
	merged, skipped := c.def.Codec.Merge(c.state.Document, stamped)
	for _, fieldErr := range skipped {
		c.opts.log.Warn("wizard: %s: ignored %s: %v", c.def.Info.Key, fieldErr.Field, fieldErr.Err)
	}
	c.state.Document = merged
	c.persistLocked(ctx)
	c.mu.Unlock()
	c.notify()
	return true, skipped
}

// SetField updates one value addressed by a dotted path. Nested paths are
// applied to a copy of the top-level object so the patch stays shallow.
func (c *Controller[D]) SetField(ctx context.Context, path string, value any) (bool, []document.FieldError) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return false, []document.FieldError{{Field: path, Err: fmt.Errorf("empty field path")}}
	}
	if len(parts) == 1 {
		return c.UpdateDocument(ctx, document.Patch{parts[0]: value})
	}
	top, err := c.topLevelObject(parts[0])
	if err != nil {
		return false, []document.FieldError{{Field: parts[0], Err: err}}
	}
	setNested(top, parts[1:], value)
	return c.UpdateDocument(ctx, document.Patch{parts[0]: top})
}

// ApplyJSON decodes raw as a JSON object and applies it as a patch.
func (c *Controller[D]) ApplyJSON(ctx context.Context, raw []byte) (bool, []document.FieldError, error) {
	fields, err := document.DecodeObject(raw)
	if err != nil {
		return false, nil, err
	}
	patch := make(document.Patch, len(fields))
	for k, v := range fields {
		patch[k] = v
	}
	ok, skipped := c.UpdateDocument(ctx, patch)
	return ok, skipped, nil
}

// MarkStepComplete adds the current step to the explicit completed set.
// Marks are never removed except by Reset.
func (c *Controller[D]) MarkStepComplete(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	id := c.state.CurrentStepID
	for _, existing := range c.state.CompletedStepIDs {
		if existing == id {
			c.mu.Unlock()
			return false
		}
	}
	c.state.CompletedStepIDs = append(c.state.CompletedStepIDs, id)
	sort.Ints(c.state.CompletedStepIDs)
	c.persistLocked(ctx)
	c.mu.Unlock()
	c.notify()
	return true
}

// Reset restores defaults at step 1 and clears the stored slot.
func (c *Controller[D]) Reset(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	c.state = defaultState(c.def)
	if err := c.slot.Clear(ctx); err != nil {
		c.opts.log.Error("wizard: reset %s: %v", c.def.Info.Key, err)
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// DocumentJSON returns the current document as indented JSON.
func (c *Controller[D]) DocumentJSON() ([]byte, error) {
	return json.MarshalIndent(c.Document(), "", "  ")
}

// Render builds the export snapshot of the current document.
func (c *Controller[D]) Render() export.Document {
	doc := c.Document()
	if c.def.Render != nil {
		return c.def.Render(doc)
	}
	return renderFields(c.def.Info.Name, doc)
}

// Subscribe registers fn to run after every state change. The returned
// function unsubscribes.
func (c *Controller[D]) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller[D]) notify() {
	c.subMu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// persistLocked saves the current state. Failures are logged; in-memory
// state is kept either way.
func (c *Controller[D]) persistLocked(ctx context.Context) {
	if err := c.slot.Save(ctx, c.state); err != nil {
		c.opts.log.Error("wizard: %v", err)
	}
}

func (c *Controller[D]) topLevelObject(key string) (map[string]any, error) {
	raw, err := json.Marshal(c.Document())
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	current, ok := fields[key]
	if !ok || current == nil {
		return map[string]any{}, nil
	}
	obj, ok := current.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an object", key)
	}
	return obj, nil
}

func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil
		}
		parts = append(parts, part)
	}
	return parts
}

func setNested(obj map[string]any, path []string, value any) {
	if len(path) == 1 {
		obj[path[0]] = value
		return
	}
	child, ok := obj[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
	}
	setNested(child, path[1:], value)
	obj[path[0]] = child
}

package wizard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/waypoint/internal/journey"
	"github.com/kingrea/waypoint/internal/storage"
)

// ErrUnknownJourney is returned when a catalog has no journey for a key.
var ErrUnknownJourney = errors.New("wizard: unknown journey")

// Env carries the shared dependencies a session is built with.
type Env struct {
	KV  storage.KV
	Log Logger
	Now func() time.Time
	// OnComplete is invoked with the journey key when a user advances past
	// the last step of a complete journey.
	OnComplete func(key string)
}

// Options converts env into controller options for journey key.
func (e Env) Options(key string) []Option {
	opts := []Option{WithLogger(e.Log), WithClock(e.Now)}
	if e.OnComplete != nil {
		notify := e.OnComplete
		opts = append(opts, OnComplete(func() { notify(key) }))
	}
	return opts
}

// Factory constructs a session bound to env.
type Factory func(env Env) (Session, error)

// Validator checks a stored blob before a restore overwrites it.
type Validator = func(raw []byte) error

type catalogEntry struct {
	info     journey.Info
	factory  Factory
	validate Validator
}

// Catalog maintains the journeys available to the TUI and CLI, in
// registration order.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]catalogEntry
	order   []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: map[string]catalogEntry{}}
}

// Register installs a journey factory. Returns an error if the key already
// exists.
func (c *Catalog) Register(info journey.Info, factory Factory) error {
	return c.register(catalogEntry{info: info, factory: factory})
}

func (c *Catalog) register(entry catalogEntry) error {
	info, factory := entry.info, entry.factory
	if err := info.Validate(); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("wizard: factory is required for %s", info.Key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[info.Key]; exists {
		return fmt.Errorf("wizard: journey %s already registered", info.Key)
	}
	for _, existing := range c.entries {
		if existing.info.StorageKey == info.StorageKey {
			return fmt.Errorf("wizard: storage key %s already used by %s", info.StorageKey, existing.info.Key)
		}
	}
	c.entries[info.Key] = entry
	c.order = append(c.order, info.Key)
	return nil
}

// MustRegister panics if registration fails.
func (c *Catalog) MustRegister(info journey.Info, factory Factory) {
	if err := c.Register(info, factory); err != nil {
		panic(err)
	}
}

// RegisterDefinition registers a journey whose sessions are plain
// controllers over def.
func RegisterDefinition[D any](c *Catalog, def journey.Definition[D]) error {
	return RegisterSession(c, def, nil)
}

// RegisterSession registers def with sessions built by wrap, which may
// decorate the controller with extra actions. A nil wrap serves the
// controller itself. Restores into the journey's slot are checked with
// ValidateState.
func RegisterSession[D any](c *Catalog, def journey.Definition[D], wrap func(*Controller[D], Env) Session) error {
	if err := def.Validate(); err != nil {
		return err
	}
	total := def.Registry.Total()
	return c.register(catalogEntry{
		info: def.Info,
		factory: func(env Env) (Session, error) {
			ctrl := OpenController(def, env)
			if wrap == nil {
				return ctrl, nil
			}
			return wrap(ctrl, env), nil
		},
		validate: func(raw []byte) error {
			return ValidateState(raw, def.Codec, total)
		},
	})
}

// OpenController builds an un-hydrated controller for def.
func OpenController[D any](def journey.Definition[D], env Env) *Controller[D] {
	slot := NewSlot(env.KV, def.Info.StorageKey, def.Codec, def.Registry.Total(), env.Log)
	return New(def, slot, env.Options(def.Info.Key)...)
}

// Open constructs the session for key.
func (c *Catalog) Open(key string, env Env) (Session, error) {
	c.mu.RLock()
	entry, ok := c.entries[strings.TrimSpace(key)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJourney, key)
	}
	if env.KV == nil {
		return nil, fmt.Errorf("wizard: storage is required to open %s", key)
	}
	return entry.factory(env)
}

// Lookup returns the info registered under key.
func (c *Catalog) Lookup(key string) (journey.Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[strings.TrimSpace(key)]
	return entry.info, ok
}

// Keys returns journey keys in registration order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.order...)
}

// Infos returns journey infos in registration order.
func (c *Catalog) Infos() []journey.Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	infos := make([]journey.Info, 0, len(c.order))
	for _, key := range c.order {
		infos = append(infos, c.entries[key].info)
	}
	return infos
}

// Validators returns the restore checks of every journey registered from a
// definition, keyed by storage key.
func (c *Catalog) Validators() map[string]Validator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Validator, len(c.entries))
	for _, entry := range c.entries {
		if entry.validate != nil {
			out[entry.info.StorageKey] = entry.validate
		}
	}
	return out
}

// StorageKeys returns the storage key of every journey.
func (c *Catalog) StorageKeys() []string {
	infos := c.Infos()
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.StorageKey)
	}
	return keys
}

// Package storage provides the local key-value stores that hold journey
// state. Each key maps to one JSON blob; stores publish change events so
// views can refresh when another process edits the same project.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Op names the kind of change an Event reports.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event describes a change to one key.
type Event struct {
	Key string
	Op  Op
	// External is true when the change came from outside this process.
	External bool
}

// KV is the persistence contract used by slots, worksheets and backups.
// Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Subscribe(fn func(Event)) func()
}

// ValidateKey rejects keys that cannot be used as file names.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage: key is required")
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("storage: invalid character %q in key %s", r, key)
		}
	}
	if strings.HasPrefix(key, ".") {
		return fmt.Errorf("storage: key %s must not start with a dot", key)
	}
	return nil
}

// Broadcaster fans events out to subscribers. Listeners run synchronously on
// the publishing goroutine.
type Broadcaster struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]func(Event)
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	if b.listeners == nil {
		b.listeners = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

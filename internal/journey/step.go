// Package journey declares the ordered steps of a guided journey and derives
// completion and progress from a document. Everything here is pure: the
// wizard controller owns state, this package only folds registries over
// documents.
package journey

import (
	"fmt"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
)

// Step describes one page of a journey.
type Step[D any] struct {
	// ID is the 1-based position of the step. Declaration order is the
	// journey order; IDs must be dense.
	ID   int
	Slug string
	Name string
	// Complete reports whether the document satisfies the step. It must not
	// panic on a default document.
	Complete func(D) bool
	// Progress optionally reports a 0..100 fill fraction for the step.
	Progress func(D) float64
	// MinPrior turns the step into an aggregate: it is complete only when at
	// least MinPrior earlier steps are complete (and Complete, if set, holds).
	MinPrior int
	// Meta carries display metadata (forms, hints). The engine never reads it.
	Meta any
}

// Info describes a journey's identity.
type Info struct {
	Key         string
	Name        string
	Description string
	// StorageKey names the persisted slot for the journey.
	StorageKey string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if strings.TrimSpace(i.Key) == "" {
		return fmt.Errorf("journey: key is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("journey: name is required for %s", i.Key)
	}
	if strings.TrimSpace(i.StorageKey) == "" {
		return fmt.Errorf("journey: storage key is required for %s", i.Key)
	}
	return nil
}

// Definition bundles everything needed to run a journey over documents of
// type D.
type Definition[D any] struct {
	Info     Info
	Registry *Registry[D]
	Codec    document.Codec[D]
	Render   func(D) export.Document
}

// Validate checks the definition is complete.
func (d Definition[D]) Validate() error {
	if err := d.Info.Validate(); err != nil {
		return err
	}
	if d.Registry == nil {
		return fmt.Errorf("journey: registry is required for %s", d.Info.Key)
	}
	if d.Codec == nil {
		return fmt.Errorf("journey: codec is required for %s", d.Info.Key)
	}
	return nil
}

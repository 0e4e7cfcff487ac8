package journey

import (
	"fmt"
	"strings"
)

// Registry is the ordered, validated list of steps for one journey.
type Registry[D any] struct {
	steps  []Step[D]
	bySlug map[string]int
}

// NewRegistry validates steps and wires aggregate predicates. Step IDs must
// run 1..N in declaration order and slugs must be unique.
func NewRegistry[D any](steps ...Step[D]) (*Registry[D], error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("journey: at least one step is required")
	}
	reg := &Registry[D]{
		steps:  make([]Step[D], 0, len(steps)),
		bySlug: make(map[string]int, len(steps)),
	}
	for idx, step := range steps {
		want := idx + 1
		if step.ID != want {
			return nil, fmt.Errorf("journey: step %q has id %d, want %d", step.Slug, step.ID, want)
		}
		slug := strings.TrimSpace(step.Slug)
		if slug == "" {
			return nil, fmt.Errorf("journey: step %d: slug is required", step.ID)
		}
		if _, exists := reg.bySlug[slug]; exists {
			return nil, fmt.Errorf("journey: duplicate slug %s", slug)
		}
		if step.MinPrior < 0 || step.MinPrior > idx {
			return nil, fmt.Errorf("journey: step %s: min prior %d out of range 0..%d", slug, step.MinPrior, idx)
		}
		if step.Complete == nil && step.MinPrior == 0 {
			return nil, fmt.Errorf("journey: step %s: completion predicate is required", slug)
		}
		step.Slug = slug
		if strings.TrimSpace(step.Name) == "" {
			step.Name = slug
		}
		if step.MinPrior > 0 {
			step = aggregate(step, append([]Step[D]{}, reg.steps...))
		}
		reg.bySlug[slug] = idx
		reg.steps = append(reg.steps, step)
	}
	return reg, nil
}

// MustRegistry panics if the steps are invalid. Built-in journeys use it.
func MustRegistry[D any](steps ...Step[D]) *Registry[D] {
	reg, err := NewRegistry(steps...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Step returns the step with the given id.
func (r *Registry[D]) Step(id int) (Step[D], bool) {
	if id < 1 || id > len(r.steps) {
		return Step[D]{}, false
	}
	return r.steps[id-1], true
}

// StepBySlug returns the step with the given slug.
func (r *Registry[D]) StepBySlug(slug string) (Step[D], bool) {
	idx, ok := r.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return Step[D]{}, false
	}
	return r.steps[idx], true
}

// Total returns the number of steps.
func (r *Registry[D]) Total() int {
	return len(r.steps)
}

// Steps returns a copy of the steps in journey order.
func (r *Registry[D]) Steps() []Step[D] {
	return append([]Step[D]{}, r.steps...)
}

// InRange reports whether id addresses a step.
func (r *Registry[D]) InRange(id int) bool {
	return id >= 1 && id <= len(r.steps)
}

func aggregate[D any](step Step[D], prior []Step[D]) Step[D] {
	own := step.Complete
	threshold := step.MinPrior
	countPrior := func(doc D) int {
		n := 0
		for _, p := range prior {
			if p.Complete(doc) {
				n++
			}
		}
		return n
	}
	step.Complete = func(doc D) bool {
		if own != nil && !own(doc) {
			return false
		}
		return countPrior(doc) >= threshold
	}
	if step.Progress == nil {
		step.Progress = func(doc D) float64 {
			return clampPercent(100 * float64(countPrior(doc)) / float64(threshold))
		}
	}
	return step
}

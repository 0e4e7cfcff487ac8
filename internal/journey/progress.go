package journey

// StepStatus is the derived view of one step for a document. Marked is set
// when the user marked the step done explicitly; Done is Complete || Marked.
type StepStatus struct {
	ID       int
	Slug     string
	Name     string
	Complete bool
	Marked   bool
	Done     bool
	Current  bool
	Progress float64
}

// CompletedCount returns how many steps are complete for doc.
func (r *Registry[D]) CompletedCount(doc D) int {
	n := 0
	for _, step := range r.steps {
		if step.Complete(doc) {
			n++
		}
	}
	return n
}

// OverallProgressPercent returns 100 * completed / total.
func (r *Registry[D]) OverallProgressPercent(doc D) float64 {
	if len(r.steps) == 0 {
		return 0
	}
	return float64(100*r.CompletedCount(doc)) / float64(len(r.steps))
}

// IsJourneyComplete reports whether every step is complete.
func (r *Registry[D]) IsJourneyComplete(doc D) bool {
	return r.CompletedCount(doc) == len(r.steps)
}

// StepProgress returns the fill fraction of step id. Steps without a Progress
// function report 0 or 100 from their predicate. Unknown ids report 0.
func (r *Registry[D]) StepProgress(id int, doc D) float64 {
	step, ok := r.Step(id)
	if !ok {
		return 0
	}
	return stepProgress(step, doc)
}

// Statuses folds the registry over doc. marked holds step ids the user
// marked done; unknown ids are ignored.
func (r *Registry[D]) Statuses(doc D, current int, marked []int) []StepStatus {
	explicit := make(map[int]bool, len(marked))
	for _, id := range marked {
		explicit[id] = true
	}
	out := make([]StepStatus, 0, len(r.steps))
	for _, step := range r.steps {
		complete := step.Complete(doc)
		out = append(out, StepStatus{
			ID:       step.ID,
			Slug:     step.Slug,
			Name:     step.Name,
			Complete: complete,
			Marked:   explicit[step.ID],
			Done:     complete || explicit[step.ID],
			Current:  step.ID == current,
			Progress: stepProgress(step, doc),
		})
	}
	return out
}

func stepProgress[D any](step Step[D], doc D) float64 {
	if step.Complete(doc) {
		return 100
	}
	if step.Progress == nil {
		return 0
	}
	return clampPercent(step.Progress(doc))
}

package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDocumentHasNoProgress(t *testing.T) {
	reg := checklistRegistry(t, 3)
	var doc checklist
	assert.Equal(t, 0, reg.CompletedCount(doc))
	assert.Equal(t, float64(0), reg.OverallProgressPercent(doc))
	assert.False(t, reg.IsJourneyComplete(doc))
}

func TestProgressIsMonotonicAsFieldsFill(t *testing.T) {
	reg := checklistRegistry(t, 3)
	fills := []func(*checklist){
		func(c *checklist) { c.A = "a" },
		func(c *checklist) { c.B = "b" },
		func(c *checklist) { c.C = "c" },
	}
	var doc checklist
	last := reg.OverallProgressPercent(doc)
	for _, fill := range fills {
		fill(&doc)
		next := reg.OverallProgressPercent(doc)
		assert.GreaterOrEqual(t, next, last)
		last = next
	}
	assert.Equal(t, float64(100), last)
	assert.True(t, reg.IsJourneyComplete(doc))
	assert.Equal(t, 4, reg.CompletedCount(doc))
}

func TestPercentStepsByOneOverTotal(t *testing.T) {
	reg := checklistRegistry(t, 3)
	assert.Equal(t, float64(25), reg.OverallProgressPercent(checklist{A: "a"}))
	assert.Equal(t, float64(50), reg.OverallProgressPercent(checklist{A: "a", B: "b"}))
}

func TestStatusesMergeMarkedSteps(t *testing.T) {
	reg := checklistRegistry(t, 3)
	statuses := reg.Statuses(checklist{A: "a"}, 2, []int{2, 99})
	assert.Len(t, statuses, 4)

	assert.True(t, statuses[0].Complete)
	assert.True(t, statuses[0].Done)
	assert.False(t, statuses[0].Marked)

	assert.False(t, statuses[1].Complete)
	assert.True(t, statuses[1].Marked)
	assert.True(t, statuses[1].Done)
	assert.True(t, statuses[1].Current)
	assert.False(t, statuses[0].Current)

	assert.False(t, statuses[2].Done)
	assert.InDelta(t, 33.333, statuses[3].Progress, 0.01)
}

func TestMarkedStepsDoNotCountTowardProgress(t *testing.T) {
	reg := checklistRegistry(t, 3)
	reg.Statuses(checklist{}, 1, []int{1, 2, 3})
	assert.Equal(t, 0, reg.CompletedCount(checklist{}))
}

func TestStepProgressUsesCustomFraction(t *testing.T) {
	reg, _ := NewRegistry(Step[checklist]{
		ID:       1,
		Slug:     "pair",
		Complete: func(c checklist) bool { return NonEmpty(c.A) && NonEmpty(c.B) },
		Progress: func(c checklist) float64 { return FieldFraction(NonEmpty(c.A), NonEmpty(c.B)) },
	})
	assert.Equal(t, float64(50), reg.StepProgress(1, checklist{A: "a"}))
	assert.Equal(t, float64(100), reg.StepProgress(1, checklist{A: "a", B: "b"}))
	assert.Equal(t, float64(0), reg.StepProgress(7, checklist{A: "a"}))
}

func TestPredicateHelpers(t *testing.T) {
	assert.False(t, NonEmpty("   "))
	assert.True(t, AnyNonEmpty("", " x "))
	assert.False(t, AnyNonEmpty())
	assert.True(t, AllNonEmpty("a", "b"))
	assert.False(t, AllNonEmpty("a", ""))
	assert.True(t, MinItems([]int{1, 2, 3}, 3))
	assert.False(t, MinItems([]string{"a"}, 2))
	assert.Equal(t, 2, CountNonEmpty([]string{"a", " ", "b"}))
	assert.Equal(t, float64(0), FieldFraction())
}

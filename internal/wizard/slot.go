package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/storage"
)

// State is the persisted shape of one journey.
type State[D any] struct {
	Document         D
	CurrentStepID    int
	CompletedStepIDs []int
}

type persistedState struct {
	Document         json.RawMessage `json:"document"`
	CurrentStepID    int             `json:"currentStepId"`
	CompletedStepIDs []int           `json:"completedStepIds"`
}

// Logger receives notices the wizard never surfaces as errors.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Slot is the persistence adapter for one journey: a single key in a KV
// store holding {document, currentStepId, completedStepIds}.
type Slot[D any] struct {
	kv    storage.KV
	key   string
	codec document.Codec[D]
	total int
	log   Logger
}

// NewSlot binds a journey's codec and step count to key in kv.
func NewSlot[D any](kv storage.KV, key string, codec document.Codec[D], total int, log Logger) *Slot[D] {
	if log == nil {
		log = nopLogger{}
	}
	return &Slot[D]{kv: kv, key: key, codec: codec, total: total, log: log}
}

// Key returns the storage key.
func (s *Slot[D]) Key() string {
	return s.key
}

// Load returns the stored state, repaired onto current defaults. It reports
// false when nothing usable is stored; failures are logged, never returned.
func (s *Slot[D]) Load(ctx context.Context) (State[D], bool) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("wizard: load %s: %v", s.key, err)
		}
		return State[D]{}, false
	}
	state, repaired, err := DecodeState(raw, s.codec, s.total)
	if err != nil {
		s.log.Warn("wizard: discarding unreadable state for %s: %v", s.key, err)
		return State[D]{}, false
	}
	for _, fieldErr := range repaired {
		s.log.Warn("wizard: %s: reset %s to default: %v", s.key, fieldErr.Field, fieldErr.Err)
	}
	return state, true
}

// Save writes state unconditionally; the last writer wins.
func (s *Slot[D]) Save(ctx context.Context, state State[D]) error {
	raw, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("wizard: save %s: %w", s.key, err)
	}
	return nil
}

// Clear removes the stored state.
func (s *Slot[D]) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("wizard: clear %s: %w", s.key, err)
	}
	return nil
}

// EncodeState marshals state in its persisted shape.
func EncodeState[D any](state State[D]) ([]byte, error) {
	doc, err := json.Marshal(state.Document)
	if err != nil {
		return nil, fmt.Errorf("wizard: encode document: %w", err)
	}
	completed := state.CompletedStepIDs
	if completed == nil {
		completed = []int{}
	}
	raw, err := json.MarshalIndent(persistedState{
		Document:         doc,
		CurrentStepID:    state.CurrentStepID,
		CompletedStepIDs: completed,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wizard: encode state: %w", err)
	}
	return raw, nil
}

// DecodeState leniently decodes a persisted blob. Only a blob that is not a
// JSON object is an error; a missing or damaged document falls back to the
// codec default field by field, a step id outside 1..total falls back to 1,
// and completed ids keep only valid, unique entries.
func DecodeState[D any](raw []byte, codec document.Codec[D], total int) (State[D], []document.FieldError, error) {
	fields, err := document.DecodeObject(raw)
	if err != nil {
		return State[D]{}, nil, err
	}
	out := State[D]{Document: codec.Default(), CurrentStepID: 1, CompletedStepIDs: []int{}}
	var repaired []document.FieldError

	if docRaw, ok := fields["document"]; ok {
		doc, fieldErrs, err := codec.Decode(docRaw)
		if err != nil {
			repaired = append(repaired, document.FieldError{Field: "document", Err: err})
		} else {
			out.Document = doc
			repaired = append(repaired, fieldErrs...)
		}
	}
	if stepRaw, ok := fields["currentStepId"]; ok {
		var id int
		if err := json.Unmarshal(stepRaw, &id); err == nil && id >= 1 && id <= total {
			out.CurrentStepID = id
		} else {
			repaired = append(repaired, document.FieldError{Field: "currentStepId", Err: fmt.Errorf("invalid step id %s", string(stepRaw))})
		}
	}
	if completedRaw, ok := fields["completedStepIds"]; ok {
		ids, dropped := decodeStepIDs(completedRaw, total)
		out.CompletedStepIDs = ids
		if dropped {
			repaired = append(repaired, document.FieldError{Field: "completedStepIds", Err: fmt.Errorf("dropped invalid entries")})
		}
	}
	return out, repaired, nil
}

func decodeStepIDs(raw json.RawMessage, total int) ([]int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []int{}, true
	}
	seen := make(map[int]bool, len(items))
	ids := make([]int, 0, len(items))
	dropped := false
	for _, item := range items {
		var id int
		if err := json.Unmarshal(item, &id); err != nil || id < 1 || id > total {
			dropped = true
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, dropped
}

// ValidateState is the strict check restores apply before overwriting a
// slot: the blob must hold a document the codec accepts without repairs and
// any step ids must be in range.
func ValidateState[D any](raw []byte, codec document.Codec[D], total int) error {
	fields, err := document.DecodeObject(raw)
	if err != nil {
		return err
	}
	docRaw, ok := fields["document"]
	if !ok {
		return fmt.Errorf("wizard: state has no document")
	}
	if err := codec.Validate(docRaw); err != nil {
		return err
	}
	_, repaired, err := DecodeState(raw, codec, total)
	if err != nil {
		return err
	}
	if len(repaired) > 0 {
		return repaired[0]
	}
	return nil
}

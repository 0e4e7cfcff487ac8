// Package document defines the mutable records each journey edits, their
// canonical defaults, and the lenient merge-patch codecs used both for user
// edits and for repairing persisted blobs.
//
// Every document is always fully defined: decoding a partial or damaged blob
// shallow-merges whatever survives onto the default instance, field by field.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotObject is returned when a blob does not decode into a JSON object.
var ErrNotObject = errors.New("document: payload is not a JSON object")

// Patch is a partial, top-level update applied by shallow merge.
type Patch map[string]any

// FieldError records a patch key that was skipped during a merge.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("document: field %s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// Codec knows the default instance of a document type and how to merge
// partial updates onto it.
type Codec[D any] interface {
	// Default returns a fresh, fully-populated default document.
	Default() D
	// Merge shallow-merges patch onto base. Keys whose values are null or do
	// not fit the field type are skipped and reported; the rest still apply.
	Merge(base D, patch Patch) (D, []FieldError)
	// Decode repairs a stored blob by merging it onto Default. Only payloads
	// that are not JSON objects fail.
	Decode(raw []byte) (D, []FieldError, error)
	// Validate is the strict variant used by restores: the blob must be an
	// object and every key must fit its field.
	Validate(raw []byte) error
}

// StructCodec implements Codec for JSON-tagged struct documents.
type StructCodec[D any] struct {
	newDefault func() D
}

// NewStructCodec builds a codec around a default constructor.
func NewStructCodec[D any](newDefault func() D) StructCodec[D] {
	return StructCodec[D]{newDefault: newDefault}
}

// Default implements Codec.Default.
func (c StructCodec[D]) Default() D {
	return c.newDefault()
}

// Merge implements Codec.Merge.
func (c StructCodec[D]) Merge(base D, patch Patch) (D, []FieldError) {
	raw, errs := EncodePatch(patch)
	merged, mergeErrs := c.mergeRaw(base, raw)
	return merged, append(errs, mergeErrs...)
}

// Decode implements Codec.Decode.
func (c StructCodec[D]) Decode(raw []byte) (D, []FieldError, error) {
	obj, err := DecodeObject(raw)
	if err != nil {
		return c.Default(), nil, err
	}
	merged, errs := c.mergeRaw(c.Default(), obj)
	return merged, errs, nil
}

// Validate implements Codec.Validate.
func (c StructCodec[D]) Validate(raw []byte) error {
	_, errs, err := c.Decode(raw)
	if err != nil {
		return err
	}
	return joinFieldErrors(errs)
}

func (c StructCodec[D]) mergeRaw(base D, patch map[string]json.RawMessage) (D, []FieldError) {
	fields, err := toFields(base)
	if err != nil {
		return base, []FieldError{{Field: "*", Err: err}}
	}
	var errs []FieldError
	for _, key := range sortedKeys(patch) {
		value := patch[key]
		if isNull(value) {
			continue
		}
		trial := cloneFields(fields)
		trial[key] = value
		trialDoc := c.newDefault()
		if err := decodeFields(trial, &trialDoc); err != nil {
			errs = append(errs, FieldError{Field: key, Err: err})
			continue
		}
		fields = trial
	}
	// Decoding onto a fresh default keeps nested keys that the fields omit.
	out := c.newDefault()
	if err := decodeFields(fields, &out); err != nil {
		return base, append(errs, FieldError{Field: "*", Err: err})
	}
	return out, errs
}

// EncodePatch marshals every patch value so it can be merged as raw JSON.
func EncodePatch(patch Patch) (map[string]json.RawMessage, []FieldError) {
	if len(patch) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(patch))
	var errs []FieldError
	for key, value := range patch {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			errs = append(errs, FieldError{Field: trimmed, Err: err})
			continue
		}
		out[trimmed] = encoded
	}
	return out, errs
}

// DecodeObject parses raw into its top-level keys.
func DecodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return obj, nil
}

func toFields(value any) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("document: encode: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, fmt.Errorf("document: split fields: %w", err)
	}
	return fields, nil
}

func decodeFields(fields map[string]json.RawMessage, out any) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinFieldErrors(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}

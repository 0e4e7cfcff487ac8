package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldKind is the value shape of a Record field.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindList   FieldKind = "list"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
)

// LastUpdatedKey is the timestamp key every document carries.
const LastUpdatedKey = "lastUpdated"

// FieldSpec declares one Record field.
type FieldSpec struct {
	Key  string    `json:"key" yaml:"key"`
	Kind FieldKind `json:"kind" yaml:"kind"`
}

// Record is a schema-driven document used by custom journeys.
type Record map[string]any

// Text returns the string stored under key, or "".
func (r Record) Text(key string) string {
	s, _ := r[key].(string)
	return s
}

// List returns the list stored under key, or nil.
func (r Record) List(key string) []string {
	items, _ := r[key].([]string)
	return items
}

// Number returns the number stored under key, or 0.
func (r Record) Number(key string) float64 {
	n, _ := r[key].(float64)
	return n
}

// Bool returns the flag stored under key.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// RecordCodec implements Codec for Records described by a field list.
type RecordCodec struct {
	fields map[string]FieldKind
	order  []string
}

// NewRecordCodec validates the field list and builds a codec.
func NewRecordCodec(fields []FieldSpec) (*RecordCodec, error) {
	codec := &RecordCodec{fields: make(map[string]FieldKind, len(fields))}
	for idx, spec := range fields {
		key := strings.TrimSpace(spec.Key)
		if key == "" {
			return nil, fmt.Errorf("document: fields[%d]: key is required", idx)
		}
		if key == LastUpdatedKey {
			return nil, fmt.Errorf("document: fields[%d]: %s is reserved", idx, key)
		}
		if _, exists := codec.fields[key]; exists {
			return nil, fmt.Errorf("document: fields[%d]: duplicate key %s", idx, key)
		}
		kind := FieldKind(strings.ToLower(strings.TrimSpace(string(spec.Kind))))
		if kind == "" {
			kind = KindText
		}
		switch kind {
		case KindText, KindList, KindNumber, KindBool:
		default:
			return nil, fmt.Errorf("document: fields[%d]: unknown kind %q", idx, spec.Kind)
		}
		codec.fields[key] = kind
		codec.order = append(codec.order, key)
	}
	return codec, nil
}

// Keys returns the declared field keys in declaration order.
func (c *RecordCodec) Keys() []string {
	return append([]string{}, c.order...)
}

// Kind reports the declared kind of key.
func (c *RecordCodec) Kind(key string) (FieldKind, bool) {
	kind, ok := c.fields[key]
	return kind, ok
}

// Default implements Codec.Default.
func (c *RecordCodec) Default() Record {
	out := make(Record, len(c.order)+1)
	for _, key := range c.order {
		out[key] = zeroValue(c.fields[key])
	}
	out[LastUpdatedKey] = time.Time{}.Format(time.RFC3339Nano)
	return out
}

// Merge implements Codec.Merge.
func (c *RecordCodec) Merge(base Record, patch Patch) (Record, []FieldError) {
	raw, errs := EncodePatch(patch)
	merged, mergeErrs := c.mergeRaw(base, raw)
	return merged, append(errs, mergeErrs...)
}

// Decode implements Codec.Decode.
func (c *RecordCodec) Decode(raw []byte) (Record, []FieldError, error) {
	obj, err := DecodeObject(raw)
	if err != nil {
		return c.Default(), nil, err
	}
	merged, errs := c.mergeRaw(c.Default(), obj)
	return merged, errs, nil
}

// Validate implements Codec.Validate.
func (c *RecordCodec) Validate(raw []byte) error {
	_, errs, err := c.Decode(raw)
	if err != nil {
		return err
	}
	return joinFieldErrors(errs)
}

func (c *RecordCodec) mergeRaw(base Record, patch map[string]json.RawMessage) (Record, []FieldError) {
	out := make(Record, len(base))
	for k, v := range base {
		out[k] = v
	}
	var errs []FieldError
	for _, key := range sortedKeys(patch) {
		value := patch[key]
		if isNull(value) {
			continue
		}
		if key == LastUpdatedKey {
			var ts time.Time
			if err := json.Unmarshal(value, &ts); err != nil {
				errs = append(errs, FieldError{Field: key, Err: err})
				continue
			}
			out[key] = ts.Format(time.RFC3339Nano)
			continue
		}
		kind, ok := c.fields[key]
		if !ok {
			continue
		}
		decoded, err := decodeKind(kind, value)
		if err != nil {
			errs = append(errs, FieldError{Field: key, Err: err})
			continue
		}
		out[key] = decoded
	}
	return out, errs
}

func zeroValue(kind FieldKind) any {
	switch kind {
	case KindList:
		return []string{}
	case KindNumber:
		return float64(0)
	case KindBool:
		return false
	default:
		return ""
	}
}

func decodeKind(kind FieldKind, raw json.RawMessage) (any, error) {
	switch kind {
	case KindList:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = []string{}
		}
		return items, nil
	case KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return n, nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Package catalog turns raw dataset records into validated orbital elements.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// DaysPerYear converts catalog periods in years to simulation days.
const DaysPerYear = 365

// DefaultSize is the size hint for records that carry none.
const DefaultSize = 1.0

// cometSizeFactor scales perihelion distance into a size hint for comets.
const cometSizeFactor = 5

var (
	// ErrMalformedRecord indicates a record is missing a field or has a bad value.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicate indicates a record reuses a name already in the batch.
	ErrDuplicate = errors.New("duplicate body")
)

// Record is one raw dataset entry. Values are JSON strings or numbers.
type Record map[string]any

// Shape identifies the dataset layout a record follows.
type Shape int

const (
	ShapeGeneric Shape = iota
	ShapeComet
	ShapeNEO
	ShapePlanet
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeGeneric:
		return "generic"
	case ShapeComet:
		return "comet"
	case ShapeNEO:
		return "neo"
	case ShapePlanet:
		return "planet"
	default:
		return "unknown"
	}
}

// DetectShape guesses the dataset layout from the fields present.
func DetectShape(r Record) Shape {
	switch {
	case r.has("q_au_1") || r.has("q_au_2") || r.has("object_name"):
		return ShapeComet
	case r.has("full_name") || r.has("per_y"):
		return ShapeNEO
	case r.has("orbitalRadius") || r.has("orbitalSpeed") || r.has("position"):
		return ShapePlanet
	default:
		return ShapeGeneric
	}
}

// DecodeRecords decodes a JSON array of records. Only a document that is not
// an array fails; an element that is not an object is returned as a nil
// Record at its index so Build can reject it alone.
func DecodeRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog JSON: %w", err)
	}

	records := make([]Record, len(raw))
	for i, elem := range raw {
		var rec Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			continue
		}
		records[i] = rec
	}
	return records, nil
}

func (r Record) has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// String returns the trimmed string value of key.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Number returns the numeric value of key. Numeric strings are accepted.
// ok is false when the key is absent or empty.
func (r Record) Number(key string) (v float64, ok bool, err error) {
	if !r.has(key) {
		return 0, false, nil
	}

	switch n := r[key].(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		v, err = n.Float64()
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		err = fmt.Errorf("unsupported type %T", n)
	}
	if err != nil {
		return 0, true, &FieldError{Field: key, Reason: "not a number", Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, &FieldError{Field: key, Reason: "not finite"}
	}
	return v, true, nil
}

// required is Number for fields that must be present.
func (r Record) required(key string) (float64, error) {
	v, ok, err := r.Number(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &FieldError{Field: key, Reason: "missing"}
	}
	return v, nil
}

// optional is Number with a fallback for absent fields.
func (r Record) optional(key string, def float64) (float64, error) {
	v, ok, err := r.Number(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// FieldError describes a bad or missing field in a record.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Is matches ErrMalformedRecord.
func (e *FieldError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// parseColor accepts "#rrggbb", "0xrrggbb" or a JSON number like 0xaaaaaa.
func parseColor(v any) (string, error) {
	switch c := v.(type) {
	case nil:
		return "", nil
	case float64:
		if c < 0 || c > 0xffffff || c != math.Trunc(c) {
			return "", fmt.Errorf("color %v out of range", c)
		}
		return fmt.Sprintf("#%06x", int(c)), nil
	case string:
		s := strings.ToLower(strings.TrimSpace(c))
		if s == "" {
			return "", nil
		}
		s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil || len(s) != 6 {
			return "", fmt.Errorf("color %q is not rrggbb", c)
		}
		return fmt.Sprintf("#%06x", n), nil
	default:
		return "", fmt.Errorf("color has unsupported type %T", v)
	}
}

package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSON stores an arbitrary value as a JSON text column so the same schema
// works on postgres and sqlite.
type JSON[T any] struct {
	Val T
}

// NewJSON wraps v for persistence.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Val: v}
}

func (j *JSON[T]) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		var zero T
		j.Val = zero
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
	if strings.TrimSpace(raw) == "" {
		var zero T
		j.Val = zero
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &j.Val); err != nil {
		return fmt.Errorf("JSON: decode: %w", err)
	}
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Val)
	if err != nil {
		return nil, fmt.Errorf("JSON: encode: %w", err)
	}
	return string(b), nil
}

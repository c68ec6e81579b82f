package serialization

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scalar decode helpers shared by the generated per-module decoders. Wire
// data arrives as the output of a generic JSON decode: strings, float64
// numbers, bools, []any and map[string]any.

// DecodeString reads a required string field from a record
func DecodeString(record map[string]any, field string) (string, error) {
	v, ok := record[field].(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	return v, nil
}

// DecodeInt reads a required int field from a record
func DecodeInt(record map[string]any, field string) (int, error) {
	switch v := record[field].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("field %q is not an int", field)
	}
}

// DecodeBool reads a required bool field from a record
func DecodeBool(record map[string]any, field string) (bool, error) {
	v, ok := record[field].(bool)
	if !ok {
		return false, fmt.Errorf("field %q is not a bool", field)
	}
	return v, nil
}

// DecodeDouble reads a required double field from a record
func DecodeDouble(record map[string]any, field string) (float64, error) {
	v, ok := record[field].(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is not a double", field)
	}
	return v, nil
}

// DecodeUUID reads a required UuidValue field from a record
func DecodeUUID(record map[string]any, field string) (uuid.UUID, error) {
	s, ok := record[field].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("field %q is not a uuid string", field)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("field %q: %w", field, err)
	}
	return id, nil
}

// DecodeDateTime reads a required DateTime field, serialized as RFC 3339
func DecodeDateTime(record map[string]any, field string) (time.Time, error) {
	s, ok := record[field].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is not a date-time string", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q: %w", field, err)
	}
	return t, nil
}

// DecodeDuration reads a required Duration field, serialized as whole
// milliseconds
func DecodeDuration(record map[string]any, field string) (time.Duration, error) {
	ms, err := DecodeInt(record, field)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// DecodeByteData reads a required ByteData field, serialized as base64
func DecodeByteData(record map[string]any, field string) ([]byte, error) {
	s, ok := record[field].(string)
	if !ok {
		return nil, fmt.Errorf("field %q is not a base64 string", field)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	return data, nil
}

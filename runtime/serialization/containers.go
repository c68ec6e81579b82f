package serialization

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// deserializeContainer handles homogeneous containers of scalars directly,
// without delegating to any module: slices, string-keyed maps and sets
// (modeled as map[T]struct{}) whose element type is a built-in scalar.
// Returns ok=false when the expected type is not such a container.
func deserializeContainer(data any, t reflect.Type) (any, bool, error) {
	switch t.Kind() {
	case reflect.Slice:
		if !isScalarType(t.Elem()) {
			return nil, false, nil
		}
		return decodeSlice(data, t)
	case reflect.Map:
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			if !isScalarType(t.Key()) {
				return nil, false, nil
			}
			return decodeSet(data, t)
		}
		if t.Key().Kind() != reflect.String || !isScalarType(t.Elem()) {
			return nil, false, nil
		}
		return decodeMap(data, t)
	default:
		return nil, false, nil
	}
}

// isScalarType reports whether a runtime type maps to a built-in scalar
func isScalarType(t reflect.Type) bool {
	if t == uuidType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func decodeSlice(data any, t reflect.Type) (any, bool, error) {
	items, ok := data.([]any)
	if !ok {
		return nil, true, fmt.Errorf("expected a list for %s, got %T", t, data)
	}
	out := reflect.MakeSlice(t, 0, len(items))
	for _, item := range items {
		v, err := scalarValue(item, t.Elem())
		if err != nil {
			return nil, true, err
		}
		out = reflect.Append(out, v)
	}
	return out.Interface(), true, nil
}

func decodeSet(data any, t reflect.Type) (any, bool, error) {
	items, ok := data.([]any)
	if !ok {
		return nil, true, fmt.Errorf("expected a list for %s, got %T", t, data)
	}
	out := reflect.MakeMapWithSize(t, len(items))
	member := reflect.New(t.Elem()).Elem()
	for _, item := range items {
		k, err := scalarValue(item, t.Key())
		if err != nil {
			return nil, true, err
		}
		out.SetMapIndex(k, member)
	}
	return out.Interface(), true, nil
}

func decodeMap(data any, t reflect.Type) (any, bool, error) {
	entries, ok := data.(map[string]any)
	if !ok {
		return nil, true, fmt.Errorf("expected a mapping for %s, got %T", t, data)
	}
	out := reflect.MakeMapWithSize(t, len(entries))
	for key, item := range entries {
		v, err := scalarValue(item, t.Elem())
		if err != nil {
			return nil, true, err
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), v)
	}
	return out.Interface(), true, nil
}

// scalarValue converts one decoded wire value to the expected scalar type.
// JSON decoding hands numbers over as float64, so numeric kinds convert.
func scalarValue(item any, t reflect.Type) (reflect.Value, error) {
	if t == uuidType {
		s, ok := item.(string)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected a uuid string, got %T", item)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uuid %q: %w", s, err)
		}
		return reflect.ValueOf(id), nil
	}

	v := reflect.ValueOf(item)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("unexpected null element for %s", t)
	}
	if !v.Type().ConvertibleTo(t) {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", item, t)
	}
	switch t.Kind() {
	case reflect.Bool:
		if v.Kind() != reflect.Bool {
			return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", item, t)
		}
	case reflect.String:
		if v.Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", item, t)
		}
	}
	return v.Convert(t), nil
}

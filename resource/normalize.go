package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/crmarques/cloudstore/faults"
)

// Normalize reduces a value to its wire shape: plain maps, slices, int64,
// float64, string, bool and nil. Resources are replaced by their serialized
// fields and timestamps by their RFC 3339 form, so a value assigned with Set
// compares equal to the same value decoded from a response.
func Normalize(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string:
		return typed, nil
	case Object:
		if isNilObject(typed) {
			return nil, nil
		}
		return normalizeMap(typed.base().Serialize())
	case time.Time, *time.Time:
		return encodeTimestamp(typed), nil
	case json.Number:
		return normalizeNumber(typed)
	case float32:
		return normalizeFloat(float64(typed))
	case float64:
		return normalizeFloat(typed)
	case int:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case uint:
		return normalizeUint(uint64(typed))
	case uint32:
		return normalizeUint(uint64(typed))
	case uint64:
		return normalizeUint(typed)
	case []any:
		return normalizeList(typed)
	case map[string]any:
		return normalizeMap(typed)
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.String:
		return reflected.String(), nil
	case reflect.Bool:
		return reflected.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflected.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return normalizeUint(reflected.Uint())
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(reflected.Float())
	case reflect.Slice, reflect.Array:
		items := make([]any, reflected.Len())
		for idx := range items {
			items[idx] = reflected.Index(idx).Interface()
		}
		return normalizeList(items)
	case reflect.Map:
		if reflected.Type().Key().Kind() != reflect.String {
			return nil, normalizeError(fmt.Sprintf("field maps must have string keys, got %T", value))
		}
		fields := make(map[string]any, reflected.Len())
		iter := reflected.MapRange()
		for iter.Next() {
			fields[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeMap(fields)
	default:
		return nil, normalizeError(fmt.Sprintf("%T cannot be sent as a field value", value))
	}
}

// normalizeNumber keeps integral ids and sizes exact. Integer literals that
// do not fit in int64 are rejected rather than rounded.
func normalizeNumber(value json.Number) (any, error) {
	if asInt, err := value.Int64(); err == nil {
		return asInt, nil
	}
	if !strings.ContainsAny(value.String(), ".eE") {
		return nil, normalizeError(fmt.Sprintf("number %s is out of range", value))
	}
	asFloat, err := value.Float64()
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q is not a number", value), err)
	}
	return normalizeFloat(asFloat)
}

func normalizeFloat(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, normalizeError("field values must be finite numbers")
	}
	return value, nil
}

func normalizeUint(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, normalizeError(fmt.Sprintf("number %d is out of range", value))
	}
	return int64(value), nil
}

func normalizeList(values []any) ([]any, error) {
	normalized := make([]any, len(values))
	for idx, item := range values {
		value, err := Normalize(item)
		if err != nil {
			return nil, err
		}
		normalized[idx] = value
	}
	return normalized, nil
}

func normalizeMap(values map[string]any) (map[string]any, error) {
	normalized := make(map[string]any, len(values))
	for key, item := range values {
		value, err := Normalize(item)
		if err != nil {
			return nil, err
		}
		normalized[key] = value
	}
	return normalized, nil
}

func normalizeError(message string) error {
	return faults.NewTypedError(faults.ValidationError, message, nil)
}

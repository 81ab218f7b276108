package resource

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/crmarques/storectl/faults"
)

// Normalize converts a decoded JSON value into the canonical in-memory form:
// integers become int64, other numbers float64, maps map[string]any and
// slices []any. Shallow equality between an edited field and its decoded
// baseline only works when both sides share this form.
func Normalize(value Value) (Value, error) {
	return normalizeValue(value)
}

// NormalizeFields normalizes every field value in place of a fresh map.
func NormalizeFields(fields Fields) (Fields, error) {
	normalized := make(Fields, len(fields))
	for key, value := range fields {
		itemValue, err := normalizeValue(value)
		if err != nil {
			return nil, err
		}
		normalized[key] = itemValue
	}
	return normalized, nil
}

// AsFields converts a normalized object value into editable fields. A nil
// value yields an empty map; non-object values are rejected.
func AsFields(value Value) (Fields, error) {
	if value == nil {
		return Fields{}, nil
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("expected object payload, got %T", value), nil)
	}
	fields := make(Fields, len(object))
	for key, item := range object {
		fields[key] = item
	}
	return fields, nil
}

func normalizeValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string:
		return typed, nil
	case float32:
		return normalizeFloat(float64(typed))
	case float64:
		return normalizeFloat(typed)
	case int:
		return int64(typed), nil
	case int8:
		return int64(typed), nil
	case int16:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case uint:
		return normalizeUint(uint64(typed))
	case uint8:
		return normalizeUint(uint64(typed))
	case uint16:
		return normalizeUint(uint64(typed))
	case uint32:
		return normalizeUint(uint64(typed))
	case uint64:
		return normalizeUint(typed)
	case json.Number:
		return normalizeJSONNumber(typed)
	case []any:
		return normalizeSlice(typed)
	case map[string]any:
		return normalizeObject(typed)
	case Fields:
		normalized, err := NormalizeFields(typed)
		if err != nil {
			return nil, err
		}
		return map[string]any(normalized), nil
	}

	return nil, faults.NewTypedError(
		faults.ValidationError,
		fmt.Sprintf("unsupported payload type %T", value),
		nil,
	)
}

func normalizeFloat(value float64) (any, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, faults.NewTypedError(faults.ValidationError, "payload contains non-finite float", nil)
	}
	if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
		return int64(value), nil
	}
	return value, nil
}

func normalizeUint(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, faults.NewTypedError(faults.ValidationError, "payload contains integer out of range", nil)
	}
	return int64(value), nil
}

func normalizeJSONNumber(value json.Number) (any, error) {
	if asInt, err := value.Int64(); err == nil {
		return asInt, nil
	}
	asFloat, err := value.Float64()
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "payload contains invalid number", err)
	}
	return normalizeFloat(asFloat)
}

func normalizeSlice(values []any) ([]any, error) {
	normalized := make([]any, len(values))
	for idx, item := range values {
		itemValue, err := normalizeValue(item)
		if err != nil {
			return nil, err
		}
		normalized[idx] = itemValue
	}
	return normalized, nil
}

func normalizeObject(values map[string]any) (map[string]any, error) {
	normalized := make(map[string]any, len(values))
	for key, item := range values {
		itemValue, err := normalizeValue(item)
		if err != nil {
			return nil, err
		}
		normalized[key] = itemValue
	}
	return normalized, nil
}

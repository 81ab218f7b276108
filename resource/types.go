package resource

// Value is an opaque backend-owned JSON value: nil, bool, string, int64,
// float64, []any, or map[string]any once normalized.
type Value = any

// Fields is the editable state of a single bound resource, keyed by the
// backend field name. Callers know the field names for their resource kind.
type Fields map[string]Value

// Patch is the minimal set of changed fields to send on save.
type Patch map[string]Value

// Clone copies one level of the field map. Nested values are shared; edits
// replace whole values, they never mutate in place.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	cloned := make(Fields, len(f))
	for key, value := range f {
		cloned[key] = value
	}
	return cloned
}

// Keys returns the field names present in the map, unsorted.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	return keys
}

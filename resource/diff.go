package resource

import "reflect"

// ShallowDiff computes the dirty patch: the subset of keys whose current
// value differs from the baseline under ShallowEqual. When keys is empty the
// union of both field sets is compared. The result is never nil; an empty
// patch means nothing changed.
func ShallowDiff(current Fields, baseline Fields, keys []string) Patch {
	names := keys
	if len(names) == 0 {
		seen := make(map[string]struct{}, len(current)+len(baseline))
		names = make([]string, 0, len(current)+len(baseline))
		for key := range current {
			seen[key] = struct{}{}
			names = append(names, key)
		}
		for key := range baseline {
			if _, found := seen[key]; found {
				continue
			}
			names = append(names, key)
		}
	}

	patch := make(Patch)
	for _, key := range names {
		currentValue, inCurrent := current[key]
		baselineValue, inBaseline := baseline[key]
		if !inCurrent && !inBaseline {
			continue
		}
		if !ShallowEqual(currentValue, baselineValue) {
			patch[key] = currentValue
		}
	}
	return patch
}

// ShallowEqual compares two field values the way the dirty check needs:
// scalars by value, maps and slices by identity. Composite values assigned
// by mutation rather than replacement are therefore never detected as
// changed; fields are expected to be replaced wholesale via SetField.
func ShallowEqual(a Value, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	aValue := reflect.ValueOf(a)
	bValue := reflect.ValueOf(b)
	if aValue.Kind() != bValue.Kind() {
		return false
	}

	switch aValue.Kind() {
	case reflect.Map, reflect.Slice:
		if aValue.Len() == 0 && bValue.Len() == 0 {
			return true
		}
		return aValue.Pointer() == bValue.Pointer()
	case reflect.Ptr, reflect.Func, reflect.Chan:
		return aValue.Pointer() == bValue.Pointer()
	}

	if !aValue.Comparable() || !bValue.Comparable() {
		return false
	}
	return a == b
}

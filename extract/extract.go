// Package extract unwraps response envelopes: backends sometimes nest the
// resource under a named key (for example {"user": {...}}). Callers pick a
// named extractor per endpoint instead of passing open-ended callbacks.
package extract

import (
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
)

// Extractor maps a raw response payload to the resource the caller binds.
// A nil Extractor leaves the payload unchanged.
type Extractor func(resource.Value) (resource.Value, error)

// Identity returns the payload unchanged.
func Identity(value resource.Value) (resource.Value, error) {
	return value, nil
}

// Key unwraps a single-level envelope: Key("user") maps {"user": {...}} to
// the inner object. A missing key or non-object payload passes through
// unchanged so callers degrade to the raw body, matching envelope-or-bare
// backends.
func Key(name string) Extractor {
	return func(value resource.Value) (resource.Value, error) {
		object, ok := value.(map[string]any)
		if !ok {
			return value, nil
		}
		inner, found := object[name]
		if !found || inner == nil {
			return value, nil
		}
		return inner, nil
	}
}

var jqCodeCache sync.Map

// JQ compiles a jq expression into an extractor for envelopes a plain key
// lookup cannot express. Compiled programs are cached per expression.
func JQ(expression string) Extractor {
	trimmed := strings.TrimSpace(expression)

	return func(value resource.Value) (resource.Value, error) {
		if trimmed == "" {
			return value, nil
		}

		code, err := cachedJQCode(trimmed)
		if err != nil {
			return nil, faults.NewTypedError(faults.ValidationError, "invalid extract expression", err)
		}

		iterator := code.Run(value)
		results := make([]any, 0, 1)
		for {
			item, ok := iterator.Next()
			if !ok {
				break
			}
			if itemErr, isErr := item.(error); isErr {
				return nil, faults.NewTypedError(faults.ValidationError, "failed to evaluate extract expression", itemErr)
			}
			results = append(results, item)
		}

		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return results[0], nil
		default:
			return results, nil
		}
	}
}

func cachedJQCode(expression string) (*gojq.Code, error) {
	if cached, ok := jqCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := jqCodeCache.LoadOrStore(expression, code)
	if typed, ok := actual.(*gojq.Code); ok && typed != nil {
		return typed, nil
	}
	return code, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
)

func decodeResponse(body []byte, extractor extract.Extractor) (resource.Value, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, validationError("response body is not valid JSON", err)
	}

	if extractor != nil {
		extracted, err := extractor(value)
		if err != nil {
			return nil, err
		}
		value = extracted
	}

	return resource.Normalize(value)
}

func classifyStatusError(statusCode int, body []byte) error {
	message, fields := deriveErrorMessage(statusCode, body)

	category := categoryForStatus(statusCode)
	if len(fields) > 0 {
		return faults.NewFieldError(category, message, fields)
	}
	return faults.NewTypedError(category, message, nil)
}

func categoryForStatus(statusCode int) faults.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return faults.AuthError
	case http.StatusNotFound:
		return faults.NotFoundError
	case http.StatusConflict:
		return faults.ConflictError
	}

	if statusCode >= 400 && statusCode < 500 {
		return faults.ValidationError
	}
	return faults.TransportError
}

// deriveErrorMessage implements the three-tier contract every caller that
// surfaces errors depends on: a top-level "detail" string wins, otherwise
// the remaining fields are flattened as "field: a, b | other: c", otherwise
// the message falls back to "<status> <statusText>".
func deriveErrorMessage(statusCode int, body []byte) (string, map[string][]string) {
	fallback := fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))

	if len(bytes.TrimSpace(body)) == 0 {
		return fallback, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback, nil
	}

	fields := fieldMessages(payload)

	if detail, ok := payload["detail"].(string); ok && detail != "" {
		return detail, fields
	}

	if summary := flattenFieldMessages(fields); summary != "" {
		return summary, fields
	}

	return fallback, fields
}

func fieldMessages(payload map[string]any) map[string][]string {
	fields := make(map[string][]string)
	for key, value := range payload {
		if key == "detail" {
			continue
		}
		switch typed := value.(type) {
		case string:
			fields[key] = []string{typed}
		case []any:
			messages := make([]string, 0, len(typed))
			for _, item := range typed {
				if text, ok := item.(string); ok {
					messages = append(messages, text)
				} else {
					messages = append(messages, fmt.Sprint(item))
				}
			}
			if len(messages) > 0 {
				fields[key] = messages
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func flattenFieldMessages(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(fields[name], ", "))
	}
	return strings.Join(parts, " | ")
}

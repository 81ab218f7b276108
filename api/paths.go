package api

import "strings"

const apiRoot = "api/v1/"

// IsAbsoluteURL reports whether the path is a fully-qualified http(s) URL
// that must bypass path normalization.
func IsAbsoluteURL(path string) bool {
	trimmed := strings.TrimSpace(path)
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NormalizePath rewrites a relative resource path to the backend's REST root
// form: under "api/v1/" with a trailing slash. A leading "/api/" proxy
// prefix is stripped so paths copied from the web frontend keep working.
func NormalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", validationError("resource path is required", nil)
	}

	trimmed = strings.TrimPrefix(trimmed, "/")
	trimmed = strings.TrimPrefix(trimmed, "api/")
	trimmed = strings.TrimPrefix(trimmed, "v1/")
	trimmed = apiRoot + trimmed
	if !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	return trimmed, nil
}

// URL resolves a resource path against the configured base URL. Absolute
// URLs pass through untouched.
func (c *Client) URL(path string) (string, error) {
	if IsAbsoluteURL(path) {
		return strings.TrimSpace(path), nil
	}

	normalized, err := NormalizePath(path)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(c.baseURL.String(), "/")
	return base + "/" + normalized, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/resource"
)

// RequestOptions tune a single request. Query values that are nil are
// skipped entirely; Extract unwraps an envelope from the response body.
type RequestOptions struct {
	Query   map[string]any
	Extract extract.Extractor
}

func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (resource.Value, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts *RequestOptions) (resource.Value, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts *RequestOptions) (resource.Value, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts *RequestOptions) (resource.Value, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Do issues one request. On 2xx it returns the decoded (and extracted) JSON
// body, or nil for an empty/204 response. Any other status is converted into
// a typed error carrying the uniform user-facing message.
func (c *Client) Do(ctx context.Context, method string, path string, body any, opts *RequestOptions) (resource.Value, error) {
	if c == nil {
		return nil, internalError("client is not configured", nil)
	}

	resolvedMethod := strings.ToUpper(strings.TrimSpace(method))
	if resolvedMethod == "" {
		return nil, validationError("request method is required", nil)
	}

	var requestBody []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, validationError("failed to encode JSON request body", err)
		}
		requestBody = encoded
	}

	responseBody, _, err := c.execute(ctx, resolvedMethod, path, requestBody, defaultMediaType, opts)
	if err != nil {
		return nil, err
	}

	return decodeResponse(responseBody, extractorFrom(opts))
}

func (c *Client) execute(
	ctx context.Context,
	method string,
	path string,
	body []byte,
	contentType string,
	opts *RequestOptions,
) ([]byte, int, error) {
	targetURL, err := c.requestURL(path, opts)
	if err != nil {
		return nil, 0, err
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, 0, internalError("failed to create request", err)
	}

	request.Header.Set("Accept", defaultMediaType)
	if len(body) > 0 && contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	c.applyHeaders(request)
	c.applyCredentials(request)

	c.tracef("%s %s", method, targetURL)
	response, err := c.client.Do(request)
	if err != nil {
		return nil, 0, transportError("request failed", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, 0, transportError("failed to read response body", err)
	}
	c.tracef("%s %s -> %d (%d bytes)", method, targetURL, response.StatusCode, len(responseBody))

	if response.StatusCode >= http.StatusBadRequest {
		return nil, response.StatusCode, classifyStatusError(response.StatusCode, responseBody)
	}

	return responseBody, response.StatusCode, nil
}

func (c *Client) requestURL(path string, opts *RequestOptions) (string, error) {
	resolved, err := c.URL(path)
	if err != nil {
		return "", err
	}

	if opts == nil || len(opts.Query) == 0 {
		return resolved, nil
	}

	parsed, err := url.Parse(resolved)
	if err != nil {
		return "", internalError("failed to parse request URL", err)
	}

	values := parsed.Query()
	keys := make([]string, 0, len(opts.Query))
	for key := range opts.Query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := opts.Query[key]
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}
	parsed.RawQuery = values.Encode()

	return parsed.String(), nil
}

func (c *Client) applyHeaders(request *http.Request) {
	if len(c.defaultHeaders) == 0 {
		return
	}
	keys := make([]string, 0, len(c.defaultHeaders))
	for key := range c.defaultHeaders {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		request.Header.Set(key, c.defaultHeaders[key])
	}
}

// applyCredentials attaches the session cookie so the httpOnly token reaches
// the backend on every call, matching the browser's credentials:include.
func (c *Client) applyCredentials(request *http.Request) {
	if c.sessionToken == "" {
		return
	}
	request.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.sessionToken})
}

func (c *Client) tracef(format string, args ...any) {
	if c.debugf == nil {
		return
	}
	c.debugf(format, args...)
}

func extractorFrom(opts *RequestOptions) extract.Extractor {
	if opts == nil || opts.Extract == nil {
		return nil
	}
	return opts.Extract
}

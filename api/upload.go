package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/crmarques/storectl/resource"
)

// Upload sends a multipart POST with the file under the "file" part plus any
// metadata fields (for example alt_text), and returns the decoded response.
func (c *Client) Upload(
	ctx context.Context,
	path string,
	filename string,
	contents io.Reader,
	fields map[string]string,
	opts *RequestOptions,
) (resource.Value, error) {
	if c == nil {
		return nil, internalError("client is not configured", nil)
	}
	if contents == nil {
		return nil, validationError("upload contents are required", nil)
	}

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return nil, internalError("failed to encode upload field", err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, internalError("failed to encode upload file part", err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, internalError("failed to read upload contents", err)
	}
	if err := writer.Close(); err != nil {
		return nil, internalError("failed to finish upload body", err)
	}

	responseBody, _, err := c.execute(ctx, http.MethodPost, path, buffer.Bytes(), writer.FormDataContentType(), opts)
	if err != nil {
		return nil, err
	}

	return decodeResponse(responseBody, extractorFrom(opts))
}

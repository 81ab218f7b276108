// Package yamlutil wraps the YAML codec with the encoding settings used
// across the CLI.
package yamlutil

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// MarshalWithIndent encodes a value with the given indent width instead of
// the codec's default.
func MarshalWithIndent(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(indent)
	if err := encoder.Encode(v); err != nil {
		_ = encoder.Close()
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalStrict decodes data into out, rejecting fields the target type
// does not declare.
func UnmarshalStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

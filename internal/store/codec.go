// Package store holds what the snapshot store backends share: the document
// encoding and key validation.
package store

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/agentstation/promptradar/pkg/errors"
)

// Encode renders doc as two-space indented JSON followed by a newline.
func Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a stored document into dst.
func Decode(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

// ValidKey rejects keys that are empty or could escape a directory.
func ValidKey(key string) error {
	if key == "" {
		return errors.NewValidationError("key", key, "cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return errors.NewValidationError("key", key, "must not contain path elements")
	}
	return nil
}

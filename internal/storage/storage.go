// Package storage holds what the document store implementations share.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotExist is returned (wrapped) when a document key is absent.
var ErrNotExist = errors.New("document does not exist")

// ValidateKey rejects keys that could escape the store namespace.
// Keys are slash separated; every segment must be a plain name.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty document key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid document key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid document key %q", key)
		}
	}
	return nil
}

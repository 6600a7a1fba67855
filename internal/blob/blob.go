// Package blob stores uploaded report images.
package blob

import (
	"context"
	"errors"
	"io"
	"regexp"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob: not found")

// ErrInvalidKey is returned for keys outside the allowed alphabet.
var ErrInvalidKey = errors.New("blob: invalid key")

// Store is an object store keyed by flat names.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidKey reports whether key is a safe flat object name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key) && key != "." && key != ".."
}

// Package ids generates identifiers for sessions and requests.
package ids

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewSessionID returns a lexicographically sortable identifier with 80 bits
// of cryptographic randomness.
func NewSessionID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewRequestID returns a random request correlation identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// NewUploadKey returns a unique object name for an uploaded file with the
// given extension (including the dot).
func NewUploadKey(ext string) string {
	return strings.ToLower(ulid.Make().String()) + ext
}

package session

import (
	"crypto/rand"
	"encoding/base64"
	mathrand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultIDSize is the number of random bytes in a generated session id.
	DefaultIDSize = 24
	minIDSize     = 8
	stampLength   = 6
)

// IDGenerator produces a new session id from size random bytes.
type IDGenerator func(size int) string

// randRead is swapped in tests to exercise the fallback path.
var randRead = rand.Read

// GenerateID returns a URL-safe random id followed by a six character base-36
// millisecond timestamp. Sizes below 8 fall back to DefaultIDSize.
//
// When the system CSPRNG fails the random part comes from math/rand/v2. That
// path is a degraded fallback and is never used while crypto/rand works.
func GenerateID(size int) string {
	if size < minIDSize {
		size = DefaultIDSize
	}

	b := make([]byte, size)
	if _, err := randRead(b); err != nil {
		for i := range b {
			b[i] = byte(mathrand.Uint32())
		}
	}

	return base64.RawURLEncoding.EncodeToString(b) + timestamp(time.Now())
}

func timestamp(t time.Time) string {
	s := strconv.FormatInt(t.UnixMilli(), 36)
	if len(s) < stampLength {
		return strings.Repeat("0", stampLength-len(s)) + s
	}
	return s[len(s)-stampLength:]
}

// UUIDGenerator ignores size and returns a random UUID string.
func UUIDGenerator(int) string {
	return uuid.NewString()
}

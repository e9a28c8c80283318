package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	t.Run("url safe with timestamp suffix", func(t *testing.T) {
		id := GenerateID(24)
		// 24 bytes encode to 32 characters, plus the stamp.
		require.Len(t, id, 32+stampLength)
		assert.False(t, strings.ContainsAny(id, "+/="))
		assert.Regexp(t, `^[0-9a-z]{6}$`, id[32:])
	})

	t.Run("small sizes use the default", func(t *testing.T) {
		assert.Len(t, GenerateID(4), 32+stampLength)
		assert.Len(t, GenerateID(0), 32+stampLength)
	})

	t.Run("custom size", func(t *testing.T) {
		assert.Len(t, GenerateID(9), 12+stampLength)
	})

	t.Run("unique", func(t *testing.T) {
		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			id := GenerateID(DefaultIDSize)
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})
}

func TestGenerateID_Fallback(t *testing.T) {
	orig := randRead
	t.Cleanup(func() { randRead = orig })
	randRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }

	a, b := GenerateID(24), GenerateID(24)
	assert.Len(t, a, 32+stampLength)
	assert.NotEqual(t, a, b)
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "000000", timestamp(time.UnixMilli(0)))
	assert.Equal(t, "00000a", timestamp(time.UnixMilli(10)))
	// 36^6 wraps to the last six digits.
	assert.Equal(t, "000001", timestamp(time.UnixMilli(2176782336+1)))
}

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator(24)
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, UUIDGenerator(24))
}

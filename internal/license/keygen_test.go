package license

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyPattern = regexp.MustCompile(`^DV\d+-[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)

func TestGenerateKey_Format(t *testing.T) {
	tests := []struct {
		name         string
		majorVersion int
		wantPrefix   string
	}{
		{name: "version 1", majorVersion: 1, wantPrefix: "DV1-"},
		{name: "version 2", majorVersion: 2, wantPrefix: "DV2-"},
		{name: "double digit version", majorVersion: 12, wantPrefix: "DV12-"},
		{name: "zero falls back to 1", majorVersion: 0, wantPrefix: "DV1-"},
		{name: "negative falls back to 1", majorVersion: -3, wantPrefix: "DV1-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateKey(tt.majorVersion)

			assert.True(t, strings.HasPrefix(key, tt.wantPrefix), "key %q should start with %q", key, tt.wantPrefix)
			assert.Regexp(t, keyPattern, key)
		})
	}
}

func TestGenerateKey_ExcludesAmbiguousCharacters(t *testing.T) {
	// The alphabet drops 0, O, 1 and I so keys survive being read aloud.
	for i := 0; i < 200; i++ {
		key := GenerateKey(1)
		body := strings.TrimPrefix(key, "DV1-")

		assert.NotContains(t, body, "0")
		assert.NotContains(t, body, "O")
		assert.NotContains(t, body, "1")
		assert.NotContains(t, body, "I")
	}
}

func TestGenerateKey_SegmentStructure(t *testing.T) {
	key := GenerateKey(1)

	parts := strings.Split(key, "-")
	require.Len(t, parts, 5)
	assert.Equal(t, "DV1", parts[0])
	for _, segment := range parts[1:] {
		assert.Len(t, segment, 4)
	}
}

func TestGenerateKey_Uniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		key := GenerateKey(1)
		_, dup := seen[key]
		require.False(t, dup, "generated duplicate key %q", key)
		seen[key] = struct{}{}
	}
}

package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	stored := Hash("s3cret")
	assert.True(t, Verify(stored, "s3cret"))
	assert.False(t, Verify(stored, "wrong"))
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	a := Hash("same")
	b := Hash("same")
	assert.NotEqual(t, a, b, "salt must be drawn fresh per call")

	// Both still verify against the original password.
	assert.True(t, Verify(a, "same"))
	assert.True(t, Verify(b, "same"))
}

func TestHash_ArtifactFormat(t *testing.T) {
	stored := Hash("pw")
	parts := strings.Split(stored, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "200000", parts[0])
	assert.Len(t, parts[1], saltBytes*2)
	assert.Len(t, parts[2], keyBytes*2)
}

func TestVerify_EmbeddedIterationCount(t *testing.T) {
	// An artifact hashed under an older, cheaper cost parameter must stay
	// verifiable after the default changes.
	old := HashWithIterations("legacy", 1_000)
	assert.True(t, Verify(old, "legacy"))
	assert.False(t, Verify(old, "not-legacy"))
}

func TestVerify_MalformedArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"too few fields", "200000$abcd"},
		{"too many fields", "1$aa$bb$cc"},
		{"non-numeric iterations", "lots$aabb$ccdd"},
		{"negative iterations", "-5$aabb$ccdd"},
		{"corrupt salt hex", "1000$zzzz$ccdd"},
		{"corrupt hash hex", "1000$aabb$zzzz"},
		{"empty hash", "1000$aabb$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify(tt.stored, "anything"))
		})
	}
}

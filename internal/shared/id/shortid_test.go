package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{name: "explicit length", length: 15, want: 15},
		{name: "zero falls back to default", length: 0, want: DefaultLength},
		{name: "negative falls back to default", length: -3, want: DefaultLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.length)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.True(t, IsAlphanumeric(got))
		})
	}
}

func TestNewVerificationToken_IsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tok, err := NewVerificationToken()
		require.NoError(t, err)
		assert.Len(t, tok, VerificationTokenLength)
		assert.False(t, seen[tok], "token repeated: %s", tok)
		seen[tok] = true
	}
}

func TestIsAlphanumeric(t *testing.T) {
	assert.True(t, IsAlphanumeric("abcXYZ019"))
	assert.True(t, IsAlphanumeric(""))
	assert.False(t, IsAlphanumeric("abc-def"))
	assert.False(t, IsAlphanumeric("täst"))
}

func TestGenerate_UsesWholeAlphabet(t *testing.T) {
	seen := make(map[rune]bool)
	for i := 0; i < 100; i++ {
		s, err := Generate(64)
		require.NoError(t, err)
		for _, c := range s {
			seen[c] = true
		}
	}
	assert.Len(t, seen, len(alphabet))
}

func TestNewPassword_Length(t *testing.T) {
	pw, err := NewPassword()
	require.NoError(t, err)
	assert.Len(t, pw, PasswordLength)
}

package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestHmacSHA256(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		a := HmacSHA256("secret", "payload")
		b := HmacSHA256("secret", "payload")
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("differs per secret and payload", func(t *testing.T) {
		base := HmacSHA256("secret", "payload")
		assert.NotEqual(t, base, HmacSHA256("other", "payload"))
		assert.NotEqual(t, base, HmacSHA256("secret", "other"))
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.True(t, ConstantTimeEqual("", ""))
}

func TestRedact(t *testing.T) {
	t.Run("leaves short text alone", func(t *testing.T) {
		assert.Equal(t, "hello", Redact("hello", 10))
	})

	t.Run("truncates long text", func(t *testing.T) {
		assert.Equal(t, "hello...", Redact("hello world", 5))
	})

	t.Run("keeps text exactly at the limit", func(t *testing.T) {
		assert.Equal(t, "hello", Redact("hello", 5))
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		// "héllo wörld" has two-byte runes; cut inside one of them.
		s := "héllo wörld"
		for max := 1; max < len(s); max++ {
			out := Redact(s, max)
			assert.True(t, utf8.ValidString(out), "Redact(%q, %d) produced invalid UTF-8", s, max)
		}
		assert.Equal(t, "h...", Redact("héllo", 2))
	})
}

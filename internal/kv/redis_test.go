package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueSorted(t *testing.T) {
	keys := []string{"user_b", "user_a", "user_b", "user_c", "user_a"}
	assert.Equal(t, []string{"user_a", "user_b", "user_c"}, uniqueSorted(keys))
	assert.Empty(t, uniqueSorted(nil))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `user_\*\?\[x\]`, escapeGlob("user_*?[x]"))
}

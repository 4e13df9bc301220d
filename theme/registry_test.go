package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	d, ok := r.Get("--woow-surface-bar")
	require.True(t, ok)
	assert.Equal(t, TypeColor, d.Type)
	assert.Equal(t, "#23282d", d.Default)

	_, ok = r.Get("--woow-does-not-exist")
	assert.False(t, ok)
}

func TestRegistryInvariants(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, name := range r.Names() {
		assert.False(t, seen[name], "duplicate variable %s", name)
		seen[name] = true

		d, ok := r.Get(name)
		require.True(t, ok)
		if d.Type != TypeDimension {
			assert.Empty(t, d.Unit, "unit on non-dimension %s", name)
		}
		assert.NotEmpty(t, d.Default, "missing default for %s", name)
		assert.NotEmpty(t, d.Fallback, "missing fallback for %s", name)
	}
}

func TestGenerateBaseStyle(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	css := r.GenerateBaseStyle()
	assert.True(t, strings.HasPrefix(css, ":root {\n"))

	// Every descriptor's default, with unit where applicable.
	assert.Contains(t, css, "--woow-surface-bar: #23282d;")
	assert.Contains(t, css, "--woow-space-bar-height: 32px;")
	assert.Contains(t, css, "--woow-transition-fast: 150ms;")
	assert.Contains(t, css, "--woow-mode-compact: 0;")

	for _, name := range r.Names() {
		assert.Contains(t, css, name+": ")
	}

	// Idempotent on repeated calls.
	assert.Equal(t, css, r.GenerateBaseStyle())
}

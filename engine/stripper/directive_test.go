package stripper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	t.Run("Should accept names regardless of case and padding", func(t *testing.T) {
		d, err := ParseDirective("  Single-Line ")
		require.NoError(t, err)
		assert.Equal(t, SingleLine, d)
	})

	t.Run("Should reject unknown names", func(t *testing.T) {
		_, err := ParseDirective("docblock")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"docblock"`)
		assert.Contains(t, err.Error(), "single-line, multi-line, html, jsdoc")
	})
}

func TestParseDirectiveSet(t *testing.T) {
	t.Run("Should collect valid names", func(t *testing.T) {
		set, err := ParseDirectiveSet([]string{"html", "jsdoc", "html"})
		require.NoError(t, err)
		assert.Equal(t, []Directive{HTML, JSDoc}, set.Directives())
		assert.False(t, set.RemovesDocs())
	})

	t.Run("Should fail on the first invalid name", func(t *testing.T) {
		_, err := ParseDirectiveSet([]string{"single-line", "bogus"})
		assert.ErrorContains(t, err, "bogus")
	})

	t.Run("Should return an empty set for no names", func(t *testing.T) {
		set, err := ParseDirectiveSet(nil)
		require.NoError(t, err)
		assert.True(t, set.IsEmpty())
		assert.Empty(t, set.Strings())
	})
}

func TestDirectiveSet(t *testing.T) {
	t.Run("Should default to every category but documentation", func(t *testing.T) {
		set := DefaultDirectives()
		assert.Equal(t, []string{"single-line", "multi-line", "html"}, set.Strings())
		assert.False(t, set.RemovesDocs())
	})

	t.Run("Should map the legacy flag", func(t *testing.T) {
		assert.Equal(t, DefaultDirectives(), DirectivesFromLegacy(true))
		removeAll := DirectivesFromLegacy(false)
		assert.True(t, removeAll.Has(JSDoc))
		assert.True(t, removeAll.RemovesDocs())
	})

	t.Run("Should ignore unknown directives", func(t *testing.T) {
		set := NewDirectiveSet(Directive("nope"))
		assert.True(t, set.IsEmpty())
		assert.False(t, set.Has(Directive("nope")))
		assert.False(t, Directive("nope").IsValid())
	})

	t.Run("Should not mutate the receiver in With", func(t *testing.T) {
		base := NewDirectiveSet(SingleLine)
		extended := base.With(JSDoc)
		assert.False(t, base.Has(JSDoc))
		assert.True(t, extended.Has(JSDoc))
		assert.Equal(t, "single-line, jsdoc", extended.String())
	})
}

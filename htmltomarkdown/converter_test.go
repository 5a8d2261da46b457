package htmltomarkdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/htmltomarkdown"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		md, err := c.Convert(`<h1>Nuka-Cola</h1><p>A <strong>pre-War</strong> soft drink.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "# Nuka-Cola")
		assert.Contains(t, md, "**pre-War**")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		md, err := c.Convert(`<table><tr><th>Variant</th><th>Effect</th></tr><tr><td>Quantum</td><td>+20 AP</td></tr></table>`)

		require.NoError(t, err)
		assert.Contains(t, md, "| Variant | Effect |")
		assert.Contains(t, md, "| Quantum | +20 AP |")
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		_, err := c.Convert("   ")

		require.Error(t, err)
		assert.Equal(t, wikivault.EINVALID, wikivault.ErrorCode(err))
	})
}

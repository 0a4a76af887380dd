package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitContent(t *testing.T) {
	t.Run("short content is one fragment", func(t *testing.T) {
		fragments := splitContent("brief report", defaultChunkSize, defaultChunkOverlap)
		require.Len(t, fragments, 1)
		assert.Equal(t, "brief report", fragments[0])
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Nil(t, splitContent("", defaultChunkSize, defaultChunkOverlap))
	})

	t.Run("long content overlaps", func(t *testing.T) {
		content := strings.Repeat("a", 1000)
		fragments := splitContent(content, 500, 50)

		require.Len(t, fragments, 3)
		assert.Len(t, fragments[0], 500)
		assert.Len(t, fragments[1], 500)
		// 0-500, 450-950, 900-1000
		assert.Len(t, fragments[2], 100)
	})

	t.Run("fragment starts step from previous", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 100; i++ {
			b.WriteString("0123456789")
		}
		fragments := splitContent(b.String(), 500, 50)

		require.GreaterOrEqual(t, len(fragments), 2)
		// The overlap region is shared between consecutive fragments.
		assert.Equal(t, fragments[0][450:], fragments[1][:50])
	})

	t.Run("short trailing fragment dropped", func(t *testing.T) {
		// 520 runes: fragments are 0-500 and 450-520; the 70-rune tail is
		// at the drop boundary and excluded.
		content := strings.Repeat("b", 520)
		fragments := splitContent(content, 500, 50)

		require.Len(t, fragments, 1)
		assert.Len(t, fragments[0], 500)
	})

	t.Run("multibyte runes counted as single characters", func(t *testing.T) {
		content := strings.Repeat("語", 600)
		fragments := splitContent(content, 500, 50)

		require.Len(t, fragments, 2)
		assert.Equal(t, 500, len([]rune(fragments[0])))
		assert.Equal(t, 150, len([]rune(fragments[1])))
	})
}

package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/lib/review.go b/lib/review.go
index 1111111..2222222 100644
--- a/lib/review.go
+++ b/lib/review.go
@@ -1,3 +1,4 @@
 package lib
-var a = 1
+var a = 2
+var b = 3
 // end
diff --git a/README.md b/README.md
deleted file mode 100644
index 3333333..0000000
--- a/README.md
+++ /dev/null
@@ -1,2 +0,0 @@
-# title
-body
`

func makeLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("+line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestTruncate(t *testing.T) {
	t.Run("should keep a short diff untouched", func(t *testing.T) {
		in := makeLines(10)

		out, truncated := Truncate(in, 500)

		assert.False(t, truncated)
		assert.Equal(t, in, out)
	})

	t.Run("should keep exactly the limit", func(t *testing.T) {
		in := makeLines(500)

		out, truncated := Truncate(in, 500)

		assert.False(t, truncated)
		assert.Equal(t, in, out)
	})

	t.Run("should cut a 600 line diff to 500 lines", func(t *testing.T) {
		in := makeLines(600)

		out, truncated := Truncate(in, 500)

		assert.True(t, truncated)
		assert.Len(t, strings.Split(out, "\n"), 500)
		assert.True(t, strings.HasSuffix(out, "+line 499"))
	})
}

func TestFiles(t *testing.T) {
	t.Run("should list files with line counts", func(t *testing.T) {
		stats, err := Files(samplePatch)

		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "README.md", stats[0].Name)
		assert.Equal(t, int32(2), stats[0].Deleted)
		assert.Equal(t, "lib/review.go", stats[1].Name)
		assert.Equal(t, int32(2), stats[1].Added)
		assert.Equal(t, int32(1), stats[1].Deleted)
	})

	t.Run("should return names only", func(t *testing.T) {
		assert.Equal(t, []string{"README.md", "lib/review.go"}, Names(samplePatch))
	})

	t.Run("should return nothing for an empty diff", func(t *testing.T) {
		stats, err := Files("")

		require.NoError(t, err)
		assert.Empty(t, stats)
	})
}

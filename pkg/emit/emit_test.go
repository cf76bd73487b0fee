package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baytides/climate-quest/pkg/content"
)

func sampleSummaries() []content.Summary {
	return []content.Summary{
		{
			LocationID:  "start",
			Title:       "Coastal Beach",
			Summary:     "Tide pools & dunes",
			KeyTakeaway: "Keep plastic <out> of the ocean",
			Tags:        content.NewTags([]string{"MS-ESS3-3"}, []string{"Principle II"}, nil),
		},
	}
}

func TestMarshal_Format(t *testing.T) {
	data, err := Marshal(sampleSummaries())
	require.NoError(t, err)

	expected := `[
  {
    "locationId": "start",
    "title": "Coastal Beach",
    "summary": "Tide pools & dunes",
    "keyTakeaway": "Keep plastic <out> of the ocean",
    "tags": {
      "ngss": [
        "MS-ESS3-3"
      ],
      "epc": [
        "Principle II"
      ],
      "topic": []
    }
  }
]
`
	assert.Equal(t, expected, string(data))
}

func TestMarshal_EmptySlice(t *testing.T) {
	data, err := Marshal([]content.Question{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestMarshal_Deterministic(t *testing.T) {
	a, err := Marshal(sampleSummaries())
	require.NoError(t, err)
	b, err := Marshal(sampleSummaries())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "content", "summaries.json")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, WriteFile(path, sampleSummaries()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n"))
	assert.True(t, strings.HasSuffix(string(data), "]\n"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.json")
	require.NoError(t, WriteFile(path, []content.Event{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteFile_MarshalFailureLeavesTargetAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	err := WriteFile(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "previous\n", string(data))
}

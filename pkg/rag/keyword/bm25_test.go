package keyword

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Revenue GREW", []string{"revenue", "grew"}},
		{"strips punctuation", "grew 18%, in Q3!", []string{"grew", "18", "in", "q3"}},
		{"keeps underscore", "chunk_ord", []string{"chunk_ord"}},
		{"korean", "분기 실적 보고", []string{"분기", "실적", "보고"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func buildTestIndex() *Index {
	return Build([]Document{
		{ID: "notion:a:0", Text: "revenue grew 18 percent in the third quarter"},
		{ID: "notion:b:0", Text: "the weekly meeting covered hiring plans"},
		{ID: "gdrive:c:0", Text: "quarterly revenue targets and projections"},
	})
}

func TestSearchRanksMatchingDocsFirst(t *testing.T) {
	ix := buildTestIndex()

	results := ix.Search("revenue quarter", 3)
	require.NotEmpty(t, results)
	assert.Equal(t, "notion:a:0", results[0].ID)

	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearchNoMatchesReturnsEmpty(t *testing.T) {
	ix := buildTestIndex()
	assert.Empty(t, ix.Search("zebra astronaut", 5))
	assert.Empty(t, ix.Search("", 5))
}

func TestSearchTopKLimit(t *testing.T) {
	ix := buildTestIndex()
	results := ix.Search("the revenue meeting quarterly", 1)
	assert.Len(t, results, 1)
}

func TestSearchTieBreaksByIDAscending(t *testing.T) {
	ix := Build([]Document{
		{ID: "notion:b:0", Text: "alpha beta"},
		{ID: "notion:a:0", Text: "alpha beta"},
	})
	results := ix.Search("alpha", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "notion:a:0", results[0].ID)
	assert.Equal(t, "notion:b:0", results[1].ID)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ix := buildTestIndex()
	path := filepath.Join(t.TempDir(), "bm25.index")

	require.NoError(t, ix.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	orig := ix.Search("revenue", 3)
	restored := loaded.Search("revenue", 3)
	assert.Equal(t, orig, restored)
}

func TestLoadMissingFileReturnsNil(t *testing.T) {
	loaded, err := LoadFile(filepath.Join(t.TempDir(), "absent.index"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

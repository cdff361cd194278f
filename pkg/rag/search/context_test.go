package search

import (
	"strings"
	"testing"

	"arcana-be/internal/entity"
	"arcana-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id, title, url, text string) *index.SearchResult {
	return &index.SearchResult{
		Record: &entity.SourceRecord{
			Id:    id,
			Title: title,
			URL:   url,
			Text:  text,
		},
		Score: 1,
	}
}

func TestBuildContextNumbersEntriesInRankOrder(t *testing.T) {
	got := BuildContext([]*index.SearchResult{
		result("notion:a:0", "Roadmap", "https://n.so/a", "plan the next quarter"),
		result("gdrive:b:0", "Budget", "https://d.gl/b", "spend less than last year"),
	}, 0)

	assert.True(t, strings.HasPrefix(got, "[1] Roadmap\nhttps://n.so/a\nplan the next quarter"))
	assert.Contains(t, got, "[2] Budget\nhttps://d.gl/b\nspend less than last year")
	assert.Less(t, strings.Index(got, "[1]"), strings.Index(got, "[2]"))
}

func TestBuildContextOmitsEmptyURLLine(t *testing.T) {
	got := BuildContext([]*index.SearchResult{
		result("notion:a:0", "Roadmap", "", "body text"),
	}, 0)
	assert.Equal(t, "[1] Roadmap\nbody text", got)
}

func TestBuildContextDropsLowestRankedWhenOverLimit(t *testing.T) {
	big := strings.Repeat("x", 90)
	results := []*index.SearchResult{
		result("notion:a:0", "A", "", big),
		result("notion:b:0", "B", "", big),
		result("notion:c:0", "C", "", big),
	}

	got := BuildContext(results, 220)
	assert.Contains(t, got, "[1] A")
	assert.Contains(t, got, "[2] B")
	assert.NotContains(t, got, "[3] C")
}

func TestBuildContextTrimsOversizedTopEntry(t *testing.T) {
	huge := strings.Repeat("y", 500)
	got := BuildContext([]*index.SearchResult{
		result("notion:a:0", "A", "", huge),
	}, 100)

	assert.LessOrEqual(t, len([]rune(got)), 100)
	assert.True(t, strings.HasPrefix(got, "[1] A"))
}

func TestBuildCitationsDedupsByChunkID(t *testing.T) {
	results := []*index.SearchResult{
		result("notion:a:0", "A", "https://n.so/a", "first"),
		result("notion:a:0", "A", "https://n.so/a", "first again"),
		result("notion:b:1", "B", "https://n.so/b", "second"),
	}

	citations := BuildCitations(results)
	require.Len(t, citations, 2)
	assert.Equal(t, "notion:a:0", citations[0].ChunkID)
	assert.Equal(t, "notion:b:1", citations[1].ChunkID)
}

func TestSnippetStripsMarkersAndTruncates(t *testing.T) {
	text := "[[H1]]\nQ3 Review\n[[P]]\nrevenue   grew\nby a lot"
	got := Snippet(text, 360)
	assert.Equal(t, "Q3 Review revenue grew by a lot", got)

	long := strings.Repeat("word ", 200)
	short := Snippet(long, 360)
	assert.LessOrEqual(t, len([]rune(short)), 360)
}

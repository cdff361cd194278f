package chunker

import (
	"strings"
	"testing"

	"arcana-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage(segments []Segment) PageInput {
	return PageInput{
		WorkspaceID: uuid.New(),
		SourceType:  entity.SourceTypeNotion,
		SourceID:    "page-1",
		Title:       "Q3 Review",
		URL:         "https://www.notion.so/page-1",
		Segments:    segments,
	}
}

func TestBuildSingleRecordPage(t *testing.T) {
	b := NewBuilder(800, 0.10)

	records, err := b.Build(testPage([]Segment{
		{Type: "heading_1", Depth: 0, Text: "Q3 Review"},
		{Type: "paragraph", Depth: 0, Text: "revenue grew 18% in Q3"},
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "notion:page-1:0", rec.Id)
	assert.Equal(t, 0, rec.ChunkOrd)
	assert.Contains(t, rec.Text, "[[H1]]")
	assert.Contains(t, rec.Text, "[[P]]")
	assert.Contains(t, rec.Text, "revenue grew 18% in Q3")
	assert.Equal(t, entity.StructuredFormatNone, rec.StructuredFormat)
}

func TestBuildChunkOrdContiguous(t *testing.T) {
	b := NewBuilder(120, 0.10)

	long := strings.Repeat("every quarter the numbers moved again and again ", 30)
	records, err := b.Build(testPage([]Segment{
		{Type: "paragraph", Depth: 0, Text: long},
	}))
	require.NoError(t, err)
	require.Greater(t, len(records), 1)

	for i, rec := range records {
		assert.Equal(t, i, rec.ChunkOrd)
		assert.Equal(t, entity.RecordID("notion", "page-1", i), rec.Id)
	}
}

func TestBuildEmptyPageYieldsNoRecords(t *testing.T) {
	b := NewBuilder(800, 0.10)

	records, err := b.Build(testPage([]Segment{
		{Type: "paragraph", Depth: 0, Text: "   "},
		{Type: "paragraph", Depth: 0, Text: "\n"},
	}))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildBlockMetaRoundTrip(t *testing.T) {
	b := NewBuilder(800, 0.10)

	records, err := b.Build(testPage([]Segment{
		{Type: "heading_1", Depth: 0, Text: "Title"},
		{Type: "bulleted_list_item", Depth: 1, Text: "first point"},
		{Type: "table_row", Depth: 2, Text: "a | b"},
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)

	types, markers, depths, starts, err := DecodeBlockMeta(records[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"heading_1", "bulleted_list_item", "table_row"}, types)
	assert.Equal(t, []string{"H1", "LI", "TBL"}, markers)
	assert.Equal(t, []int{0, 1, 2}, depths)
	require.Len(t, starts, 3)

	// Each start offset points at the segment's marker line.
	runes := []rune(records[0].Text)
	for i, start := range starts {
		rest := string(runes[start:])
		if !strings.HasPrefix(rest, "[["+markers[i]+"]]") {
			t.Errorf("start %d does not point at marker %s: %q", start, markers[i], rest)
		}
	}
}

func TestBuildSkipsUnknownTypesGracefully(t *testing.T) {
	b := NewBuilder(800, 0.10)

	records, err := b.Build(testPage([]Segment{
		{Type: "synced_block", Depth: 0, Text: "mirrored content"},
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Text, "[[P]]")
}

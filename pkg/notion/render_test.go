package notion

import (
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rt(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type:      notionapi.ObjectTypeText,
		PlainText: content,
		Text:      &notionapi.Text{Content: content},
	}}
}

func TestRenderBlockParagraph(t *testing.T) {
	block := &notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph:  notionapi.Paragraph{RichText: rt("hello world")},
	}

	seg, ok := renderBlock(block, 0)
	require.True(t, ok)
	assert.Equal(t, "paragraph", seg.Type)
	assert.Equal(t, "hello world", seg.Text)
	assert.Equal(t, 0, seg.Depth)
}

func TestRenderBlockHeadingKeepsDepth(t *testing.T) {
	block := &notionapi.Heading2Block{
		BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
		Heading2:   notionapi.Heading{RichText: rt("Section")},
	}

	seg, ok := renderBlock(block, 2)
	require.True(t, ok)
	assert.Equal(t, "heading_2", seg.Type)
	assert.Equal(t, 2, seg.Depth)
}

func TestRenderBlockToDoCheckbox(t *testing.T) {
	checked := &notionapi.ToDoBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeToDo),
		ToDo:       notionapi.ToDo{RichText: rt("ship it"), Checked: true},
	}
	seg, ok := renderBlock(checked, 0)
	require.True(t, ok)
	assert.Equal(t, "[x] ship it", seg.Text)

	open := &notionapi.ToDoBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeToDo),
		ToDo:       notionapi.ToDo{RichText: rt("write docs")},
	}
	seg, ok = renderBlock(open, 0)
	require.True(t, ok)
	assert.Equal(t, "[ ] write docs", seg.Text)
}

func TestRenderBlockCodeFences(t *testing.T) {
	block := &notionapi.CodeBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCode),
		Code:       notionapi.Code{RichText: rt("x := 1"), Language: "go"},
	}

	seg, ok := renderBlock(block, 0)
	require.True(t, ok)
	assert.Equal(t, "```go\nx := 1\n```", seg.Text)
}

func TestRenderBlockTableRowJoinsCells(t *testing.T) {
	block := &notionapi.TableRowBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeTableRowBlock),
		TableRow: notionapi.TableRow{
			Cells: [][]notionapi.RichText{rt("alpha"), rt("1")},
		},
	}

	seg, ok := renderBlock(block, 1)
	require.True(t, ok)
	assert.Equal(t, "alpha | 1", seg.Text)
}

func TestRenderBlockChildPageTitleOnly(t *testing.T) {
	block := &notionapi.ChildPageBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeChildPage),
	}
	block.ChildPage.Title = "Subpage"

	seg, ok := renderBlock(block, 0)
	require.True(t, ok)
	assert.Equal(t, "child_page", seg.Type)
	assert.Equal(t, "Subpage", seg.Text)
}

func TestRenderBlockSkipsMediaAndEmpty(t *testing.T) {
	image := &notionapi.ImageBlock{BasicBlock: basicBlock(notionapi.BlockTypeImage)}
	_, ok := renderBlock(image, 0)
	assert.False(t, ok)

	empty := &notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph:  notionapi.Paragraph{RichText: rt("   ")},
	}
	_, ok = renderBlock(empty, 0)
	assert.False(t, ok)
}

func TestPlainTextAnnotations(t *testing.T) {
	text := []notionapi.RichText{
		{
			PlainText:   "bold",
			Annotations: &notionapi.Annotations{Bold: true},
		},
		{
			PlainText: " and ",
		},
		{
			PlainText:   "linked",
			Href:        "https://example.com",
			Annotations: &notionapi.Annotations{},
		},
	}

	assert.Equal(t, "**bold** and [linked](https://example.com)", plainText(text))
}

package notion

import (
	"fmt"
	"strings"

	"arcana-be/pkg/chunker"

	"github.com/jomei/notionapi"
)

// Media and unsupported block types carry no indexable text.
var skippedBlockTypes = map[notionapi.BlockType]bool{
	notionapi.BlockType("audio"):   true,
	notionapi.BlockTypeFile:        true,
	notionapi.BlockTypeImage:       true,
	notionapi.BlockTypePdf:         true,
	notionapi.BlockTypeVideo:       true,
	notionapi.BlockTypeUnsupported: true,
	notionapi.BlockTypeDivider:     true,
	notionapi.BlockTypeBreadcrumb:  true,
}

// renderBlock converts one Notion block into a segment. The second
// return is false for blocks with nothing to index.
func renderBlock(block notionapi.Block, depth int) (chunker.Segment, bool) {
	blockType := block.GetType()
	if skippedBlockTypes[blockType] {
		return chunker.Segment{}, false
	}

	var text string
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		text = plainText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		text = plainText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		text = plainText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		text = plainText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		text = plainText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		text = plainText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		text = todoText(b)
	case *notionapi.QuoteBlock:
		text = plainText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		text = plainText(b.Callout.RichText)
	case *notionapi.ToggleBlock:
		text = plainText(b.Toggle.RichText)
	case *notionapi.CodeBlock:
		text = codeText(b)
	case *notionapi.TableRowBlock:
		text = tableRowText(b)
	case *notionapi.BookmarkBlock:
		text = b.Bookmark.URL
	case *notionapi.ChildPageBlock:
		// Title only: the child's body indexes under its own page.
		text = b.ChildPage.Title
	default:
		return chunker.Segment{}, false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return chunker.Segment{}, false
	}

	return chunker.Segment{
		Type:  string(blockType),
		Depth: depth,
		Text:  text,
	}, true
}

func todoText(b *notionapi.ToDoBlock) string {
	box := "[ ]"
	if b.ToDo.Checked {
		box = "[x]"
	}
	return box + " " + plainText(b.ToDo.RichText)
}

func codeText(b *notionapi.CodeBlock) string {
	body := plainText(b.Code.RichText)
	if body == "" {
		return ""
	}
	return fmt.Sprintf("```%s\n%s\n```", b.Code.Language, body)
}

func tableRowText(b *notionapi.TableRowBlock) string {
	cells := make([]string, 0, len(b.TableRow.Cells))
	for _, cell := range b.TableRow.Cells {
		cells = append(cells, plainText(cell))
	}
	return strings.Join(cells, " | ")
}

// plainText flattens a rich-text run, keeping inline emphasis as
// markdown so formatting survives the index round trip.
func plainText(richText []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range richText {
		piece := rt.PlainText
		if piece == "" && rt.Text != nil {
			piece = rt.Text.Content
		}
		if piece == "" {
			continue
		}
		if rt.Annotations != nil {
			if rt.Annotations.Code {
				piece = "`" + piece + "`"
			}
			if rt.Annotations.Bold {
				piece = "**" + piece + "**"
			}
			if rt.Annotations.Italic {
				piece = "*" + piece + "*"
			}
			if rt.Annotations.Strikethrough {
				piece = "~~" + piece + "~~"
			}
		}
		if rt.Href != "" {
			piece = fmt.Sprintf("[%s](%s)", piece, rt.Href)
		}
		b.WriteString(piece)
	}
	return b.String()
}

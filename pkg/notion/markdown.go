package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// richTextMaxChars stays under Notion's 2000-char cap per rich-text
// element with headroom for multi-byte runes.
const richTextMaxChars = 1800

// MarkdownToBlocks converts generated markdown into Notion blocks for
// page creation. Supported constructs: ATX headings to level three,
// bulleted and numbered lists, fenced code, block quotes, pipe tables,
// and plain paragraphs.
func MarkdownToBlocks(markdown string) []notionapi.Block {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")

	var blocks []notionapi.Block
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(paragraph, " "))
		paragraph = nil
		if text == "" {
			return
		}
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: richText(text)},
		})
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushParagraph()

		case strings.HasPrefix(trimmed, "```"):
			flushParagraph()
			language := strings.TrimPrefix(trimmed, "```")
			var code []string
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					break
				}
				code = append(code, lines[i])
			}
			blocks = append(blocks, codeBlock(strings.Join(code, "\n"), language))

		case strings.HasPrefix(trimmed, "### "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading3Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
				Heading3:   notionapi.Heading{RichText: richText(strings.TrimPrefix(trimmed, "### "))},
			})

		case strings.HasPrefix(trimmed, "## "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading2Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
				Heading2:   notionapi.Heading{RichText: richText(strings.TrimPrefix(trimmed, "## "))},
			})

		case strings.HasPrefix(trimmed, "# "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading1Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading1),
				Heading1:   notionapi.Heading{RichText: richText(strings.TrimPrefix(trimmed, "# "))},
			})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			blocks = append(blocks, &notionapi.BulletedListItemBlock{
				BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
				BulletedListItem: notionapi.ListItem{RichText: richText(trimmed[2:])},
			})

		case isNumberedItem(trimmed):
			flushParagraph()
			blocks = append(blocks, &notionapi.NumberedListItemBlock{
				BasicBlock:       basicBlock(notionapi.BlockTypeNumberedListItem),
				NumberedListItem: notionapi.ListItem{RichText: richText(trimmed[strings.Index(trimmed, " ")+1:])},
			})

		case strings.HasPrefix(trimmed, "> "):
			flushParagraph()
			blocks = append(blocks, &notionapi.QuoteBlock{
				BasicBlock: basicBlock(notionapi.BlockTypeQuote),
				Quote:      notionapi.Quote{RichText: richText(strings.TrimPrefix(trimmed, "> "))},
			})

		case isTableStart(lines, i):
			flushParagraph()
			table, consumed := parseTable(lines, i)
			blocks = append(blocks, table)
			i += consumed - 1

		default:
			paragraph = append(paragraph, trimmed)
		}
	}
	flushParagraph()

	return blocks
}

func basicBlock(blockType notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   blockType,
	}
}

func codeBlock(code, language string) notionapi.Block {
	if language == "" {
		language = "plain text"
	}
	return &notionapi.CodeBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCode),
		Code: notionapi.Code{
			RichText: richText(code),
			Language: language,
		},
	}
}

func isNumberedItem(line string) bool {
	dot := strings.Index(line, ". ")
	if dot <= 0 {
		return false
	}
	for _, r := range line[:dot] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isTableStart matches a pipe row followed by a |---| separator row.
func isTableStart(lines []string, i int) bool {
	if !strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
		return false
	}
	if i+1 >= len(lines) {
		return false
	}
	sep := strings.TrimSpace(lines[i+1])
	if !strings.HasPrefix(sep, "|") {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '|', '-', ':', ' ':
			return -1
		}
		return r
	}, sep)
	return stripped == "" && strings.Contains(sep, "-")
}

func parseTable(lines []string, start int) (notionapi.Block, int) {
	header := splitTableRow(lines[start])

	rows := notionapi.Blocks{tableRow(header)}
	consumed := 2 // header plus separator
	for i := start + 2; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		rows = append(rows, tableRow(splitTableRow(trimmed)))
		consumed++
	}

	return &notionapi.TableBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeTableBlock),
		Table: notionapi.Table{
			TableWidth:      len(header),
			HasColumnHeader: true,
			Children:        rows,
		},
	}, consumed
}

func splitTableRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func tableRow(cells []string) notionapi.Block {
	rtCells := make([][]notionapi.RichText, len(cells))
	for i, cell := range cells {
		rtCells[i] = richText(cell)
	}
	return &notionapi.TableRowBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeTableRowBlock),
		TableRow:   notionapi.TableRow{Cells: rtCells},
	}
}

// richText splits long content across elements to stay under the API
// per-element character cap.
func richText(content string) []notionapi.RichText {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var out []notionapi.RichText
	for start := 0; start < len(runes); start += richTextMaxChars {
		end := start + richTextMaxChars
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: string(runes[start:end])},
		})
	}
	return out
}

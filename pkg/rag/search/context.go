package search

import (
	"fmt"
	"regexp"
	"strings"

	"arcana-be/pkg/rag/index"
)

const (
	// ContextCharLimit bounds the rendered context block handed to the
	// answer model.
	ContextCharLimit = 12000

	// SnippetMaxChars bounds each citation snippet.
	SnippetMaxChars = 360
)

// Citation points an answer back at one retrieved chunk.
type Citation struct {
	ChunkID string `json:"chunk_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

var markerLine = regexp.MustCompile(`(?m)^\[\[[A-Z0-9]+\]\]\n?`)

// BuildContext renders ranked results into the numbered context block
// used by the answer prompt:
//
//	[1] Title
//	URL
//	chunk text
//
// When the block would exceed limit, the lowest-ranked entries are
// dropped whole; a single oversized top entry is trimmed instead so
// the model always receives something.
func BuildContext(results []*index.SearchResult, limit int) string {
	if limit <= 0 {
		limit = ContextCharLimit
	}

	var b strings.Builder
	total := 0
	for i, res := range results {
		entry := renderEntry(i+1, res)
		entryLen := len([]rune(entry))

		if total+entryLen > limit {
			if i == 0 {
				runes := []rune(entry)
				b.WriteString(string(runes[:limit]))
			}
			break
		}
		b.WriteString(entry)
		total += entryLen
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderEntry(n int, res *index.SearchResult) string {
	rec := res.Record
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s\n", n, rec.Title)
	if rec.URL != "" {
		b.WriteString(rec.URL)
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(rec.Text))
	b.WriteString("\n\n")
	return b.String()
}

// BuildCitations maps ranked results to citation entries, deduplicated
// by chunk id in rank order.
func BuildCitations(results []*index.SearchResult) []Citation {
	seen := make(map[string]bool, len(results))
	citations := make([]Citation, 0, len(results))
	for _, res := range results {
		rec := res.Record
		if seen[rec.Id] {
			continue
		}
		seen[rec.Id] = true
		citations = append(citations, Citation{
			ChunkID: rec.Id,
			Title:   rec.Title,
			URL:     rec.URL,
			Snippet: Snippet(rec.Text, SnippetMaxChars),
		})
	}
	return citations
}

// Snippet strips block markers, collapses whitespace, and cuts at max
// runes.
func Snippet(text string, max int) string {
	cleaned := markerLine.ReplaceAllString(text, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	runes := []rune(cleaned)
	if len(runes) <= max {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:max]))
}

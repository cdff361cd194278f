package chunker

import (
	"math"
	"strings"
	"unicode"
)

// OverlapSize derives the chunk overlap from the configured ratio:
// max(0, min(chunk_size-1, round(chunk_size*ratio))).
func OverlapSize(chunkSize int, ratio float64) int {
	overlap := int(math.Round(float64(chunkSize) * ratio))
	if overlap > chunkSize-1 {
		overlap = chunkSize - 1
	}
	if overlap < 0 {
		overlap = 0
	}
	return overlap
}

// Split chunks text into pieces of at most chunkSize runes. A page that
// fits the budget stays whole. Overflow splits on paragraph boundaries
// first; a paragraph over budget is windowed on sentence/word
// boundaries with exactly `overlap` runes shared between consecutive
// windows.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		if para == "" {
			continue
		}
		if len([]rune(para)) <= chunkSize {
			units = append(units, para)
			continue
		}
		units = append(units, windowSplit(para, chunkSize, overlap)...)
	}

	return packUnits(units, chunkSize)
}

// windowSplit walks an oversized paragraph in rune windows. Each window
// ends on the nearest word boundary when one exists in its tail half,
// and the next window starts `overlap` runes before the previous end.
func windowSplit(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Prefer to break on whitespace so words survive intact.
		cut := end
		for i := end - 1; i > start+chunkSize/2; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// packUnits greedily joins units back into chunks within the budget.
func packUnits(units []string, chunkSize int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, unit := range units {
		unitLen := len([]rune(unit))
		sepLen := 0
		if currentLen > 0 {
			sepLen = 2 // "\n\n"
		}
		if currentLen+sepLen+unitLen > chunkSize {
			flush()
			sepLen = 0
		}
		if sepLen > 0 {
			current.WriteString("\n\n")
			currentLen += sepLen
		}
		current.WriteString(unit)
		currentLen += unitLen
	}
	flush()

	return chunks
}

package chunker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"arcana-be/internal/entity"

	"github.com/google/uuid"
)

// PageInput is one renderable source document handed to the builder:
// a Notion page's segment list or an extracted Drive file.
type PageInput struct {
	WorkspaceID uuid.UUID
	SourceType  string
	SourceID    string
	Title       string
	URL         string
	Segments    []Segment

	StructuredFormat string
	StructuredText   string
	FilePath         string
}

// Builder turns rendered pages into index-ready source records.
type Builder struct {
	ChunkSize    int
	OverlapRatio float64
}

func NewBuilder(chunkSize int, overlapRatio float64) *Builder {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	return &Builder{
		ChunkSize:    chunkSize,
		OverlapRatio: overlapRatio,
	}
}

// Build renders a page's segments into annotated text, chunks it, and
// emits records with the parallel block arrays serialized as JSON
// strings (the index only accepts scalar metadata values). A page whose
// rendered text is whitespace-only yields zero records.
func (b *Builder) Build(page PageInput) ([]*entity.SourceRecord, error) {
	annotated, meta := renderSegments(page.Segments)
	if strings.TrimSpace(annotated) == "" {
		return nil, nil
	}

	blockTypes, err := json.Marshal(meta.types)
	if err != nil {
		return nil, fmt.Errorf("serialize block types: %w", err)
	}
	blockMarkers, _ := json.Marshal(meta.markers)
	blockDepths, _ := json.Marshal(meta.depths)
	blockStarts, _ := json.Marshal(meta.starts)

	overlap := OverlapSize(b.ChunkSize, b.OverlapRatio)
	chunks := Split(annotated, b.ChunkSize, overlap)

	structuredFormat := page.StructuredFormat
	if structuredFormat == "" {
		structuredFormat = entity.StructuredFormatNone
	}

	now := time.Now()
	var records []*entity.SourceRecord
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		ord := len(records)
		records = append(records, &entity.SourceRecord{
			Id:               entity.RecordID(page.SourceType, page.SourceID, ord),
			WorkspaceId:      page.WorkspaceID,
			SourceType:       page.SourceType,
			SourceId:         page.SourceID,
			ChunkOrd:         ord,
			Text:             chunk,
			Title:            page.Title,
			URL:              page.URL,
			BlockTypes:       string(blockTypes),
			BlockMarkers:     string(blockMarkers),
			BlockDepths:      string(blockDepths),
			BlockStarts:      string(blockStarts),
			StructuredFormat: structuredFormat,
			StructuredText:   page.StructuredText,
			FilePath:         page.FilePath,
			IngestedAt:       now,
		})
	}
	return records, nil
}

type segmentMeta struct {
	types   []string
	markers []string
	depths  []int
	starts  []int
}

// renderSegments assembles the annotated page text, inserting sparse
// [[MARKER]] lines between segments and tracking where each segment's
// text begins in the assembled output (rune offsets).
func renderSegments(segments []Segment) (string, segmentMeta) {
	var sb strings.Builder
	meta := segmentMeta{}
	offset := 0

	write := func(s string) {
		sb.WriteString(s)
		offset += len([]rune(s))
	}

	for _, seg := range segments {
		text := strings.TrimRight(seg.Text, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		marker := MarkerFor(seg.Type)
		if offset > 0 {
			write("\n")
		}

		meta.types = append(meta.types, seg.Type)
		meta.markers = append(meta.markers, marker)
		meta.depths = append(meta.depths, seg.Depth)
		meta.starts = append(meta.starts, offset)

		write("[[" + marker + "]]\n")
		write(text)
		write("\n")
	}

	return sb.String(), meta
}

// DecodeBlockMeta restores the parallel arrays from their serialized
// form; consumers reconstructing structure read through this.
func DecodeBlockMeta(record *entity.SourceRecord) (types, markers []string, depths, starts []int, err error) {
	if record.BlockTypes != "" {
		if err = json.Unmarshal([]byte(record.BlockTypes), &types); err != nil {
			return
		}
	}
	if record.BlockMarkers != "" {
		if err = json.Unmarshal([]byte(record.BlockMarkers), &markers); err != nil {
			return
		}
	}
	if record.BlockDepths != "" {
		if err = json.Unmarshal([]byte(record.BlockDepths), &depths); err != nil {
			return
		}
	}
	if record.BlockStarts != "" {
		err = json.Unmarshal([]byte(record.BlockStarts), &starts)
	}
	return
}

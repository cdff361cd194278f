package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StructuredFormatNone    = "none"
	StructuredFormatOpenXML = "openxml"
)

// SourceRecord is the unit committed to the retrieval index: one chunk
// of one source document plus its structural metadata. The parallel
// block arrays are stored JSON-serialized because the index only
// accepts scalar metadata values.
type SourceRecord struct {
	Id          string
	WorkspaceId uuid.UUID
	SourceType  string
	SourceId    string
	ChunkOrd    int
	Text        string
	Title       string
	URL         string

	BlockTypes   string
	BlockMarkers string
	BlockDepths  string
	BlockStarts  string

	StructuredFormat string
	StructuredText   string
	FilePath         string

	Embedding  []float32
	IngestedAt time.Time
}

// RecordID builds the deterministic index id for a chunk.
func RecordID(sourceType, sourceID string, chunkOrd int) string {
	return fmt.Sprintf("%s:%s:%d", sourceType, sourceID, chunkOrd)
}

package chunker

// Segment is one rendered block of a source page: the block type, its
// nesting depth, and the flattened text.
type Segment struct {
	Type  string
	Depth int
	Text  string
}

// markerTable maps provider block types onto the sparse annotation
// markers embedded in chunk text.
var markerTable = map[string]string{
	"heading_1":          "H1",
	"heading_2":          "H2",
	"heading_3":          "H3",
	"paragraph":          "P",
	"bulleted_list_item": "LI",
	"numbered_list_item": "LI",
	"to_do":              "LI",
	"toggle":             "P",
	"quote":              "QT",
	"callout":            "P",
	"code":               "CODE",
	"table":              "TBL",
	"table_row":          "TBL",
	"child_page":         "PG",
	"page":               "PG",
}

// MarkerFor returns the annotation marker for a block type, defaulting
// to the paragraph marker for anything unknown.
func MarkerFor(blockType string) string {
	if m, ok := markerTable[blockType]; ok {
		return m
	}
	return "P"
}

package dto

import (
	"arcana-be/pkg/rag/search"
)

type HistoryMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type QueryRequest struct {
	Query    string           `json:"query" validate:"required,min=1"`
	TopK     int              `json:"top_k" validate:"omitempty,min=1,max=10"`
	Alpha    float64          `json:"alpha" validate:"omitempty,gt=0,lte=1"`
	Strategy string           `json:"strategy" validate:"omitempty,oneof=hybrid vector keyword"`
	History  []HistoryMessage `json:"history" validate:"omitempty,dive"`
	// FinalInstructions steer how the delivered reply is worded.
	FinalInstructions string `json:"final_message_instructions" validate:"omitempty,max=2000"`
}

type CreatedPageResponse struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DecisionResponse echoes the planner's routing so callers can see why
// the run took the path it did.
type DecisionResponse struct {
	Action       string `json:"action"`
	Query        string `json:"query,omitempty"`
	Title        string `json:"title,omitempty"`
	UseRag       bool   `json:"use_rag"`
	Instructions string `json:"instructions,omitempty"`
}

type QueryResultResponse struct {
	Answer    string            `json:"answer"`
	Citations []search.Citation `json:"citations,omitempty"`
	// TopURL is the top-ranked source page of the retrieval.
	TopURL string `json:"top_url,omitempty"`
}

type QueryResponse struct {
	Mode     string              `json:"mode"`
	Result   QueryResultResponse `json:"result"`
	Decision *DecisionResponse   `json:"decision,omitempty"`
	// GeneratedDocument is the full markdown draft of a generate run.
	GeneratedDocument string               `json:"generated_document,omitempty"`
	CreatedPage       *CreatedPageResponse `json:"created_page,omitempty"`
}

type SearchRequest struct {
	Query    string  `json:"query" validate:"required,min=1"`
	TopK     int     `json:"top_k" validate:"omitempty,min=1,max=10"`
	Alpha    float64 `json:"alpha" validate:"omitempty,gt=0,lte=1"`
	Strategy string  `json:"strategy" validate:"omitempty,oneof=hybrid vector keyword"`
}

type SearchHit struct {
	ChunkId    string  `json:"chunk_id"`
	SourceType string  `json:"source_type"`
	SourceId   string  `json:"source_id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Hits []SearchHit `json:"hits"`
}

package agent

import (
	"arcana-be/internal/workspace"
	"arcana-be/pkg/llm"
	"arcana-be/pkg/notion"
	"arcana-be/pkg/rag/index"
	"arcana-be/pkg/rag/search"
)

// Node names.
const (
	NodeDecide      = "decide"
	NodeSearch      = "search"
	NodePrepareRag  = "prepare_rag"
	NodeGenerate    = "generate"
	NodeCreatePage  = "create_page"
	NodeChat        = "chat"
	NodeFinalAnswer = "final_answer"
)

// Decision is the planner's parsed routing output.
type Decision struct {
	Action string `json:"action"`
	// Query is the refined retrieval query for the search path and for
	// grounded generation.
	Query string `json:"query,omitempty"`
	// Title names the document on the generate path.
	Title string `json:"title,omitempty"`
	// UseRag asks for workspace context under the generated document.
	UseRag bool `json:"use_rag,omitempty"`
	// Instructions are the planner's freeform drafting notes.
	Instructions string `json:"instructions,omitempty"`
}

// Planner actions.
const (
	ActionSearch   = "search"
	ActionGenerate = "generate"
	ActionChat     = "chat"
)

// State is the single mutable value threaded through one agent run.
// Each node reads what earlier nodes produced and fills its own slot.
type State struct {
	Workspace workspace.Context
	Query     string
	History   []llm.Message

	TopK     int
	Alpha    float64
	Strategy string
	// FinalInstructions are caller-supplied delivery notes applied when
	// the reply is crafted.
	FinalInstructions string

	Mode          string
	Decision      *Decision
	SearchResults []*index.SearchResult
	ContextBlock  string
	Citations     []search.Citation
	TopURL        string

	DocTitle    string
	Draft       string
	Truncated   bool
	CreatedPage *notion.PageSummary

	Answer string
}

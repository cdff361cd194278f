package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/llm"
	"arcana-be/pkg/notion"
	"arcana-be/pkg/rag/index"
	"arcana-be/pkg/rag/search"
)

// Searcher is the retrieval dependency, satisfied by the hybrid index.
type Searcher interface {
	Search(ctx context.Context, ws workspace.Context, req index.SearchRequest) ([]*index.SearchResult, error)
}

// PageCreator publishes a generated document. Nil when the workspace
// has no Notion connection.
type PageCreator interface {
	CreatePage(ctx context.Context, title, markdown string) (*notion.PageSummary, error)
}

// Agent wires the decide/search/generate/chat graph. The planner,
// grounded generation, and conversational turns run on the chat
// deployment; the delivered reply is crafted on the final-answer
// deployment.
type Agent struct {
	chat         llm.LLMProvider
	final        llm.LLMProvider
	searcher     Searcher
	pages        PageCreator
	docMaxTokens int
	log          logger.ILogger
}

func New(chat, final llm.LLMProvider, searcher Searcher, pages PageCreator, docMaxTokens int, log logger.ILogger) *Agent {
	if docMaxTokens <= 0 {
		docMaxTokens = 1600
	}
	return &Agent{
		chat:         chat,
		final:        final,
		searcher:     searcher,
		pages:        pages,
		docMaxTokens: docMaxTokens,
		log:          log,
	}
}

// Run executes one query through the graph and leaves the reply in
// st.Answer.
func (a *Agent) Run(ctx context.Context, st *State) error {
	g := NewGraph(NodeDecide, a.log)
	g.AddNode(NodeDecide, a.decide)
	g.AddNode(NodeSearch, a.search)
	g.AddNode(NodePrepareRag, a.prepareRag)
	g.AddNode(NodeGenerate, a.generate)
	g.AddNode(NodeCreatePage, a.createPage)
	g.AddNode(NodeChat, a.chatNode)
	g.AddNode(NodeFinalAnswer, a.finalAnswer)
	return g.Run(ctx, st)
}

func (a *Agent) decide(ctx context.Context, st *State) (string, error) {
	messages := append([]llm.Message{{Role: "system", Content: decideSystemPrompt}}, st.History...)
	messages = append(messages, llm.Message{Role: "user", Content: st.Query})

	raw, err := a.chat.Chat(ctx, messages,
		llm.WithTemperature(0.0),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return "", err
	}

	var decision Decision
	if err := json.Unmarshal([]byte(stripFences(raw)), &decision); err != nil {
		// An unparseable plan degrades to plain conversation.
		a.log.Warn("agent", "planner output not parseable, falling back to chat", map[string]interface{}{
			"raw": raw,
		})
		st.Mode = ActionChat
		return NodeChat, nil
	}
	st.Decision = &decision

	switch decision.Action {
	case ActionSearch:
		st.Mode = ActionSearch
		return NodeSearch, nil
	case ActionGenerate:
		st.Mode = ActionGenerate
		if decision.UseRag {
			return NodePrepareRag, nil
		}
		return NodeGenerate, nil
	case ActionChat:
		st.Mode = ActionChat
		return NodeChat, nil
	case "":
		return End, nil
	default:
		a.log.Warn("agent", "planner chose unknown action, falling back to chat", map[string]interface{}{
			"action": decision.Action,
		})
		st.Mode = ActionChat
		return NodeChat, nil
	}
}

func (a *Agent) search(ctx context.Context, st *State) (string, error) {
	results, err := a.searcher.Search(ctx, st.Workspace, index.SearchRequest{
		Query:    a.retrievalQuery(st),
		TopK:     st.TopK,
		Alpha:    st.Alpha,
		Strategy: st.Strategy,
	})
	if err != nil {
		return "", err
	}
	st.SearchResults = results
	return NodePrepareRag, nil
}

// prepareRag truncates the retrieved context and extracts citation
// candidates. On the grounded-generation path it runs straight after
// decide, so it performs the retrieval itself.
func (a *Agent) prepareRag(ctx context.Context, st *State) (string, error) {
	generating := st.Decision != nil && st.Decision.Action == ActionGenerate

	if generating {
		results, err := a.searcher.Search(ctx, st.Workspace, index.SearchRequest{
			Query:    a.retrievalQuery(st),
			TopK:     st.TopK,
			Alpha:    st.Alpha,
			Strategy: st.Strategy,
		})
		if err != nil {
			return "", err
		}
		st.SearchResults = results
	}

	st.ContextBlock = search.BuildContext(st.SearchResults, search.ContextCharLimit)
	st.Citations = search.BuildCitations(st.SearchResults)
	if len(st.SearchResults) > 0 {
		st.TopURL = st.SearchResults[0].Record.URL
	}

	if generating {
		return NodeGenerate, nil
	}
	return NodeFinalAnswer, nil
}

func (a *Agent) retrievalQuery(st *State) string {
	if st.Decision != nil && st.Decision.Query != "" {
		return st.Decision.Query
	}
	return st.Query
}

func (a *Agent) generate(ctx context.Context, st *State) (string, error) {
	title := "Untitled document"
	if st.Decision != nil && st.Decision.Title != "" {
		title = st.Decision.Title
	}
	st.DocTitle = title

	messages := []llm.Message{
		{Role: "system", Content: fmt.Sprintf(generateSystemPrompt, title)},
	}
	if st.Decision != nil && st.Decision.Instructions != "" {
		messages = append(messages, llm.Message{Role: "system", Content: "Drafting notes: " + st.Decision.Instructions})
	}
	if st.ContextBlock != "" {
		messages = append(messages, llm.Message{Role: "system", Content: fmt.Sprintf(generateContextPrompt, st.ContextBlock)})
	}
	messages = append(messages, llm.Message{Role: "user", Content: st.Query})

	draft, err := a.chat.Chat(ctx, messages, llm.WithMaxTokens(a.docMaxTokens))
	if err == nil {
		st.Draft = draft
		return NodeCreatePage, nil
	}

	var truncated *llm.ErrTruncated
	if !errors.As(err, &truncated) {
		return "", err
	}

	// One retry with a doubled budget before giving up.
	draft, err = a.chat.Chat(ctx, messages, llm.WithMaxTokens(a.docMaxTokens*2))
	if err == nil {
		st.Draft = draft
		return NodeCreatePage, nil
	}
	if errors.As(err, &truncated) {
		st.Draft = truncated.Content
		st.Truncated = true
		return NodeFinalAnswer, nil
	}
	return "", err
}

func (a *Agent) createPage(ctx context.Context, st *State) (string, error) {
	if a.pages == nil {
		return NodeFinalAnswer, nil
	}

	page, err := a.pages.CreatePage(ctx, st.DocTitle, st.Draft)
	if err != nil {
		// The draft still reaches the user even when publishing fails.
		a.log.Warn("agent", "page creation failed, returning draft inline", map[string]interface{}{
			"title": st.DocTitle,
			"error": err.Error(),
		})
		return NodeFinalAnswer, nil
	}
	st.CreatedPage = page
	return NodeFinalAnswer, nil
}

func (a *Agent) chatNode(ctx context.Context, st *State) (string, error) {
	messages := append([]llm.Message{{Role: "system", Content: chatSystemPrompt}}, st.History...)
	messages = append(messages, llm.Message{Role: "user", Content: st.Query})

	draft, err := a.chat.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	st.Draft = draft
	return NodeFinalAnswer, nil
}

// finalAnswer crafts the delivered reply on the final-answer
// deployment. Search replies are composed from the context block;
// generate and chat drafts are rewritten for delivery.
func (a *Agent) finalAnswer(ctx context.Context, st *State) (string, error) {
	if st.Truncated {
		st.Answer = fmt.Sprintf(truncatedApology, st.Draft)
		return End, nil
	}

	switch st.Mode {
	case ActionGenerate:
		st.Answer = a.rewrite(ctx, st, a.describeGeneratedDoc(st))
	case ActionChat:
		st.Answer = a.rewrite(ctx, st, st.Draft)
	default:
		answer, err := a.groundedAnswer(ctx, st)
		if err != nil {
			return "", err
		}
		st.Answer = answer
	}
	return End, nil
}

func (a *Agent) groundedAnswer(ctx context.Context, st *State) (string, error) {
	contextBlock := st.ContextBlock
	if contextBlock == "" {
		contextBlock = "(no matching content found in this workspace)"
	}

	messages := []llm.Message{{
		Role:    "system",
		Content: fmt.Sprintf(answerSystemPrompt, contextBlock),
	}}
	if st.FinalInstructions != "" {
		messages = append(messages, llm.Message{Role: "system", Content: "Delivery notes: " + st.FinalInstructions})
	}
	messages = append(messages, st.History...)
	messages = append(messages, llm.Message{Role: "user", Content: st.Query})

	return a.final.Chat(ctx, messages)
}

// rewrite polishes a draft on the final-answer deployment. The raw
// draft survives a failed or empty rewrite so the user always gets the
// content.
func (a *Agent) rewrite(ctx context.Context, st *State, draft string) string {
	if strings.TrimSpace(draft) == "" {
		return draft
	}

	instructions := st.FinalInstructions
	if instructions == "" {
		instructions = "Keep the wording close to the draft."
	}
	messages := []llm.Message{
		{Role: "system", Content: fmt.Sprintf(finalSystemPrompt, st.Mode, instructions)},
		{Role: "user", Content: draft},
	}

	polished, err := a.final.Chat(ctx, messages)
	if err != nil {
		a.log.Warn("agent", "final answer rewrite failed, returning draft", map[string]interface{}{
			"error": err.Error(),
		})
		return draft
	}
	if strings.TrimSpace(polished) == "" {
		return draft
	}
	return polished
}

func (a *Agent) describeGeneratedDoc(st *State) string {
	if st.CreatedPage != nil {
		return fmt.Sprintf("I created %q in your Notion workspace: %s", st.DocTitle, st.CreatedPage.URL)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here is %q. I could not publish it to Notion, so the full draft follows:\n\n", st.DocTitle)
	b.WriteString(st.Draft)
	return b.String()
}

// stripFences unwraps ```json fenced planner replies.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

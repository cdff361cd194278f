package notion

import (
	"context"
	"net/http"
	"time"

	"arcana-be/pkg/chunker"

	"github.com/jomei/notionapi"
)

const searchPageSize = 100

// defaultTimeout bounds one Notion API call.
const defaultTimeout = 60 * time.Second

// Client wraps the workspace-scoped Notion API connection used by one
// sync run.
type Client struct {
	api *notionapi.Client
}

func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &rateLimitTripper{base: http.DefaultTransport},
	}
	return &Client{api: notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(httpClient))}
}

// PageSummary is the listing view of one accessible page.
type PageSummary struct {
	ID         string
	Title      string
	URL        string
	LastEdited time.Time
}

// PageBatch is one page of search results plus the resume cursor.
type PageBatch struct {
	Pages      []PageSummary
	NextCursor string
	HasMore    bool
}

// SearchPages lists the pages shared with the integration, one batch
// per call so a rate-limited run can resume from NextCursor.
func (c *Client) SearchPages(ctx context.Context, cursor string) (*PageBatch, error) {
	req := &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Property: "object",
			Value:    "page",
		},
		PageSize: searchPageSize,
	}
	if cursor != "" {
		req.StartCursor = notionapi.Cursor(cursor)
	}

	resp, err := c.api.Search.Do(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	batch := &PageBatch{
		NextCursor: string(resp.NextCursor),
		HasMore:    resp.HasMore,
	}
	for _, obj := range resp.Results {
		page, ok := obj.(*notionapi.Page)
		if !ok {
			continue
		}
		batch.Pages = append(batch.Pages, PageSummary{
			ID:         page.ID.String(),
			Title:      pageTitle(page),
			URL:        page.URL,
			LastEdited: page.LastEditedTime,
		})
	}
	return batch, nil
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(title.Title)
		}
	}
	return "Untitled"
}

// FetchSegments walks the full block tree of one page, depth-first
// with per-level pagination, and renders each block into an indexable
// segment.
func (c *Client) FetchSegments(ctx context.Context, pageID string) ([]chunker.Segment, error) {
	var segments []chunker.Segment
	if err := c.walkBlocks(ctx, pageID, 0, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (c *Client) walkBlocks(ctx context.Context, blockID string, depth int, out *[]chunker.Segment) error {
	blocks, err := c.fetchChildren(ctx, blockID)
	if err != nil {
		return err
	}

	for _, block := range blocks {
		seg, ok := renderBlock(block, depth)
		if ok {
			*out = append(*out, seg)
		}

		// child_page content belongs to the child's own index entry.
		if block.GetType() == notionapi.BlockTypeChildPage {
			continue
		}
		if block.GetHasChildren() {
			if err := c.walkBlocks(ctx, block.GetID().String(), depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) fetchChildren(ctx context.Context, blockID string) (notionapi.Blocks, error) {
	var all notionapi.Blocks
	cursor := ""
	for {
		req := &notionapi.Pagination{PageSize: searchPageSize}
		if cursor != "" {
			req.StartCursor = notionapi.Cursor(cursor)
		}
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), req)
		if err != nil {
			return nil, mapError(err)
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// CreatePage writes a generated document under the given parent page.
// Notion caps children per request, so overflow blocks append in
// follow-up batches.
func (c *Client) CreatePage(ctx context.Context, parentPageID, title string, blocks []notionapi.Block) (*PageSummary, error) {
	const maxChildrenPerRequest = 100

	first := blocks
	rest := notionapi.Blocks{}
	if len(blocks) > maxChildrenPerRequest {
		first = blocks[:maxChildrenPerRequest]
		rest = blocks[maxChildrenPerRequest:]
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: title},
				}},
			},
		},
		Children: first,
	})
	if err != nil {
		return nil, mapError(err)
	}

	for len(rest) > 0 {
		batch := rest
		if len(batch) > maxChildrenPerRequest {
			batch = batch[:maxChildrenPerRequest]
		}
		rest = rest[len(batch):]

		if _, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(page.ID), &notionapi.AppendBlockChildrenRequest{
			Children: batch,
		}); err != nil {
			return nil, mapError(err)
		}
	}

	return &PageSummary{
		ID:         page.ID.String(),
		Title:      title,
		URL:        page.URL,
		LastEdited: page.LastEditedTime,
	}, nil
}

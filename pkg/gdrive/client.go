package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arcana-be/internal/apperr"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Google Workspace MIME types.
const (
	MimeFolder      = "application/vnd.google-apps.folder"
	MimeGoogleDoc   = "application/vnd.google-apps.document"
	MimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimeGoogleSlide = "application/vnd.google-apps.presentation"

	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

const fileFields = "id, name, mimeType, md5Checksum, version, modifiedTime, parents, trashed, webViewLink"

// defaultTimeout bounds one Drive API call.
const defaultTimeout = 60 * time.Second

// File is the slice of Drive metadata the sync pipeline needs.
type File struct {
	ID           string
	Name         string
	MimeType     string
	Md5Checksum  string
	Version      int64
	ModifiedTime time.Time
	WebViewLink  string
	Parents      []string
	Trashed      bool
}

// Client wraps one connection-scoped Drive service.
type Client struct {
	svc *drive.Service
}

// NewClient builds the Drive service on top of the token manager's
// refreshing source.
func NewClient(ctx context.Context, ts oauth2.TokenSource, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: ts},
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, "drive service init", err)
	}
	return &Client{svc: svc}, nil
}

// ListFolderTree walks the folder graph breadth-first from the root
// and returns every non-folder file in it. Reachability is decided by
// parent chains, so moving a file out of the tree drops it from the
// next listing.
func (c *Client) ListFolderTree(ctx context.Context, rootFolderID string) ([]*File, error) {
	var files []*File
	queue := []string{rootFolderID}
	visited := map[string]bool{rootFolderID: true}

	for len(queue) > 0 {
		folderID := queue[0]
		queue = queue[1:]

		pageToken := ""
		for {
			call := c.svc.Files.List().
				Context(ctx).
				Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
				Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")")).
				PageSize(1000)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			resp, err := call.Do()
			if err != nil {
				return nil, mapError(err)
			}

			for _, f := range resp.Files {
				if f.MimeType == MimeFolder {
					if !visited[f.Id] {
						visited[f.Id] = true
						queue = append(queue, f.Id)
					}
					continue
				}
				files = append(files, fromDriveFile(f))
			}

			if resp.NextPageToken == "" {
				break
			}
			pageToken = resp.NextPageToken
		}
	}
	return files, nil
}

func fromDriveFile(f *drive.File) *File {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Md5Checksum:  f.Md5Checksum,
		Version:      f.Version,
		ModifiedTime: modified,
		WebViewLink:  f.WebViewLink,
		Parents:      f.Parents,
		Trashed:      f.Trashed,
	}
}

// GetStartPageToken marks "now" in the changes feed; a bootstrap run
// stores it so later runs only consume what changed since.
func (c *Client) GetStartPageToken(ctx context.Context) (string, error) {
	resp, err := c.svc.Changes.GetStartPageToken().Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}
	return resp.StartPageToken, nil
}

// ChangedFile is one entry from the changes feed. Removed covers both
// hard deletion and trashing; File is nil for hard deletions.
type ChangedFile struct {
	FileID  string
	Removed bool
	File    *File
}

// ListChanges drains the changes feed from token and returns the
// entries plus the token to persist for the next run.
func (c *Client) ListChanges(ctx context.Context, token string) ([]*ChangedFile, string, error) {
	var changed []*ChangedFile
	for {
		resp, err := c.svc.Changes.List(token).
			Context(ctx).
			Fields(googleapi.Field("nextPageToken, newStartPageToken, changes(fileId, removed, file(" + fileFields + "))")).
			IncludeRemoved(true).
			PageSize(1000).
			Do()
		if err != nil {
			return nil, "", mapError(err)
		}

		for _, ch := range resp.Changes {
			entry := &ChangedFile{FileID: ch.FileId, Removed: ch.Removed}
			if ch.File != nil {
				entry.File = fromDriveFile(ch.File)
				if ch.File.Trashed {
					entry.Removed = true
				}
			}
			changed = append(changed, entry)
		}

		if resp.NewStartPageToken != "" {
			return changed, resp.NewStartPageToken, nil
		}
		if resp.NextPageToken == "" {
			return changed, token, nil
		}
		token = resp.NextPageToken
	}
}

// IsReachable walks the parent chains upward and reports whether
// rootFolderID is among the ancestors.
func (c *Client) IsReachable(ctx context.Context, parents []string, rootFolderID string) (bool, error) {
	visited := map[string]bool{}
	queue := append([]string{}, parents...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == rootFolderID {
			return true, nil
		}
		if visited[id] {
			continue
		}
		visited[id] = true

		f, err := c.svc.Files.Get(id).Context(ctx).Fields("id, parents").Do()
		if err != nil {
			return false, mapError(err)
		}
		queue = append(queue, f.Parents...)
	}
	return false, nil
}

// mapError folds googleapi failures into the shared taxonomy.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || isRateLimitReason(apiErr):
			return apperr.Wrap(apperr.KindProviderRateLimited, "drive rate limit", err)
		case apiErr.Code == http.StatusUnauthorized:
			return apperr.Wrap(apperr.KindAuthExpired, "drive token rejected", err)
		case apiErr.Code >= 500:
			return apperr.Wrap(apperr.KindProviderUnavailable, "drive api status "+strconv.Itoa(apiErr.Code), err)
		default:
			return apperr.Wrap(apperr.KindProviderUnavailable, "drive api error", err)
		}
	}
	return apperr.Wrap(apperr.KindProviderUnavailable, "drive api unreachable", err)
}

func isRateLimitReason(apiErr *googleapi.Error) bool {
	for _, e := range apiErr.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

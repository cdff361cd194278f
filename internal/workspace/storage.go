package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Context identifies the tenant-isolated storage directory shared by the
// index writers and the sync workers.
type Context struct {
	WorkspaceID uuid.UUID
	Slug        string
	StorageRoot string
}

var (
	invalidSlugChars = regexp.MustCompile(`[^a-z0-9._-]+`)
	dashRuns         = regexp.MustCompile(`-+`)
)

// SanitizeSlug normalizes a workspace name into a filesystem-safe slug.
func SanitizeSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = invalidSlugChars.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-._")
	if slug == "" {
		return "workspace"
	}
	return slug
}

// NewContext builds the workspace handle rooted at <root>/<sanitized_slug>.
func NewContext(workspaceID uuid.UUID, name, root string) Context {
	slug := SanitizeSlug(name)
	return Context{
		WorkspaceID: workspaceID,
		Slug:        slug,
		StorageRoot: filepath.Join(root, slug),
	}
}

func (c Context) KeywordIndexPath() string {
	return filepath.Join(c.StorageRoot, "bm25.index")
}

func (c Context) PDFDir() string {
	return filepath.Join(c.StorageRoot, "googledrive", "pdf")
}

func (c Context) JSONLDir() string {
	return filepath.Join(c.StorageRoot, "jsonl")
}

func (c Context) JSONLPath(sourceType string) string {
	return filepath.Join(c.JSONLDir(), sourceType+".jsonl")
}

// EnsureDirs creates the workspace directory tree on first touch.
func (c Context) EnsureDirs() error {
	for _, dir := range []string{c.StorageRoot, c.PDFDir(), c.JSONLDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

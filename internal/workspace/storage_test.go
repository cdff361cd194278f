package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme", "acme"},
		{"spaces and case", "  Acme Corp  ", "acme-corp"},
		{"unicode collapses", "Café / Métier", "caf-m-tier"},
		{"dots and dashes kept inside", "team.alpha-1", "team.alpha-1"},
		{"strip edge punctuation", "--team.", "team"},
		{"dash runs collapse", "a  -  b", "a-b"},
		{"empty falls back", "", "workspace"},
		{"only invalid falls back", "???", "workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSlug(tt.in); got != tt.want {
				t.Errorf("SanitizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContextPaths(t *testing.T) {
	root := t.TempDir()
	ctx := NewContext(uuid.New(), "Acme Corp", root)

	wantRoot := filepath.Join(root, "acme-corp")
	if ctx.StorageRoot != wantRoot {
		t.Fatalf("StorageRoot = %q, want %q", ctx.StorageRoot, wantRoot)
	}
	if ctx.KeywordIndexPath() != filepath.Join(wantRoot, "bm25.index") {
		t.Errorf("unexpected keyword index path %q", ctx.KeywordIndexPath())
	}

	if err := ctx.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{ctx.PDFDir(), ctx.JSONLDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %q to exist, err=%v", dir, err)
		}
	}
}

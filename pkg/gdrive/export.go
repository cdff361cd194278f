package gdrive

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"arcana-be/internal/apperr"

	"google.golang.org/api/drive/v3"
)

// exportSizeLimit caps a single exported document (30MB).
const exportSizeLimit = 30 * 1024 * 1024

// officeToNative maps Office uploads onto the Workspace type Drive can
// convert them into.
var officeToNative = map[string]string{
	MimeDocx: MimeGoogleDoc,
	MimeXlsx: MimeGoogleSheet,
	MimePptx: MimeGoogleSlide,
}

// ExportPDF renders a Google-native document as PDF bytes.
func (c *Client) ExportPDF(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Export(fileID, MimePDF).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, exportSizeLimit))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, "read pdf export", err)
	}
	return data, nil
}

// Download fetches the raw bytes of a binary file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, exportSizeLimit))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, "read file download", err)
	}
	return data, nil
}

// ConvertOfficePDF routes an Office file through Drive's converter:
// copy into the matching Workspace type, export the copy as PDF,
// delete the temporary copy.
func (c *Client) ConvertOfficePDF(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	nativeMime, ok := officeToNative[mimeType]
	if !ok {
		return nil, apperr.New(apperr.KindParsingFailed, "no drive conversion for "+mimeType)
	}

	tmp, err := c.svc.Files.Copy(fileID, &drive.File{MimeType: nativeMime}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	defer c.svc.Files.Delete(tmp.Id).Context(ctx).Do()

	return c.ExportPDF(ctx, tmp.Id)
}

// SavePDF writes exported bytes under the workspace's pdf directory
// and returns the stored path.
func SavePDF(dir, fileID string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIndexWriteFailed, "create pdf dir", err)
	}
	path := filepath.Join(dir, fileID+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindIndexWriteFailed, "write pdf", err)
	}
	return path, nil
}

// internal/output/download.go
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDownloader saves exports into a directory on the local filesystem.
type FileDownloader struct {
	Dir string
}

// NewFileDownloader returns a downloader writing into dir ("." when empty).
func NewFileDownloader(dir string) *FileDownloader {
	if dir == "" {
		dir = "."
	}
	return &FileDownloader{Dir: dir}
}

// Download writes content to Dir/filename. The mime type is ignored.
func (d *FileDownloader) Download(ctx context.Context, filename string, content []byte, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("%w: invalid file name %q", ErrDownloadFailed, filename)
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrDownloadFailed, d.Dir, err)
	}

	path := filepath.Join(d.Dir, filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return nil
}

// Path returns where filename would be written.
func (d *FileDownloader) Path(filename string) string {
	return filepath.Join(d.Dir, filename)
}

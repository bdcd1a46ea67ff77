// internal/browser/download.go
package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valpere/ListScrapexter/internal/output"
)

// DefaultDownloadTimeout bounds how long Download waits for Chrome to write
// the file.
const DefaultDownloadTimeout = 30 * time.Second

// Downloader saves exports through the page itself: the content becomes a
// Blob behind a hidden anchor that is clicked, so Chrome stores the file in
// its download directory like any user download.
type Downloader struct {
	client  Client
	dir     string
	timeout time.Duration
}

// NewDownloader creates a downloader writing into dir. A non-positive timeout
// uses DefaultDownloadTimeout.
func NewDownloader(client Client, dir string, timeout time.Duration) *Downloader {
	if dir == "" {
		dir = "."
	}
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &Downloader{client: client, dir: dir, timeout: timeout}
}

// Download implements output.Downloader.
func (d *Downloader) Download(ctx context.Context, filename string, content []byte, mimeType string) error {
	if err := d.client.SetDownloadDir(ctx, d.dir); err != nil {
		return fmt.Errorf("%w: %v", output.ErrDownloadFailed, err)
	}

	script, err := downloadScript(filename, content, mimeType)
	if err != nil {
		return fmt.Errorf("%w: %v", output.ErrDownloadFailed, err)
	}

	watch := d.client.WatchDownloads(ctx)
	defer watch.Stop()

	if err := d.client.ExecuteScript(ctx, script, nil); err != nil {
		return fmt.Errorf("%w: %v", output.ErrDownloadFailed, err)
	}
	if err := watch.Wait(ctx, d.timeout); err != nil {
		return fmt.Errorf("%w: %v", output.ErrDownloadFailed, err)
	}
	return nil
}

const downloadScriptTemplate = `(() => {
	const bytes = Uint8Array.from(atob(%s), c => c.charCodeAt(0));
	const link = document.createElement('a');
	link.href = URL.createObjectURL(new Blob([bytes], {type: %s}));
	link.download = %s;
	link.style.display = 'none';
	document.body.appendChild(link);
	link.click();
	setTimeout(() => { URL.revokeObjectURL(link.href); link.remove(); }, 1000);
	return true;
})()`

// downloadScript builds the in-page download. Arguments are embedded as JSON
// string literals.
func downloadScript(filename string, content []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	payload, err := json.Marshal(base64.StdEncoding.EncodeToString(content))
	if err != nil {
		return "", err
	}
	kind, err := json.Marshal(mimeType)
	if err != nil {
		return "", err
	}
	name, err := json.Marshal(filename)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(downloadScriptTemplate, payload, kind, name), nil
}

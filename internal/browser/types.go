// internal/browser/types.go
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBrowserUnavailable means Chrome could not be launched or reached.
	ErrBrowserUnavailable = errors.New("browser unavailable")
	// ErrNavigation means a page did not load.
	ErrNavigation = errors.New("navigation failed")
)

// BrowserConfig defines browser automation configuration
type BrowserConfig struct {
	Headless bool `yaml:"headless" json:"headless"`
	// UserDataDir reuses a Chrome profile, and with it an existing login.
	UserDataDir string `yaml:"user_data_dir,omitempty" json:"user_data_dir,omitempty"`
	// RemoteURL attaches to a running Chrome through its DevTools endpoint
	// (for example ws://127.0.0.1:9222) instead of launching one.
	RemoteURL      string        `yaml:"remote_url,omitempty" json:"remote_url,omitempty"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	DisableImages  bool          `yaml:"disable_images" json:"disable_images"`
}

// DefaultBrowserConfig returns default browser configuration
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// Client is the set of browser operations the scraper needs.
type Client interface {
	// Navigate loads url and waits for the body to be ready.
	Navigate(ctx context.Context, url string) error

	// GetHTML returns the outer HTML of the current page.
	GetHTML(ctx context.Context) (string, error)

	// Location returns the URL of the current page.
	Location(ctx context.Context) (string, error)

	// Click clicks the first element matching a CSS or XPath selector.
	Click(ctx context.Context, selector string) error

	// WaitVisible waits until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error

	// ExecuteScript evaluates JavaScript and stores the result in res, which may be nil.
	ExecuteScript(ctx context.Context, script string, res interface{}) error

	// SetDownloadDir makes downloads land in dir without prompting.
	SetDownloadDir(ctx context.Context, dir string) error

	// WatchDownloads starts listening for the next download to finish.
	WatchDownloads(ctx context.Context) DownloadWatch

	// Close releases the tab and, when launched by us, the browser.
	Close() error
}

// DownloadWatch observes one download.
type DownloadWatch interface {
	// Wait blocks until the download completes, is canceled, or timeout passes.
	Wait(ctx context.Context, timeout time.Duration) error
	// Stop releases the listener.
	Stop()
}

// BrowserStats contains browser automation statistics
type BrowserStats struct {
	PagesLoaded     int           `json:"pages_loaded"`
	AverageLoadTime time.Duration `json:"average_load_time"`
	Clicks          int           `json:"clicks"`
	Downloads       int           `json:"downloads"`
	Errors          int           `json:"errors"`
}

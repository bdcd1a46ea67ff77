// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// ChromeClient implements Client using chromedp
type ChromeClient struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	config      *BrowserConfig
	stats       BrowserStats
	navigated   bool
	mu          sync.RWMutex
}

// NewChromeClient launches Chrome, or attaches to the one at config.RemoteURL,
// and opens a tab.
func NewChromeClient(config *BrowserConfig) (*ChromeClient, error) {
	if config == nil {
		config = DefaultBrowserConfig()
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if config.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), execOptions(config)...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx)

	client := &ChromeClient{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		config:      config,
	}

	// The first Run starts the browser or connects to it.
	if err := client.initialize(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to initialize browser: %w", ErrBrowserUnavailable, err)
	}

	return client, nil
}

func execOptions(config *BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(config.UserDataDir))
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	return opts
}

// initialize sets up the browser with initial configuration. It runs on the
// tab context itself: the first Run allocates the browser and ties it to the
// context it is given.
func (c *ChromeClient) initialize() error {
	var tasks []chromedp.Action
	if c.config.ViewportWidth > 0 && c.config.ViewportHeight > 0 {
		tasks = append(tasks, chromedp.EmulateViewport(int64(c.config.ViewportWidth), int64(c.config.ViewportHeight)))
	}
	return chromedp.Run(c.ctx, tasks...)
}

// opContext derives a context from the tab that also honors ctx and the
// configured per-operation timeout. Canceling it aborts the operation only;
// the tab stays open.
func (c *ChromeClient) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		opCtx  context.Context
		cancel context.CancelFunc
	)
	if c.config.Timeout > 0 {
		opCtx, cancel = context.WithTimeout(c.ctx, c.config.Timeout)
	} else {
		opCtx, cancel = context.WithCancel(c.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (c *ChromeClient) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, done := c.opContext(ctx)
	defer done()
	err := chromedp.Run(opCtx, actions...)
	if err != nil {
		c.mu.Lock()
		c.stats.Errors++
		c.mu.Unlock()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// Navigate navigates to a URL and waits for page load
func (c *ChromeClient) Navigate(ctx context.Context, url string) error {
	start := time.Now()

	err := c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	loadTime := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.navigated = false
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}

	c.navigated = true
	c.stats.PagesLoaded++
	if c.stats.PagesLoaded == 1 {
		c.stats.AverageLoadTime = loadTime
	} else {
		c.stats.AverageLoadTime = (c.stats.AverageLoadTime + loadTime) / 2
	}
	return nil
}

// GetHTML returns the current page HTML
func (c *ChromeClient) GetHTML(ctx context.Context) (string, error) {
	c.mu.RLock()
	navigated := c.navigated
	c.mu.RUnlock()

	if !navigated {
		return "", fmt.Errorf("cannot extract HTML: navigation has not completed successfully")
	}

	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Location returns the current page URL
func (c *ChromeClient) Location(ctx context.Context) (string, error) {
	var location string
	if err := c.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// Click clicks the first element matching selector
func (c *ChromeClient) Click(ctx context.Context, selector string) error {
	if err := c.run(ctx, chromedp.Click(selector, queryOption(selector))); err != nil {
		return fmt.Errorf("click on %s failed: %w", selector, err)
	}
	c.mu.Lock()
	c.stats.Clicks++
	c.mu.Unlock()
	return nil
}

// WaitVisible waits for an element to appear
func (c *ChromeClient) WaitVisible(ctx context.Context, selector string) error {
	if err := c.run(ctx, chromedp.WaitVisible(selector, queryOption(selector))); err != nil {
		return fmt.Errorf("element wait for %s failed: %w", selector, err)
	}
	return nil
}

// ExecuteScript runs JavaScript code
func (c *ChromeClient) ExecuteScript(ctx context.Context, script string, res interface{}) error {
	if err := c.run(ctx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// SetDownloadDir allows downloads into dir without a save dialog.
func (c *ChromeClient) SetDownloadDir(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid download directory: %w", err)
	}
	err = c.run(ctx, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(abs).
		WithEventsEnabled(true))
	if err != nil {
		return fmt.Errorf("failed to set download directory: %w", err)
	}
	return nil
}

// WatchDownloads listens for download progress events of the tab.
func (c *ChromeClient) WatchDownloads(_ context.Context) DownloadWatch {
	listenCtx, cancel := context.WithCancel(c.ctx)
	w := &chromeDownloadWatch{
		done:   make(chan error, 1),
		cancel: cancel,
		onDone: func() {
			c.mu.Lock()
			c.stats.Downloads++
			c.mu.Unlock()
		},
	}
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*cdpbrowser.EventDownloadProgress)
		if !ok {
			return
		}
		switch e.State {
		case cdpbrowser.DownloadProgressStateCompleted:
			w.finish(nil)
		case cdpbrowser.DownloadProgressStateCanceled:
			w.finish(errors.New("download was canceled by the browser"))
		}
	})
	return w
}

// Stats returns a copy of the browser statistics
func (c *ChromeClient) Stats() BrowserStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Close closes the tab, then the browser when it was launched by us. An
// attached browser keeps running.
func (c *ChromeClient) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

type chromeDownloadWatch struct {
	once   sync.Once
	done   chan error
	cancel context.CancelFunc
	onDone func()
}

func (w *chromeDownloadWatch) finish(err error) {
	w.once.Do(func() {
		w.done <- err
	})
}

func (w *chromeDownloadWatch) Wait(ctx context.Context, timeout time.Duration) error {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case err := <-w.done:
		if err == nil && w.onDone != nil {
			w.onDone()
		}
		return err
	case <-timer:
		return fmt.Errorf("download did not finish within %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *chromeDownloadWatch) Stop() {
	w.cancel()
}

// queryOption picks the chromedp query mode for a CSS or XPath selector.
func queryOption(selector string) chromedp.QueryOption {
	s := strings.TrimSpace(selector)
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// internal/scraper/collector.go
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/table"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// DefaultSettleInterval is how long the collector waits after activating the
// next control before reading the page again.
const DefaultSettleInterval = 3 * time.Second

// CollectorOptions controls pagination.
type CollectorOptions struct {
	// SettleInterval is the fixed wait after each click on the next control.
	SettleInterval time.Duration
	// MaxPages caps the pages read per registry. 0 means unbounded.
	MaxPages int
	// StopOnEmptyPage ends pagination when the pages read so far hold no
	// records. Empty pages after the first records do not stop it.
	StopOnEmptyPage bool
	// PageLimiter paces next-control clicks. nil never blocks.
	PageLimiter *utils.RateLimiter
	Recorder    Recorder
}

// DefaultCollectorOptions returns the options used when none are configured.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		SettleInterval:  DefaultSettleInterval,
		StopOnEmptyPage: true,
	}
}

// Collector drives the page scanner across every page of a list.
type Collector struct {
	session Session
	opts    CollectorOptions
	logger  utils.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewCollector creates a collector reading from session.
func NewCollector(session Session, opts CollectorOptions, logger utils.Logger) *Collector {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.SettleInterval < 0 {
		opts.SettleInterval = 0
	}
	return &Collector{
		session: session,
		opts:    opts,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// CollectAllPages scans the current page with reg, then keeps activating the
// next control and scanning until the control is missing or inert. Rows keep
// page order. When a page cannot be read, scanned or left, the rows gathered
// so far are returned with the error.
func (c *Collector) CollectAllPages(ctx context.Context, reg *registry.Registry) (*table.Store, error) {
	store, _, err := c.collect(ctx, reg)
	return store, err
}

func (c *Collector) collect(ctx context.Context, reg *registry.Registry) (*table.Store, int, error) {
	store := table.New()
	if c.session == nil {
		return store, 0, ErrNoSession
	}
	if err := reg.Validate(); err != nil {
		return store, 0, err
	}
	log := c.logger.WithField("registry", reg.Name)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return store, page - 1, err
		}

		doc, err := c.session.Document(ctx)
		if err != nil {
			return store, page - 1, fmt.Errorf("failed to read page %d: %w", page, err)
		}

		start := time.Now()
		pageStore, stats, err := ScanPage(doc, reg, log)
		c.opts.Recorder.PageScanned(reg.Name, stats.Records, stats.Truncated, time.Since(start))
		if err != nil {
			return store, page, fmt.Errorf("failed to scan page %d: %w", page, err)
		}
		store.Merge(pageStore)
		log.Infof("page %d: %d records, %d total", page, stats.Records, store.Rows())

		if stats.Records == 0 && store.Empty() && c.opts.StopOnEmptyPage {
			log.Debugf("page %d has no records and none were found before, stopping", page)
			return store, page, nil
		}
		if c.opts.MaxPages > 0 && page >= c.opts.MaxPages {
			log.Infof("reached page limit of %d", c.opts.MaxPages)
			return store, page, nil
		}

		next, err := c.session.NextControl(ctx)
		if err != nil {
			return store, page, fmt.Errorf("failed to locate next control on page %d: %w", page, err)
		}
		if next == nil || !next.Actionable() {
			log.Debugf("no actionable next control after page %d", page)
			return store, page, nil
		}

		if err := c.opts.PageLimiter.Wait(ctx); err != nil {
			return store, page, err
		}
		if err := next.Activate(ctx); err != nil {
			return store, page, fmt.Errorf("failed to leave page %d: %w", page, err)
		}
		if err := c.sleep(ctx, c.opts.SettleInterval); err != nil {
			return store, page, err
		}
	}
}

// CollectWithFallback collects with primary and, when that yields no rows,
// collects again from scratch with fallback. Rows from the two registries are
// never mixed. A nil fallback collects with primary only. ErrEmptyResult is
// returned when no registry produced a row.
func (c *Collector) CollectWithFallback(ctx context.Context, primary, fallback *registry.Registry) (Collection, error) {
	if primary == nil {
		return Collection{}, fmt.Errorf("primary registry is required")
	}

	attempts := []*registry.Registry{primary}
	if fallback != nil {
		attempts = append(attempts, fallback)
	}

	var lastErr error
	for i, reg := range attempts {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return Collection{}, err
			}
			c.logger.Warnf("unable to find %s registry rows, trying %s", attempts[i-1].Name, reg.Name)
			c.opts.Recorder.FallbackUsed(attempts[i-1].Name, reg.Name)
			if rw, ok := c.session.(Rewinder); ok {
				if err := rw.Rewind(ctx); err != nil {
					return Collection{}, fmt.Errorf("failed to return to the first page: %w", err)
				}
			}
		}
		c.logger.Infof("searching %s registry paths", reg.Name)

		store, pages, err := c.collect(ctx, reg)
		if !store.Empty() {
			if err != nil {
				c.logger.Warnf("registry %s stopped early, keeping %d rows: %v", reg.Name, store.Rows(), err)
			}
			return Collection{Registry: reg.Name, Store: store, Pages: pages, Interrupted: err}, nil
		}
		if err != nil {
			c.logger.Warnf("registry %s failed: %v", reg.Name, err)
			lastErr = err
		}
	}

	if lastErr != nil {
		return Collection{}, fmt.Errorf("%w (last error: %v)", ErrEmptyResult, lastErr)
	}
	return Collection{}, ErrEmptyResult
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

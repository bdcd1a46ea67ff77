// internal/config/build.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/valpere/ListScrapexter/internal/browser"
	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/scraper"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// RegistrySet returns the built-in registries plus the custom ones.
func (c *Config) RegistrySet() (*registry.Set, error) {
	set := registry.NewSet()
	for _, rc := range c.Registries.Custom {
		reg, err := rc.Build()
		if err != nil {
			return nil, err
		}
		if err := set.Add(reg); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Build turns a custom registry description into a registry.
func (rc RegistryConfig) Build() (*registry.Registry, error) {
	fields := make([]registry.Field, 0, len(rc.Fields))
	for _, fc := range rc.Fields {
		tmpl, err := registry.Pattern(fc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("registry %s, field %s: %w", rc.Name, fc.Name, err)
		}
		kind, err := registry.ParseKind(fc.Kind)
		if err != nil {
			return nil, fmt.Errorf("registry %s, field %s: %w", rc.Name, fc.Name, err)
		}
		fields = append(fields, registry.Field{
			Name:     fc.Name,
			Template: tmpl,
			Kind:     kind,
			Optional: fc.Optional,
		})
	}
	return registry.New(rc.Name, fields...)
}

// SelectRegistries resolves the primary and fallback registries. The fallback
// is nil when disabled or equal to the primary.
func (c *Config) SelectRegistries() (primary, fallback *registry.Registry, err error) {
	set, err := c.RegistrySet()
	if err != nil {
		return nil, nil, err
	}
	primary, err = set.Lookup(c.Registries.Primary)
	if err != nil {
		return nil, nil, err
	}

	name := strings.ToLower(strings.TrimSpace(c.Registries.Fallback))
	if name == "" || name == FallbackNone {
		return primary, nil, nil
	}
	fallback, err = set.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	if fallback == primary {
		fallback = nil
	}
	return primary, fallback, nil
}

// CollectorOptions converts the pagination section.
func (c *Config) CollectorOptions() (scraper.CollectorOptions, error) {
	opts := scraper.DefaultCollectorOptions()

	settle, err := time.ParseDuration(c.Pagination.SettleInterval)
	if err != nil {
		return opts, fmt.Errorf("invalid pagination.settle_interval: %w", err)
	}
	opts.SettleInterval = settle
	opts.MaxPages = c.Pagination.MaxPages
	if c.Pagination.StopOnEmptyPage != nil {
		opts.StopOnEmptyPage = *c.Pagination.StopOnEmptyPage
	}
	opts.PageLimiter = utils.NewRateLimiter(c.Pagination.PageRate)
	return opts, nil
}

// NextControl converts the pagination selector settings.
func (c *Config) NextControl() scraper.NextControlConfig {
	return scraper.NextControlConfig{
		Selector:      strings.TrimSpace(c.Pagination.Next),
		DisabledAttr:  c.Pagination.DisabledAttr,
		DisabledClass: c.Pagination.DisabledClass,
	}
}

// BrowserOptions converts the browser section.
func (c *Config) BrowserOptions() (*browser.BrowserConfig, error) {
	opts := browser.DefaultBrowserConfig()
	if c.Browser.Headless != nil {
		opts.Headless = *c.Browser.Headless
	}
	if c.Browser.Timeout != "" {
		timeout, err := time.ParseDuration(c.Browser.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid browser.timeout: %w", err)
		}
		opts.Timeout = timeout
	}
	if c.Browser.ViewportWidth > 0 {
		opts.ViewportWidth = c.Browser.ViewportWidth
	}
	if c.Browser.ViewportHeight > 0 {
		opts.ViewportHeight = c.Browser.ViewportHeight
	}
	opts.UserDataDir = c.Browser.UserDataDir
	opts.RemoteURL = c.Browser.RemoteURL
	opts.UserAgent = c.Browser.UserAgent
	opts.DisableImages = c.Browser.DisableImages
	return opts, nil
}

// SessionConfig describes the live session for the target.
func (c *Config) SessionConfig() browser.SessionConfig {
	return browser.SessionConfig{
		StartURL: c.Target.URL,
		Next:     c.NextControl(),
		WaitFor:  strings.TrimSpace(c.Pagination.WaitFor),
	}
}

// OutputManager builds the renderer for the output section.
func (c *Config) OutputManager() (*output.Manager, error) {
	return output.NewManager(output.Config{
		Format:    output.OutputFormat(c.Output.Format),
		SheetName: c.Output.SheetName,
		TableName: c.Output.TableName,
	})
}

// Namer builds the export file namer.
func (c *Config) Namer() (output.Namer, error) {
	naming, err := output.ParseNaming(c.Output.Naming)
	if err != nil {
		return output.Namer{}, err
	}
	return output.Namer{Naming: naming, Label: c.Output.Label}, nil
}

// DownloadTimeout parses output.download_timeout. Empty means the browser
// downloader default.
func (c *Config) DownloadTimeout() (time.Duration, error) {
	if c.Output.DownloadTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Output.DownloadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid output.download_timeout: %w", err)
	}
	return d, nil
}

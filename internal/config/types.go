// internal/config/types.go

// Package config provides configuration types and loading for ListScrapexter.
// A configuration names the list page to open, the browser to drive, the
// registries used to read rows, pagination behavior and the export format.
package config

import (
	"github.com/valpere/ListScrapexter/internal/utils"
)

// FallbackNone disables the fallback registry.
const FallbackNone = "none"

// Download modes.
const (
	DownloadFile    = "file"
	DownloadBrowser = "browser"
)

// Config represents the main configuration structure for an export job.
type Config struct {
	// Name identifies this configuration
	Name string `yaml:"name" json:"name"`

	// Target defines the list page to read
	Target TargetConfig `yaml:"target" json:"target"`

	// Browser settings for the live session
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Registries selects the layouts used to read rows
	Registries RegistriesConfig `yaml:"registries" json:"registries"`

	// Pagination settings for multi-page lists
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`

	// Output configuration
	Output OutputConfig `yaml:"output" json:"output"`

	Logging utils.LogConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// TargetConfig defines where pages come from.
type TargetConfig struct {
	// URL is the first page of the list, opened in the browser
	URL string `yaml:"url" json:"url"`

	// HTMLFiles are saved snapshots read instead of a live browser, in page order
	HTMLFiles []string `yaml:"html_files,omitempty" json:"html_files,omitempty"`
}

// BrowserConfig defines browser automation settings.
type BrowserConfig struct {
	// Headless defaults to true
	Headless *bool `yaml:"headless,omitempty" json:"headless,omitempty"`

	// UserDataDir reuses a Chrome profile so an existing login carries over
	UserDataDir string `yaml:"user_data_dir,omitempty" json:"user_data_dir,omitempty"`

	// RemoteURL attaches to a running Chrome instead of launching one
	RemoteURL string `yaml:"remote_url,omitempty" json:"remote_url,omitempty"`

	// Timeout bounds each browser operation, as a Go duration string
	Timeout string `yaml:"timeout" json:"timeout"`

	ViewportWidth  int    `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	DisableImages  bool   `yaml:"disable_images,omitempty" json:"disable_images,omitempty"`
}

// RegistriesConfig chooses the primary and fallback layouts.
type RegistriesConfig struct {
	// Primary is tried first
	Primary string `yaml:"primary" json:"primary"`

	// Fallback runs when the primary yields no rows; "none" disables it
	Fallback string `yaml:"fallback" json:"fallback"`

	// Custom registries, addressable by name from Primary and Fallback
	Custom []RegistryConfig `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// RegistryConfig describes a layout through locator patterns.
type RegistryConfig struct {
	Name   string        `yaml:"name" json:"name"`
	Fields []FieldConfig `yaml:"fields" json:"fields"`
}

// FieldConfig defines how to locate a single field.
type FieldConfig struct {
	// Name of the column
	Name string `yaml:"name" json:"name"`

	// Pattern is an XPath containing the {index} placeholder
	Pattern string `yaml:"pattern" json:"pattern"`

	// Kind is text (default) or link
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Optional fields export as empty cells when missing
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// PaginationConfig defines how the next control is found and followed.
type PaginationConfig struct {
	// Next is the CSS or XPath selector of the next control; empty disables paging
	Next string `yaml:"next" json:"next"`

	// DisabledClass marks an inert control in addition to "disabled"
	DisabledClass string `yaml:"disabled_class,omitempty" json:"disabled_class,omitempty"`

	// DisabledAttr marks an inert control when present
	DisabledAttr string `yaml:"disabled_attr,omitempty" json:"disabled_attr,omitempty"`

	// WaitFor is a selector waited on after navigation and after each click
	WaitFor string `yaml:"wait_for,omitempty" json:"wait_for,omitempty"`

	// SettleInterval is the fixed wait after each click
	SettleInterval string `yaml:"settle_interval" json:"settle_interval"`

	// MaxPages caps the pages read per registry; 0 means unbounded
	MaxPages int `yaml:"max_pages" json:"max_pages"`

	// StopOnEmptyPage defaults to true
	StopOnEmptyPage *bool `yaml:"stop_on_empty_page,omitempty" json:"stop_on_empty_page,omitempty"`

	// PageRate limits clicks per second; 0 disables the limiter
	PageRate float64 `yaml:"page_rate,omitempty" json:"page_rate,omitempty"`
}

// OutputConfig defines export settings.
type OutputConfig struct {
	// Format of the export (csv, xlsx, json, sqlite)
	Format string `yaml:"format" json:"format"`

	// Dir receives the exported file
	Dir string `yaml:"dir" json:"dir"`

	// Naming is "label" or "timestamp"
	Naming string `yaml:"naming" json:"naming"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`

	SheetName string `yaml:"sheet_name,omitempty" json:"sheet_name,omitempty"`
	TableName string `yaml:"table_name,omitempty" json:"table_name,omitempty"`

	// Download is "file" (written directly) or "browser" (saved by Chrome)
	Download        string `yaml:"download" json:"download"`
	DownloadTimeout string `yaml:"download_timeout,omitempty" json:"download_timeout,omitempty"`
}

// MetricsConfig defines metric export.
type MetricsConfig struct {
	// Textfile receives the metrics in Prometheus text format after a run
	Textfile string `yaml:"textfile,omitempty" json:"textfile,omitempty"`
}

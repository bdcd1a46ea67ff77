// internal/config/validation.go - Validation with detailed error messages
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"

	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/scraper"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func (r *ValidationResult) addError(field, value, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the configuration and returns an error wrapping
// ErrInvalidConfig that lists every problem found.
func (c *Config) Validate() error {
	result := ValidateConfig(c)
	if result.Valid {
		return nil
	}
	return formatValidationError(result)
}

// ValidateConfig validates a configuration and returns detailed results,
// including warnings that do not make the configuration unusable.
func ValidateConfig(c *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}

	if c == nil {
		result.addError("config", "", "configuration cannot be nil")
		return result
	}

	c.validateTarget(result)
	c.validateBrowser(result)
	c.validateRegistries(result)
	c.validatePagination(result)
	c.validateOutput(result)

	if _, err := utils.ParseLevel(c.Logging.Level); err != nil {
		result.addError("logging.level", c.Logging.Level, err.Error())
	}

	return result
}

// validateTarget checks the page source
func (c *Config) validateTarget(result *ValidationResult) {
	if c.Target.URL == "" {
		if len(c.Target.HTMLFiles) == 0 {
			result.warn("No target.url or target.html_files configured; pass --html to run")
		}
		return
	}

	parsedURL, err := url.Parse(c.Target.URL)
	if err != nil {
		result.addError("target.url", c.Target.URL, fmt.Sprintf("Invalid URL format: %s", err.Error()))
		return
	}

	switch parsedURL.Scheme {
	case "http", "https":
		if parsedURL.Host == "" {
			result.addError("target.url", c.Target.URL, "URL must include hostname")
		}
	case "file":
	case "":
		result.addError("target.url", c.Target.URL, "URL must include protocol (http:// or https://)")
	default:
		result.addError("target.url", c.Target.URL, fmt.Sprintf("Unsupported URL scheme: %s", parsedURL.Scheme))
	}

	if parsedURL.Scheme == "http" {
		result.warn("Using HTTP instead of HTTPS for %s", parsedURL.Host)
	}
}

// validateBrowser checks the live session settings
func (c *Config) validateBrowser(result *ValidationResult) {
	validateDuration(result, "browser.timeout", c.Browser.Timeout)

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		result.addError("browser.viewport", fmt.Sprintf("%dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight),
			"Viewport dimensions cannot be negative")
	}

	if c.Browser.RemoteURL != "" {
		u, err := url.Parse(c.Browser.RemoteURL)
		if err != nil || u.Host == "" {
			result.addError("browser.remote_url", c.Browser.RemoteURL, "Remote URL must be a DevTools endpoint such as ws://127.0.0.1:9222")
		} else if u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http" && u.Scheme != "https" {
			result.addError("browser.remote_url", c.Browser.RemoteURL, fmt.Sprintf("Unsupported remote URL scheme: %s", u.Scheme))
		}
		if c.Browser.UserDataDir != "" {
			result.warn("browser.user_data_dir is ignored when attaching to a running browser")
		}
	}
}

// validateRegistries checks custom layouts and the primary/fallback choice
func (c *Config) validateRegistries(result *ValidationResult) {
	known := map[string]bool{
		registry.UserGenerated:   true,
		registry.SystemGenerated: true,
	}

	for i, rc := range c.Registries.Custom {
		prefix := fmt.Sprintf("registries.custom[%d]", i)
		name := strings.ToLower(strings.TrimSpace(rc.Name))
		if name == "" {
			result.addError(prefix+".name", "", "Registry name is required")
		} else if name == FallbackNone {
			result.addError(prefix+".name", rc.Name, fmt.Sprintf("%q is reserved", FallbackNone))
		} else {
			if name == registry.UserGenerated || name == registry.SystemGenerated {
				result.warn("Custom registry %q replaces the built-in layout", rc.Name)
			}
			known[name] = true
		}

		if len(rc.Fields) == 0 {
			result.addError(prefix+".fields", "[]", "At least one field must be configured")
			continue
		}

		fieldNames := make(map[string]bool)
		required := 0
		for j, fc := range rc.Fields {
			fieldPrefix := fmt.Sprintf("%s.fields[%d]", prefix, j)
			if fc.Name == "" {
				result.addError(fieldPrefix+".name", "", "Field name is required")
			} else if fieldNames[fc.Name] {
				result.addError(fieldPrefix+".name", fc.Name, fmt.Sprintf("Duplicate field name: %s", fc.Name))
			}
			fieldNames[fc.Name] = true

			if err := validatePattern(fc.Pattern); err != nil {
				result.addError(fieldPrefix+".pattern", fc.Pattern, err.Error())
			}
			if _, err := registry.ParseKind(fc.Kind); err != nil {
				result.addError(fieldPrefix+".kind", fc.Kind, "Invalid field kind. Valid kinds: text, link")
			}
			if !fc.Optional {
				required++
			}
		}
		if required == 0 {
			result.warn("Registry %q has no required field; only rows with at least one value are kept", rc.Name)
		}
	}

	primary := strings.ToLower(strings.TrimSpace(c.Registries.Primary))
	if !known[primary] {
		result.addError("registries.primary", c.Registries.Primary, "Unknown registry")
	}
	fallback := strings.ToLower(strings.TrimSpace(c.Registries.Fallback))
	if fallback != FallbackNone {
		if !known[fallback] {
			result.addError("registries.fallback", c.Registries.Fallback, "Unknown registry")
		} else if fallback == primary {
			result.warn("Fallback registry equals the primary; the fallback attempt is skipped")
		}
	}
}

// validatePagination checks the next control and pacing
func (c *Config) validatePagination(result *ValidationResult) {
	p := c.Pagination
	if err := validateSelector(p.Next); err != nil {
		result.addError("pagination.next", p.Next, err.Error())
	}
	if err := validateSelector(p.WaitFor); err != nil {
		result.addError("pagination.wait_for", p.WaitFor, err.Error())
	}

	if d, ok := validateDuration(result, "pagination.settle_interval", p.SettleInterval); ok && d < 500*time.Millisecond && p.Next != "" {
		result.warn("Settle interval below 500ms may read a page before it has rendered")
	}

	if p.MaxPages < 0 {
		result.addError("pagination.max_pages", fmt.Sprintf("%d", p.MaxPages), "Max pages cannot be negative")
	}
	if p.PageRate < 0 {
		result.addError("pagination.page_rate", fmt.Sprintf("%g", p.PageRate), "Page rate cannot be negative")
	}
	if p.Next != "" && p.MaxPages == 0 && p.StopOnEmptyPage != nil && !*p.StopOnEmptyPage {
		result.warn("Pagination has no page cap and does not stop on empty pages")
	}
}

// validateOutput checks output configuration
func (c *Config) validateOutput(result *ValidationResult) {
	format, err := output.ParseFormat(c.Output.Format)
	if err != nil {
		result.addError("output.format", c.Output.Format, fmt.Sprintf("Invalid output format. Valid formats: %s", joinFormats()))
	}

	if _, err := output.ParseNaming(c.Output.Naming); err != nil {
		result.addError("output.naming", c.Output.Naming, "Invalid naming. Valid values: label, timestamp")
	}

	switch c.Output.Download {
	case DownloadFile:
	case DownloadBrowser:
		if len(c.Target.HTMLFiles) > 0 {
			result.warn("output.download is browser but pages come from HTML files; files are written directly")
		}
	default:
		result.addError("output.download", c.Output.Download, "Invalid download mode. Valid values: file, browser")
	}
	validateDuration(result, "output.download_timeout", c.Output.DownloadTimeout)

	if format == output.FormatSQLite && c.Output.TableName != "" {
		if err := output.ValidateSQLIdentifier(c.Output.TableName); err != nil {
			result.addError("output.table_name", c.Output.TableName, err.Error())
		}
	}
}

// validateDuration parses a non-negative duration string.
func validateDuration(result *ValidationResult, field, value string) (time.Duration, bool) {
	d, err := time.ParseDuration(value)
	if err != nil {
		result.addError(field, value, fmt.Sprintf("Invalid duration: %s", err.Error()))
		return 0, false
	}
	if d < 0 {
		result.addError(field, value, "Duration cannot be negative")
		return 0, false
	}
	return d, true
}

// validatePattern checks a registry locator pattern compiles as XPath.
func validatePattern(pattern string) error {
	tmpl, err := registry.Pattern(pattern)
	if err != nil {
		return err
	}
	if _, err := xpath.Compile(tmpl(1)); err != nil {
		return fmt.Errorf("invalid XPath: %v", err)
	}
	return nil
}

// validateSelector checks a CSS or XPath selector. Empty is allowed.
func validateSelector(selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	if scraper.IsXPath(selector) {
		if _, err := xpath.Compile(selector); err != nil {
			return fmt.Errorf("invalid XPath: %v", err)
		}
		return nil
	}
	if _, err := cascadia.Compile(selector); err != nil {
		return fmt.Errorf("invalid CSS selector: %v", err)
	}
	return nil
}

func joinFormats() string {
	formats := output.ValidOutputFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// formatValidationError creates a comprehensive error message
func formatValidationError(result *ValidationResult) error {
	var msg strings.Builder
	for i, err := range result.Errors {
		msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, err.Message))
		if err.Field != "" {
			msg.WriteString(fmt.Sprintf(" (field: %s)", err.Field))
		}
		if err.Value != "" {
			msg.WriteString(fmt.Sprintf(" (value: %s)", err.Value))
		}
	}
	return fmt.Errorf("%w:%s", ErrInvalidConfig, msg.String())
}

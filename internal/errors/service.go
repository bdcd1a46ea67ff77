// internal/errors/service.go - Error classification and recovery for the CLI
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/valpere/ListScrapexter/internal/browser"
	"github.com/valpere/ListScrapexter/internal/config"
	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/scraper"
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitConfig      = 2
	ExitBrowser     = 3
	ExitLocator     = 4
	ExitDownload    = 5
	ExitEmptyResult = 9
	ExitInterrupted = 130
)

// Service classifies errors for users and retries browser start-up.
type Service struct {
	retryConfig    RetryConfig
	messageHandler *MessageHandler
	sleep          func(ctx context.Context, d time.Duration) error
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

// MessageHandler converts technical errors to user-friendly messages
type MessageHandler struct {
	showTechnical bool
}

// NewService creates a service with the default retry policy
func NewService() *Service {
	return &Service{
		retryConfig: RetryConfig{
			MaxRetries:    2,
			BaseDelay:     time.Second * 2,
			BackoffFactor: 2.0,
			MaxDelay:      time.Second * 30,
		},
		messageHandler: &MessageHandler{showTechnical: false},
		sleep:          sleepContext,
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.messageHandler.showTechnical = verbose
	return s
}

// WithRetryConfig replaces the retry policy
func (s *Service) WithRetryConfig(cfg RetryConfig) *Service {
	s.retryConfig = cfg
	return s
}

// ExecuteWithRetry runs operation, retrying with exponential backoff while
// it fails with a retryable browser error. Other errors return at once.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation func() error, operationName string) error {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		attempts++
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !s.shouldRetry(err, attempt) {
			break
		}

		if err := s.sleep(ctx, s.calculateDelay(attempt)); err != nil {
			return err
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("operation %s failed after %d attempts: %w", operationName, attempts, lastErr)
}

// IsRetryable reports whether err comes from a browser failure worth another try.
func IsRetryable(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	return stderrors.Is(err, browser.ErrBrowserUnavailable) ||
		stderrors.Is(err, browser.ErrNavigation)
}

// shouldRetry determines if error is retryable
func (s *Service) shouldRetry(err error, attempt int) bool {
	if attempt >= s.retryConfig.MaxRetries {
		return false
	}
	return IsRetryable(err)
}

// calculateDelay computes exponential backoff delay
func (s *Service) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(s.retryConfig.BaseDelay) * math.Pow(s.retryConfig.BackoffFactor, float64(attempt)))
	if s.retryConfig.MaxDelay > 0 && delay > s.retryConfig.MaxDelay {
		delay = s.retryConfig.MaxDelay
	}
	return delay
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return "Interrupted",
			"The export was interrupted before it finished.",
			nil

	case stderrors.Is(err, scraper.ErrEmptyResult):
		return "No Data Found",
			"No data was found to export.",
			[]string{
				"Open the list in the browser and make sure rows are visible",
				"Check that registries.primary and registries.fallback match the list type",
				"Reuse a logged-in browser profile with browser.user_data_dir",
			}

	case stderrors.Is(err, output.ErrDownloadFailed):
		return "Download Failed",
			"The export could not be saved.",
			[]string{
				"Check that output.dir exists and is writable",
				"Increase output.download_timeout for large lists",
				"Use output.download: file to write without the browser",
			}

	case stderrors.Is(err, config.ErrInvalidConfig), stderrors.Is(err, registry.ErrUnknownRegistry):
		return "Configuration Error",
			"The configuration is invalid.",
			[]string{
				"Run 'listscrapexter validate <config>' for details",
				"Check YAML indentation (use spaces, not tabs)",
				"Generate a working example with 'listscrapexter template'",
			}

	case stderrors.Is(err, fs.ErrNotExist):
		return "File Not Found",
			"A configuration or HTML file could not be found.",
			[]string{
				"Check the path is spelled correctly",
				"Relative paths are resolved from the current directory",
			}

	case stderrors.Is(err, browser.ErrBrowserUnavailable):
		return "Browser Unavailable",
			"Chrome could not be started or reached.",
			[]string{
				"Check that Chrome or Chromium is installed",
				"Close other Chrome windows using the same browser.user_data_dir",
				"Start Chrome with --remote-debugging-port and set browser.remote_url",
			}

	case stderrors.Is(err, browser.ErrNavigation), stderrors.Is(err, context.DeadlineExceeded):
		return "Page Not Loaded",
			"The list page did not load in time.",
			[]string{
				"Check target.url opens in a browser",
				"Increase browser.timeout in configuration",
				"Make sure the session is logged in",
			}

	case stderrors.Is(err, scraper.ErrInvalidLocator):
		return "Invalid Locator",
			"A field or pagination locator is not a valid expression.",
			[]string{
				"Check the registry patterns and pagination.next selector",
				"Run 'listscrapexter validate <config>' to compile every locator",
			}
	}

	if strings.Contains(strings.ToLower(err.Error()), "yaml") {
		return "Configuration Error",
			"The configuration file has invalid YAML syntax.",
			[]string{
				"Check YAML indentation (use spaces, not tabs)",
				"Ensure proper quoting of string values",
			}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the export.",
		[]string{
			"Try running the command again with -v",
			"Check your configuration file",
		}
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case stderrors.Is(err, scraper.ErrEmptyResult):
		return ExitEmptyResult
	case stderrors.Is(err, output.ErrDownloadFailed):
		return ExitDownload
	case stderrors.Is(err, config.ErrInvalidConfig),
		stderrors.Is(err, registry.ErrUnknownRegistry),
		stderrors.Is(err, fs.ErrNotExist):
		return ExitConfig
	case stderrors.Is(err, browser.ErrBrowserUnavailable),
		stderrors.Is(err, browser.ErrNavigation),
		stderrors.Is(err, context.DeadlineExceeded):
		return ExitBrowser
	case stderrors.Is(err, scraper.ErrInvalidLocator):
		return ExitLocator
	default:
		return ExitGeneral
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	if err == nil {
		return ""
	}
	title, message, suggestions := s.GetUserFriendlyError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "❌ %s\n%s\n", title, message)

	if s.messageHandler.showTechnical {
		fmt.Fprintf(&b, "\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		b.WriteString("\n💡 Suggestions:\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "  • %s\n", suggestion)
		}
	}

	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/registry"
)

const (
	defaultBrowserTimeout  = "30s"
	defaultSettleInterval  = "3s"
	defaultDownloadTimeout = "30s"
	defaultViewportWidth   = 1920
	defaultViewportHeight  = 1080
)

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes
func LoadFromBytes(data []byte) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	// Substitute environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// DefaultConfig returns a valid configuration using the built-in registries.
// It has no target; callers supply a URL or HTML files.
func DefaultConfig() *Config {
	config := &Config{Name: "contacts"}
	applyDefaults(config)
	return config
}

// SaveToWriter writes configuration as YAML
func SaveToWriter(config *Config, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return encoder.Close()
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if err := SaveToWriter(config, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// GenerateTemplate generates a template configuration for the specified type:
// "live" (default), "offline" or "custom".
func GenerateTemplate(templateType string) Config {
	switch strings.ToLower(templateType) {
	case "offline":
		return generateOfflineTemplate()
	case "custom":
		return generateCustomTemplate()
	default:
		return generateLiveTemplate()
	}
}

// TemplateTypes lists the names accepted by GenerateTemplate.
func TemplateTypes() []string {
	return []string{"live", "offline", "custom"}
}

// applyDefaults applies default values to the configuration
func applyDefaults(config *Config) {
	if config.Browser.Headless == nil {
		headless := true
		config.Browser.Headless = &headless
	}
	if config.Browser.Timeout == "" {
		config.Browser.Timeout = defaultBrowserTimeout
	}
	if config.Browser.ViewportWidth == 0 {
		config.Browser.ViewportWidth = defaultViewportWidth
	}
	if config.Browser.ViewportHeight == 0 {
		config.Browser.ViewportHeight = defaultViewportHeight
	}

	if config.Registries.Primary == "" {
		config.Registries.Primary = registry.UserGenerated
	}
	if config.Registries.Fallback == "" {
		config.Registries.Fallback = registry.SystemGenerated
	}

	if config.Pagination.SettleInterval == "" {
		config.Pagination.SettleInterval = defaultSettleInterval
	}
	if config.Pagination.StopOnEmptyPage == nil {
		stop := true
		config.Pagination.StopOnEmptyPage = &stop
	}

	if config.Output.Format == "" {
		config.Output.Format = string(output.FormatCSV)
	}
	if config.Output.Dir == "" {
		config.Output.Dir = "."
	}
	if config.Output.Naming == "" {
		config.Output.Naming = string(output.NamingLabel)
	}
	if config.Output.Label == "" {
		config.Output.Label = output.DefaultLabel
	}
	if config.Output.Download == "" {
		config.Output.Download = DownloadFile
	}
	if config.Output.DownloadTimeout == "" {
		config.Output.DownloadTimeout = defaultDownloadTimeout
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
}

// Template generation functions

func generateLiveTemplate() Config {
	config := Config{
		Name: "contact_list",
		Target: TargetConfig{
			URL: "https://lists.example.com/sales/lists/people/${LIST_ID}",
		},
		Browser: BrowserConfig{
			UserDataDir: "${HOME}/.config/listscrapexter/profile",
		},
		Pagination: PaginationConfig{
			Next:          "button.artdeco-pagination__button--next",
			DisabledClass: "artdeco-button--disabled",
			WaitFor:       "table",
		},
	}
	applyDefaults(&config)
	headful := false
	config.Browser.Headless = &headful
	return config
}

func generateOfflineTemplate() Config {
	config := Config{
		Name: "saved_list",
		Target: TargetConfig{
			URL:       "https://lists.example.com/sales/lists/people",
			HTMLFiles: []string{"page1.html", "page2.html"},
		},
		Output: OutputConfig{
			Format: string(output.FormatExcel),
			Dir:    "exports",
		},
	}
	applyDefaults(&config)
	return config
}

func generateCustomTemplate() Config {
	rows := "//table[@id='contacts']/tbody/tr[" + registry.IndexToken + "]"
	config := Config{
		Name: "custom_layout",
		Target: TargetConfig{
			URL: "https://crm.example.com/contacts",
		},
		Registries: RegistriesConfig{
			Primary:  "crm",
			Fallback: FallbackNone,
			Custom: []RegistryConfig{
				{
					Name: "crm",
					Fields: []FieldConfig{
						{Name: "Name", Pattern: rows + "/td[1]/a", Kind: "text"},
						{Name: "Profile", Pattern: rows + "/td[1]/a", Kind: "link"},
						{Name: "Company", Pattern: rows + "/td[2]"},
						{Name: "Email", Pattern: rows + "/td[3]", Optional: true},
					},
				},
			},
		},
		Pagination: PaginationConfig{
			Next:     "//a[@rel='next']",
			MaxPages: 50,
			PageRate: 0.5,
		},
		Output: OutputConfig{
			Format:    string(output.FormatSQLite),
			TableName: "contacts",
			Naming:    string(output.NamingTimestamp),
		},
	}
	applyDefaults(&config)
	return config
}

// internal/config/config_test.go
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/valpere/ListScrapexter/internal/registry"
)

func TestLoadFromBytes(t *testing.T) {
	configYAML := `
name: "bytes_test"
target:
  url: "https://lists.example.com/sales/lists/people/1"
`

	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if config.Name != "bytes_test" {
		t.Errorf("expected name 'bytes_test', got %q", config.Name)
	}

	got := map[string]string{
		"primary":  config.Registries.Primary,
		"fallback": config.Registries.Fallback,
		"settle":   config.Pagination.SettleInterval,
		"format":   config.Output.Format,
		"naming":   config.Output.Naming,
		"label":    config.Output.Label,
		"download": config.Output.Download,
		"timeout":  config.Browser.Timeout,
		"level":    config.Logging.Level,
	}
	want := map[string]string{
		"primary":  "user",
		"fallback": "system",
		"settle":   "3s",
		"format":   "csv",
		"naming":   "label",
		"label":    "Contacts Exported",
		"download": "file",
		"timeout":  "30s",
		"level":    "info",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	if config.Browser.Headless == nil || !*config.Browser.Headless {
		t.Error("expected headless by default")
	}
	if config.Pagination.StopOnEmptyPage == nil || !*config.Pagination.StopOnEmptyPage {
		t.Error("expected stop_on_empty_page by default")
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("LIST_ID", "4711")
	config, err := LoadFromBytes([]byte("target:\n  url: https://lists.example.com/lists/${LIST_ID}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if config.Target.URL != "https://lists.example.com/lists/4711" {
		t.Errorf("unexpected URL %q", config.Target.URL)
	}
}

func TestLoadFromFile(t *testing.T) {
	configYAML := `
name: "file_test"
target:
  html_files: ["page1.html"]
browser:
  headless: false
pagination:
  next: "//button[@aria-label='Next']"
  settle_interval: 1500ms
  stop_on_empty_page: false
output:
  format: xlsx
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if *config.Browser.Headless {
		t.Error("expected headless: false to be kept")
	}
	if *config.Pagination.StopOnEmptyPage {
		t.Error("expected stop_on_empty_page: false to be kept")
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadFromFile(""); err == nil {
		t.Error("expected error for an empty filename")
	}
}

func TestLoadFromReader(t *testing.T) {
	if _, err := LoadFromReader(nil); err == nil {
		t.Error("expected error for nil reader")
	}
	config, err := LoadFromReader(strings.NewReader("name: reader\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config.Name != "reader" {
		t.Errorf("unexpected name %q", config.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"bad url scheme", "target:\n  url: ftp://example.com\n", "target.url"},
		{"url without scheme", "target:\n  url: example.com/list\n", "target.url"},
		{"bad format", "output:\n  format: pdf\n", "output.format"},
		{"bad naming", "output:\n  naming: random\n", "output.naming"},
		{"bad download", "output:\n  download: email\n", "output.download"},
		{"reserved table", "output:\n  format: sqlite\n  table_name: select\n", "output.table_name"},
		{"bad settle", "pagination:\n  settle_interval: soon\n", "pagination.settle_interval"},
		{"negative settle", "pagination:\n  settle_interval: -1s\n", "pagination.settle_interval"},
		{"negative max pages", "pagination:\n  max_pages: -2\n", "pagination.max_pages"},
		{"bad css next", "pagination:\n  next: \"button[\"\n", "pagination.next"},
		{"bad xpath next", "pagination:\n  next: \"//a[\"\n", "pagination.next"},
		{"unknown primary", "registries:\n  primary: people\n", "registries.primary"},
		{"unknown fallback", "registries:\n  fallback: people\n", "registries.fallback"},
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
		{"bad browser timeout", "browser:\n  timeout: forever\n", "browser.timeout"},
		{"bad remote url", "browser:\n  remote_url: 127.0.0.1\n", "browser.remote_url"},
		{"pattern without index", `
registries:
  primary: crm
  custom:
    - name: crm
      fields:
        - name: Name
          pattern: "//tr[1]/td[1]"
`, "registries.custom[0].fields[0].pattern"},
		{"pattern not xpath", `
registries:
  primary: crm
  custom:
    - name: crm
      fields:
        - name: Name
          pattern: "//tr[{index}]/td["
`, "registries.custom[0].fields[0].pattern"},
		{"duplicate field", `
registries:
  primary: crm
  custom:
    - name: crm
      fields:
        - {name: Name, pattern: "//tr[{index}]/td[1]"}
        - {name: Name, pattern: "//tr[{index}]/td[2]"}
`, "registries.custom[0].fields[1].name"},
		{"bad kind", `
registries:
  primary: crm
  custom:
    - name: crm
      fields:
        - {name: Name, pattern: "//tr[{index}]/td[1]", kind: number}
`, "registries.custom[0].fields[0].kind"},
		{"no fields", `
registries:
  primary: crm
  custom:
    - name: crm
`, "registries.custom[0].fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), "(field: "+tt.field+")") {
				t.Errorf("error does not name field %s:\n%v", tt.field, err)
			}
		})
	}
}

func TestLoadRejectsInput(t *testing.T) {
	if _, err := LoadFromBytes(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := LoadFromBytes([]byte("name: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateConfigWarnings(t *testing.T) {
	config := DefaultConfig()
	result := ValidateConfig(config)
	if !result.Valid {
		t.Fatalf("default config should be valid: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "--html") {
		t.Errorf("expected a missing target warning, got %v", result.Warnings)
	}

	config.Target.URL = "http://lists.example.com/people"
	config.Registries.Fallback = "user"
	result = ValidateConfig(config)
	if !result.Valid || len(result.Warnings) != 2 {
		t.Errorf("expected HTTP and same-fallback warnings, got %v", result.Warnings)
	}

	if result := ValidateConfig(nil); result.Valid {
		t.Error("nil config must be invalid")
	}
}

func TestGenerateTemplate(t *testing.T) {
	t.Setenv("LIST_ID", "7")
	for _, kind := range append(TemplateTypes(), "unknown") {
		t.Run(kind, func(t *testing.T) {
			config := GenerateTemplate(kind)
			if err := config.Validate(); err != nil {
				t.Fatalf("generated template should be valid: %v", err)
			}

			var buf bytes.Buffer
			if err := SaveToWriter(&config, &buf); err != nil {
				t.Fatalf("SaveToWriter failed: %v", err)
			}
			loaded, err := LoadFromBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("template does not load back: %v\n%s", err, buf.String())
			}
			if loaded.Name != config.Name {
				t.Errorf("expected name %q, got %q", config.Name, loaded.Name)
			}
		})
	}

	if GenerateTemplate("unknown").Name != GenerateTemplate("live").Name {
		t.Error("unknown template types should fall back to live")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := GenerateTemplate("offline")
	if err := SaveToFile(&config, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config.Target.HTMLFiles, loaded.Target.HTMLFiles); diff != "" {
		t.Errorf("html files mismatch (-want +got):\n%s", diff)
	}
	if err := SaveToWriter(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestSelectRegistries(t *testing.T) {
	tests := []struct {
		name         string
		primary      string
		fallback     string
		wantPrimary  string
		wantFallback string
	}{
		{"defaults", "user", "system", "user", "system"},
		{"reversed", "System", "USER", "system", "user"},
		{"disabled", "user", "none", "user", ""},
		{"same as primary", "system", "system", "system", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Registries.Primary = tt.primary
			config.Registries.Fallback = tt.fallback

			primary, fallback, err := config.SelectRegistries()
			if err != nil {
				t.Fatal(err)
			}
			if primary.Name != tt.wantPrimary {
				t.Errorf("expected primary %q, got %q", tt.wantPrimary, primary.Name)
			}
			gotFallback := ""
			if fallback != nil {
				gotFallback = fallback.Name
			}
			if gotFallback != tt.wantFallback {
				t.Errorf("expected fallback %q, got %q", tt.wantFallback, gotFallback)
			}
		})
	}
}

func TestCustomRegistry(t *testing.T) {
	config := GenerateTemplate("custom")
	primary, fallback, err := config.SelectRegistries()
	if err != nil {
		t.Fatal(err)
	}
	if fallback != nil {
		t.Errorf("custom template disables the fallback, got %s", fallback.Name)
	}

	want := []string{"Name", "Profile", "Company", "Email"}
	if diff := cmp.Diff(want, primary.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	profile := primary.Fields[1]
	if profile.Kind != registry.KindLink {
		t.Errorf("expected link kind, got %s", profile.Kind)
	}
	if got := profile.Locator(3); got != "//table[@id='contacts']/tbody/tr[3]/td[1]/a" {
		t.Errorf("unexpected locator %q", got)
	}
	if !primary.Fields[3].Optional {
		t.Error("expected Email to be optional")
	}
}

func TestCollectorOptions(t *testing.T) {
	config := DefaultConfig()
	opts, err := config.CollectorOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.SettleInterval != 3*time.Second || !opts.StopOnEmptyPage || opts.MaxPages != 0 || opts.PageLimiter != nil {
		t.Errorf("unexpected default options %+v", opts)
	}

	stop := false
	config.Pagination.SettleInterval = "250ms"
	config.Pagination.MaxPages = 4
	config.Pagination.StopOnEmptyPage = &stop
	config.Pagination.PageRate = 2
	opts, err = config.CollectorOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.SettleInterval != 250*time.Millisecond || opts.StopOnEmptyPage || opts.MaxPages != 4 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.PageLimiter.Limit() != 2 {
		t.Errorf("expected page limiter at 2/s, got %v", opts.PageLimiter.Limit())
	}
}

func TestBrowserAndSessionOptions(t *testing.T) {
	config := GenerateTemplate("live")
	config.Browser.RemoteURL = "ws://127.0.0.1:9222"
	config.Browser.Timeout = "45s"

	opts, err := config.BrowserOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Headless || opts.RemoteURL != "ws://127.0.0.1:9222" || opts.Timeout != 45*time.Second {
		t.Errorf("unexpected browser options %+v", opts)
	}

	session := config.SessionConfig()
	if session.StartURL != config.Target.URL || session.WaitFor != "table" {
		t.Errorf("unexpected session config %+v", session)
	}
	if session.Next.DisabledClass != "artdeco-button--disabled" {
		t.Errorf("unexpected next control %+v", session.Next)
	}
}

func TestOutputBuilders(t *testing.T) {
	config := GenerateTemplate("custom")
	manager, err := config.OutputManager()
	if err != nil {
		t.Fatal(err)
	}
	if manager.Format() != "sqlite" {
		t.Errorf("unexpected format %s", manager.Format())
	}

	namer, err := config.Namer()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 3, 4, 15, 6, 7, 0, time.UTC)
	namer.Now = func() time.Time { return now }
	if got := namer.Filename(12, "db"); got != "12_20240304T150607.db" {
		t.Errorf("unexpected filename %q", got)
	}

	timeout, err := config.DownloadTimeout()
	if err != nil || timeout != 30*time.Second {
		t.Errorf("unexpected download timeout %v, %v", timeout, err)
	}
}

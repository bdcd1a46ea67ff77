// internal/output/manager.go
package output

import (
	"fmt"

	"github.com/valpere/ListScrapexter/internal/table"
)

// Config selects the rendered format and per-format options.
type Config struct {
	Format    OutputFormat
	SheetName string
	TableName string
}

// Manager renders a column store in the configured format
type Manager struct {
	config Config
}

// NewManager creates a new output manager
func NewManager(cfg Config) (*Manager, error) {
	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = format
	if cfg.SheetName == "" {
		cfg.SheetName = "Contacts"
	}
	if cfg.TableName == "" {
		cfg.TableName = "contacts"
	}
	if format == FormatSQLite {
		if err := ValidateSQLIdentifier(cfg.TableName); err != nil {
			return nil, err
		}
	}
	return &Manager{config: cfg}, nil
}

// Format returns the configured output format
func (m *Manager) Format() OutputFormat {
	return m.config.Format
}

// Render serializes store into an Artifact
func (m *Manager) Render(store *table.Store) (*Artifact, error) {
	if store == nil {
		return nil, fmt.Errorf("nothing to render: store is nil")
	}

	var (
		content []byte
		err     error
	)
	switch m.config.Format {
	case FormatCSV:
		content = []byte(SerializeCSV(store))
	case FormatExcel:
		content, err = RenderExcel(store, m.config.SheetName)
	case FormatJSON:
		content, err = RenderJSON(store)
	case FormatSQLite:
		content, err = RenderSQLite(store, m.config.TableName)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", m.config.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s output: %w", m.config.Format, err)
	}

	return &Artifact{
		Format:   m.config.Format,
		Content:  content,
		MimeType: m.config.Format.MimeType(),
	}, nil
}

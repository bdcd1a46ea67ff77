// internal/output/types.go
package output

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatCSV    OutputFormat = "csv"
	FormatExcel  OutputFormat = "xlsx"
	FormatJSON   OutputFormat = "json"
	FormatSQLite OutputFormat = "sqlite"
)

// ValidOutputFormats returns all valid output format values
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatCSV, FormatExcel, FormatJSON, FormatSQLite}
}

// ParseFormat normalizes a configured format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Extension returns the file extension, without dot, used for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	case FormatSQLite:
		return "sqlite"
	default:
		return "csv"
	}
}

// MimeType returns the media type handed to the download collaborator.
func (f OutputFormat) MimeType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "text/csv"
	}
}

// Artifact is a rendered export ready to be downloaded.
type Artifact struct {
	Format   OutputFormat
	Content  []byte
	MimeType string
}

// Extension returns the artifact's file extension.
func (a *Artifact) Extension() string {
	return a.Format.Extension()
}

// ErrDownloadFailed wraps any failure reported by a Downloader.
var ErrDownloadFailed = errors.New("download failed")

// Downloader saves rendered content under a file name. Implementations either
// write to disk or trigger a browser download.
type Downloader interface {
	Download(ctx context.Context, filename string, content []byte, mimeType string) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, filename string, content []byte, mimeType string) error

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, filename string, content []byte, mimeType string) error {
	return f(ctx, filename, content, mimeType)
}

// sqlIdentifierRegex: starts with letter or underscore, contains letters, digits, underscores
var sqlIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateSQLIdentifier checks a table name before it is interpolated into DDL.
func ValidateSQLIdentifier(name string) error {
	if !sqlIdentifierRegex.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier: %q", name)
	}
	if sqliteReservedWords[strings.ToUpper(name)] {
		return fmt.Errorf("SQL identifier %q is a reserved word", name)
	}
	return nil
}

// sqliteReservedWords is the subset of SQLite keywords likely to collide with a
// table name (from https://www.sqlite.org/lang_keywords.html).
var sqliteReservedWords = map[string]bool{
	"ABORT": true, "ADD": true, "ALL": true, "ALTER": true, "AND": true, "AS": true, "BEGIN": true,
	"BY": true, "CASE": true, "CHECK": true, "COLUMN": true, "COMMIT": true, "CREATE": true,
	"DEFAULT": true, "DELETE": true, "DROP": true, "FROM": true, "GROUP": true, "INDEX": true,
	"INSERT": true, "INTO": true, "JOIN": true, "KEY": true, "LIMIT": true, "NOT": true, "NULL": true,
	"ON": true, "OR": true, "ORDER": true, "PRIMARY": true, "SELECT": true, "SET": true, "TABLE": true,
	"TRANSACTION": true, "UNION": true, "UPDATE": true, "VALUES": true, "VIEW": true, "WHERE": true,
}

// internal/output/sqlite.go
package output

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/valpere/ListScrapexter/internal/table"
)

// RenderSQLite writes store into a fresh SQLite database file holding one
// table with a TEXT column per field, and returns the database bytes.
func RenderSQLite(store *table.Store, tableName string) ([]byte, error) {
	if err := ValidateSQLIdentifier(tableName); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "listscrapexter-*.sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary database: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := writeSQLite(path, store, tableName); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read temporary database: %w", err)
	}
	return data, nil
}

func writeSQLite(path string, store *table.Store, tableName string) error {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=DELETE")
	if err != nil {
		return fmt.Errorf("failed to open SQLite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	columns := store.Columns()
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdentifier(c)
		placeholders[i] = "?"
	}

	defs := []string{"row_index INTEGER PRIMARY KEY"}
	for _, q := range quoted {
		defs = append(defs, q+" TEXT NOT NULL DEFAULT ''")
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", "))
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if len(columns) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	insert := fmt.Sprintf("INSERT INTO %s (row_index, %s) VALUES (?, %s)",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range store.Records() {
		args := make([]interface{}, 0, len(record)+1)
		args = append(args, i+1)
		for _, v := range record {
			args = append(args, Normalize(v))
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// quoteIdentifier quotes a column name so any field name is a valid identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

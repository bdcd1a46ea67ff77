// internal/output/json.go
package output

import (
	"encoding/json"
	"fmt"

	"github.com/valpere/ListScrapexter/internal/table"
)

// jsonTable keeps column order, which a list of objects would lose.
type jsonTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RenderJSON encodes store as {"columns": [...], "rows": [[...], ...]} with
// normalized cell values.
func RenderJSON(store *table.Store) ([]byte, error) {
	out := jsonTable{
		Columns: store.Columns(),
		Rows:    make([][]string, 0, store.Rows()),
	}
	for _, record := range store.Records() {
		row := make([]string, len(record))
		for i, v := range record {
			row[i] = Normalize(v)
		}
		out.Rows = append(out.Rows, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

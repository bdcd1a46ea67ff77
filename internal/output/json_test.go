// internal/output/json_test.go
package output

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/valpere/ListScrapexter/internal/table"
)

func TestRenderJSON(t *testing.T) {
	store := table.New()
	store.Append("Name", "Alice")
	store.Append("Name", "Bob")
	store.Append("Geography", "  Kyiv ")

	data, err := RenderJSON(store)
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var got struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if diff := cmp.Diff([]string{"Name", "Geography"}, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"Alice", "Kyiv"}, {"Bob", ""}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	data, err := RenderJSON(table.New())
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if rows, ok := got["rows"].([]interface{}); !ok || len(rows) != 0 {
		t.Errorf("expected empty rows array, got %v", got["rows"])
	}
}

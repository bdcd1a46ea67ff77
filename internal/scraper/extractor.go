// internal/scraper/extractor.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/valpere/ListScrapexter/internal/document"
	"github.com/valpere/ListScrapexter/internal/registry"
)

// ExtractRecord resolves every field of reg at the 1-based index.
//
// Optional fields with no node yield "" and extraction continues. A required
// field with no node, or with an empty value, stops extraction with a
// *RecordError wrapping ErrRecordNotFound; the partially filled Record is
// returned alongside so callers can tell a populated index from the end of
// the list. Locator errors are returned as-is.
func ExtractRecord(doc document.Document, reg *registry.Registry, index int) (Record, error) {
	rec := Record{
		Index:    index,
		Fields:   make([]string, 0, len(reg.Fields)),
		Values:   make([]string, 0, len(reg.Fields)),
		Outcomes: make([]Outcome, 0, len(reg.Fields)),
	}

	for i, field := range reg.Fields {
		locator := field.Locator(index)
		node, err := doc.Find(locator)
		if err != nil {
			return rec, fmt.Errorf("field %q at record %d: %w", field.Name, index, err)
		}

		value := ""
		if node != nil {
			rec.AnyNode = true
			value = fieldValue(node, field.Kind)
		}

		if value == "" {
			if field.Optional {
				rec.add(field.Name, "", MissingOptional)
				continue
			}
			return rec, &RecordError{
				Index:      index,
				Field:      field.Name,
				Locator:    locator,
				FirstField: i == 0,
				Empty:      node != nil,
			}
		}
		rec.add(field.Name, value, Found)
	}

	return rec, nil
}

func (r *Record) add(field, value string, outcome Outcome) {
	r.Fields = append(r.Fields, field)
	r.Values = append(r.Values, value)
	r.Outcomes = append(r.Outcomes, outcome)
}

func fieldValue(node document.Node, kind registry.Kind) string {
	switch kind {
	case registry.KindLink:
		link, ok := node.Link()
		if !ok {
			return ""
		}
		return link
	default:
		return strings.TrimSpace(node.Text())
	}
}

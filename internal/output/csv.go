// internal/output/csv.go
package output

import (
	"regexp"
	"strings"

	"github.com/valpere/ListScrapexter/internal/table"
	"golang.org/x/text/unicode/norm"
)

// whitespaceRun matches any run of ASCII whitespace, Unicode space separators
// (Zs, which covers the non-breaking, thin, hair and ideographic spaces), line
// and paragraph separators, the byte order mark, and HTML encoded &nbsp;
// entities left in text content.
var whitespaceRun = regexp.MustCompile(`(?:[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]|&nbsp;)+`)

// Normalize collapses every whitespace run to a single ASCII space, applies
// NFC composition and trims the result.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Escape renders one CSV cell: normalized, embedded quotes doubled, wrapped in
// double quotes. Every cell is quoted.
func Escape(s string) string {
	return `"` + strings.ReplaceAll(Normalize(s), `"`, `""`) + `"`
}

// Unescape reverses Escape's quoting. It does not restore collapsed whitespace.
func Unescape(cell string) string {
	if len(cell) >= 2 && strings.HasPrefix(cell, `"`) && strings.HasSuffix(cell, `"`) {
		cell = cell[1 : len(cell)-1]
	}
	return strings.ReplaceAll(cell, `""`, `"`)
}

// SerializeCSV renders store as comma separated text. The header row lists
// columns in insertion order; the row count is the longest column and short
// columns contribute empty cells. Rows are joined with "\n".
func SerializeCSV(store *table.Store) string {
	var b strings.Builder
	writeCSVRow(&b, store.Columns())
	for i, n := 0, store.Rows(); i < n; i++ {
		b.WriteByte('\n')
		writeCSVRow(&b, store.Row(i))
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(cell))
	}
}

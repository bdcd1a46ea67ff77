// internal/scraper/types.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/ListScrapexter/internal/document"
	"github.com/valpere/ListScrapexter/internal/table"
)

// Common errors
var (
	// ErrRecordNotFound means a required field of a record index resolved no
	// node or an empty value. The page scanner treats it as end of page.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidLocator is a locator the document cannot evaluate.
	ErrInvalidLocator = document.ErrInvalidLocator
	// ErrEmptyResult means every registry tried produced zero rows.
	ErrEmptyResult = errors.New("no data was found to export")
	// ErrNoSession is returned by a collector built without a session.
	ErrNoSession = errors.New("no browser session")
)

// Outcome classifies the extraction of one field of one record.
type Outcome int

const (
	Found Outcome = iota
	MissingOptional
	MissingRequired
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case MissingOptional:
		return "missing_optional"
	case MissingRequired:
		return "missing_required"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// RecordError describes the required field that stopped a record.
type RecordError struct {
	Index      int
	Field      string
	Locator    string
	FirstField bool
	// Empty is set when a node matched but yielded no value.
	Empty bool
}

func (e *RecordError) Error() string {
	reason := "no node at"
	if e.Empty {
		reason = "empty value at"
	}
	return fmt.Sprintf("record %d: required field %q: %s %s", e.Index, e.Field, reason, e.Locator)
}

func (e *RecordError) Unwrap() error {
	return ErrRecordNotFound
}

// Record is the result of extracting one record index. Fields, Values and
// Outcomes are parallel and follow registry order.
type Record struct {
	Index    int
	Fields   []string
	Values   []string
	Outcomes []Outcome
	// AnyNode reports whether at least one field resolved a node.
	AnyNode bool
}

// Value returns the value of field, or "" when the record has no such field.
func (r Record) Value(field string) string {
	for i, f := range r.Fields {
		if f == field && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// ScanStats summarizes one page scan.
type ScanStats struct {
	// Records is the number of complete records appended.
	Records int
	// Truncated counts indexes that matched some fields but lacked a required one.
	Truncated int
	// StopIndex is the record index at which the scan ended.
	StopIndex int
}

// Session is the live page the scraper reads from.
type Session interface {
	// Document returns a snapshot of the current page.
	Document(ctx context.Context) (document.Document, error)
	// NextControl returns the page's "next" control, or nil when there is none.
	NextControl(ctx context.Context) (Control, error)
}

// Rewinder is implemented by sessions that can return to the first page of
// the list. The collector rewinds before trying a fallback registry.
type Rewinder interface {
	Rewind(ctx context.Context) error
}

// Control is a pagination control on the current page.
type Control interface {
	// Actionable reports whether activating the control would advance the list.
	Actionable() bool
	// Activate clicks the control. The caller waits for the page to settle.
	Activate(ctx context.Context) error
}

// Recorder receives scrape metrics. monitoring.MetricsManager implements it.
type Recorder interface {
	PageScanned(registry string, records, truncated int, elapsed time.Duration)
	FallbackUsed(from, to string)
	Exported(format string, rows int)
}

type nopRecorder struct{}

func (nopRecorder) PageScanned(string, int, int, time.Duration) {}
func (nopRecorder) FallbackUsed(string, string)                 {}
func (nopRecorder) Exported(string, int)                        {}

// Collection is the outcome of collecting with one or two registries.
type Collection struct {
	// Registry names the registry whose rows were kept.
	Registry string
	Store    *table.Store
	Pages    int
	// Interrupted holds the error that stopped pagination early when the rows
	// gathered before it were kept.
	Interrupted error
}

// Rows returns the number of collected rows.
func (c Collection) Rows() int {
	if c.Store == nil {
		return 0
	}
	return c.Store.Rows()
}

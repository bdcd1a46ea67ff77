// internal/scraper/scanner.go
package scraper

import (
	"errors"
	"fmt"

	"github.com/valpere/ListScrapexter/internal/document"
	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/table"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// ScanPage extracts records 1, 2, 3, ... from doc until a record cannot be
// completed, and returns them as a fresh store. Only whole records are
// appended, so every column of the result has the same length.
func ScanPage(doc document.Document, reg *registry.Registry, logger utils.Logger) (*table.Store, ScanStats, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	store := table.New()
	var stats ScanStats

	for index := 1; ; index++ {
		rec, err := ExtractRecord(doc, reg, index)
		stats.StopIndex = index

		var recErr *RecordError
		switch {
		case errors.As(err, &recErr):
			if rec.AnyNode {
				stats.Truncated++
				logger.Warnf("stopping at record %d: %v", index, recErr)
			} else {
				logger.Debugf("no record at index %d, end of page", index)
			}
			return store, stats, nil
		case err != nil:
			return store, stats, err
		case !rec.AnyNode:
			// Every field is optional and none matched.
			logger.Debugf("record %d resolved no node, end of page", index)
			return store, stats, nil
		}

		if err := store.AppendRow(rec.Fields, rec.Values); err != nil {
			return store, stats, fmt.Errorf("record %d: %w", index, err)
		}
		stats.Records++
	}
}

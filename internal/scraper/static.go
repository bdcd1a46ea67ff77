// internal/scraper/static.go
package scraper

import (
	"context"
	"fmt"
	"os"

	"github.com/valpere/ListScrapexter/internal/document"
)

// StaticSession serves saved page snapshots in order. Its next control
// advances to the following snapshot and is absent on the last one.
type StaticSession struct {
	pages   []document.Document
	current int
}

// NewStaticSession returns a session over already parsed pages.
func NewStaticSession(pages ...document.Document) *StaticSession {
	return &StaticSession{pages: pages}
}

// LoadStaticSession parses each HTML file, detecting its character set, and
// resolves links against baseURL.
func LoadStaticSession(baseURL string, paths ...string) (*StaticSession, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no HTML files given")
	}
	pages := make([]document.Document, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		// No charset parameter, so a BOM or <meta charset> decides.
		doc, err := document.ParseWithCharset(content, "text/html", baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		pages = append(pages, doc)
	}
	return NewStaticSession(pages...), nil
}

// Document returns the current snapshot.
func (s *StaticSession) Document(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.current >= len(s.pages) {
		return nil, fmt.Errorf("no page %d", s.current+1)
	}
	return s.pages[s.current], nil
}

// NextControl returns a control moving to the next snapshot, or nil on the
// last one.
func (s *StaticSession) NextControl(ctx context.Context) (Control, error) {
	if s.current+1 >= len(s.pages) {
		return nil, nil
	}
	return staticControl{session: s}, nil
}

// Page returns the 1-based number of the current snapshot.
func (s *StaticSession) Page() int {
	return s.current + 1
}

// Rewind goes back to the first snapshot.
func (s *StaticSession) Rewind(ctx context.Context) error {
	s.current = 0
	return ctx.Err()
}

type staticControl struct {
	session *StaticSession
}

func (c staticControl) Actionable() bool { return true }

func (c staticControl) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.session.current++
	return nil
}

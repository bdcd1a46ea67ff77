// internal/browser/session.go
package browser

import (
	"context"
	"fmt"

	"github.com/valpere/ListScrapexter/internal/document"
	"github.com/valpere/ListScrapexter/internal/scraper"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// SessionConfig describes the list page a Session works on.
type SessionConfig struct {
	// StartURL is the first page of the list. It is required: Open fails
	// without it, and snapshots need a completed navigation.
	StartURL string
	// Next locates the pagination control. An empty selector disables paging.
	Next scraper.NextControlConfig
	// WaitFor is a selector waited on after navigation and after each click.
	WaitFor string
}

// Session is a live browser tab seen as a scraper.Session.
type Session struct {
	client Client
	config SessionConfig
	logger utils.Logger
	clicks int
}

// NewSession wraps client.
func NewSession(client Client, config SessionConfig, logger utils.Logger) *Session {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Session{client: client, config: config, logger: logger}
}

// Open loads the start URL.
func (s *Session) Open(ctx context.Context) error {
	if s.config.StartURL == "" {
		return fmt.Errorf("no start URL configured")
	}
	s.logger.Infof("opening %s", s.config.StartURL)
	if err := s.client.Navigate(ctx, s.config.StartURL); err != nil {
		return err
	}
	s.clicks = 0
	return s.waitReady(ctx)
}

// Document snapshots the current page. Relative links resolve against the
// tab's location.
func (s *Session) Document(ctx context.Context) (document.Document, error) {
	return s.snapshot(ctx)
}

func (s *Session) snapshot(ctx context.Context) (*document.HTML, error) {
	html, err := s.client.GetHTML(ctx)
	if err != nil {
		return nil, err
	}
	location, err := s.client.Location(ctx)
	if err != nil {
		s.logger.Warnf("unknown page location, links stay relative: %v", err)
		location = ""
	}
	return document.ParseString(html, location)
}

// NextControl finds and classifies the configured next control on a fresh
// snapshot of the page.
func (s *Session) NextControl(ctx context.Context) (scraper.Control, error) {
	if s.config.Next.Selector == "" {
		return nil, nil
	}
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	state, err := scraper.ClassifyNextControl(doc, s.config.Next)
	if err != nil {
		return nil, err
	}
	if !state.Found {
		return nil, nil
	}
	switch {
	case !state.Actionable:
		s.logger.Debugf("next control is inert: %s", state.Reason)
	case state.Target != "":
		s.logger.Debugf("next control leads to %s", state.Target)
	}
	return &nextControl{session: s, state: state}, nil
}

// Rewind returns to the start URL when the session has paged forward.
func (s *Session) Rewind(ctx context.Context) error {
	if s.clicks == 0 {
		return nil
	}
	return s.Open(ctx)
}

func (s *Session) waitReady(ctx context.Context) error {
	if s.config.WaitFor == "" {
		return nil
	}
	return s.client.WaitVisible(ctx, s.config.WaitFor)
}

type nextControl struct {
	session *Session
	state   scraper.ControlState
}

func (c *nextControl) Actionable() bool {
	return c.state.Actionable
}

func (c *nextControl) Activate(ctx context.Context) error {
	s := c.session
	if err := s.client.Click(ctx, s.config.Next.Selector); err != nil {
		return err
	}
	s.clicks++
	return s.waitReady(ctx)
}

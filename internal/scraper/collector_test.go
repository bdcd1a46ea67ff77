// internal/scraper/collector_test.go
package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/valpere/ListScrapexter/internal/document"
	"github.com/valpere/ListScrapexter/internal/registry"
)

func newTestCollector(session Session, opts CollectorOptions) (*Collector, *[]time.Duration) {
	c := NewCollector(session, opts, nil)
	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func TestCollectAllPages(t *testing.T) {
	session := staticSession(t,
		userPage(alice, bob),
		userPage(carol, dave),
		userPage(erin),
	)
	recorder := &fakeRecorder{}
	opts := DefaultCollectorOptions()
	opts.Recorder = recorder
	c, waits := newTestCollector(session, opts)

	store, err := c.CollectAllPages(context.Background(), registry.User())
	if err != nil {
		t.Fatalf("CollectAllPages failed: %v", err)
	}

	want := []string{"Alice Moreau", "Bob Smith", "Carol \"CJ\" Jones", "Dave Lee", "Erin Wu"}
	if diff := cmp.Diff(want, store.Column("Name")); diff != "" {
		t.Errorf("rows out of page order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{DefaultSettleInterval, DefaultSettleInterval}, *waits); diff != "" {
		t.Errorf("settle waits mismatch (-want +got):\n%s", diff)
	}
	if recorder.pages != 3 || recorder.records != 5 {
		t.Errorf("unexpected metrics: pages=%d records=%d", recorder.pages, recorder.records)
	}
}

func TestCollectAllPagesMaxPages(t *testing.T) {
	session := staticSession(t, userPage(alice), userPage(bob), userPage(carol))
	opts := DefaultCollectorOptions()
	opts.MaxPages = 2
	c, _ := newTestCollector(session, opts)

	store, err := c.CollectAllPages(context.Background(), registry.User())
	if err != nil {
		t.Fatal(err)
	}
	if store.Rows() != 2 {
		t.Errorf("expected 2 rows with a two page cap, got %d", store.Rows())
	}
}

func TestCollectAllPagesEmptyPage(t *testing.T) {
	tests := []struct {
		name      string
		pages     []string
		stop      bool
		wantRows  int
		wantNames []string
	}{
		{
			name:      "leading empty page stops",
			pages:     []string{userPage(), userPage(alice), userPage(bob)},
			stop:      true,
			wantRows:  0,
			wantNames: nil,
		},
		{
			name:      "leading empty page continues when disabled",
			pages:     []string{userPage(), userPage(alice), userPage(bob)},
			stop:      false,
			wantRows:  2,
			wantNames: []string{alice.name, bob.name},
		},
		{
			name:      "empty page mid list is skipped",
			pages:     []string{userPage(alice, bob, carol), userPage(), userPage(dave, erin)},
			stop:      true,
			wantRows:  5,
			wantNames: []string{alice.name, bob.name, carol.name, dave.name, erin.name},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultCollectorOptions()
			opts.StopOnEmptyPage = tt.stop
			c, _ := newTestCollector(staticSession(t, tt.pages...), opts)
			store, err := c.CollectAllPages(context.Background(), registry.User())
			if err != nil {
				t.Fatal(err)
			}
			if store.Rows() != tt.wantRows {
				t.Fatalf("expected %d rows, got %d", tt.wantRows, store.Rows())
			}
			if tt.wantRows == 0 {
				return
			}
			if diff := cmp.Diff(tt.wantNames, store.Column("Name")); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// scriptedSession serves pages and per-page controls for failure cases.
type scriptedSession struct {
	pages      []document.Document
	current    int
	docErr     map[int]error
	controlErr map[int]error
	inert      map[int]bool
	activate   map[int]error
	rewinds    int
}

func (s *scriptedSession) Document(ctx context.Context) (document.Document, error) {
	if err := s.docErr[s.current]; err != nil {
		// Failures are one-shot so a rewound session can be read again.
		delete(s.docErr, s.current)
		return nil, err
	}
	return s.pages[s.current], nil
}

func (s *scriptedSession) NextControl(ctx context.Context) (Control, error) {
	if err := s.controlErr[s.current]; err != nil {
		return nil, err
	}
	if s.current+1 >= len(s.pages) {
		return nil, nil
	}
	return &scriptedControl{session: s, page: s.current}, nil
}

func (s *scriptedSession) Rewind(ctx context.Context) error {
	s.rewinds++
	s.current = 0
	return nil
}

type scriptedControl struct {
	session *scriptedSession
	page    int
}

func (c *scriptedControl) Actionable() bool { return !c.session.inert[c.page] }

func (c *scriptedControl) Activate(ctx context.Context) error {
	if err := c.session.activate[c.page]; err != nil {
		return err
	}
	c.session.current++
	return nil
}

func scripted(t *testing.T, pages ...string) *scriptedSession {
	t.Helper()
	s := &scriptedSession{
		docErr:     map[int]error{},
		controlErr: map[int]error{},
		inert:      map[int]bool{},
		activate:   map[int]error{},
	}
	for _, p := range pages {
		s.pages = append(s.pages, parsePage(t, p))
	}
	return s
}

func TestCollectAllPagesInertControl(t *testing.T) {
	session := scripted(t, userPage(alice), userPage(bob))
	session.inert[0] = true
	c, waits := newTestCollector(session, DefaultCollectorOptions())

	store, err := c.CollectAllPages(context.Background(), registry.User())
	if err != nil {
		t.Fatal(err)
	}
	if store.Rows() != 1 || len(*waits) != 0 {
		t.Errorf("expected to stop on an inert control, got %d rows and %d waits", store.Rows(), len(*waits))
	}
}

func TestCollectAllPagesKeepsRowsOnFailure(t *testing.T) {
	boom := errors.New("click intercepted")

	tests := []struct {
		name  string
		setup func(s *scriptedSession)
		rows  int
	}{
		{"activate", func(s *scriptedSession) { s.activate[1] = boom }, 2},
		{"snapshot", func(s *scriptedSession) { s.docErr[2] = boom }, 2},
		{"locate", func(s *scriptedSession) { s.controlErr[0] = boom }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := scripted(t, userPage(alice), userPage(bob), userPage(carol))
			tt.setup(session)
			c, _ := newTestCollector(session, DefaultCollectorOptions())

			store, err := c.CollectAllPages(context.Background(), registry.User())
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped failure, got %v", err)
			}
			if store.Rows() != tt.rows {
				t.Errorf("expected %d rows kept, got %d", tt.rows, store.Rows())
			}
		})
	}
}

func TestCollectAllPagesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newTestCollector(staticSession(t, userPage(alice)), DefaultCollectorOptions())

	_, err := c.CollectAllPages(ctx, registry.User())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCollectWithFallback(t *testing.T) {
	t.Run("primary wins", func(t *testing.T) {
		recorder := &fakeRecorder{}
		opts := DefaultCollectorOptions()
		opts.Recorder = recorder
		c, _ := newTestCollector(staticSession(t, userPage(alice, bob)), opts)

		got, err := c.CollectWithFallback(context.Background(), registry.User(), registry.System())
		if err != nil {
			t.Fatal(err)
		}
		if got.Registry != registry.UserGenerated || got.Rows() != 2 {
			t.Errorf("unexpected collection: %s with %d rows", got.Registry, got.Rows())
		}
		if len(recorder.fallbacks) != 0 {
			t.Errorf("fallback must not run, got %v", recorder.fallbacks)
		}
	})

	t.Run("fallback used", func(t *testing.T) {
		recorder := &fakeRecorder{}
		opts := DefaultCollectorOptions()
		opts.Recorder = recorder
		c, _ := newTestCollector(staticSession(t, systemPage(alice, bob), systemPage(carol)), opts)

		got, err := c.CollectWithFallback(context.Background(), registry.User(), registry.System())
		if err != nil {
			t.Fatal(err)
		}
		if got.Registry != registry.SystemGenerated || got.Rows() != 3 || got.Pages != 2 {
			t.Errorf("unexpected collection: %s with %d rows over %d pages", got.Registry, got.Rows(), got.Pages)
		}
		if diff := cmp.Diff([]string{"user->system"}, recorder.fallbacks); diff != "" {
			t.Errorf("fallbacks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fallback after primary error", func(t *testing.T) {
		session := scripted(t, systemPage(alice))
		session.docErr[0] = errors.New("detached")
		c, _ := newTestCollector(session, DefaultCollectorOptions())

		got, err := c.CollectWithFallback(context.Background(), registry.User(), registry.System())
		if err != nil {
			t.Fatal(err)
		}
		if got.Registry != registry.SystemGenerated || got.Rows() != 1 {
			t.Errorf("expected 1 system row, got %s with %d rows", got.Registry, got.Rows())
		}
		if session.rewinds != 1 {
			t.Errorf("expected one rewind before the fallback, got %d", session.rewinds)
		}
	})

	t.Run("error without fallback", func(t *testing.T) {
		session := scripted(t, userPage(alice))
		session.docErr[0] = errors.New("detached")
		c, _ := newTestCollector(session, DefaultCollectorOptions())

		_, err := c.CollectWithFallback(context.Background(), registry.System(), nil)
		if !errors.Is(err, ErrEmptyResult) {
			t.Fatalf("expected ErrEmptyResult, got %v", err)
		}
	})

	t.Run("partial primary kept", func(t *testing.T) {
		boom := errors.New("navigation lost")
		session := scripted(t, userPage(alice), userPage(bob))
		session.activate[0] = boom
		c, _ := newTestCollector(session, DefaultCollectorOptions())

		got, err := c.CollectWithFallback(context.Background(), registry.User(), registry.System())
		if err != nil {
			t.Fatal(err)
		}
		if got.Rows() != 1 || !errors.Is(got.Interrupted, boom) {
			t.Errorf("expected 1 row and the interruption, got %d rows, %v", got.Rows(), got.Interrupted)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		c, _ := newTestCollector(staticSession(t, userPage()), DefaultCollectorOptions())

		_, err := c.CollectWithFallback(context.Background(), registry.User(), registry.System())
		if !errors.Is(err, ErrEmptyResult) {
			t.Errorf("expected ErrEmptyResult, got %v", err)
		}
	})

	t.Run("single registry", func(t *testing.T) {
		c, _ := newTestCollector(staticSession(t, systemPage(alice)), DefaultCollectorOptions())

		_, err := c.CollectWithFallback(context.Background(), registry.User(), nil)
		if !errors.Is(err, ErrEmptyResult) {
			t.Errorf("expected ErrEmptyResult without a fallback, got %v", err)
		}
	})
}

func TestCollectorWithoutSession(t *testing.T) {
	c := NewCollector(nil, DefaultCollectorOptions(), nil)
	if _, err := c.CollectAllPages(context.Background(), registry.User()); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("zero wait returned %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

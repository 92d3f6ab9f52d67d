package directory

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/expatpedia/directory/internal/models"
	"golang.org/x/text/language"
)

func testOptions() SessionOptions {
	return SessionOptions{MaxPages: DefaultMaxPages, Delta: 2, Locale: language.English}
}

func waitSettled[T Listable](t *testing.T, s *Session[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("session did not settle: %v", err)
	}
}

func TestSessionLoadsFirstPageAndFills(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)

	view := s.View()
	if len(view.Items) != 8 || view.Page != 1 || view.TotalPages != 3 {
		t.Fatalf("expected 8 items on page 1 of 3, got %d on %d of %d", len(view.Items), view.Page, view.TotalPages)
	}
	if models.FormatMarkers(view.Markers, view.Page) != "[(1) 2 3]" {
		t.Fatalf("unexpected markers %s", models.FormatMarkers(view.Markers, view.Page))
	}
	if view.State != models.StateComplete || view.Loaded != 20 {
		t.Fatalf("expected complete with 20 loaded, got %s with %d", view.State, view.Loaded)
	}
	if backend.callCount() != 3 {
		t.Fatalf("expected 3 page requests, got %d", backend.callCount())
	}
	if stats := s.Stats(); stats.PagesFilled != 2 || stats.RecordsLoaded != 20 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !strings.HasPrefix(view.Items[0].ImageURL, "https://backend.test/media/") {
		t.Fatalf("expected absolute image url, got %s", view.Items[0].ImageURL)
	}
}

func TestSessionNoFillStopsAfterFirstPage(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	opts := testOptions()
	opts.NoFill = true
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), opts, nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)

	view := s.View()
	if view.State != models.StateFirstPageReady || view.Loaded != 8 || view.TotalPages != 1 {
		t.Fatalf("unexpected view: state %s, loaded %d, pages %d", view.State, view.Loaded, view.TotalPages)
	}
}

func TestSessionNoFillOnlyOffersLoadedPages(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	opts := testOptions()
	opts.NoFill = true
	s := NewSession(context.Background(), backend.client(), MembersListing(4, ""), opts, nil)
	defer s.Close()

	s.Start(models.NewQuery().WithPage(2))
	waitSettled(t, s)

	view := s.View()
	if view.TotalPages != 1 || view.TotalItems != 4 {
		t.Fatalf("expected only the loaded page, got %d pages / %d items", view.TotalPages, view.TotalItems)
	}
	if view.Page != 1 || len(view.Items) != 4 {
		t.Fatalf("expected clamp to page 1 with 4 items, got page %d with %d", view.Page, len(view.Items))
	}
	if models.FormatMarkers(view.Markers, view.Page) != "[(1)]" {
		t.Fatalf("unexpected markers %s", models.FormatMarkers(view.Markers, view.Page))
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected one request, got %d", backend.callCount())
	}
}

func TestSessionSearchWhitespaceKeepsLoadedRecords(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.SetSearch("ab")
	waitSettled(t, s)
	s.SetSearch("ab ")
	waitSettled(t, s)

	if backend.callCount() != 1 {
		t.Fatalf("expected trailing space not to refetch, got %d requests", backend.callCount())
	}
	if view := s.View(); view.Loaded != 1 || view.State != models.StateComplete {
		t.Fatalf("expected loaded records kept, got state %s loaded %d", view.State, view.Loaded)
	}
}

func TestSessionFilterSwitchResetsPage(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	s := NewSession(context.Background(), backend.client(), MembersListing(4, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	s.SetCategory("Technology")
	waitSettled(t, s)
	s.SetPage(2)
	if got := s.View().Page; got != 2 {
		t.Fatalf("expected page 2, got %d", got)
	}

	s.SetLetter("A")
	q := s.Query()
	if q.Category != "" || q.Letter != "A" || q.Page != 1 {
		t.Fatalf("expected category cleared and page reset, got %+v", q)
	}
	waitSettled(t, s)
	view := s.View()
	if view.Page != 1 {
		t.Fatalf("expected page 1, got %d", view.Page)
	}
	for _, m := range view.Items {
		if !strings.HasPrefix(m.Name, "A") {
			t.Fatalf("unexpected member %s for letter A", m.Name)
		}
	}
	if backend.callsWhere("starts_with", "A") == 0 || backend.callsWhere("category", "Technology") == 0 {
		t.Fatalf("expected both filters to reach the backend")
	}
}

func TestSessionNewerSearchWins(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		records: memberRecords(20),
		gate: func(params url.Values) <-chan struct{} {
			if params.Get("search") == "a" {
				return release
			}
			return nil
		},
	}

	var mu sync.Mutex
	var views []models.View[models.Member]
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), func(v models.View[models.Member]) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})
	defer s.Close()

	s.SetSearch("a")
	s.SetSearch("ab")
	waitSettled(t, s)
	close(release)
	waitSettled(t, s)

	view := s.View()
	if view.Query.Search != "ab" || len(view.Items) != 1 || view.Items[0].Name != "Abigail" {
		t.Fatalf("expected only Abigail for ab, got %v", names(view.Items))
	}

	mu.Lock()
	defer mu.Unlock()
	for _, v := range views {
		for _, m := range v.Items {
			if !strings.Contains(strings.ToLower(m.Name), "ab") {
				t.Fatalf("stale result %s rendered for query %q", m.Name, v.Query.Search)
			}
		}
	}
}

func TestSessionDebouncesSearch(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	opts := testOptions()
	opts.Debounce = 30 * time.Millisecond
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), opts, nil)
	defer s.Close()

	s.SetSearch("a")
	s.SetSearch("ab")
	if s.View().State != models.StateIdle {
		t.Fatalf("expected idle while debouncing, got %s", s.View().State)
	}
	waitSettled(t, s)

	if backend.callsWhere("search", "a") != 0 {
		t.Fatalf("expected the superseded keystroke never to be fetched")
	}
	if backend.callsWhere("search", "ab") != 1 {
		t.Fatalf("expected one fetch for ab, got %d", backend.callsWhere("search", "ab"))
	}
}

func TestSessionDropsStaleBackgroundPages(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		records: memberRecords(20),
		gate: func(params url.Values) <-chan struct{} {
			if params.Get("page") == "2" && params.Get("category") == "" && params.Get("elite") == "" {
				return release
			}
			return nil
		},
	}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.WaitFirstPage(ctx); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if s.View().State != models.StateBackgroundFilling {
		t.Fatalf("expected background filling, got %s", s.View().State)
	}

	s.SetElite(true)
	close(release)
	waitSettled(t, s)

	view := s.View()
	if view.Loaded != 4 {
		t.Fatalf("expected only the 4 elite records, got %d", view.Loaded)
	}
	for _, m := range view.Items {
		if !m.IsElite {
			t.Fatalf("non-elite %s leaked into elite view", m.Name)
		}
	}
}

func TestSessionFailureAndRetry(t *testing.T) {
	var mu sync.Mutex
	failing := true
	backend := &fakeBackend{
		records: memberRecords(20),
		fail: func(params url.Values) error {
			mu.Lock()
			defer mu.Unlock()
			if failing {
				return errors.New("connection refused")
			}
			return nil
		},
	}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)
	view := s.View()
	if view.State != models.StateFailed || view.Error == "" || !view.Empty() {
		t.Fatalf("expected visible failure, got %+v", view)
	}

	mu.Lock()
	failing = false
	mu.Unlock()
	s.Retry()
	waitSettled(t, s)
	if view := s.View(); view.State != models.StateComplete || view.Loaded != 20 || view.Error != "" {
		t.Fatalf("expected recovery after retry, got state %s loaded %d error %q", view.State, view.Loaded, view.Error)
	}
}

func TestSessionBackgroundFailureKeepsMergedPages(t *testing.T) {
	backend := &fakeBackend{
		records: memberRecords(20),
		fail: func(params url.Values) error {
			if params.Get("page") == "3" {
				return errors.New("status 500")
			}
			return nil
		},
	}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)
	view := s.View()
	if view.State != models.StateFailed || view.Loaded != 16 {
		t.Fatalf("expected failure with two pages kept, got state %s loaded %d", view.State, view.Loaded)
	}
	if len(view.Items) != 8 {
		t.Fatalf("expected merged records to stay visible, got %d", len(view.Items))
	}
}

func TestSessionStopsAtPageCeiling(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(3), endless: true}
	opts := testOptions()
	opts.MaxPages = 5
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), opts, nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)

	if backend.callCount() != 5 {
		t.Fatalf("expected 5 requests, got %d", backend.callCount())
	}
	if s.View().State != models.StateComplete {
		t.Fatalf("expected complete, got %s", s.View().State)
	}
}

func TestSessionSortAndFlip(t *testing.T) {
	backend := &fakeBackend{records: memberRecords(20)}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	defer s.Close()

	s.Start(models.NewQuery())
	waitSettled(t, s)
	s.SetPage(3)
	s.ToggleSort()
	if q := s.Query(); q.Sort != models.SortDesc || q.Page != 1 {
		t.Fatalf("expected desc on page 1, got %+v", q)
	}
	waitSettled(t, s)
	if first := s.View().Items[0].Name; first != "Omar" {
		t.Fatalf("expected Omar first in descending order, got %s", first)
	}

	s.Flip("3")
	s.Flip("1")
	if got := s.View().Flipped; len(got) != 2 || got[0] != "1" {
		t.Fatalf("unexpected flipped %v", got)
	}
	s.Flip("3")
	if got := s.View().Flipped; len(got) != 1 {
		t.Fatalf("expected one flipped card, got %v", got)
	}
}

func TestSessionCloseCancelsInFlight(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	backend := &fakeBackend{
		records: memberRecords(20),
		gate:    func(url.Values) <-chan struct{} { return block },
	}
	s := NewSession(context.Background(), backend.client(), MembersListing(8, ""), testOptions(), nil)
	s.Start(models.NewQuery())

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("close did not cancel the in-flight request")
	}
}

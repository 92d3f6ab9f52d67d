package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/expatpedia/directory/internal/api"
	"github.com/expatpedia/directory/internal/interfaces"
	"github.com/expatpedia/directory/internal/log"
	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// DefaultDebounce is how long search input must settle before a fetch.
const DefaultDebounce = 400 * time.Millisecond

// SessionOptions tunes a Session.
type SessionOptions struct {
	// Debounce delays fetches triggered by search input. Zero disables it.
	Debounce time.Duration
	MaxPages int
	Delta    int
	Locale   language.Tag
	// NoFill stops after the first page of each filter context. Page counts
	// then cover only the records that page loaded.
	NoFill bool
}

// DefaultSessionOptions returns the options used by the web listings.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Debounce: DefaultDebounce,
		MaxPages: DefaultMaxPages,
		Delta:    2,
		Locale:   language.English,
	}
}

// Session is the live state of one listing: the query, the records loaded
// for the query's filter context and the load state machine.
//
// Every change of filter context bumps a generation counter and cancels the
// work of the previous generation. Results are committed only when their
// generation is still current, so a slow response for an old query can
// never reach the view of a newer one.
type Session[T Listable] struct {
	api      interfaces.DirectoryAPI
	listing  Listing[T]
	opts     SessionOptions
	logger   *logrus.Entry
	onChange func(models.View[T])
	base     context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup

	mu          sync.Mutex
	query       models.Query
	loaded      models.Query
	records     []T
	index       map[string]int
	remoteCount int
	complete    bool
	state       models.LoadState
	err         error
	gen         uint64
	running     bool
	cancel      context.CancelFunc
	pending     *time.Timer
	flipped     map[string]bool
	changed     chan struct{}
	seq         uint64
	stats       models.FetchStats
	closed      bool

	notifyMu  sync.Mutex
	delivered uint64
}

// NewSession creates an idle session. onChange, when non-nil, receives a
// snapshot after every change; snapshots are delivered in order and older
// ones are dropped if a newer one was already delivered. Work started by
// the session stops when ctx is cancelled or Close is called.
func NewSession[T Listable](ctx context.Context, client interfaces.DirectoryAPI, listing Listing[T], opts SessionOptions, onChange func(models.View[T])) *Session[T] {
	if opts.Delta <= 0 {
		opts.Delta = 2
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	base, stop := context.WithCancel(ctx)
	return &Session[T]{
		api:      client,
		listing:  listing,
		opts:     opts,
		logger:   log.Component("session").WithField("listing", listing.Name),
		onChange: onChange,
		base:     base,
		stop:     stop,
		query:    models.NewQuery(),
		loaded:   models.Query{Page: -1},
		index:    make(map[string]int),
		state:    models.StateIdle,
		flipped:  make(map[string]bool),
		changed:  make(chan struct{}),
	}
}

// Start loads q immediately.
func (s *Session[T]) Start(q models.Query) {
	s.apply(q, false)
}

// Query returns the current query.
func (s *Session[T]) Query() models.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetSearch updates the search text. The fetch waits for the debounce
// interval; typing again within it restarts the wait.
func (s *Session[T]) SetSearch(text string) {
	s.update(func(q models.Query) models.Query { return q.WithSearch(text) }, true)
}

// SetCategory filters by category, clearing letter and elite filters.
func (s *Session[T]) SetCategory(name string) {
	s.update(func(q models.Query) models.Query { return q.WithCategory(name) }, false)
}

// SetLetter filters by first letter, clearing category and elite filters.
func (s *Session[T]) SetLetter(letter string) {
	s.update(func(q models.Query) models.Query { return q.WithLetter(letter) }, false)
}

// SetElite turns the elite filter on or off.
func (s *Session[T]) SetElite(on bool) {
	s.update(func(q models.Query) models.Query { return q.WithElite(on) }, false)
}

// ShowAll drops category, letter and elite filters.
func (s *Session[T]) ShowAll() {
	s.update(func(q models.Query) models.Query { return q.WithAll() }, false)
}

// SetSort sets the sort direction.
func (s *Session[T]) SetSort(order models.SortOrder) {
	s.update(func(q models.Query) models.Query { return q.WithSort(order) }, false)
}

// ToggleSort flips the sort direction.
func (s *Session[T]) ToggleSort() {
	s.update(func(q models.Query) models.Query { return q.WithSort(q.Sort.Toggle()) }, false)
}

// Clear resets filters, search and page, keeping the sort direction.
func (s *Session[T]) Clear() {
	s.update(func(q models.Query) models.Query { return q.Cleared() }, false)
}

// SetPage moves to page n. The page is clamped when the view is built.
func (s *Session[T]) SetPage(n int) {
	s.mu.Lock()
	s.query = s.query.WithPage(n)
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

// NextPage moves forward one page.
func (s *Session[T]) NextPage() {
	s.SetPage(s.Query().Page + 1)
}

// PrevPage moves back one page.
func (s *Session[T]) PrevPage() {
	s.SetPage(s.Query().Page - 1)
}

// Flip toggles the flipped presentation of the record with key id.
func (s *Session[T]) Flip(id string) {
	s.mu.Lock()
	if s.flipped[id] {
		delete(s.flipped, id)
	} else {
		s.flipped[id] = true
	}
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

// Retry reloads the current filter context from the first page.
func (s *Session[T]) Retry() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resetLocked(s.query)
	s.startLocked(s.gen)
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

// View returns the current page to render.
func (s *Session[T]) View() models.View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, _ := s.snapshotLocked()
	return view
}

// Stats returns the session's counters combined with the client's.
func (s *Session[T]) Stats() models.FetchStats {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	stats.Add(s.api.Stats())
	return stats
}

// Wait blocks until no fetch is pending or running.
func (s *Session[T]) Wait(ctx context.Context) error {
	return s.waitFor(ctx, func() bool {
		return !s.running && s.pending == nil
	})
}

// WaitFirstPage blocks until the first page of the current filter context
// has been shown or loading stopped.
func (s *Session[T]) WaitFirstPage(ctx context.Context) error {
	return s.waitFor(ctx, func() bool {
		if s.pending != nil {
			return false
		}
		return !s.running || (s.state != models.StateIdle && s.state != models.StateFirstPageLoading)
	})
}

// Close cancels outstanding work and waits for it to stop.
func (s *Session[T]) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.gen++
		if s.pending != nil {
			s.pending.Stop()
			s.pending = nil
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.running = false
		s.signalLocked()
	}
	s.mu.Unlock()
	s.stop()
	s.wg.Wait()
}

func (s *Session[T]) waitFor(ctx context.Context, done func() bool) error {
	for {
		s.mu.Lock()
		if done() || s.closed {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (s *Session[T]) update(fn func(models.Query) models.Query, debounce bool) {
	s.mu.Lock()
	next := fn(s.query)
	s.mu.Unlock()
	s.apply(next, debounce)
}

// apply installs q. A new filter context discards loaded records and starts
// loading, after the debounce interval when requested. The same context
// only re-renders.
func (s *Session[T]) apply(q models.Query, debounce bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if q.Context() == s.loaded {
		s.query = q
		view, seq := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(view, seq)
		return
	}

	s.resetLocked(q)
	gen := s.gen
	if debounce && s.opts.Debounce > 0 {
		s.pending = time.AfterFunc(s.opts.Debounce, func() { s.fire(gen) })
	} else {
		s.startLocked(gen)
	}
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

func (s *Session[T]) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.startLocked(gen)
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

// resetLocked begins a new generation for q, cancelling the previous one.
func (s *Session[T]) resetLocked(q models.Query) {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.running {
		s.logger.WithField("generation", s.gen-1).Debug("superseded in-flight load")
	}
	s.running = false
	s.query = q
	s.loaded = q.Context()
	s.records = nil
	s.index = make(map[string]int)
	s.remoteCount = 0
	s.complete = false
	s.err = nil
	s.state = models.StateIdle
}

func (s *Session[T]) startLocked(gen uint64) {
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.running = true
	s.state = models.StateFirstPageLoading
	s.wg.Add(1)
	go s.load(ctx, gen, s.loaded)
}

func (s *Session[T]) load(ctx context.Context, gen uint64, q models.Query) {
	defer s.wg.Done()

	logger := s.logger.WithFields(logrus.Fields{"generation": gen, "mode": q.Mode(), "search": q.Search})
	params := BuildParams(q, 1, s.listing.PageSize, s.listing.Filters)
	raw, err := s.api.FetchPage(ctx, s.listing.Name, s.listing.Path, params)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.finishLocked(err, logger)
		view, seq := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(view, seq)
		return
	}

	s.mergeLocked(raw, 1, q)
	if raw.HasCount {
		s.remoteCount = raw.Count
	}
	fill := raw.HasNext() && len(raw.Results) > 0 && !s.opts.NoFill
	if !raw.HasNext() || len(raw.Results) == 0 {
		s.complete = true
		s.state = models.StateComplete
		s.running = false
	} else if fill {
		s.state = models.StateBackgroundFilling
	} else {
		s.state = models.StateFirstPageReady
		s.running = false
	}
	logger.WithFields(logrus.Fields{"count": len(raw.Results), "remote_count": s.remoteCount}).Info("📄 First page loaded")
	view, seq := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)

	if !fill {
		return
	}

	completer := &Completer{API: s.api, MaxPages: s.opts.MaxPages, Logger: logger}
	result, err := completer.Fill(ctx, s.listing.Name+":fill", s.listing.Path, params, 1, func(page int, raw *models.RawPage) bool {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return false
		}
		s.mergeLocked(raw, page, q)
		s.stats.PagesFilled++
		view, seq := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(view, seq)
		return true
	})

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.finishLocked(err, logger)
	} else {
		s.complete = !result.Ceiling
		s.state = models.StateComplete
		s.running = false
		logger.WithFields(logrus.Fields{"pages": result.Pages + 1, "records": len(s.records)}).Info("✅ Background fill complete")
	}
	view, seq = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(view, seq)
}

// finishLocked records a failed or aborted load of the current generation.
// Records merged so far are kept.
func (s *Session[T]) finishLocked(err error, logger *logrus.Entry) {
	s.running = false
	if api.IsCancelled(err) || s.base.Err() != nil {
		s.state = models.StateAborted
		logger.Debug("load aborted")
		return
	}
	s.state = models.StateFailed
	s.err = err
	logger.WithError(err).Error("❌ Load failed")
}

func (s *Session[T]) mergeLocked(raw *models.RawPage, page int, q models.Query) {
	nc := NormalizeContext{
		Origin:      s.api.BaseURL(),
		Placeholder: s.listing.Placeholder,
		Elite:       s.listing.Filters && q.Mode() == models.FilterElite,
	}
	offset := (page - 1) * s.listing.PageSize
	for i, rec := range raw.Results {
		item := s.listing.Normalize(rec, offset+i, nc)
		key := item.Key()
		if idx, ok := s.index[key]; ok {
			s.records[idx] = item
			continue
		}
		s.index[key] = len(s.records)
		s.records = append(s.records, item)
		s.stats.RecordsLoaded++
	}
}

// snapshotLocked builds the view and bumps the change sequence. Waiters
// are woken.
func (s *Session[T]) snapshotLocked() (models.View[T], uint64) {
	page := Reduce(s.records, s.query, ReduceOptions{
		PageSize:    s.listing.PageSize,
		Delta:       s.opts.Delta,
		Locale:      s.opts.Locale,
		RemoteCount: s.remoteCount,
		Complete:    s.complete || s.opts.NoFill,
	})
	if s.state != models.StateIdle && s.state != models.StateFirstPageLoading {
		s.query.Page = page.Page
	}

	flipped := make([]string, 0, len(s.flipped))
	for id := range s.flipped {
		flipped = append(flipped, id)
	}
	sort.Strings(flipped)

	view := models.View[T]{
		Items:      page.Items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
		Loaded:     len(s.records),
		Markers:    page.Markers,
		Query:      s.query,
		State:      s.state,
		Flipped:    flipped,
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	s.signalLocked()
	s.seq++
	return view, s.seq
}

func (s *Session[T]) signalLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session[T]) notify(view models.View[T], seq uint64) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq
	s.onChange(view)
}

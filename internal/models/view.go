package models

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadState is the lifecycle of one filter context's data.
type LoadState string

const (
	StateIdle              LoadState = "idle"
	StateFirstPageLoading  LoadState = "first_page_loading"
	StateFirstPageReady    LoadState = "first_page_ready"
	StateBackgroundFilling LoadState = "background_filling"
	StateComplete          LoadState = "complete"
	StateAborted           LoadState = "aborted"
	StateFailed            LoadState = "failed"
)

// Settled reports whether no more data will arrive for the context.
func (s LoadState) Settled() bool {
	return s == StateComplete || s == StateAborted || s == StateFailed
}

// PageMarker is one slot of a pagination control: a page number or an
// ellipsis standing for a run of skipped pages.
type PageMarker struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (m PageMarker) String() string {
	if m.Ellipsis {
		return "..."
	}
	return strconv.Itoa(m.Page)
}

// FormatMarkers renders markers as "[1 2 ... 9]", highlighting the current page.
func FormatMarkers(markers []PageMarker, current int) string {
	parts := make([]string, 0, len(markers))
	for _, m := range markers {
		if !m.Ellipsis && m.Page == current {
			parts = append(parts, fmt.Sprintf("(%d)", m.Page))
			continue
		}
		parts = append(parts, m.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// View is the slice of a listing to render plus the state around it.
type View[T any] struct {
	Items      []T          `json:"items"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	TotalItems int          `json:"total_items"`
	Loaded     int          `json:"loaded"`
	Markers    []PageMarker `json:"markers"`
	Query      Query        `json:"query"`
	State      LoadState    `json:"state"`
	Error      string       `json:"error,omitempty"`
	Flipped    []string     `json:"flipped,omitempty"`
}

// Empty reports whether the page has nothing to show.
func (v View[T]) Empty() bool {
	return len(v.Items) == 0
}

// FetchStats counts what a session did over its lifetime.
type FetchStats struct {
	CacheHits      int `json:"cache_hits"`
	NetworkFetches int `json:"network_fetches"`
	Cancelled      int `json:"cancelled"`
	Failures       int `json:"failures"`
	PagesFilled    int `json:"pages_filled"`
	RecordsLoaded  int `json:"records_loaded"`
}

// Add merges another set of counters into s.
func (s *FetchStats) Add(o FetchStats) {
	s.CacheHits += o.CacheHits
	s.NetworkFetches += o.NetworkFetches
	s.Cancelled += o.Cancelled
	s.Failures += o.Failures
	s.PagesFilled += o.PagesFilled
	s.RecordsLoaded += o.RecordsLoaded
}

func (s FetchStats) String() string {
	return fmt.Sprintf(
		"fetch stats: cache hits: %d, network: %d, cancelled: %d, failures: %d, background pages: %d, records: %d",
		s.CacheHits, s.NetworkFetches, s.Cancelled, s.Failures, s.PagesFilled, s.RecordsLoaded,
	)
}

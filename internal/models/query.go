package models

import (
	"fmt"
	"strings"
)

// SortOrder is the direction of the name ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle returns the opposite direction.
func (s SortOrder) Toggle() SortOrder {
	if s == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// ParseSortOrder accepts asc/desc in any case; empty means asc.
func ParseSortOrder(value string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "asc", "a-z":
		return SortAsc, nil
	case "desc", "z-a":
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q (want asc or desc)", value)
}

// FilterMode identifies which of the mutually exclusive filters is active.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterCategory FilterMode = "category"
	FilterLetter   FilterMode = "letter"
	FilterElite    FilterMode = "elite"
)

// Query is the directory view state driven by user input. At most one of
// Category, Letter and Elite is set; the With* mutators keep it that way and
// reset Page to 1 whenever a filter changes.
type Query struct {
	Search   string    `json:"search,omitempty"`
	Category string    `json:"category,omitempty"`
	Letter   string    `json:"letter,omitempty"`
	Sort     SortOrder `json:"sort"`
	Elite    bool      `json:"elite,omitempty"`
	Page     int       `json:"page"`
}

// NewQuery returns the initial "all members, A-Z, page 1" state.
func NewQuery() Query {
	return Query{Sort: SortAsc, Page: 1}
}

// Mode returns the active filter mode. Elite wins if several are set.
func (q Query) Mode() FilterMode {
	switch {
	case q.Elite:
		return FilterElite
	case q.Category != "":
		return FilterCategory
	case q.Letter != "":
		return FilterLetter
	}
	return FilterAll
}

// Context identifies the result set a query selects, ignoring the page.
// Two queries with the same context share loaded records. Surrounding
// whitespace in the search text does not change the context.
func (q Query) Context() Query {
	q.Page = 0
	q.Search = strings.TrimSpace(q.Search)
	if q.Sort == "" {
		q.Sort = SortAsc
	}
	return q
}

// WithCategory selects a category and clears the other filters.
func (q Query) WithCategory(name string) Query {
	q.Category = strings.TrimSpace(name)
	q.Letter = ""
	q.Elite = false
	q.Page = 1
	return q
}

// WithLetter selects a starting letter and clears the other filters.
func (q Query) WithLetter(letter string) Query {
	q.Letter = strings.ToUpper(strings.TrimSpace(letter))
	q.Category = ""
	q.Elite = false
	q.Page = 1
	return q
}

// WithElite toggles elite mode; enabling it clears category and letter.
func (q Query) WithElite(on bool) Query {
	q.Elite = on
	if on {
		q.Category = ""
		q.Letter = ""
	}
	q.Page = 1
	return q
}

// WithAll clears category, letter and elite filters but keeps the search.
func (q Query) WithAll() Query {
	q.Category = ""
	q.Letter = ""
	q.Elite = false
	q.Page = 1
	return q
}

// WithSearch sets the search text.
func (q Query) WithSearch(text string) Query {
	q.Search = text
	q.Page = 1
	return q
}

// WithSort sets the sort direction.
func (q Query) WithSort(order SortOrder) Query {
	q.Sort = order
	q.Page = 1
	return q
}

// WithPage moves to a page without touching filters.
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// Cleared resets every filter, the search and the page.
func (q Query) Cleared() Query {
	return Query{Sort: q.Sort, Page: 1}
}

package directory

import (
	"sort"
	"strings"

	"github.com/expatpedia/directory/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Listable is a record a listing can filter, search, sort and paginate.
type Listable interface {
	Key() string
	SortName() string
	SearchText() []string
	CategoryName() string
	Elite() bool
}

// ReduceOptions tunes Reduce beyond the query itself.
type ReduceOptions struct {
	PageSize int
	// Delta is the number of pages shown on each side of the current one.
	Delta int
	// Locale selects the collation used for sorting.
	Locale language.Tag
	// RemoteCount is the backend's total for the filter context, or 0.
	RemoteCount int
	// Complete is set once every page of the context has been loaded.
	Complete bool
}

// Page is the reduced view of a record set.
type Page[T Listable] struct {
	Items      []T
	Page       int
	TotalPages int
	TotalItems int
	Markers    []models.PageMarker
}

// Reduce filters, searches, sorts and paginates items for q. The input
// slice is not modified. The page is clamped to [1, TotalPages].
//
// Until the set is complete the page count also honours RemoteCount so
// the pagination control does not shrink while pages are still arriving.
func Reduce[T Listable](items []T, q models.Query, opts ReduceOptions) Page[T] {
	size := opts.PageSize
	if size <= 0 {
		size = 1
	}

	filtered := Filter(items, q)
	SortItems(filtered, q.Sort, opts.Locale)

	total := pageCount(len(filtered), size)
	if !opts.Complete {
		if remote := pageCount(opts.RemoteCount, size); remote > total {
			total = remote
		}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * size
	end := start + size
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	totalItems := len(filtered)
	if !opts.Complete && opts.RemoteCount > totalItems {
		totalItems = opts.RemoteCount
	}

	return Page[T]{
		Items:      filtered[start:end],
		Page:       page,
		TotalPages: total,
		TotalItems: totalItems,
		Markers:    PaginationRange(page, total, opts.Delta),
	}
}

// Filter applies the active filter mode and the search text.
func Filter[T Listable](items []T, q models.Query) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	mode := q.Mode()
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesMode(item, q, mode) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesMode[T Listable](item T, q models.Query, mode models.FilterMode) bool {
	switch mode {
	case models.FilterElite:
		return item.Elite()
	case models.FilterCategory:
		return strings.EqualFold(strings.TrimSpace(item.CategoryName()), q.Category)
	case models.FilterLetter:
		name := strings.TrimSpace(item.SortName())
		return len(name) > 0 && strings.HasPrefix(strings.ToUpper(name), q.Letter)
	}
	return true
}

func matchesSearch[T Listable](item T, search string) bool {
	for _, field := range item.SearchText() {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// SortItems orders items by name using locale collation. Ties are broken
// by key so both directions are exact reverses of each other.
func SortItems[T Listable](items []T, order models.SortOrder, locale language.Tag) {
	col := collate.New(locale)
	less := func(a, b T) bool {
		if c := col.CompareString(a.SortName(), b.SortName()); c != 0 {
			return c < 0
		}
		return a.Key() < b.Key()
	}
	sort.SliceStable(items, func(i, j int) bool {
		if order == models.SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// PaginationRange returns the markers for a pagination control: the first
// and last pages, a window of delta pages around the current one, and an
// ellipsis for every gap of more than one page. A gap of exactly one page
// shows that page instead.
func PaginationRange(page, total, delta int) []models.PageMarker {
	if total < 1 {
		return nil
	}
	if delta < 1 {
		delta = 1
	}

	var markers []models.PageMarker
	last := 0
	for i := 1; i <= total; i++ {
		if i != 1 && i != total && (i < page-delta || i > page+delta) {
			continue
		}
		if last > 0 {
			switch i - last {
			case 1:
			case 2:
				markers = append(markers, models.PageMarker{Page: last + 1})
			default:
				markers = append(markers, models.PageMarker{Ellipsis: true})
			}
		}
		markers = append(markers, models.PageMarker{Page: i})
		last = i
	}
	return markers
}

func pageCount(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

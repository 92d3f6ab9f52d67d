// Package directory turns backend listings into paginated, filtered views.
//
// A listing flows through four stages: query parameters are built from the
// view state, pages are fetched through the cached client, raw records are
// normalized into canonical types, and the loaded set is reduced into the
// page to render. A Session ties the stages together for one listing and
// keeps stale responses out of newer views.
package directory

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/expatpedia/directory/internal/models"
)

// Sort parameter values understood by the backend.
const (
	sortNameAsc  = "name_asc"
	sortNameDesc = "name_desc"
)

// BuildParams returns the request parameters for one page of q. Only the
// active filter's parameter is included; empty values are dropped. When
// filters is false the listing has no server-side filtering and only the
// paging parameters are sent.
func BuildParams(q models.Query, page, pageSize int, filters bool) url.Values {
	params := url.Values{}
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	if !filters {
		return params
	}

	setIf(params, "search", strings.TrimSpace(q.Search))
	switch q.Mode() {
	case models.FilterElite:
		params.Set("elite", "true")
	case models.FilterCategory:
		setIf(params, "category", q.Category)
	case models.FilterLetter:
		setIf(params, "starts_with", q.Letter)
	}
	if q.Sort == models.SortDesc {
		params.Set("sort", sortNameDesc)
	} else {
		params.Set("sort", sortNameAsc)
	}
	return params
}

// BuildURL joins base, path and params. Parameters are encoded in key order.
func BuildURL(base, path string, params url.Values) string {
	u := strings.TrimRight(base, "/") + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

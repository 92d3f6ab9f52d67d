package directory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/expatpedia/directory/internal/interfaces"
	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultMaxPages caps how many pages a background fill may request.
const DefaultMaxPages = 50

// FillResult says how a background fill ended.
type FillResult struct {
	// Pages is the number of pages fetched, not counting the first.
	Pages int
	// Ceiling is set when the page cap stopped the fill before the backend
	// ran out of pages.
	Ceiling bool
	// Superseded is set when merge rejected a page.
	Superseded bool
}

// Completer fetches the remaining pages of a filter context after the first
// page has been shown.
type Completer struct {
	API      interfaces.DirectoryAPI
	MaxPages int
	Logger   *logrus.Entry
}

// MergeFunc receives one fetched page. It returns false when the filter
// context it belongs to is no longer current; filling then stops.
type MergeFunc func(page int, raw *models.RawPage) bool

// Fill requests pages from+1 onward for params until the backend reports no
// next page, the cap is reached, merge rejects a page, or a request fails.
// Pages merged before a failure stay merged.
func (c *Completer) Fill(ctx context.Context, resource, path string, params url.Values, from int, merge MergeFunc) (FillResult, error) {
	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var result FillResult
	for page := from + 1; ; page++ {
		if page > maxPages {
			result.Ceiling = true
			if c.Logger != nil {
				c.Logger.WithField("max_pages", maxPages).Warn("⚠ Page ceiling reached, background fill stopped")
			}
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageParams := cloneValues(params)
		pageParams.Set("page", strconv.Itoa(page))
		raw, err := c.API.FetchPage(ctx, resource, path, pageParams)
		if err != nil {
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}
		result.Pages++
		if !merge(page, raw) {
			result.Superseded = true
			return result, nil
		}
		if !raw.HasNext() || len(raw.Results) == 0 {
			return result, nil
		}
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

package directory

import (
	"testing"

	"github.com/expatpedia/directory/internal/models"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func normalizedMembers(n int) []models.Member {
	raw := memberRecords(n)
	out := make([]models.Member, 0, n)
	for i, rec := range raw {
		out = append(out, NormalizeMember(rec, i, NormalizeContext{Origin: "https://backend.test"}))
	}
	return out
}

func names(items []models.Member) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.Name)
	}
	return out
}

func markers(pages ...int) []models.PageMarker {
	out := make([]models.PageMarker, 0, len(pages))
	for _, p := range pages {
		if p == 0 {
			out = append(out, models.PageMarker{Ellipsis: true})
			continue
		}
		out = append(out, models.PageMarker{Page: p})
	}
	return out
}

func TestReduceTwentyRecordsFirstPage(t *testing.T) {
	page := Reduce(normalizedMembers(20), models.NewQuery(), ReduceOptions{PageSize: 8, Delta: 2, Locale: language.English, Complete: true})

	if len(page.Items) != 8 || page.Page != 1 || page.TotalPages != 3 || page.TotalItems != 20 {
		t.Fatalf("unexpected page: %d items, page %d of %d, total %d", len(page.Items), page.Page, page.TotalPages, page.TotalItems)
	}
	if diff := cmp.Diff(markers(1, 2, 3), page.Markers); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}
	if page.Items[0].Name != "Aaron" {
		t.Fatalf("expected Aaron first, got %s", page.Items[0].Name)
	}
}

func TestReducePagesCoverFilteredSetExactlyOnce(t *testing.T) {
	items := normalizedMembers(20)
	queries := []models.Query{
		models.NewQuery(),
		models.NewQuery().WithSort(models.SortDesc),
		models.NewQuery().WithCategory("technology"),
		models.NewQuery().WithLetter("a"),
		models.NewQuery().WithElite(true),
		models.NewQuery().WithSearch("A"),
		models.NewQuery().WithCategory("Health").WithSearch("health"),
	}

	for _, q := range queries {
		opts := ReduceOptions{PageSize: 8, Delta: 2, Locale: language.English, Complete: true}
		first := Reduce(items, q, opts)
		want := Filter(items, q)
		SortItems(want, q.Sort, language.English)

		var got []models.Member
		for p := 1; p <= first.TotalPages; p++ {
			page := Reduce(items, q.WithPage(p), opts)
			if len(page.Items) > opts.PageSize {
				t.Fatalf("query %+v page %d: %d items exceeds page size", q, p, len(page.Items))
			}
			got = append(got, page.Items...)
		}
		if diff := cmp.Diff(names(want), names(got)); diff != "" {
			t.Fatalf("query %+v: concatenated pages differ (-want +got):\n%s", q, diff)
		}
		seen := map[string]bool{}
		for _, m := range got {
			if seen[m.ID] {
				t.Fatalf("query %+v: duplicate record %s", q, m.ID)
			}
			seen[m.ID] = true
		}
	}
}

func TestSortDirectionsAreExactReverses(t *testing.T) {
	asc := normalizedMembers(20)
	SortItems(asc, models.SortAsc, language.English)
	again := append([]models.Member(nil), asc...)
	SortItems(again, models.SortAsc, language.English)
	if diff := cmp.Diff(names(asc), names(again)); diff != "" {
		t.Fatalf("sorting is not idempotent:\n%s", diff)
	}

	desc := normalizedMembers(20)
	SortItems(desc, models.SortDesc, language.English)
	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("position %d: %s vs %s", i, asc[i].Name, desc[len(desc)-1-i].Name)
		}
	}
}

func TestSortIsLocaleAware(t *testing.T) {
	items := []models.Member{{ID: "1", Name: "Zoe"}, {ID: "2", Name: "Élodie"}, {ID: "3", Name: "eric"}}
	SortItems(items, models.SortAsc, language.French)
	if diff := cmp.Diff([]string{"Élodie", "eric", "Zoe"}, names(items)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReduceClampsPage(t *testing.T) {
	items := normalizedMembers(20)
	q := models.NewQuery().WithPage(3)
	page := Reduce(items, q, ReduceOptions{PageSize: 8, Complete: true})
	if page.Page != 3 || len(page.Items) != 4 {
		t.Fatalf("expected last page with 4 items, got page %d with %d", page.Page, len(page.Items))
	}

	// Filtering to 10 Technology records leaves two pages.
	q.Category = "Technology"
	page = Reduce(items, q, ReduceOptions{PageSize: 8, Complete: true})
	if page.Page != 2 || page.TotalPages != 2 {
		t.Fatalf("expected clamp to page 2 of 2, got %d of %d", page.Page, page.TotalPages)
	}

	empty := Reduce([]models.Member{}, q, ReduceOptions{PageSize: 8, Complete: true})
	if empty.Page != 1 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestReduceUsesRemoteCountUntilComplete(t *testing.T) {
	items := normalizedMembers(8)
	page := Reduce(items, models.NewQuery(), ReduceOptions{PageSize: 8, RemoteCount: 20})
	if page.TotalPages != 3 || page.TotalItems != 20 {
		t.Fatalf("expected remote totals while filling, got %d pages / %d items", page.TotalPages, page.TotalItems)
	}
	page = Reduce(items, models.NewQuery(), ReduceOptions{PageSize: 8, RemoteCount: 20, Complete: true})
	if page.TotalPages != 1 || page.TotalItems != 8 {
		t.Fatalf("expected loaded totals once complete, got %d pages / %d items", page.TotalPages, page.TotalItems)
	}
}

func TestPaginationRange(t *testing.T) {
	tests := []struct {
		name               string
		page, total, delta int
		want               []models.PageMarker
	}{
		{name: "none", page: 1, total: 0, delta: 2, want: nil},
		{name: "single", page: 1, total: 1, delta: 2, want: markers(1)},
		{name: "three", page: 1, total: 3, delta: 2, want: markers(1, 2, 3)},
		{name: "start", page: 1, total: 10, delta: 2, want: markers(1, 2, 3, 0, 10)},
		{name: "one page gap shown", page: 5, total: 10, delta: 2, want: markers(1, 2, 3, 4, 5, 6, 7, 0, 10)},
		{name: "middle", page: 6, total: 12, delta: 1, want: markers(1, 0, 5, 6, 7, 0, 12)},
		{name: "end", page: 10, total: 10, delta: 2, want: markers(1, 0, 8, 9, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaginationRange(tt.page, tt.total, tt.delta)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("markers mismatch (-want +got):\n%s", diff)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Ellipsis && got[i-1].Ellipsis {
					t.Fatalf("consecutive ellipsis markers in %v", got)
				}
			}
		})
	}
}

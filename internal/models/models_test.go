package models

import "testing"

func TestContactAffordances(t *testing.T) {
	cases := []struct {
		name      string
		member    Member
		wantEmail bool
		wantPhone bool
	}{
		{"valid contact", Member{Email: "jane@example.com", Phone: "+973 1234 5678"}, true, true},
		{"not an email", Member{Email: "not-an-email"}, false, false},
		{"missing tld", Member{Email: "jane@example"}, false, false},
		{"short phone", Member{Phone: "12"}, false, false},
		{"seven digits with punctuation", Member{Phone: "(12) 345-67"}, false, true},
		{"blank", Member{}, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.member.HasEmail(); got != tc.wantEmail {
				t.Fatalf("expected HasEmail %v, got %v", tc.wantEmail, got)
			}
			if got := tc.member.HasPhone(); got != tc.wantPhone {
				t.Fatalf("expected HasPhone %v, got %v", tc.wantPhone, got)
			}
		})
	}
}

func TestQueryFiltersAreMutuallyExclusive(t *testing.T) {
	q := NewQuery().WithPage(3).WithCategory("Technology")
	if q.Page != 1 || q.Mode() != FilterCategory {
		t.Fatalf("expected category mode on page 1, got %#v", q)
	}

	q = q.WithPage(2).WithLetter("a")
	if q.Category != "" {
		t.Fatalf("expected category cleared, got %q", q.Category)
	}
	if q.Letter != "A" || q.Page != 1 || q.Mode() != FilterLetter {
		t.Fatalf("expected letter A on page 1, got %#v", q)
	}

	q = q.WithElite(true)
	if q.Letter != "" || q.Mode() != FilterElite {
		t.Fatalf("expected elite mode with letter cleared, got %#v", q)
	}

	q = q.WithSearch("ab").WithAll()
	if q.Mode() != FilterAll || q.Search != "ab" {
		t.Fatalf("expected all mode keeping search, got %#v", q)
	}

	q = q.Cleared()
	if q.Search != "" || q.Page != 1 {
		t.Fatalf("expected cleared query, got %#v", q)
	}
}

func TestQueryContextIgnoresSearchWhitespace(t *testing.T) {
	a := NewQuery().WithSearch("ab")
	b := a.WithSearch("ab ").WithPage(3)
	if a.Context() != b.Context() {
		t.Fatalf("expected same context, got %#v and %#v", a.Context(), b.Context())
	}
	if b.Search != "ab " {
		t.Fatalf("expected typed text kept on the query, got %q", b.Search)
	}
	if a.Context() == a.WithSearch("abc").Context() {
		t.Fatalf("expected different search text to change the context")
	}
}

func TestLambdaEventQuery(t *testing.T) {
	event := &LambdaEvent{Category: "Finance", Letter: "B", Page: 2, Sort: "DESC"}
	q, err := event.Query()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if q.Category != "Finance" || q.Letter != "" {
		t.Fatalf("expected category to win over letter, got %#v", q)
	}
	if q.Page != 2 || q.Sort != SortDesc {
		t.Fatalf("unexpected page/sort: %#v", q)
	}

	if _, err := (&LambdaEvent{Sort: "sideways"}).Query(); err == nil {
		t.Fatalf("expected invalid sort to fail")
	}
}

func TestFormatMarkers(t *testing.T) {
	markers := []PageMarker{{Page: 1}, {Ellipsis: true}, {Page: 4}, {Page: 5}}
	if got := FormatMarkers(markers, 4); got != "[1 ... (4) 5]" {
		t.Fatalf("unexpected markers rendering: %s", got)
	}
}

package models

// RawRecord is one backend record before normalization. Numbers are kept as
// json.Number so large ids survive decoding.
type RawRecord map[string]any

// RawPage is a decoded list response. Backends answer either
// {results, count, next} or a bare array; both end up here.
type RawPage struct {
	Results  []RawRecord
	Count    int
	HasCount bool
	Next     string
}

// HasNext reports whether the backend advertised another page.
func (p *RawPage) HasNext() bool {
	return p != nil && p.Next != ""
}

package models

import (
	"regexp"
	"strings"
)

const minPhoneDigits = 7

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]+$`)

// Member is the canonical directory record produced by normalization.
type Member struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Position           string `json:"position,omitempty"`
	OccupationCategory string `json:"occupation_category,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	ImageURL           string `json:"image_url"`
	IsElite            bool   `json:"is_elite"`

	// SyntheticID is set when the backend record had no id and one was
	// derived from its position in the page. Such ids move when the
	// result set is re-sorted.
	SyntheticID bool `json:"-"`
}

// HasEmail reports whether an email contact affordance should be shown.
func (m Member) HasEmail() bool {
	return ValidEmail(m.Email)
}

// HasPhone reports whether a phone contact affordance should be shown.
func (m Member) HasPhone() bool {
	return ValidPhone(m.Phone)
}

// Key returns the record's map key.
func (m Member) Key() string { return m.ID }

// SortName returns the string the listing is ordered by.
func (m Member) SortName() string { return m.Name }

// SearchText returns the fields matched by free-text search.
func (m Member) SearchText() []string { return []string{m.Name, m.OccupationCategory, m.Position} }

// CategoryName returns the occupation category label.
func (m Member) CategoryName() string { return m.OccupationCategory }

// Elite reports the derived elite flag.
func (m Member) Elite() bool { return m.IsElite }

// ValidEmail checks for a plausible local@domain.tld address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidPhone checks that at least seven digits remain once everything
// else is stripped.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

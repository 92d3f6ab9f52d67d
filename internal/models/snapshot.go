package models

import (
	"strings"
	"time"
)

// CategorySnapshot is the persisted copy of a backend's category list.
type CategorySnapshot struct {
	PK         string           `dynamodbav:"pk"`
	SK         string           `dynamodbav:"sk"`
	Backend    string           `dynamodbav:"backend"`
	Categories []StoredCategory `dynamodbav:"categories"`
	FetchedAt  time.Time        `dynamodbav:"fetched_at"`
	TTL        int64            `dynamodbav:"ttl"`
}

// StoredCategory is a Category as written to the snapshot table.
type StoredCategory struct {
	ID   string `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

// CategorySnapshotPK is the partition key shared by all category snapshots.
const CategorySnapshotPK = "CATEGORIES"

// CategorySnapshotSK returns the sort key for a backend origin.
func CategorySnapshotSK(backend string) string {
	return "BACKEND#" + strings.TrimRight(backend, "/")
}

// NewCategorySnapshot creates a snapshot with key attributes and expiry set.
func NewCategorySnapshot(backend string, categories []Category, ttlDays int) CategorySnapshot {
	now := time.Now().UTC()
	stored := make([]StoredCategory, 0, len(categories))
	for _, c := range categories {
		stored = append(stored, StoredCategory{ID: c.ID, Name: c.Name})
	}
	return CategorySnapshot{
		PK:         CategorySnapshotPK,
		SK:         CategorySnapshotSK(backend),
		Backend:    strings.TrimRight(backend, "/"),
		Categories: stored,
		FetchedAt:  now,
		TTL:        now.AddDate(0, 0, ttlDays).Unix(),
	}
}

// CategoryList converts the stored entries back to categories.
func (s CategorySnapshot) CategoryList() []Category {
	out := make([]Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, Category{ID: c.ID, Name: c.Name})
	}
	return out
}

// Fresh reports whether the snapshot is younger than maxAge at now.
func (s CategorySnapshot) Fresh(now time.Time, maxAge time.Duration) bool {
	if now.Unix() >= s.TTL {
		return false
	}
	return now.Sub(s.FetchedAt) < maxAge
}

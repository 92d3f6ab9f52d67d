package interfaces

import (
	"context"
	"net/url"

	"github.com/expatpedia/directory/internal/models"
)

// DirectoryAPI defines the backend operations the directory pipeline needs.
type DirectoryAPI interface {
	// FetchPage GETs a list endpoint. A non-empty resource supersedes any
	// earlier in-flight request made under the same resource.
	FetchPage(ctx context.Context, resource, path string, params url.Values) (*models.RawPage, error)

	// FetchRecord GETs a single-object endpoint.
	FetchRecord(ctx context.Context, path string) (models.RawRecord, error)

	// SubmitContact sends a contact/registration form.
	SubmitContact(ctx context.Context, sub models.ContactSubmission) (*models.ContactReceipt, error)

	// Stats returns counters accumulated by the client.
	Stats() models.FetchStats

	// BaseURL returns the backend origin, used to absolutize media paths.
	BaseURL() string
}

// CategoryStore persists the occupation category list between runs.
type CategoryStore interface {
	// SaveCategories replaces the stored category list.
	SaveCategories(ctx context.Context, categories []models.Category) error

	// LoadCategories returns the stored list, or nil when absent or expired.
	LoadCategories(ctx context.Context) ([]models.Category, error)
}

// MetricsEmitter publishes fetch counters for a finished run.
type MetricsEmitter interface {
	EmitFetchStats(ctx context.Context, listing string, stats models.FetchStats) error
}

package directory

import (
	"github.com/expatpedia/directory/internal/api"
	"github.com/expatpedia/directory/internal/models"
)

// Default page sizes per listing.
const (
	MembersPageSize = 8
	EventsPageSize  = 8
	BlogPageSize    = 4
)

// Listing describes one paginated backend collection. The members, events
// and blog listings differ only in these fields.
type Listing[T Listable] struct {
	// Name identifies the listing in logs and is the request resource used
	// for supersession.
	Name     string
	Path     string
	PageSize int
	// Filters is set when the backend understands the search, filter and
	// sort parameters.
	Filters     bool
	Placeholder string
	Normalize   func(raw models.RawRecord, index int, nc NormalizeContext) T
}

// MembersListing is the member directory.
func MembersListing(pageSize int, placeholder string) Listing[models.Member] {
	if pageSize <= 0 {
		pageSize = MembersPageSize
	}
	if placeholder == "" {
		placeholder = DefaultMemberPlaceholder
	}
	return Listing[models.Member]{
		Name:        api.ResourceMembers,
		Path:        api.MembersPath,
		PageSize:    pageSize,
		Filters:     true,
		Placeholder: placeholder,
		Normalize:   NormalizeMember,
	}
}

// EventsListing is the events list.
func EventsListing(pageSize int, placeholder string) Listing[models.Event] {
	if pageSize <= 0 {
		pageSize = EventsPageSize
	}
	if placeholder == "" {
		placeholder = DefaultMemberPlaceholder
	}
	return Listing[models.Event]{
		Name:        api.ResourceEvents,
		Path:        api.EventsPath,
		PageSize:    pageSize,
		Placeholder: placeholder,
		Normalize:   NormalizeEvent,
	}
}

// BlogListing is the blog post list.
func BlogListing(pageSize int) Listing[models.BlogPost] {
	if pageSize <= 0 {
		pageSize = BlogPageSize
	}
	return Listing[models.BlogPost]{
		Name:        api.ResourceBlog,
		Path:        api.BlogPath,
		PageSize:    pageSize,
		Placeholder: DefaultBlogPlaceholder,
		Normalize:   NormalizeBlogPost,
	}
}

package api

import (
	"net/url"
	"strings"
)

// Backend endpoint paths.
const (
	MembersPath    = "/api/members/"
	CategoriesPath = "/api/job-categories/"
	BlogPath       = "/api/Blog/"
	GalleryPath    = "/api/gallery/"
	EventsPath     = "/api/events/"
)

// Resource names used for request supersession.
const (
	ResourceMembers = "members"
	ResourceEvents  = "events"
	ResourceBlog    = "blog"
)

// BlogPostPath returns the detail path for a blog post id.
func BlogPostPath(id string) string {
	return BlogPath + url.PathEscape(strings.TrimSpace(id)) + "/"
}

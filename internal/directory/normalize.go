package directory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/expatpedia/directory/internal/models"
)

// Placeholder images used when a record has no usable picture.
const (
	DefaultMemberPlaceholder = "https://via.placeholder.com/600x400?text=No+Image"
	DefaultBlogPlaceholder   = "https://images.unsplash.com/photo-1497493292307-31c376b6e479?auto=format&fit=crop&w=1200&q=80"
)

var videoExtensions = []string{".mp4", ".webm", ".mov", ".avi", ".m4v"}

// NormalizeContext carries what normalization needs beyond the record.
type NormalizeContext struct {
	// Origin is the backend origin used to absolutize relative media paths.
	Origin string
	// Placeholder replaces missing images.
	Placeholder string
	// Elite is set when the records were fetched under the elite filter.
	Elite bool
}

// NormalizeMember maps a raw member record onto Member. Missing fields get
// defaults; index is the record's position in the whole result set and
// only matters when the record has no id.
func NormalizeMember(raw models.RawRecord, index int, nc NormalizeContext) models.Member {
	id, synthetic := recordID(raw, index)
	return models.Member{
		ID:                 id,
		Name:               memberName(raw),
		Position:           firstString(raw, "position", "designation", "job_title"),
		OccupationCategory: occupationName(raw),
		Email:              firstString(raw, "email", "user_email", "contact_email"),
		Phone:              firstString(raw, "phone", "contact_number", "phone_number"),
		ImageURL:           ResolveImage(firstString(raw, "profile_image", "image", "photo"), nc.Origin, nc.Placeholder),
		IsElite:            nc.Elite || IsEliteRaw(raw),
		SyntheticID:        synthetic,
	}
}

// IsEliteRaw reports whether any of the redundant elite signals is set on a
// raw member record.
func IsEliteRaw(raw models.RawRecord) bool {
	for _, key := range []string{"elite", "is_elite", "elite_member"} {
		if truthy(raw[key]) {
			return true
		}
	}
	if strings.EqualFold(stringValue(raw["category"]), "elite") {
		return true
	}
	if strings.EqualFold(stringValue(raw["elite_tag"]), "elite") {
		return true
	}
	return strings.Contains(strings.ToLower(occupationName(raw)), "elite")
}

// ResolveImage returns an absolute image URL. Paths not starting with
// "http" are joined onto origin; empty values yield the placeholder.
func ResolveImage(path, origin, placeholder string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "null" {
		return placeholder
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	origin = strings.TrimRight(origin, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return origin + path
}

// NormalizeEvent maps a raw event record onto Event.
func NormalizeEvent(raw models.RawRecord, index int, nc NormalizeContext) models.Event {
	id, _ := recordID(raw, index)
	return models.Event{
		ID:          id,
		Title:       firstString(raw, "title", "name"),
		Date:        firstString(raw, "date", "start_date", "event_date"),
		Location:    firstString(raw, "location", "venue"),
		Description: firstString(raw, "description", "details"),
		ImageURL:    ResolveImage(firstString(raw, "image", "image_url", "banner"), nc.Origin, nc.Placeholder),
	}
}

// NormalizeBlogPost maps a raw blog record onto BlogPost. The excerpt falls
// back to the text of the HTML content. Media that is not an absolute URL
// is replaced by the blog placeholder.
func NormalizeBlogPost(raw models.RawRecord, index int, nc NormalizeContext) models.BlogPost {
	id, _ := recordID(raw, index)
	content := firstString(raw, "content", "body")
	excerpt := firstString(raw, "excerpt", "summary", "desc")
	if excerpt == "" {
		excerpt = Excerpt(content, excerptLength)
	}

	placeholder := nc.Placeholder
	if placeholder == "" {
		placeholder = DefaultBlogPlaceholder
	}
	media := firstString(raw, "media", "image")
	if media == "null" {
		media = ""
	}
	isVideo := false
	if MediaLikelyWorking(media) {
		isVideo = IsVideo(media)
	} else {
		media = placeholder
	}

	return models.BlogPost{
		ID:           id,
		Title:        firstString(raw, "title"),
		Excerpt:      excerpt,
		Content:      content,
		Author:       authorName(raw["author"]),
		Date:         firstString(raw, "date", "published_at", "created_at"),
		Media:        media,
		MediaIsVideo: isVideo,
	}
}

// NormalizeGallery maps a raw gallery record onto GalleryImage.
func NormalizeGallery(raw models.RawRecord, index int, nc NormalizeContext) models.GalleryImage {
	id, _ := recordID(raw, index)
	return models.GalleryImage{
		ID:       id,
		Title:    firstString(raw, "title", "caption", "name"),
		ImageURL: ResolveImage(firstString(raw, "image", "image_url", "photo"), nc.Origin, nc.Placeholder),
	}
}

// NormalizeCategory maps a raw category record onto Category.
func NormalizeCategory(raw models.RawRecord, index int) models.Category {
	id, _ := recordID(raw, index)
	return models.Category{ID: id, Name: firstString(raw, "name", "title")}
}

// IsVideo reports whether a media URL points at a video file.
func IsVideo(media string) bool {
	lower := strings.ToLower(media)
	for _, ext := range videoExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// MediaLikelyWorking reports whether media is an absolute URL.
func MediaLikelyWorking(media string) bool {
	return strings.HasPrefix(media, "http") && strings.Contains(media, "://")
}

// unknownMemberName stands in for a member record without any name field.
const unknownMemberName = "Unknown"

func recordID(raw models.RawRecord, index int) (string, bool) {
	if id := firstString(raw, "id", "pk", "uuid"); id != "" {
		return id, false
	}
	return fmt.Sprintf("row-%d", index), true
}

func memberName(raw models.RawRecord) string {
	if name := firstString(raw, "name", "full_name"); name != "" {
		return name
	}
	if name := strings.TrimSpace(firstString(raw, "first_name") + " " + firstString(raw, "last_name")); name != "" {
		return name
	}
	return unknownMemberName
}

// occupationName reads occupation_category as an object with a name, or as
// a plain string.
func occupationName(raw models.RawRecord) string {
	switch v := raw["occupation_category"].(type) {
	case map[string]any:
		return stringValue(v["name"])
	case string:
		return strings.TrimSpace(v)
	}
	return firstString(raw, "occupation", "job_category")
}

func authorName(v any) string {
	if m, ok := v.(map[string]any); ok {
		if name := stringValue(m["name"]); name != "" {
			return name
		}
		return stringValue(m["username"])
	}
	return stringValue(v)
}

func firstString(raw models.RawRecord, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// truthy matches true, "true", 1 and "1".
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return s == "1" || strings.EqualFold(s, "true")
	case json.Number:
		return t.String() == "1"
	case float64:
		return t == 1
	case int:
		return t == 1
	}
	return false
}

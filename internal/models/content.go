package models

// Category is a job category used by the member directory filter.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlogPost is a news article from the blog endpoint.
type BlogPost struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content,omitempty"`
	Author       string `json:"author,omitempty"`
	Date         string `json:"date,omitempty"`
	Media        string `json:"media"`
	MediaIsVideo bool   `json:"media_is_video"`
}

func (p BlogPost) Key() string          { return p.ID }
func (p BlogPost) SortName() string     { return p.Title }
func (p BlogPost) SearchText() []string { return []string{p.Title, p.Excerpt, p.Author} }
func (p BlogPost) CategoryName() string { return "" }
func (p BlogPost) Elite() bool          { return false }

// Event is an entry in the events listing.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url"`
}

func (e Event) Key() string          { return e.ID }
func (e Event) SortName() string     { return e.Title }
func (e Event) SearchText() []string { return []string{e.Title, e.Location} }
func (e Event) CategoryName() string { return "" }
func (e Event) Elite() bool          { return false }

// GalleryImage is a picture from the gallery endpoint.
type GalleryImage struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url"`
}

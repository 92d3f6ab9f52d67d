package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/expatpedia/directory/internal/api"
	"github.com/expatpedia/directory/internal/config"
	"github.com/expatpedia/directory/internal/interfaces"
	"github.com/expatpedia/directory/internal/log"
	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Directory opens the site's listings against one backend.
type Directory struct {
	api    interfaces.DirectoryAPI
	store  interfaces.CategoryStore
	cfg    config.DirectoryConfig
	logger *logrus.Entry
}

// New creates a Directory. A nil store keeps categories in memory.
func New(client interfaces.DirectoryAPI, store interfaces.CategoryStore, cfg config.DirectoryConfig) *Directory {
	if store == nil {
		store = NewMemoryCategoryStore(0)
	}
	return &Directory{
		api:    client,
		store:  store,
		cfg:    cfg,
		logger: log.Component("directory"),
	}
}

// SessionOptions derives session options from the configuration.
func (d *Directory) SessionOptions() SessionOptions {
	opts := DefaultSessionOptions()
	if d.cfg.Debounce >= 0 {
		opts.Debounce = d.cfg.Debounce
	}
	if d.cfg.MaxPages > 0 {
		opts.MaxPages = d.cfg.MaxPages
	}
	if d.cfg.PaginationDelta > 0 {
		opts.Delta = d.cfg.PaginationDelta
	}
	if tag, err := language.Parse(d.cfg.Locale); err == nil {
		opts.Locale = tag
	}
	return opts
}

// MembersPage is an opened member directory.
type MembersPage struct {
	Session    *Session[models.Member]
	Categories []models.Category
}

// OpenMembers starts a member session for q and loads the category list
// alongside the first page. A category failure is logged and leaves the
// list empty; it does not fail the page.
func (d *Directory) OpenMembers(ctx context.Context, q models.Query, opts SessionOptions, onChange func(models.View[models.Member])) (*MembersPage, error) {
	listing := MembersListing(d.cfg.MembersPageSize, d.cfg.PlaceholderImage)
	session := NewSession(ctx, d.api, listing, opts, onChange)
	page := &MembersPage{Session: session}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := d.Categories(gctx)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			d.logger.WithError(err).Warn("⚠ Failed to load categories")
			return nil
		}
		page.Categories = categories
		return nil
	})
	g.Go(func() error {
		session.Start(q)
		return session.WaitFirstPage(gctx)
	})
	if err := g.Wait(); err != nil {
		session.Close()
		return nil, err
	}
	return page, nil
}

// OpenEvents starts an events session for q.
func (d *Directory) OpenEvents(ctx context.Context, q models.Query, opts SessionOptions, onChange func(models.View[models.Event])) *Session[models.Event] {
	session := NewSession(ctx, d.api, EventsListing(d.cfg.EventsPageSize, d.cfg.PlaceholderImage), opts, onChange)
	session.Start(q)
	return session
}

// OpenBlog starts a blog session for q.
func (d *Directory) OpenBlog(ctx context.Context, q models.Query, opts SessionOptions, onChange func(models.View[models.BlogPost])) *Session[models.BlogPost] {
	session := NewSession(ctx, d.api, BlogListing(d.cfg.BlogPageSize), opts, onChange)
	session.Start(q)
	return session
}

// Categories returns the job categories, from the store when it holds a
// fresh list and from the backend otherwise.
func (d *Directory) Categories(ctx context.Context) ([]models.Category, error) {
	cached, err := d.store.LoadCategories(ctx)
	if err != nil {
		d.logger.WithError(err).Warn("⚠ Category store read failed, fetching from backend")
	} else if cached != nil {
		d.logger.WithField("count", len(cached)).Debug("categories served from store")
		return cached, nil
	}

	raw, err := d.api.FetchPage(ctx, "", api.CategoriesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	categories := make([]models.Category, 0, len(raw.Results))
	for i, rec := range raw.Results {
		c := NormalizeCategory(rec, i)
		if c.Name == "" {
			continue
		}
		categories = append(categories, c)
	}
	if err := d.store.SaveCategories(ctx, categories); err != nil {
		d.logger.WithError(err).Warn("⚠ Failed to persist categories")
	}
	return categories, nil
}

// BlogPost fetches one post by id.
func (d *Directory) BlogPost(ctx context.Context, id string) (models.BlogPost, error) {
	if strings.TrimSpace(id) == "" {
		return models.BlogPost{}, fmt.Errorf("blog post id is required")
	}
	raw, err := d.api.FetchRecord(ctx, api.BlogPostPath(id))
	if err != nil {
		return models.BlogPost{}, fmt.Errorf("fetching blog post %s: %w", id, err)
	}
	return NormalizeBlogPost(raw, 0, NormalizeContext{Origin: d.api.BaseURL(), Placeholder: DefaultBlogPlaceholder}), nil
}

// Gallery fetches every gallery image.
func (d *Directory) Gallery(ctx context.Context) ([]models.GalleryImage, error) {
	raw, err := d.api.FetchPage(ctx, "", api.GalleryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching gallery: %w", err)
	}
	nc := NormalizeContext{Origin: d.api.BaseURL(), Placeholder: d.placeholder()}
	images := make([]models.GalleryImage, 0, len(raw.Results))
	for i, rec := range raw.Results {
		images = append(images, NormalizeGallery(rec, i, nc))
	}
	return images, nil
}

// Contact submits the contact form.
func (d *Directory) Contact(ctx context.Context, sub models.ContactSubmission) (*models.ContactReceipt, error) {
	return d.api.SubmitContact(ctx, sub)
}

func (d *Directory) placeholder() string {
	if d.cfg.PlaceholderImage != "" {
		return d.cfg.PlaceholderImage
	}
	return DefaultMemberPlaceholder
}

// Package blogs provides blog post management: CRUD, pagination, view
// counters, and dashboard analytics.
package blogs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/storage"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 6

const (
	statsMonths  = 6
	statsLatest  = 5
	maxSlugTries = 5
)

// ErrNotFound is returned when no post matches the given id or slug.
var ErrNotFound = errors.New("blog not found")

// Service manages blog posts and their cover images.
type Service struct {
	store  *Store
	images *storage.ImageStore
	logger *slog.Logger
}

// NewService creates a blog service. The image store may be nil when object
// storage is not configured; uploads then fail cleanly.
func NewService(log *slog.Logger, store *Store, images *storage.ImageStore) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		images: images,
		logger: log.With(slog.String("service", "blogs")),
	}
}

// List returns one page of posts, newest first.
func (s *Service) List(ctx context.Context, page int) (ListResult, error) {
	if s.store == nil {
		return ListResult{}, errors.New("blog store not configured")
	}
	if page < 1 {
		page = 1
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return ListResult{}, err
	}
	items, err := s.store.List(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return ListResult{}, err
	}
	pages := int((total + PageSize - 1) / PageSize)
	return ListResult{Total: total, Page: page, Pages: pages, Blogs: items}, nil
}

// Get returns the post by id and bumps its view counter.
func (s *Service) Get(ctx context.Context, id string) (Blog, error) {
	if s.store == nil {
		return Blog{}, errors.New("blog store not configured")
	}
	return s.store.IncrementViewsByID(ctx, id)
}

// GetBySlug returns the post by slug without touching the view counter.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Blog, error) {
	if s.store == nil {
		return Blog{}, errors.New("blog store not configured")
	}
	return s.store.GetBySlug(ctx, strings.TrimSpace(slug))
}

// Create publishes a new post, uploading the optional cover image first.
func (s *Service) Create(ctx context.Context, req CreateRequest, image *ImageUpload) (Blog, error) {
	if s.store == nil {
		return Blog{}, errors.New("blog store not configured")
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return Blog{}, errors.New("title and content are required")
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = "Admin"
	}

	blog := Blog{Title: title, Slug: slug, Content: content, CreatedBy: createdBy}
	if image != nil {
		key, url, err := s.uploadImage(ctx, image)
		if err != nil {
			return Blog{}, err
		}
		blog.ImageKey = key
		blog.ImageURL = url
	}

	created, err := s.createWithSlugRetry(ctx, blog)
	if err != nil {
		return Blog{}, err
	}
	s.logger.Info("blog created", slog.String("id", created.ID), slog.String("slug", created.Slug))
	return created, nil
}

// Update edits title and content, regenerates the slug, and optionally
// replaces the cover image.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, image *ImageUpload) (Blog, error) {
	if s.store == nil {
		return Blog{}, errors.New("blog store not configured")
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return Blog{}, errors.New("title and content are required")
	}

	blog, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Blog{}, err
	}
	oldImageKey := blog.ImageKey

	blog.Title = title
	blog.Content = content
	blog.Slug = Slugify(title)

	if image != nil {
		key, url, err := s.uploadImage(ctx, image)
		if err != nil {
			return Blog{}, err
		}
		blog.ImageKey = key
		blog.ImageURL = url
	}

	updated, err := s.updateWithSlugRetry(ctx, blog)
	if err != nil {
		return Blog{}, err
	}

	if image != nil && oldImageKey != "" && s.images != nil {
		if err := s.images.Delete(ctx, oldImageKey); err != nil {
			s.logger.Warn("old image cleanup failed", slog.String("key", oldImageKey), slog.Any("error", err))
		}
	}
	return updated, nil
}

// Delete removes the post and its stored image.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return errors.New("blog store not configured")
	}
	blog, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blog.ImageKey != "" && s.images != nil {
		if err := s.images.Delete(ctx, blog.ImageKey); err != nil {
			s.logger.Warn("image cleanup failed", slog.String("key", blog.ImageKey), slog.Any("error", err))
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("blog deleted", slog.String("id", id))
	return nil
}

// BumpViews increments the view counter for the post with the given slug.
func (s *Service) BumpViews(ctx context.Context, slug string) (int64, error) {
	if s.store == nil {
		return 0, errors.New("blog store not configured")
	}
	return s.store.IncrementViewsBySlug(ctx, strings.TrimSpace(slug))
}

// Stats assembles the dashboard analytics payload.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.store == nil {
		return Stats{}, errors.New("blog store not configured")
	}
	totalBlogs, totalViews, err := s.store.Totals(ctx)
	if err != nil {
		return Stats{}, err
	}
	if totalBlogs == 0 {
		return Stats{}, ErrNotFound
	}

	now := time.Now()
	cutoff := monthStart(now).AddDate(0, -(statsMonths - 1), 0)
	stamps, err := s.store.CreatedSince(ctx, cutoff)
	if err != nil {
		return Stats{}, err
	}

	latest, err := s.store.Latest(ctx, statsLatest)
	if err != nil {
		return Stats{}, err
	}
	latestOut := make([]LatestBlog, 0, len(latest))
	for _, b := range latest {
		latestOut = append(latestOut, LatestBlog{
			ID:        b.ID,
			Title:     b.Title,
			CreatedAt: b.CreatedAt.Format("Jan 02, 2006"),
		})
	}

	return Stats{
		TotalBlogs:  totalBlogs,
		TotalViews:  totalViews,
		MonthlyData: monthBuckets(now, statsMonths, stamps),
		LatestBlogs: latestOut,
	}, nil
}

func (s *Service) uploadImage(ctx context.Context, image *ImageUpload) (key, url string, err error) {
	if s.images == nil {
		return "", "", errors.New("image storage not configured")
	}
	key = s.images.NewKey(image.Filename)
	url, err = s.images.Upload(ctx, key, image.ContentType, image.Body)
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}
	return key, url, nil
}

func (s *Service) createWithSlugRetry(ctx context.Context, blog Blog) (Blog, error) {
	slug := blog.Slug
	for range maxSlugTries {
		blog.Slug = slug
		created, err := s.store.Create(ctx, blog)
		if err == nil {
			return created, nil
		}
		if db.IsUniqueViolation(err) {
			slug = slugWithSuffix(blog.Slug)
			continue
		}
		return Blog{}, fmt.Errorf("create blog: %w", err)
	}
	return Blog{}, errors.New("create blog: slug collision after retries")
}

func (s *Service) updateWithSlugRetry(ctx context.Context, blog Blog) (Blog, error) {
	slug := blog.Slug
	for range maxSlugTries {
		blog.Slug = slug
		updated, err := s.store.Update(ctx, blog)
		if err == nil {
			return updated, nil
		}
		if db.IsUniqueViolation(err) {
			slug = slugWithSuffix(blog.Slug)
			continue
		}
		return Blog{}, fmt.Errorf("update blog: %w", err)
	}
	return Blog{}, errors.New("update blog: slug collision after retries")
}

// monthBuckets counts stamps per calendar month for the trailing window,
// oldest bucket first, including empty months.
func monthBuckets(now time.Time, months int, stamps []time.Time) []MonthCount {
	out := make([]MonthCount, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := monthStart(now).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		var count int64
		for _, ts := range stamps {
			if !ts.Before(start) && ts.Before(end) {
				count++
			}
		}
		out = append(out, MonthCount{Month: start.Format("Jan 2006"), Count: count})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

package blogs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkpress/inkpress/internal/db"
)

const blogColumns = `id, title, slug, content, image_key, image_url, views, likes, created_by, created_at, updated_at`

// Store persists blog posts in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a blog store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, b Blog) (Blog, error) {
	query := `INSERT INTO blogs (title, slug, content, image_key, image_url, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + blogColumns
	row := s.pool.QueryRow(ctx, query,
		b.Title, b.Slug, b.Content, nullText(b.ImageKey), nullText(b.ImageURL), b.CreatedBy)
	created, err := scanBlog(row)
	if err != nil {
		return Blog{}, err
	}
	return created, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (Blog, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Blog{}, ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, pgID)
	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, fmt.Errorf("get blog: %w", err)
	}
	return blog, nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (Blog, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = $1`, slug)
	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, fmt.Errorf("get blog by slug: %w", err)
	}
	return blog, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	items := make([]Blog, 0, limit)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		items = append(items, blog)
	}
	return items, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM blogs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count blogs: %w", err)
	}
	return count, nil
}

func (s *Store) Update(ctx context.Context, b Blog) (Blog, error) {
	pgID, err := db.ParseUUID(b.ID)
	if err != nil {
		return Blog{}, ErrNotFound
	}
	query := `UPDATE blogs
	          SET title = $2, slug = $3, content = $4, image_key = $5, image_url = $6, updated_at = now()
	          WHERE id = $1
	          RETURNING ` + blogColumns
	row := s.pool.QueryRow(ctx, query,
		pgID, b.Title, b.Slug, b.Content, nullText(b.ImageKey), nullText(b.ImageURL))
	updated, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViewsByID bumps the view counter atomically and returns the post.
func (s *Store) IncrementViewsByID(ctx context.Context, id string) (Blog, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Blog{}, ErrNotFound
	}
	query := `UPDATE blogs SET views = views + 1 WHERE id = $1 RETURNING ` + blogColumns
	row := s.pool.QueryRow(ctx, query, pgID)
	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, fmt.Errorf("increment views: %w", err)
	}
	return blog, nil
}

// IncrementViewsBySlug bumps the view counter atomically and returns the new count.
func (s *Store) IncrementViewsBySlug(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := s.pool.QueryRow(ctx,
		`UPDATE blogs SET views = views + 1 WHERE slug = $1 RETURNING views`, slug).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// Totals returns the post count and the sum of all view counters.
func (s *Store) Totals(ctx context.Context) (int64, int64, error) {
	var blogs, views int64
	err := s.pool.QueryRow(ctx, `SELECT count(*), coalesce(sum(views), 0) FROM blogs`).Scan(&blogs, &views)
	if err != nil {
		return 0, 0, fmt.Errorf("blog totals: %w", err)
	}
	return blogs, views, nil
}

// CreatedSince returns the creation timestamps of posts newer than the cutoff.
func (s *Store) CreatedSince(ctx context.Context, cutoff time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT created_at FROM blogs WHERE created_at >= $1 ORDER BY created_at DESC`,
		pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("created since: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var ts pgtype.Timestamptz
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		stamps = append(stamps, db.TimeFromPg(ts))
	}
	return stamps, rows.Err()
}

// Latest returns the n most recent posts.
func (s *Store) Latest(ctx context.Context, n int) ([]Blog, error) {
	return s.List(ctx, n, 0)
}

func scanBlog(row pgx.Row) (Blog, error) {
	var (
		id        pgtype.UUID
		imageKey  pgtype.Text
		imageURL  pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		b         Blog
	)
	if err := row.Scan(&id, &b.Title, &b.Slug, &b.Content, &imageKey, &imageURL,
		&b.Views, &b.Likes, &b.CreatedBy, &createdAt, &updatedAt); err != nil {
		return Blog{}, err
	}
	b.ID = id.String()
	b.ImageKey = db.TextToString(imageKey)
	b.ImageURL = db.TextToString(imageURL)
	b.CreatedAt = db.TimeFromPg(createdAt)
	b.UpdatedAt = db.TimeFromPg(updatedAt)
	return b, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

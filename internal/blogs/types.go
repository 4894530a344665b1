package blogs

import (
	"io"
	"time"
)

// Blog is a published post.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	ImageKey  string    `json:"-"`
	ImageURL  string    `json:"image_url,omitempty"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResult is one page of posts, newest first.
type ListResult struct {
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Blogs []Blog `json:"blogs"`
}

// CreateRequest carries the fields for a new post.
type CreateRequest struct {
	Title     string
	Content   string
	Slug      string
	CreatedBy string
}

// UpdateRequest carries the fields for editing a post.
type UpdateRequest struct {
	Title   string
	Content string
}

// ImageUpload is an incoming cover image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MonthCount is the number of posts created in one calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// LatestBlog is a compact projection for the dashboard.
type LatestBlog struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

// Stats is the dashboard analytics payload.
type Stats struct {
	TotalBlogs  int64        `json:"totalBlogs"`
	TotalViews  int64        `json:"totalViews"`
	MonthlyData []MonthCount `json:"monthlyData"`
	LatestBlogs []LatestBlog `json:"latestBlogs"`
}

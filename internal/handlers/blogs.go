package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/inkpress/internal/admins"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/blogs"
)

// BlogsHandler serves blog reading, admin CRUD, and dashboard stats.
type BlogsHandler struct {
	service      *blogs.Service
	adminService *admins.Service
	logger       *slog.Logger
}

// NewBlogsHandler creates the blogs handler.
func NewBlogsHandler(log *slog.Logger, service *blogs.Service, adminService *admins.Service) *BlogsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BlogsHandler{
		service:      service,
		adminService: adminService,
		logger:       log.With(slog.String("handler", "blogs")),
	}
}

// Register mounts the blog routes on the Echo instance. Reads are public;
// create/update/delete/stats sit behind the JWT middleware.
func (h *BlogsHandler) Register(e *echo.Echo) {
	g := e.Group("/api/blogs")
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/slug/:slug", h.GetBySlug)
	g.GET("/:id", h.Get)
	g.PUT("/views/:slug", h.BumpViews)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List blogs
// @Description One page of posts, newest first
// @Tags blogs
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} blogs.ListResult
// @Router /api/blogs [get].
func (h *BlogsHandler) List(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	result, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch blogs")
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns a single post by id and counts the view.
func (h *BlogsHandler) Get(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	blog, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return c.JSON(http.StatusOK, blog)
}

// GetBySlug returns a single post by slug.
func (h *BlogsHandler) GetBySlug(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	blog, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching blog")
	}
	return c.JSON(http.StatusOK, blog)
}

// Create publishes a new post from a multipart form (title, content,
// optional slug and image).
func (h *BlogsHandler) Create(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}

	req := blogs.CreateRequest{
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		Slug:      c.FormValue("slug"),
		CreatedBy: h.authorName(c),
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer closeImage()

	blog, err := h.service.Create(c.Request().Context(), req, image)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, blog)
}

// Update edits a post and optionally replaces its cover image.
func (h *BlogsHandler) Update(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}

	req := blogs.UpdateRequest{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer closeImage()

	blog, err := h.service.Update(c.Request().Context(), c.Param("id"), req, image)
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error updating blog")
	}
	return c.JSON(http.StatusOK, blog)
}

// Delete removes a post and its stored image.
func (h *BlogsHandler) Delete(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error deleting blog")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Blog deleted successfully"})
}

// BumpViews increments the view counter for a post by slug.
func (h *BlogsHandler) BumpViews(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	views, err := h.service.BumpViews(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to increment view count")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "View count updated",
		"views":   views,
	})
}

// Stats godoc
// @Summary Blog dashboard stats
// @Description Totals, monthly creation counts, and the latest posts
// @Tags blogs
// @Success 200 {object} blogs.Stats
// @Failure 404 {object} ErrorResponse
// @Router /api/blogs/stats [get].
func (h *BlogsHandler) Stats(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "blog service not configured")
	}
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No blogs found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch blog stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// authorName resolves the authenticated admin's display name, defaulting to
// "Admin" when the lookup fails.
func (h *BlogsHandler) authorName(c echo.Context) string {
	if h.adminService == nil {
		return ""
	}
	adminID, err := auth.UserIDFromContext(c)
	if err != nil {
		return ""
	}
	admin, err := h.adminService.Get(c.Request().Context(), adminID)
	if err != nil {
		return ""
	}
	return admin.DisplayName
}

// formImage extracts the optional "image" multipart file. The returned
// closer is safe to call when no image was supplied.
func formImage(c echo.Context) (*blogs.ImageUpload, func(), error) {
	noop := func() {}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// Missing file is fine; the image is optional.
		return nil, noop, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, noop, err
	}
	return &blogs.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

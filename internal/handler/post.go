package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/repository"
)

// PostHandler serves the public post listing and the admin post editor.
type PostHandler struct {
    Posts *repository.PostRepo
}

func NewPostHandler(p *repository.PostRepo) *PostHandler { return &PostHandler{Posts: p} }

type postReq struct {
    Title *string `json:"title"`
    Body  *string `json:"body"`
}

// validate trims the fields that are present.  full requires both.
func (r *postReq) validate(full bool) string {
    if r.Title == nil && full {
        return "title is required"
    }
    if r.Body == nil && full {
        return "body is required"
    }
    if r.Title != nil {
        t := strings.TrimSpace(*r.Title)
        if n := utf8.RuneCountInString(t); n < 5 || n > 100 {
            return "title must be between 5 and 100 characters"
        }
        r.Title = &t
    }
    if r.Body != nil {
        b := strings.TrimSpace(*r.Body)
        if b == "" {
            return "body is required"
        }
        r.Body = &b
    }
    if r.Title == nil && r.Body == nil {
        return "nothing to update"
    }
    return ""
}

func queryFrom(c echo.Context, keyword string) repository.PostQuery {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    ps, _ := strconv.Atoi(c.QueryParam("page_size"))
    q := repository.PostQuery{Keyword: keyword, Page: page, PageSize: ps}
    q.Normalize()
    return q
}

func (h *PostHandler) list(c echo.Context, q repository.PostQuery) error {
    ctx, cancel := dbCtx(c)
    defer cancel()

    items, total, err := h.Posts.List(ctx, q)
    if err != nil {
        return serverError(c, "list posts failed", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "data":      items,
        "total":     total,
        "page":      q.Page,
        "page_size": q.PageSize,
    })
}

// List handles GET /posts.
func (h *PostHandler) List(c echo.Context) error {
    return h.list(c, queryFrom(c, ""))
}

// Search handles GET /posts/search?q=.  Title and body are matched
// case-insensitively.
func (h *PostHandler) Search(c echo.Context) error {
    kw := strings.TrimSpace(c.QueryParam("q"))
    if kw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
    }
    return h.list(c, queryFrom(c, kw))
}

// Get handles GET /posts/:id.
func (h *PostHandler) Get(c echo.Context) error {
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    p, err := h.Posts.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
        }
        return serverError(c, "load post failed", err)
    }
    return c.JSON(http.StatusOK, p)
}

// Create handles POST /posts (admin only).
func (h *PostHandler) Create(c echo.Context) error {
    author, err := currentIdentity(c)
    if author == nil {
        return err
    }
    var req postReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(true); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    p, err := h.Posts.Create(ctx, author.ID, *req.Title, *req.Body)
    if err != nil {
        return serverError(c, "create post failed", err)
    }
    return c.JSON(http.StatusCreated, p)
}

// Update handles PUT and PATCH /posts/:id (admin only).  Omitted fields are
// kept.
func (h *PostHandler) Update(c echo.Context) error {
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    var req postReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(false); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    p, err := h.Posts.Update(ctx, id, req.Title, req.Body)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
        }
        return serverError(c, "update post failed", err)
    }
    return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /posts/:id (admin only).  Comments and likes are
// removed with the post.
func (h *PostHandler) Delete(c echo.Context) error {
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    if err := h.Posts.Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
        }
        return serverError(c, "delete post failed", err)
    }
    return c.NoContent(http.StatusNoContent)
}

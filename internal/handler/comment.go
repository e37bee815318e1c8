package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/middleware"
    "github.com/iliyamo/blog-api/internal/moderation"
    "github.com/iliyamo/blog-api/internal/policy"
)

// CommentHandler serves comment endpoints for readers and moderators.
type CommentHandler struct {
    Comments *moderation.Service
}

func NewCommentHandler(s *moderation.Service) *CommentHandler { return &CommentHandler{Comments: s} }

type commentReq struct {
    Body string `json:"body"`
}

// moderationError maps moderation errors onto responses.
func moderationError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, moderation.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
    case errors.Is(err, moderation.ErrPostNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
    case errors.Is(err, moderation.ErrAlreadyModerated):
        return c.JSON(http.StatusConflict, echo.Map{"error": "comment has already been approved"})
    case errors.Is(err, moderation.ErrInvalidBody):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    return serverError(c, "comment operation failed", err)
}

// List handles GET /posts/:post_id/comments.  Only approved comments are
// returned.
func (h *CommentHandler) List(c echo.Context) error {
    postID, ok, err := pathID(c, "post_id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    items, err := h.Comments.ListApproved(ctx, postID)
    if err != nil {
        return moderationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Create handles POST /posts/:post_id/comments.  New comments wait for
// moderation.
func (h *CommentHandler) Create(c echo.Context) error {
    author, err := currentIdentity(c)
    if author == nil {
        return err
    }
    postID, ok, err := pathID(c, "post_id")
    if !ok {
        return err
    }
    var req commentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    cm, err := h.Comments.Create(ctx, author.ID, postID, req.Body)
    if err != nil {
        return moderationError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "comment": cm,
        "message": "comment submitted and awaiting moderation",
    })
}

// Delete handles DELETE /comments/:id and DELETE /posts/:post_id/comments/:id.
// The author may withdraw their own comment; admins may remove any.
func (h *CommentHandler) Delete(c echo.Context) error {
    // Ownership needs the row, but anonymous callers are turned away before
    // any lookup so they cannot learn which ids exist.
    if middleware.CurrentIdentity(c) == nil {
        return middleware.Deny(c, policy.AuthenticationRequired)
    }
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    cm, err := h.Comments.Get(ctx, id)
    if err != nil {
        return moderationError(c, err)
    }
    if c.Param("post_id") != "" {
        postID, ok, err := pathID(c, "post_id")
        if !ok {
            return err
        }
        if cm.PostID != postID {
            return moderationError(c, moderation.ErrNotFound)
        }
    }
    if ok, err := middleware.Authorize(c, policy.CommentsDelete, &policy.Resource{OwnerID: cm.UserID}); !ok {
        return err
    }
    if err := h.Comments.Withdraw(ctx, id); err != nil {
        return moderationError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Queue handles GET /admin/comments: pending comments, oldest first.
func (h *CommentHandler) Queue(c echo.Context) error {
    ctx, cancel := dbCtx(c)
    defer cancel()

    items, err := h.Comments.Queue(ctx)
    if err != nil {
        return moderationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}

// Approve handles PATCH /admin/comments/:id/approve.
func (h *CommentHandler) Approve(c echo.Context) error {
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    cm, err := h.Comments.Approve(ctx, id)
    if err != nil {
        return moderationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"comment": cm, "message": "comment approved"})
}

// Reject handles DELETE /admin/comments/:id/reject.  Rejected comments are
// deleted.
func (h *CommentHandler) Reject(c echo.Context) error {
    id, ok, err := pathID(c, "id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    if err := h.Comments.Reject(ctx, id); err != nil {
        return moderationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "comment rejected and deleted"})
}

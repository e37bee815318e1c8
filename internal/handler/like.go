package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/likes"
)

type LikeHandler struct {
    Likes *likes.Guard
}

func NewLikeHandler(g *likes.Guard) *LikeHandler { return &LikeHandler{Likes: g} }

// Like handles POST /posts/:post_id/like.  Liking twice is not an error.
func (h *LikeHandler) Like(c echo.Context) error {
    id, err := currentIdentity(c)
    if id == nil {
        return err
    }
    postID, ok, err := pathID(c, "post_id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    res, err := h.Likes.Like(ctx, id.ID, postID)
    if err != nil {
        return likeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "liked":         true,
        "already_liked": res.AlreadyLiked,
        "likes_count":   res.LikesCount,
    })
}

// Unlike handles DELETE /posts/:post_id/like.  Unliking a post that was
// not liked succeeds with removed=false.
func (h *LikeHandler) Unlike(c echo.Context) error {
    id, err := currentIdentity(c)
    if id == nil {
        return err
    }
    postID, ok, err := pathID(c, "post_id")
    if !ok {
        return err
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    res, err := h.Likes.Unlike(ctx, id.ID, postID)
    if err != nil {
        return likeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "liked":       false,
        "removed":     res.Removed,
        "likes_count": res.LikesCount,
    })
}

func likeError(c echo.Context, err error) error {
    if errors.Is(err, likes.ErrPostNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
    }
    return serverError(c, "like operation failed", err)
}

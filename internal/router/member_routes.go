package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/policy"
)

// RegisterMember registers routes for signed-in users.  Commenting also
// needs a verified e-mail; deleting a comment is decided in the handler
// because it depends on who wrote it.
func RegisterMember(e *echo.Echo, c *handler.CommentHandler, l *handler.LikeHandler) {
	e.POST("/posts/:post_id/comments", c.Create, middleware.Require(policy.CommentsCreate))
	e.DELETE("/posts/:post_id/comments/:id", c.Delete)
	e.DELETE("/comments/:id", c.Delete)

	e.POST("/posts/:post_id/like", l.Like, middleware.Require(policy.LikesCreate))
	e.DELETE("/posts/:post_id/like", l.Unlike, middleware.Require(policy.LikesDelete))
}

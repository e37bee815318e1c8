package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/policy"
)

// RegisterAdmin registers the moderation queue and the post editor.  Every
// route names its own action so the policy table stays the single source
// of truth.
func RegisterAdmin(e *echo.Echo, p *handler.PostHandler, c *handler.CommentHandler) {
	g := e.Group("/admin")
	g.GET("/comments", c.Queue, middleware.Require(policy.CommentsQueue))
	g.PATCH("/comments/:id/approve", c.Approve, middleware.Require(policy.CommentsApprove))
	g.DELETE("/comments/:id/reject", c.Reject, middleware.Require(policy.CommentsReject))

	e.POST("/posts", p.Create, middleware.Require(policy.PostsCreate))
	e.PUT("/posts/:id", p.Update, middleware.Require(policy.PostsUpdate))
	e.PATCH("/posts/:id", p.Update, middleware.Require(policy.PostsUpdate))
	e.DELETE("/posts/:id", p.Delete, middleware.Require(policy.PostsDelete))
}

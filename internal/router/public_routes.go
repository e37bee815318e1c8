package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/policy"
)

// RegisterPublic registers the read-only routes anyone may call.  Their
// responses do not depend on the caller, so they go through the response
// cache.
func RegisterPublic(e *echo.Echo, p *handler.PostHandler, c *handler.CommentHandler, cache echo.MiddlewareFunc) {
	e.GET("/posts", p.List, middleware.Require(policy.PostsList), cache)
	e.GET("/posts/search", p.Search, middleware.Require(policy.PostsSearch), cache)
	e.GET("/posts/:id", p.Get, middleware.Require(policy.PostsRead), cache)
	e.GET("/posts/:post_id/comments", c.List, middleware.Require(policy.CommentsList), cache)
}

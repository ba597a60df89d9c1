// Package httpapi exposes the blog over a JSON API.
package httpapi

import (
	"log/slog"
	"net/http"

	"inkpad/internal/blog"
	"inkpad/internal/importer"

	"github.com/gin-gonic/gin"
)

const MaxUploadBytes = 16 << 20

type Server struct {
	svc      *blog.Service
	importer *importer.Importer
	router   *gin.Engine
	log      *slog.Logger
}

func New(svc *blog.Service, im *importer.Importer, ginMode string, log *slog.Logger) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = MaxUploadBytes

	s := &Server{
		svc:      svc,
		importer: im,
		router:   router,
		log:      log,
	}

	router.Use(gin.Recovery(), s.requestLogger())
	s.routes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)

	api := s.router.Group("/api")
	api.Use(s.loadUser())

	api.GET("/posts", s.listPosts)
	api.GET("/posts/hot", s.hotPosts)
	api.GET("/posts/:id", s.getPost)
	api.GET("/posts/:id/export", s.exportPost)
	api.GET("/categories", s.listCategories)
	api.GET("/categories/:id/posts", s.categoryPosts)
	api.GET("/tags", s.listTags)
	api.GET("/tags/:id/posts", s.tagPosts)
	api.GET("/search", s.search)
	api.GET("/friend-links", s.listFriendLinks)

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	authed := api.Group("")
	authed.Use(s.requireUser())

	authed.POST("/auth/logout", s.logout)
	authed.GET("/me", s.me)
	authed.GET("/dashboard", s.dashboard)

	authed.POST("/posts", s.createPost)
	authed.PUT("/posts/:id", s.updatePost)
	authed.DELETE("/posts/:id", s.deletePost)
	authed.POST("/posts/:id/bookmark", s.toggleBookmark)
	authed.DELETE("/posts/:id/bookmark", s.removeBookmark)
	authed.GET("/bookmarks", s.listBookmarks)

	authed.POST("/categories", s.createCategory)
	authed.DELETE("/categories/:id", s.deleteCategory)
	authed.POST("/tags", s.createTag)
	authed.DELETE("/tags/:id", s.deleteTag)
	authed.POST("/friend-links", s.createFriendLink)
	authed.DELETE("/friend-links/:id", s.deleteFriendLink)

	uploads := authed.Group("/import")
	uploads.Use(limitBody(MaxUploadBytes))
	uploads.POST("/markdown", s.importMarkdown)
	uploads.POST("/markdown/batch", s.importMarkdownBatch)
	uploads.POST("/feed", s.importFeed)

	authed.POST("/summary/preview", s.previewSummary)
}

func (s *Server) health(c *gin.Context) {
	if err := s.svc.Ping(c.Request.Context()); err != nil {
		s.log.ErrorContext(c.Request.Context(), "Health check failed",
			"error", err)

		JSONError(c, http.StatusServiceUnavailable, "unavailable", "database is unreachable")

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"inkpad/internal/domain"

	"github.com/gin-gonic/gin"
)

func (s *Server) listPosts(c *gin.Context) {
	page, err := s.svc.ListPosts(c.Request.Context(), pageQuery(c))
	if err != nil {
		s.respondError(c, "list posts", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) hotPosts(c *gin.Context) {
	posts, err := s.svc.HotPosts(c.Request.Context())
	if err != nil {
		s.respondError(c, "hot posts", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	post, err := s.svc.ViewPost(c.Request.Context(), viewerID(c), id)
	if err != nil {
		s.respondError(c, "view post", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

func (s *Server) exportPost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	export, err := s.svc.ExportMarkdown(c.Request.Context(), viewerID(c), id)
	if err != nil {
		s.respondError(c, "export post", err)

		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(export.Filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Content))
}

func (s *Server) search(c *gin.Context) {
	page, err := s.svc.Search(c.Request.Context(), c.Query("q"), pageQuery(c))
	if err != nil {
		s.respondError(c, "search", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) dashboard(c *gin.Context) {
	dashboard, err := s.svc.Dashboard(c.Request.Context(), currentUser(c).ID, pageQuery(c))
	if err != nil {
		s.respondError(c, "dashboard", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

func (s *Server) createPost(c *gin.Context) {
	var in domain.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	post, err := s.svc.CreatePost(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		s.respondError(c, "create post", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": post})
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in domain.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	post, err := s.svc.UpdatePost(c.Request.Context(), currentUser(c).ID, id, in)
	if err != nil {
		s.respondError(c, "update post", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.svc.DeletePost(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.respondError(c, "delete post", err)

		return
	}

	c.Status(http.StatusNoContent)
}

type previewRequest struct {
	Content string `json:"content"`
}

func (s *Server) previewSummary(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	summary, err := s.svc.PreviewSummary(c.Request.Context(), req.Content)
	if err != nil {
		s.respondError(c, "preview summary", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"summary": summary}})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "id must be a positive integer")

		return 0, false
	}

	return id, true
}

// pageQuery reads ?page=, defaulting to the first page.
func pageQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}

	return page
}

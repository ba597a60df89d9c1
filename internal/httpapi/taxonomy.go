package httpapi

import (
	"net/http"

	"inkpad/internal/domain"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type tagRequest struct {
	Name string `json:"name"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.svc.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, "list categories", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (s *Server) categoryPosts(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	page, err := s.svc.PostsByCategory(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		s.respondError(c, "category posts", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	category, err := s.svc.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.respondError(c, "create category", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete category", err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.svc.ListTags(c.Request.Context())
	if err != nil {
		s.respondError(c, "list tags", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (s *Server) tagPosts(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	page, err := s.svc.PostsByTag(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		s.respondError(c, "tag posts", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) createTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	tag, err := s.svc.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, "create tag", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tag})
}

func (s *Server) deleteTag(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.svc.DeleteTag(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete tag", err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listFriendLinks(c *gin.Context) {
	links, err := s.svc.ListFriendLinks(c.Request.Context())
	if err != nil {
		s.respondError(c, "list friend links", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": links})
}

func (s *Server) createFriendLink(c *gin.Context) {
	var link domain.FriendLink
	if err := c.ShouldBindJSON(&link); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	created, err := s.svc.CreateFriendLink(c.Request.Context(), link)
	if err != nil {
		s.respondError(c, "create friend link", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) deleteFriendLink(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.svc.DeleteFriendLink(c.Request.Context(), id); err != nil {
		s.respondError(c, "delete friend link", err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listBookmarks(c *gin.Context) {
	bookmarks, err := s.svc.ListBookmarks(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.respondError(c, "list bookmarks", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bookmarks})
}

func (s *Server) toggleBookmark(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	bookmarked, err := s.svc.ToggleBookmark(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.respondError(c, "toggle bookmark", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"bookmarked": bookmarked}})
}

func (s *Server) removeBookmark(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.svc.RemoveBookmark(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.respondError(c, "remove bookmark", err)

		return
	}

	c.Status(http.StatusNoContent)
}

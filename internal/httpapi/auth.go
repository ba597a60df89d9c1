package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	user, err := s.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondError(c, "register", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())

		return
	}

	session, user, err := s.svc.Login(c.Request.Context(), c.ClientIP(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, "login", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      user,
	}})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.svc.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		s.respondError(c, "logout", err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": currentUser(c)})
}

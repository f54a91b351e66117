package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
)

func (s *Server) ListGites(c *gin.Context) {
	items, err := s.giteSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetGite(c *gin.Context) {
	item, err := s.giteSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateGite(c *gin.Context) {
	var req gitedomain.GiteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	item, err := s.giteSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateGite(c *gin.Context) {
	var req gitedomain.GiteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	item, err := s.giteSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DuplicateGite(c *gin.Context) {
	item, err := s.giteSvc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

// DeleteGite also drops the gîte's documents, counters and files.
func (s *Server) DeleteGite(c *gin.Context) {
	if err := s.giteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

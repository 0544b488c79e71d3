package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
)

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.backend.ListTags(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) createTag(c *gin.Context) {
	var req TagRequest
	if !bind(c, &req) {
		return
	}

	tag, err := s.backend.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (s *Server) renameTag(c *gin.Context) {
	var req TagRequest
	if !bind(c, &req) {
		return
	}

	tag, err := s.backend.RenameTag(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (s *Server) deleteTag(c *gin.Context) {
	if err := s.backend.DeleteTag(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

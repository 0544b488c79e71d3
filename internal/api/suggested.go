package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
)

func (s *Server) listSuggestedTasks(c *gin.Context) {
	items, err := s.backend.ListSuggestedTasks(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if items == nil {
		items = []domain.SuggestedTask{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createSuggestedTask(c *gin.Context) {
	var req CreateSuggestedTaskRequest
	if !bind(c, &req) {
		return
	}

	item, err := s.backend.CreateSuggestedTask(c.Request.Context(), req.Name, req.Tags)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateSuggestedTask(c *gin.Context) {
	var req UpdateSuggestedTaskRequest
	if !bind(c, &req) {
		return
	}

	item, err := s.backend.UpdateSuggestedTask(c.Request.Context(), c.Param("id"), store.SuggestedTaskUpdate{
		Name:   req.Name,
		TagIDs: req.Tags,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteSuggestedTask(c *gin.Context) {
	if err := s.backend.DeleteSuggestedTask(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

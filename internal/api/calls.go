package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
)

func (s *Server) listCalls(c *gin.Context) {
	calls, err := s.backend.ListCalls(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if calls == nil {
		calls = []domain.Call{}
	}
	c.JSON(http.StatusOK, calls)
}

func (s *Server) getCall(c *gin.Context) {
	call, err := s.backend.GetCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (s *Server) createCall(c *gin.Context) {
	var req CreateCallRequest
	if !bind(c, &req) {
		return
	}

	call, err := s.backend.CreateCall(c.Request.Context(), req.Name, req.Tags)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, call)
}

func (s *Server) updateCall(c *gin.Context) {
	var req UpdateCallRequest
	if !bind(c, &req) {
		return
	}

	call, err := s.backend.UpdateCall(c.Request.Context(), c.Param("id"), store.CallUpdate{
		Name:   req.Name,
		TagIDs: req.Tags,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (s *Server) deleteCall(c *gin.Context) {
	if err := s.backend.DeleteCall(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) suggestTasksForCall(c *gin.Context) {
	suggestions, err := s.backend.SuggestForCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []domain.SuggestedTask{}
	}
	c.JSON(http.StatusOK, suggestions)
}

func (s *Server) suggestTagsForCall(c *gin.Context) {
	if s.suggester == nil {
		writeError(c, http.StatusServiceUnavailable, "tag suggestions are not configured")
		return
	}

	ctx := c.Request.Context()
	call, err := s.backend.GetCall(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	tags, err := s.backend.ListTags(ctx)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	byName := make(map[string]domain.Tag, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		byName[strings.ToLower(t.Name)] = t
		names = append(names, t.Name)
	}

	resp := TagSuggestionsResponse{Tags: []domain.Tag{}}
	if len(names) == 0 {
		c.JSON(http.StatusOK, resp)
		return
	}

	suggested, err := s.suggester.SuggestTags(ctx, call.Name, names)
	if err != nil {
		writeError(c, http.StatusBadGateway, "suggest tags: "+err.Error())
		return
	}

	seen := make(map[string]bool)
	for _, name := range suggested {
		t, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		resp.Tags = append(resp.Tags, t)
	}
	c.JSON(http.StatusOK, resp)
}

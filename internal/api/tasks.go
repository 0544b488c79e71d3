package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
)

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.backend.ListTasks(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeTasks(c, tasks)
}

func (s *Server) listTasksForCall(c *gin.Context) {
	tasks, err := s.backend.ListTasksForCall(c.Request.Context(), c.Param("callId"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeTasks(c, tasks)
}

func writeTasks(c *gin.Context, tasks []domain.Task) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.backend.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) createTask(c *gin.Context) {
	var req CreateTaskRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.backend.CreateTask(c.Request.Context(), c.Param("callId"), req.Name, *req.Status)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.backend.UpdateTask(c.Request.Context(), c.Param("id"), store.TaskUpdate{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.backend.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
)

// Backend is everything the API reads from and writes to
type Backend interface {
	store.CallStore
	store.TaskStore
	store.TagStore
	store.SuggestedTaskStore
}

// TagSuggester proposes which of the existing tag names fit a call
type TagSuggester interface {
	SuggestTags(ctx context.Context, callName string, tagNames []string) ([]string, error)
}

// Options tunes the HTTP surface
type Options struct {
	CORSOrigins []string
	// Suggester is optional; without it tag suggestions answer 503.
	Suggester TagSuggester
}

// Server handles HTTP requests for the call desk API
type Server struct {
	backend   Backend
	suggester TagSuggester
	router    *gin.Engine
}

// New creates a new API server
func New(b Backend, opts Options) *Server {
	s := &Server{
		backend:   b,
		suggester: opts.Suggester,
		router:    gin.Default(),
	}
	s.router.Use(corsMiddleware(opts.CORSOrigins))
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	// Calls
	r.GET("/calls", s.listCalls)
	r.POST("/calls", s.createCall)
	r.GET("/calls/:id", s.getCall)
	r.PUT("/calls/:id", s.updateCall)
	r.DELETE("/calls/:id", s.deleteCall)
	r.GET("/calls/:id/suggested-tasks", s.suggestTasksForCall)
	r.POST("/calls/:id/tag-suggestions", s.suggestTagsForCall)

	// Tags
	r.GET("/tags", s.listTags)
	r.POST("/tags", s.createTag)
	r.PUT("/tags/:id", s.renameTag)
	r.DELETE("/tags/:id", s.deleteTag)

	// Tasks
	r.GET("/tasks", s.listTasks)
	r.GET("/tasks/:id", s.getTask)
	r.PUT("/tasks/:id", s.updateTask)
	r.DELETE("/tasks/:id", s.deleteTask)
	r.GET("/tasks/calls/:callId/tasks", s.listTasksForCall)
	r.POST("/tasks/calls/:callId/tasks", s.createTask)

	// Suggested task catalog
	r.GET("/suggested-tasks", s.listSuggestedTasks)
	r.POST("/suggested-tasks", s.createSuggestedTask)
	r.PUT("/suggested-tasks/:id", s.updateSuggestedTask)
	r.DELETE("/suggested-tasks/:id", s.deleteSuggestedTask)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeStoreError maps store errors onto status codes
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/domain"
)

// request bodies validate themselves before any store call
type request interface {
	validate() error
}

// bind decodes the JSON body into req and validates it, answering 400 on failure
func bind(c *gin.Context, req request) bool {
	// an empty body reads as {}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, err.Error())
		} else {
			writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		}
		return false
	}
	if err := req.validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func optionalText(field string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return invalid("%s must not be empty", field)
	}
	return nil
}

func validateTagIDs(ids []string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return invalid("tags must not contain empty ids")
		}
	}
	return nil
}

// CreateCallRequest is the request body for creating a call
type CreateCallRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func (r *CreateCallRequest) validate() error {
	if err := requireText("name", r.Name); err != nil {
		return err
	}
	return validateTagIDs(r.Tags)
}

// UpdateCallRequest is the request body for updating a call. Tags, when
// present, replace the whole set.
type UpdateCallRequest struct {
	Name *string   `json:"name,omitempty"`
	Tags *[]string `json:"tags,omitempty"`
}

func (r *UpdateCallRequest) validate() error {
	if err := optionalText("name", r.Name); err != nil {
		return err
	}
	if r.Tags != nil {
		return validateTagIDs(*r.Tags)
	}
	return nil
}

// TagRequest is the request body for creating or renaming a tag
type TagRequest struct {
	Name string `json:"name"`
}

func (r *TagRequest) validate() error {
	return requireText("name", r.Name)
}

// CreateTaskRequest is the request body for adding a task to a call
type CreateTaskRequest struct {
	Name   string             `json:"name"`
	Status *domain.TaskStatus `json:"status"`
}

func (r *CreateTaskRequest) validate() error {
	if err := requireText("name", r.Name); err != nil {
		return err
	}
	if r.Status == nil {
		return invalid("status is required")
	}
	return nil
}

// UpdateTaskRequest is the request body for updating a task
type UpdateTaskRequest struct {
	Name   *string            `json:"name,omitempty"`
	Status *domain.TaskStatus `json:"status,omitempty"`
}

func (r *UpdateTaskRequest) validate() error {
	return optionalText("name", r.Name)
}

// CreateSuggestedTaskRequest is the request body for adding a catalog entry
type CreateSuggestedTaskRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func (r *CreateSuggestedTaskRequest) validate() error {
	if err := requireText("name", r.Name); err != nil {
		return err
	}
	return validateTagIDs(r.Tags)
}

// UpdateSuggestedTaskRequest is the request body for editing a catalog entry
type UpdateSuggestedTaskRequest struct {
	Name *string   `json:"name,omitempty"`
	Tags *[]string `json:"tags,omitempty"`
}

func (r *UpdateSuggestedTaskRequest) validate() error {
	if err := optionalText("name", r.Name); err != nil {
		return err
	}
	if r.Tags != nil {
		return validateTagIDs(*r.Tags)
	}
	return nil
}

// TagSuggestionsResponse lists existing tags proposed for a call
type TagSuggestionsResponse struct {
	Tags []domain.Tag `json:"tags"`
}

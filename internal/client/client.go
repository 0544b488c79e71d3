package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/domain"
)

// Role names carried in the token's role claim
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s failed (%d): %s", e.Method, e.Path, e.Status, msg)
}

// Unwrap lets errors.Is match the domain sentinels for 400 and 404
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// Client talks to the calldesk REST API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for baseURL. token may be empty.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    http.DefaultClient,
	}
}

// Token returns the bearer token sent with each request
func (c *Client) Token() string {
	return c.token
}

// Role reads the role claim of the token without verifying its signature.
// Roles only steer which commands are offered; the server does not check them.
func (c *Client) Role() string {
	if c.token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"role", "Role"} {
		if role, ok := claims[key].(string); ok {
			return strings.ToUpper(role)
		}
	}
	return ""
}

// IsAdmin reports whether the token carries the ADMIN role
func (c *Client) IsAdmin() bool {
	return c.Role() == RoleAdmin
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

// Calls

func (c *Client) ListCalls(ctx context.Context) ([]domain.Call, error) {
	var calls []domain.Call
	err := c.do(ctx, http.MethodGet, "/calls", nil, &calls)
	return calls, err
}

func (c *Client) GetCall(ctx context.Context, id string) (*domain.CallDetail, error) {
	var call domain.CallDetail
	if err := c.do(ctx, http.MethodGet, "/calls/"+escape(id), nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *Client) CreateCall(ctx context.Context, name string, tagIDs []string) (*domain.CallDetail, error) {
	var call domain.CallDetail
	req := api.CreateCallRequest{Name: name, Tags: tagIDs}
	if err := c.do(ctx, http.MethodPost, "/calls", req, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *Client) UpdateCall(ctx context.Context, id string, req api.UpdateCallRequest) (*domain.CallDetail, error) {
	var call domain.CallDetail
	if err := c.do(ctx, http.MethodPut, "/calls/"+escape(id), req, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *Client) DeleteCall(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/calls/"+escape(id), nil, nil)
}

// SuggestedTasksForCall lists catalog entries sharing a tag with the call
func (c *Client) SuggestedTasksForCall(ctx context.Context, id string) ([]domain.SuggestedTask, error) {
	var items []domain.SuggestedTask
	err := c.do(ctx, http.MethodGet, "/calls/"+escape(id)+"/suggested-tasks", nil, &items)
	return items, err
}

// SuggestTags asks the server's classifier which existing tags fit the call
func (c *Client) SuggestTags(ctx context.Context, id string) ([]domain.Tag, error) {
	var resp api.TagSuggestionsResponse
	if err := c.do(ctx, http.MethodPost, "/calls/"+escape(id)+"/tag-suggestions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// Tags

func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := c.do(ctx, http.MethodGet, "/tags", nil, &tags)
	return tags, err
}

func (c *Client) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := c.do(ctx, http.MethodPost, "/tags", api.TagRequest{Name: name}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) RenameTag(ctx context.Context, id, name string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := c.do(ctx, http.MethodPut, "/tags/"+escape(id), api.TagRequest{Name: name}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tags/"+escape(id), nil, nil)
}

// Tasks

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

func (c *Client) ListTasksForCall(ctx context.Context, callID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := c.do(ctx, http.MethodGet, "/tasks/calls/"+escape(callID)+"/tasks", nil, &tasks)
	return tasks, err
}

func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+escape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, callID, name string, status domain.TaskStatus) (*domain.Task, error) {
	var task domain.Task
	req := api.CreateTaskRequest{Name: name, Status: &status}
	if err := c.do(ctx, http.MethodPost, "/tasks/calls/"+escape(callID)+"/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+escape(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+escape(id), nil, nil)
}

// Suggested task catalog

func (c *Client) ListSuggestedTasks(ctx context.Context) ([]domain.SuggestedTask, error) {
	var items []domain.SuggestedTask
	err := c.do(ctx, http.MethodGet, "/suggested-tasks", nil, &items)
	return items, err
}

func (c *Client) CreateSuggestedTask(ctx context.Context, name string, tagIDs []string) (*domain.SuggestedTask, error) {
	var item domain.SuggestedTask
	req := api.CreateSuggestedTaskRequest{Name: name, Tags: tagIDs}
	if err := c.do(ctx, http.MethodPost, "/suggested-tasks", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateSuggestedTask(ctx context.Context, id string, req api.UpdateSuggestedTaskRequest) (*domain.SuggestedTask, error) {
	var item domain.SuggestedTask
	if err := c.do(ctx, http.MethodPut, "/suggested-tasks/"+escape(id), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteSuggestedTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/suggested-tasks/"+escape(id), nil, nil)
}

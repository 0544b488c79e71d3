package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/db"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lite, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), lite, "sqlite"))

	return New(store.New(lite), opts)
}

// do sends body as JSON unless it is already a string
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEmptyListsAreArrays(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/calls", "/tags", "/tasks", "/suggested-tasks"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func TestCallLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/tags", TagRequest{Name: "urgent"})
	require.Equal(t, http.StatusCreated, rec.Code)
	urgent := decode[domain.Tag](t, rec)

	rec = do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Leak at Elm St", Tags: []string{urgent.ID}})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.CallDetail](t, rec)
	assert.Equal(t, "Leak at Elm St", created.Name)
	assert.Equal(t, []string{urgent.ID}, created.Tags)
	assert.Empty(t, created.Tasks)

	rec = do(t, srv, http.MethodGet, "/calls/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "createdAt")
	assert.Contains(t, raw, "updatedAt")
	assert.Equal(t, []any{}, raw["tasks"])

	rec = do(t, srv, http.MethodPut, "/calls/"+created.ID, `{"tags": []}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.CallDetail](t, rec)
	assert.Equal(t, "Leak at Elm St", updated.Name)
	assert.Empty(t, updated.Tags)

	rec = do(t, srv, http.MethodGet, "/calls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	calls := decode[[]map[string]any](t, rec)
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0], "tags")

	rec = do(t, srv, http.MethodDelete, "/calls/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/calls/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallValidation(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank name", http.MethodPost, "/calls", `{"name": "   "}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/calls", `{}`, http.StatusBadRequest},
		{"empty tag id", http.MethodPost, "/calls", `{"name": "x", "tags": [""]}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/calls", `{"name":`, http.StatusBadRequest},
		{"wrong type", http.MethodPost, "/calls", `{"name": 12}`, http.StatusBadRequest},
		{"blank update name", http.MethodPut, "/calls/missing", `{"name": ""}`, http.StatusBadRequest},
		{"update unknown call", http.MethodPut, "/calls/missing", `{"name": "x"}`, http.StatusNotFound},
		{"delete unknown call", http.MethodDelete, "/calls/missing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

func TestTaskRoutes(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Leak at Elm St"})
	require.Equal(t, http.StatusCreated, rec.Code)
	call := decode[domain.CallDetail](t, rec)

	rec = do(t, srv, http.MethodPost, "/tasks/calls/"+call.ID+"/tasks", `{"name": "Send plumber", "status": 0}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)
	assert.Equal(t, call.ID, task.CallID)
	assert.Equal(t, domain.StatusOpen, task.Status)

	rec = do(t, srv, http.MethodPut, "/tasks/"+task.ID, `{"status": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"id":"`+task.ID+`","callId":"`+call.ID+`","name":"Send plumber","status":2}`,
		rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusCompleted, decode[domain.Task](t, rec).Status)

	rec = do(t, srv, http.MethodGet, "/tasks/calls/"+call.ID+"/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Task](t, rec), 1)

	rec = do(t, srv, http.MethodGet, "/calls/"+call.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[domain.CallDetail](t, rec)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, domain.StatusCompleted, detail.Tasks[0].Status)

	rec = do(t, srv, http.MethodDelete, "/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskValidation(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Leak"})
	require.Equal(t, http.StatusCreated, rec.Code)
	call := decode[domain.CallDetail](t, rec)
	tasksPath := "/tasks/calls/" + call.ID + "/tasks"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"status out of range", http.MethodPost, tasksPath, `{"name": "x", "status": 7}`, http.StatusBadRequest},
		{"status missing", http.MethodPost, tasksPath, `{"name": "x"}`, http.StatusBadRequest},
		{"status as text", http.MethodPost, tasksPath, `{"name": "x", "status": "Open"}`, http.StatusBadRequest},
		{"blank name", http.MethodPost, tasksPath, `{"name": "", "status": 0}`, http.StatusBadRequest},
		{"unknown call", http.MethodPost, "/tasks/calls/missing/tasks", `{"name": "x", "status": 0}`, http.StatusNotFound},
		{"update unknown task", http.MethodPut, "/tasks/missing", `{"status": 1}`, http.StatusNotFound},
		{"update bad status", http.MethodPut, "/tasks/missing", `{"status": -1}`, http.StatusBadRequest},
		{"get unknown task", http.MethodGet, "/tasks/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTagRoutes(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/tags", TagRequest{Name: "billing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decode[domain.Tag](t, rec)

	rec = do(t, srv, http.MethodPut, "/tags/"+tag.ID, TagRequest{Name: "invoices"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invoices", decode[domain.Tag](t, rec).Name)

	rec = do(t, srv, http.MethodPut, "/tags/"+tag.ID, TagRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/tags/missing", TagRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/tags/"+tag.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/tags/"+tag.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestedTaskRoutes(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/tags", TagRequest{Name: "water"})
	require.Equal(t, http.StatusCreated, rec.Code)
	water := decode[domain.Tag](t, rec)

	rec = do(t, srv, http.MethodPost, "/suggested-tasks", CreateSuggestedTaskRequest{Name: "Shut off main valve", Tags: []string{water.ID}})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[domain.SuggestedTask](t, rec)
	assert.Equal(t, []string{water.ID}, item.Tags)

	rec = do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Flooded basement", Tags: []string{water.ID}})
	require.Equal(t, http.StatusCreated, rec.Code)
	call := decode[domain.CallDetail](t, rec)

	rec = do(t, srv, http.MethodGet, "/calls/"+call.ID+"/suggested-tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	suggestions := decode[[]domain.SuggestedTask](t, rec)
	require.Len(t, suggestions, 1)
	assert.Equal(t, item.ID, suggestions[0].ID)

	rec = do(t, srv, http.MethodGet, "/calls/missing/suggested-tasks", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPut, "/suggested-tasks/"+item.ID, `{"tags": []}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.SuggestedTask](t, rec).Tags)

	rec = do(t, srv, http.MethodGet, "/calls/"+call.ID+"/suggested-tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/suggested-tasks/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type fakeSuggester struct {
	names    []string
	err      error
	gotCall  string
	gotNames []string
}

func (f *fakeSuggester) SuggestTags(_ context.Context, callName string, tagNames []string) ([]string, error) {
	f.gotCall = callName
	f.gotNames = tagNames
	return f.names, f.err
}

func TestTagSuggestions(t *testing.T) {
	fake := &fakeSuggester{names: []string{"Plumbing", "plumbing", "made-up"}}
	srv := newTestServer(t, Options{Suggester: fake})

	rec := do(t, srv, http.MethodPost, "/tags", TagRequest{Name: "plumbing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plumbing := decode[domain.Tag](t, rec)
	rec = do(t, srv, http.MethodPost, "/tags", TagRequest{Name: "billing"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Burst pipe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	call := decode[domain.CallDetail](t, rec)

	rec = do(t, srv, http.MethodPost, "/calls/"+call.ID+"/tag-suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[TagSuggestionsResponse](t, rec)
	assert.Equal(t, []domain.Tag{plumbing}, resp.Tags)
	assert.Equal(t, "Burst pipe", fake.gotCall)
	assert.ElementsMatch(t, []string{"plumbing", "billing"}, fake.gotNames)

	fake.err = errors.New("upstream down")
	rec = do(t, srv, http.MethodPost, "/calls/"+call.ID+"/tag-suggestions", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, srv, http.MethodPost, "/calls/missing/tag-suggestions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagSuggestionsDisabled(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := do(t, srv, http.MethodPost, "/calls/anything/tag-suggestions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/calls", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUpdateCallWithEmptyBodyTouches(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/calls", CreateCallRequest{Name: "Leak"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.CallDetail](t, rec)

	rec = do(t, srv, http.MethodPut, "/calls/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	touched := decode[domain.CallDetail](t, rec)
	assert.Equal(t, "Leak", touched.Name)
	assert.False(t, touched.UpdatedAt.Before(created.UpdatedAt))

	rec = do(t, srv, http.MethodPost, "/calls", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "name is required")
}

func TestListTagsIgnoresCase(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, name := range []string{"apple", "Zebra", "Fire"} {
		rec := do(t, srv, http.MethodPost, "/tags", TagRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, srv, http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[[]domain.Tag](t, rec)
	require.Len(t, tags, 3)
	assert.Equal(t, "apple", tags[0].Name)
	assert.Equal(t, "Fire", tags[1].Name)
	assert.Equal(t, "Zebra", tags[2].Name)
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/db"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/pbaille/calldesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves a real API over a throwaway SQLite database
func newTestClient(t *testing.T, token string) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lite, err := db.OpenSQLite(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), lite, "sqlite"))

	srv := httptest.NewServer(api.New(store.New(lite), api.Options{}))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", token)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestRole(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
		admin bool
	}{
		{"no token", "", "", false},
		{"garbage", "not-a-jwt", "", false},
		{"admin", signedToken(t, jwt.MapClaims{"role": "ADMIN"}), RoleAdmin, true},
		{"lowercase admin", signedToken(t, jwt.MapClaims{"Role": "admin"}), RoleAdmin, true},
		{"user", signedToken(t, jwt.MapClaims{"role": "user"}), RoleUser, false},
		{"no role claim", signedToken(t, jwt.MapClaims{"sub": "42"}), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://localhost", tt.token)
			assert.Equal(t, tt.want, c.Role())
			assert.Equal(t, tt.admin, c.IsAdmin())
		})
	}
}

func TestBearerHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, "abc").ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)

	_, err = New(srv.URL, "").ListTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestErrorsMapToDomainSentinels(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()

	_, err := c.GetCall(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.CreateCall(ctx, "  ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "name")

	_, err = c.SuggestTags(ctx, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()

	tag, err := c.CreateTag(ctx, "water")
	require.NoError(t, err)

	call, err := c.CreateCall(ctx, "Flooded basement", []string{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, call.Tags)

	task, err := c.CreateTask(ctx, call.ID, "Send pump", domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, task.Status)

	done := domain.StatusCompleted
	task, err = c.UpdateTask(ctx, task.ID, api.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, task.Status)

	tasks, err := c.ListTasksForCall(ctx, call.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	item, err := c.CreateSuggestedTask(ctx, "Check insurance", []string{tag.ID})
	require.NoError(t, err)
	suggestions, err := c.SuggestedTasksForCall(ctx, call.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, item.ID, suggestions[0].ID)

	renamed, err := c.RenameTag(ctx, tag.ID, "flooding")
	require.NoError(t, err)
	assert.Equal(t, "flooding", renamed.Name)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	require.NoError(t, c.DeleteSuggestedTask(ctx, item.ID))
	require.NoError(t, c.DeleteCall(ctx, call.ID))

	calls, err := c.ListCalls(ctx)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

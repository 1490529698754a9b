package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httpadapter "github.com/viralforge/project-tracker/internal/adapters/http"
	"github.com/viralforge/project-tracker/internal/testutil"
)

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	env := testutil.NewEnv(t)
	server := httptest.NewServer(httpadapter.NewRouter(httpadapter.NewHandler(env.Service)))
	t.Cleanup(server.Close)
	return &client{t: t, server: server}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		var decoded any
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&decoded))
		switch v := decoded.(type) {
		case map[string]any:
			out = v
		case []any:
			out["items"] = v
		}
	}
	return resp.StatusCode, out
}

func (c *client) signUp(name, email string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/auth/register", map[string]any{
		"name": name, "email": email, "password": "passw0rd!",
	})
	require.Equal(c.t, http.StatusCreated, status, body)
	status, body = c.do(http.MethodPost, "/auth/login", map[string]any{
		"email": email, "password": "passw0rd!",
	})
	require.Equal(c.t, http.StatusOK, status, body)
	assert.Equal(c.t, "Bearer", body["tokenType"])
	c.token = body["token"].(string)
}

func TestProjectAndTaskLifecycle(t *testing.T) {
	t.Parallel()
	c := newClient(t)
	c.signUp("Alice", "alice@example.com")

	status, project := c.do(http.MethodPost, "/projects", map[string]any{"name": "Website", "availableBudget": 1500.5})
	require.Equal(t, http.StatusCreated, status, project)
	assert.Equal(t, "ACTIVE", project["status"])
	assert.EqualValues(t, 0, project["taskCount"])
	projectID := project["id"].(string)

	status, body := c.do(http.MethodPost, "/projects", map[string]any{"name": "Website"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, design := c.do(http.MethodPost, "/tasks", map[string]any{
		"description": "Design", "projectId": projectID,
		"startDate": "2026-01-01", "endDate": "2026-01-10",
	})
	require.Equal(t, http.StatusCreated, status, design)
	assert.Equal(t, "NOT_DONE", design["status"])
	assert.Equal(t, "Website", design["projectName"])
	assert.Equal(t, "2026-01-10", design["endDate"])
	designID := design["id"].(string)

	status, build := c.do(http.MethodPost, "/tasks", map[string]any{
		"description": "Build", "projectId": projectID, "predecessorTaskId": designID,
	})
	require.Equal(t, http.StatusCreated, status, build)
	assert.Equal(t, "Design", build["predecessorDescription"])
	buildID := build["id"].(string)

	status, body = c.do(http.MethodGet, "/tasks?projetoId="+projectID+"&descricao=bui", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, body = c.do(http.MethodGet, "/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["taskCount"])

	status, body = c.do(http.MethodDelete, "/tasks/"+designID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, _ = c.do(http.MethodDelete, "/tasks/"+buildID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = c.do(http.MethodDelete, "/tasks/"+designID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = c.do(http.MethodDelete, "/projects/"+projectID, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	status, body := c.do(http.MethodGet, "/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	c.token = "not-a-jwt"
	status, _ = c.do(http.MethodGet, "/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestForeignOwnerAndBadInput(t *testing.T) {
	t.Parallel()
	c := newClient(t)
	c.signUp("Alice", "alice@example.com")
	status, project := c.do(http.MethodPost, "/projects", map[string]any{"name": "Website"})
	require.Equal(t, http.StatusCreated, status)
	projectID := project["id"].(string)

	status, body := c.do(http.MethodGet, "/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = c.do(http.MethodPost, "/projects", map[string]any{"name": "X", "owner": "me"})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = c.do(http.MethodPost, "/auth/login", map[string]any{"email": "alice@example.com", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])

	c.signUp("Bob", "bob@example.com")
	status, body = c.do(http.MethodGet, "/projects/"+projectID, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = c.do(http.MethodGet, "/projects/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestPublicEndpoints(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	status, body := c.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = c.do(http.MethodGet, "/.well-known/jwks.json", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["keys"], 1)

	status, body = c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "project-tracker", body["service"])

	c.signUp("Alice", "alice@example.com")
	status, body = c.do(http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["items"], "empty list encodes as []")
}

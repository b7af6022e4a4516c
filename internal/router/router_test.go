package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/taskboard/internal/database/dbtest"
	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/metrics"
	"github.com/iliyamo/taskboard/internal/oauth"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/service"
	"github.com/iliyamo/taskboard/internal/utils"
)

const frontend = "http://localhost:4200"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	tokens := utils.NewTokenIssuer("router-secret", time.Hour)

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)
	authSvc := service.NewAuthService(users, tokens, bcrypt.MinCost, nil, rec)

	e := echo.New()
	Setup(e, slog.New(slog.NewJSONHandler(io.Discard, nil)), rec, frontend)
	RegisterRoutes(e, db, reg)
	RegisterAuth(e,
		handler.NewAuthHandler(authSvc, 5*time.Second),
		handler.NewOAuthHandler(authSvc, oauth.NewRegistry(), oauth.NewMemoryStateStore(), time.Minute, frontend, 5*time.Second),
		tokens)
	RegisterProjects(e, handler.NewProjectHandler(service.NewProjectService(projects, tasks, nil), 5*time.Second), tokens)
	RegisterTasks(e, handler.NewTaskHandler(service.NewTaskService(tasks, projects, nil), 5*time.Second), tokens)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestEndToEnd walks register, project, task and stats through the full
// middleware stack.
func TestEndToEnd(t *testing.T) {
	e := newServer(t)

	rec := call(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = call(t, e, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = call(t, e, http.MethodPost, "/projects", login.Token, map[string]string{"title": "Launch"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var project struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, uint64(1), project.ID)

	rec = call(t, e, http.MethodPost, "/tasks", login.Token, map[string]any{"title": "Draft plan", "projectId": project.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "pending", task["status"])
	assert.Nil(t, task["priority"])

	rec = call(t, e, http.MethodGet, "/tasks/stats?projectId=1", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"pending":1,"inProgress":0,"completed":0}`, rec.Body.String())
}

func TestProtectedGroupsRequireToken(t *testing.T) {
	e := newServer(t)
	for _, path := range []string{"/projects", "/projects/1", "/tasks", "/tasks/stats", "/tasks/1", "/auth/me"} {
		rec := call(t, e, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	e := newServer(t)

	rec := call(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = call(t, e, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	call(t, e, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@x.com", "password": "nope"})

	rec = call(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, `taskboard_auth_events_total{event="login",outcome="failure"} 1`)

	rec = call(t, e, http.MethodGet, "/auth/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set(echo.HeaderOrigin, frontend)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, frontend, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/taskboard/internal/database/dbtest"
	"github.com/iliyamo/taskboard/internal/middleware"
	"github.com/iliyamo/taskboard/internal/oauth"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/service"
	"github.com/iliyamo/taskboard/internal/utils"
)

const testFrontend = "http://localhost:4200"

// fakeProvider returns a fixed profile for the code "good".
type fakeProvider struct {
	name    string
	profile oauth.Profile
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/authorize?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (oauth.Profile, error) {
	if code != "good" {
		return oauth.Profile{}, errors.New("bad code")
	}
	return p.profile, nil
}

var _ oauth.Provider = (*fakeProvider)(nil)

type harness struct {
	e      *echo.Echo
	tokens *utils.TokenIssuer
	states *oauth.MemoryStateStore
	google *fakeProvider
}

// newHarness wires every handler to a fresh SQLite database on an echo
// instance laid out like the production router.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.Open(t)
	tokens := utils.NewTokenIssuer("handler-secret", time.Hour)
	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)

	authSvc := service.NewAuthService(users, tokens, bcrypt.MinCost, nil, nil)
	google := &fakeProvider{name: "google", profile: oauth.Profile{
		Email: "ann@x.com", FirstName: "Ann", LastName: "Lee", Provider: "google", ProviderID: "g-1",
	}}
	states := oauth.NewMemoryStateStore()

	a := NewAuthHandler(authSvc, 5*time.Second)
	o := NewOAuthHandler(authSvc, oauth.NewRegistry(google), states, time.Minute, testFrontend, 5*time.Second)
	p := NewProjectHandler(service.NewProjectService(projects, tasks, nil), 5*time.Second)
	tk := NewTaskHandler(service.NewTaskService(tasks, projects, nil), 5*time.Second)

	e := echo.New()
	guard := middleware.JWTAuth(tokens)
	e.POST("/auth/register", a.Register)
	e.POST("/auth/login", a.Login)
	e.GET("/auth/me", a.Me, guard)
	e.GET("/auth/providers", o.List)
	e.GET("/auth/:provider", o.Redirect)
	e.GET("/auth/:provider/callback", o.Callback)

	e.POST("/projects", p.Create, guard)
	e.GET("/projects", p.List, guard)
	e.GET("/projects/:id", p.Get, guard)
	e.PATCH("/projects/:id", p.Update, guard)
	e.DELETE("/projects/:id", p.Delete, guard)

	e.POST("/tasks", tk.Create, guard)
	e.GET("/tasks", tk.List, guard)
	e.GET("/tasks/stats", tk.Stats, guard)
	e.GET("/tasks/:id", tk.Get, guard)
	e.PATCH("/tasks/:id", tk.Update, guard)
	e.DELETE("/tasks/:id", tk.Delete, guard)

	return &harness{e: e, tokens: tokens, states: states, google: google}
}

// do sends a request with an optional JSON body and bearer token.
func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

// signup registers an account and returns its token.
func (h *harness) signup(t *testing.T, email string) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "User", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)
	return out.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

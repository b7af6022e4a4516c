package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTokenServer answers the code exchange with a fixed access token.
func newTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		assert.Equal(t, "test-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider(ProviderConfig{
		ClientID:    "cid",
		RedirectURL: "http://localhost:3000/auth/google/callback",
	})

	u, err := url.Parse(p.AuthCodeURL("st-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/google/callback", q.Get("redirect_uri"))
}

func TestGoogleProvider_Exchange(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK)
	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{
			"sub":         "g-123",
			"email":       "ann@gmail.com",
			"given_name":  "Ann",
			"family_name": "Lee",
			"picture":     "https://img/ann.png",
		})
	}))
	defer infoSrv.Close()

	p := NewGoogleProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL, APIURL: infoSrv.URL})
	prof, err := p.Exchange(context.Background(), "test-code")
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Email: "ann@gmail.com", FirstName: "Ann", LastName: "Lee",
		Avatar: "https://img/ann.png", Provider: "google", ProviderID: "g-123",
	}, prof)
	assert.Equal(t, "Ann Lee", prof.DisplayName())
}

func TestGoogleProvider_ExchangeTokenFailure(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusBadRequest)
	p := NewGoogleProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL})

	_, err := p.Exchange(context.Background(), "bad")
	assert.Error(t, err)
}

func TestGoogleProvider_ExchangeWithoutEmail(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK)
	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sub": "g-1"})
	}))
	defer infoSrv.Close()

	p := NewGoogleProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL, APIURL: infoSrv.URL})
	_, err := p.Exchange(context.Background(), "test-code")
	assert.ErrorIs(t, err, ErrNoEmail)
}

func newGitHubAPI(t *testing.T, user map[string]any, emails []map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		writeJSON(w, user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	p := NewGitHubProvider(ProviderConfig{ClientID: "gh"})
	u, err := url.Parse(p.AuthCodeURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "read:user user:email", u.Query().Get("scope"))
}

func TestGitHubProvider_Exchange(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK)
	api := newGitHubAPI(t, map[string]any{
		"id": 99, "login": "octo", "name": "Octo Cat", "email": "octo@github.com", "avatar_url": "https://avatars/1",
	}, nil)

	p := NewGitHubProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL, APIURL: api.URL})
	prof, err := p.Exchange(context.Background(), "test-code")
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Email: "octo@github.com", FirstName: "Octo Cat", Avatar: "https://avatars/1",
		Provider: "github", ProviderID: "99",
	}, prof)
	assert.Equal(t, "Octo Cat", prof.DisplayName())
}

func TestGitHubProvider_PrivateEmailFallsBackToPrimaryVerified(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK)
	api := newGitHubAPI(t,
		map[string]any{"id": 7, "login": "octo", "name": "", "email": ""},
		[]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "unverified@example.com", "primary": true, "verified": false},
			{"email": "main@example.com", "primary": true, "verified": true},
		})

	p := NewGitHubProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL, APIURL: api.URL})
	prof, err := p.Exchange(context.Background(), "test-code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", prof.Email)
	assert.Equal(t, "octo", prof.FirstName)
	assert.Equal(t, "", prof.LastName)
}

func TestGitHubProvider_NoUsableEmail(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK)
	api := newGitHubAPI(t,
		map[string]any{"id": 7, "login": "octo"},
		[]map[string]any{{"email": "x@example.com", "primary": true, "verified": false}})

	p := NewGitHubProvider(ProviderConfig{ClientID: "cid", ClientSecret: "sec", TokenURL: tokenSrv.URL, APIURL: api.URL})
	_, err := p.Exchange(context.Background(), "test-code")
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewGitHubProvider(ProviderConfig{}), NewGoogleProvider(ProviderConfig{}))
	assert.Equal(t, []string{"github", "google"}, r.Names())

	p, err := r.Get("Google")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	_, err = r.Get("facebook")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestProviderConfig_Configured(t *testing.T) {
	assert.False(t, ProviderConfig{ClientID: "a", ClientSecret: "b"}.Configured())
	assert.True(t, ProviderConfig{ClientID: "a", ClientSecret: "b", RedirectURL: "c"}.Configured())
}

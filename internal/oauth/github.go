package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const defaultGitHubAPIURL = "https://api.github.com"

// GitHubProvider signs users in with GitHub.
type GitHubProvider struct {
	conf   *oauth2.Config
	apiURL string
}

// NewGitHubProvider builds the GitHub provider.  APIURL overrides the REST
// API base.
func NewGitHubProvider(cfg ProviderConfig) *GitHubProvider {
	u := strings.TrimRight(cfg.APIURL, "/")
	if u == "" {
		u = defaultGitHubAPIURL
	}
	return &GitHubProvider{
		conf:   cfg.oauth2Config(endpoints.GitHub, "read:user", "user:email"),
		apiURL: u,
	}
}

func (p *GitHubProvider) Name() string { return "github" }

// AuthCodeURL returns the consent page URL carrying state.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades code for a token and reads /user.  A private email is
// resolved through /user/emails, taking the primary verified address.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to exchange token: %w", err)
	}
	client := p.conf.Client(ctx, tok)

	var u githubUser
	if err := getJSON(ctx, client, p.apiURL+"/user", &u); err != nil {
		return Profile{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	if u.ID == 0 {
		return Profile{}, fmt.Errorf("empty id in user response")
	}

	email := u.Email
	if email == "" {
		if email, err = p.primaryEmail(ctx, client); err != nil {
			return Profile{}, err
		}
	}

	first := u.Name
	if first == "" {
		first = u.Login
	}
	return Profile{
		Email:      email,
		FirstName:  first,
		Avatar:     u.AvatarURL,
		Provider:   p.Name(),
		ProviderID: strconv.FormatInt(u.ID, 10),
	}, nil
}

func (p *GitHubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []githubEmail
	if err := getJSON(ctx, client, p.apiURL+"/user/emails", &emails); err != nil {
		return "", fmt.Errorf("failed to fetch emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified && e.Email != "" {
			return e.Email, nil
		}
	}
	return "", ErrNoEmail
}

// compile-time interface check
var _ Provider = (*GitHubProvider)(nil)

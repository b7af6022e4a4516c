package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleProvider signs users in with Google.
type GoogleProvider struct {
	conf        *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider builds the Google provider.  APIURL overrides the
// userinfo endpoint.
func NewGoogleProvider(cfg ProviderConfig) *GoogleProvider {
	u := cfg.APIURL
	if u == "" {
		u = defaultGoogleUserInfoURL
	}
	return &GoogleProvider{
		conf:        cfg.oauth2Config(endpoints.Google, "openid", "email", "profile"),
		userInfoURL: u,
	}
}

func (p *GoogleProvider) Name() string { return "google" }

// AuthCodeURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

type googleUserInfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// Exchange trades code for a token and reads the userinfo endpoint.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to exchange token: %w", err)
	}

	var info googleUserInfo
	if err := getJSON(ctx, p.conf.Client(ctx, tok), p.userInfoURL, &info); err != nil {
		return Profile{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if info.Sub == "" {
		return Profile{}, fmt.Errorf("empty sub in user info response")
	}
	if info.Email == "" {
		return Profile{}, ErrNoEmail
	}

	return Profile{
		Email:      info.Email,
		FirstName:  info.GivenName,
		LastName:   info.FamilyName,
		Avatar:     info.Picture,
		Provider:   p.Name(),
		ProviderID: info.Sub,
	}, nil
}

// compile-time interface check
var _ Provider = (*GoogleProvider)(nil)

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/oauth"
	"github.com/iliyamo/taskboard/internal/service"
)

// OAuthHandler runs the provider handshake and hands the resulting session
// to the frontend through a popup page.
type OAuthHandler struct {
	Auth        *service.AuthService
	Providers   *oauth.Registry
	States      oauth.StateStore
	StateTTL    time.Duration
	FrontendURL string
	Timeout     time.Duration
}

func NewOAuthHandler(auth *service.AuthService, providers *oauth.Registry, states oauth.StateStore,
	stateTTL time.Duration, frontendURL string, timeout time.Duration) *OAuthHandler {
	return &OAuthHandler{
		Auth:        auth,
		Providers:   providers,
		States:      states,
		StateTTL:    stateTTL,
		FrontendURL: frontendURL,
		Timeout:     timeout,
	}
}

// List: names of the configured providers.
func (h *OAuthHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"providers": h.Providers.Names()})
}

// Redirect: send the browser to the provider's consent page with a fresh
// one-shot state.
func (h *OAuthHandler) Redirect(c echo.Context) error {
	p, err := h.Providers.Get(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	state, err := oauth.NewState()
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.States.Save(ctx, state, p.Name(), h.StateTTL); err != nil {
		return respondError(c, err)
	}
	return c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

// Callback: finish the handshake.  Every failure after the provider is
// known renders the failure popup instead of an error response.
func (h *OAuthHandler) Callback(c echo.Context) error {
	p, err := h.Providers.Get(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.complete(ctx, c, p)
	if err != nil {
		slog.WarnContext(ctx, "oauth callback failed",
			slog.String("provider", p.Name()),
			slog.String("error", err.Error()),
		)
		return oauth.RenderPopup(c.Response(), oauth.FailureMessage(), h.FrontendURL)
	}

	return oauth.RenderPopup(c.Response(), oauth.SuccessMessage(oauth.PopupResponse{
		Token: res.Token,
		User: oauth.PopupUser{
			ID:     res.User.ID,
			Email:  res.User.Email,
			Name:   res.User.Name,
			Avatar: res.User.Avatar,
		},
	}), h.FrontendURL)
}

var (
	errProviderDenied = errors.New("provider returned an error")
	errStateMismatch  = errors.New("state issued for another provider")
)

func (h *OAuthHandler) complete(ctx context.Context, c echo.Context, p oauth.Provider) (*service.OAuthResult, error) {
	if e := c.QueryParam("error"); e != "" {
		return nil, errProviderDenied
	}
	code, state := c.QueryParam("code"), c.QueryParam("state")
	if code == "" || state == "" {
		return nil, errors.New("missing code or state")
	}

	owner, err := h.States.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if owner != p.Name() {
		return nil, errStateMismatch
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return h.Auth.ResolveOAuth(ctx, profile)
}

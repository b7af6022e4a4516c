package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/service"
)

// AuthHandler serves password registration, login and the current user.
type AuthHandler struct {
	Auth    *service.AuthService
	Timeout time.Duration
}

func NewAuthHandler(auth *service.AuthService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{Auth: auth, Timeout: timeout}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}
type loginResp struct {
	Token string `json:"token"`
}

// Register: create a password account and return a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return respondError(c, err)
	}

	user := toUserPart(res.User)
	user.Avatar = nil
	return c.JSON(http.StatusCreated, registerResp{Token: res.Token, User: user})
}

// Login: verify the password and return only the token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: res.Token})
}

// Me: profile of the authenticated caller.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Auth.Me(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

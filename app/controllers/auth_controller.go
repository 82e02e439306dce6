package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/kashvi-shop/app/resources"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-shop/pkg/session"
)

type AuthController struct {
	auth      *services.AuthService
	principal *services.PrincipalResolver
}

func NewAuthController(auth *services.AuthService, principal *services.PrincipalResolver) *AuthController {
	return &AuthController{auth: auth, principal: principal}
}

// POST /register
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.Credentials
	if !c.BindJSON(&in) {
		return
	}
	user, err := ac.auth.Register(c.Context(), in)
	if errors.Is(err, services.ErrEmailTaken) {
		c.Error(http.StatusConflict, "Email already in use.")
		return
	}
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Created(resources.NewUser(*user))
}

// POST /login answers a bearer token and also logs the session in.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.Credentials
	if !c.DecodeJSON(&in) {
		return
	}
	user, token, err := ac.auth.Login(c.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		logger.WithCtx(c.Context()).Info("auth: login failed", "ip", c.ClientIP())
		c.Error(http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if err != nil {
		fail(c, err, "")
		return
	}

	sess := session.FromCtx(c.R)
	sess.Regenerate(c.Context())
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRoles, user.Roles)
	c.Success(map[string]string{"token": token})
}

// POST /logout
func (ac *AuthController) Logout(c *ctx.Context) {
	session.FromCtx(c.R).Invalidate(c.Context())
	c.Success(map[string]string{"status": "Logged out"})
}

// GET /api/me
func (ac *AuthController) Me(c *ctx.Context) {
	user, err := ac.principal.CurrentUser(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Success(resources.NewUser(*user))
}

package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	"github.com/nyayamitra/nyaya-mitra/internal/utils"
)

// Context keys set by the authenticator. Handlers read the identity via
// CurrentUser; user_id and role are also stored as plain scalars for code
// that only needs one of them.
const (
	ctxUserKey  = "auth_user"
	ctxTokenKey = "auth_token"
)

// Auth returns the middleware guarding protected routes. It extracts a
// bearer token from the Authorization header, the token cookie, or the
// token query parameter (in that precedence order), verifies the JWT, and
// then requires a matching active, unexpired session whose user is still
// active. On success the session's last_accessed is touched and the
// caller's identity is attached to the context.
func Auth(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, token, err := authenticate(c, secret, sessions)
			if err != nil {
				return err
			}
			attachIdentity(c, user, token)
			return next(c)
		}
	}
}

// OptionalAuth performs the same lookup as Auth but never fails the
// request: absent or invalid credentials simply leave the identity unset.
// Used by endpoints that accept both anonymous and authenticated
// submissions (civic feedback, whistleblower reports).
func OptionalAuth(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, token, err := authenticate(c, secret, sessions)
			if err == nil {
				attachIdentity(c, user, token)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the identity attached by Auth/OptionalAuth, or nil
// when the request is anonymous.
func CurrentUser(c echo.Context) *model.AuthUser {
	if u, ok := c.Get(ctxUserKey).(*model.AuthUser); ok {
		return u
	}
	return nil
}

// CurrentToken returns the raw access token of the authenticated request.
func CurrentToken(c echo.Context) string {
	if t, ok := c.Get(ctxTokenKey).(string); ok {
		return t
	}
	return ""
}

func authenticate(c echo.Context, secret string, sessions *repository.SessionRepo) (*model.AuthUser, string, error) {
	token := extractToken(c)
	if token == "" {
		return nil, "", apperror.New(http.StatusUnauthorized, "NO_TOKEN", "Access denied. No token provided.")
	}

	if _, err := utils.ParseAccessToken(secret, token); err != nil {
		return nil, "", apperror.New(http.StatusUnauthorized, "JWT_INVALID", "Invalid token.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, user, err := sessions.FindActiveWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperror.New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token.")
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", apperror.New(http.StatusUnauthorized, "ACCOUNT_DEACTIVATED", "Account is deactivated.")
	}

	// Touch is best-effort; a failed stamp must not reject the request.
	if err := sessions.Touch(ctx, token); err != nil {
		c.Logger().Warnf("session touch failed: %v", err)
	}

	return &model.AuthUser{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		UserType:   user.UserType,
		IsVerified: user.IsVerified,
	}, token, nil
}

// extractToken checks the Authorization header, then the token cookie, then
// the token query parameter.
func extractToken(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := c.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return c.QueryParam("token")
}

func attachIdentity(c echo.Context, u *model.AuthUser, token string) {
	c.Set(ctxUserKey, u)
	c.Set(ctxTokenKey, token)
	c.Set("user_id", u.ID)
	c.Set("role", u.UserType)
}

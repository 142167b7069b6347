package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/config"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	"github.com/nyayamitra/nyaya-mitra/internal/utils"
)

// Extended lifetimes applied when the client asks to stay signed in.
const (
	rememberAccessTTL  = 7 * 24 * time.Hour
	rememberRefreshTTL = 30 * 24 * time.Hour
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg           config.Config
	Users         *repository.UserRepo
	Sessions      *repository.SessionRepo
	Notifications *repository.NotificationRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, n *repository.NotificationRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Notifications: n}
}

// ----- DTOs -----

type registerReq struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone"`
	UserType string  `json:"userType"`
}

type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID         uint64 `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	UserType   string `json:"userType"`
	IsVerified bool   `json:"isVerified"`
}

type authResp struct {
	Message      string   `json:"message"`
	User         userPart `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"` // seconds until the access token expires
}

// Register creates a citizen or lawyer account and signs the caller in
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	fields := map[string]string{}
	if len(req.Username) < 3 {
		fields["username"] = "Username must be at least 3 characters"
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "A valid email is required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if req.FullName == "" {
		fields["fullName"] = "Full name is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	userType := strings.ToLower(strings.TrimSpace(req.UserType))
	if userType != model.RoleLawyer {
		userType = model.RoleCitizen
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, req.FullName, req.Phone, userType, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return apperror.New(http.StatusConflict, "USER_EXISTS", "User with this email or username already exists")
		}
		return err
	}

	access, refresh, expiresAt, err := h.issueTokens(uid, userType, false)
	if err != nil {
		return err
	}
	if err := h.createSession(c, uid, access.Token, refresh.Token, expiresAt, false); err != nil {
		return err
	}

	// Welcome note; failures never block registration.
	_ = h.Notifications.Create(ctx, uid,
		"Welcome to Nyaya Mitra",
		"Your account has been created successfully. Explore legal services, document analysis and more.",
		"info", "account", "normal")

	return c.JSON(http.StatusCreated, authResp{
		Message:      "Registration successful",
		User:         userPart{ID: uid, Username: req.Username, Email: req.Email, FullName: req.FullName, UserType: userType},
		Token:        access.Token,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(time.Until(access.Exp).Seconds()),
	})
}

// Login verifies credentials and opens a new session. rememberMe stretches
// both token lifetimes and the session expiry.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return validationError(map[string]string{
			"email":    "Email is required",
			"password": "Password is required",
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !u.IsActive {
		return apperror.New(http.StatusUnauthorized, "ACCOUNT_DEACTIVATED", "Account is deactivated.")
	}

	access, refresh, expiresAt, err := h.issueTokens(u.ID, u.UserType, req.RememberMe)
	if err != nil {
		return err
	}
	if err := h.createSession(c, u.ID, access.Token, refresh.Token, expiresAt, req.RememberMe); err != nil {
		return err
	}
	if err := h.Users.UpdateLastLogin(ctx, u.ID); err != nil {
		c.Logger().Warnf("last_login stamp failed for user %d: %v", u.ID, err)
	}

	return c.JSON(http.StatusOK, authResp{
		Message:      "Login successful",
		User:         userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName, UserType: u.UserType, IsVerified: u.IsVerified},
		Token:        access.Token,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(time.Until(access.Exp).Seconds()),
	})
}

// RefreshToken mints a fresh access token for a valid refresh token and
// rotates it onto the same session row.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest("Refresh token is required")
	}

	if _, err := utils.ParseRefreshToken(h.Cfg.JWTRefreshSecret, req.RefreshToken); err != nil {
		return apperror.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Sessions.FindActiveByRefresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
		}
		return err
	}

	u, err := h.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return apperror.New(http.StatusUnauthorized, "ACCOUNT_DEACTIVATED", "Account is deactivated.")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.UserType, time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return err
	}
	if err := h.Sessions.RotateAccessToken(ctx, req.RefreshToken, access.Token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Token refreshed successfully",
		"token":     access.Token,
		"expiresIn": int64(time.Until(access.Exp).Seconds()),
	})
}

// Logout deactivates the session of the presented token, when there is
// one. Idempotent: a missing, invalid or already-deactivated token still
// gets a success response, so clients can always clear their state.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.CurrentToken(c); token != "" {
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := h.Sessions.Deactivate(ctx, token); err != nil {
			c.Logger().Warnf("session deactivate failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

// Me returns the authenticated user's full profile.
func (h *AuthHandler) Me(c echo.Context) error {
	au := middleware.CurrentUser(c)
	if au == nil {
		return apperror.New(http.StatusUnauthorized, "NOT_AUTHENTICATED", "Not authenticated")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, au.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profileResp(u)})
}

func (h *AuthHandler) issueTokens(uid uint64, userType string, rememberMe bool) (utils.AccessToken, utils.RefreshToken, time.Time, error) {
	accessTTL := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	refreshTTL := time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
	if rememberMe {
		accessTTL = rememberAccessTTL
		refreshTTL = rememberRefreshTTL
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, userType, accessTTL)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, time.Time{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, uid, refreshTTL)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, time.Time{}, err
	}
	// The session lives as long as the refresh token.
	return access, refresh, refresh.Exp, nil
}

func (h *AuthHandler) createSession(c echo.Context, uid uint64, accessToken, refreshToken string, expiresAt time.Time, rememberMe bool) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ip := c.RealIP()
	ua := c.Request().UserAgent()
	device := fmt.Sprintf(`{"device":"web","rememberMe":%t}`, rememberMe)
	sess := model.Session{
		UserID:       uid,
		SessionToken: accessToken,
		RefreshToken: refreshToken,
		DeviceInfo:   &device,
		ExpiresAt:    expiresAt,
	}
	if ip != "" {
		sess.IPAddress = &ip
	}
	if ua != "" {
		sess.UserAgent = &ua
	}
	_, err := h.Sessions.Create(ctx, sess)
	return err
}

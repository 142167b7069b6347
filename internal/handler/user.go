package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// UserHandler serves the profile and admin user-management endpoints.
type UserHandler struct {
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

func NewUserHandler(u *repository.UserRepo, s *repository.SessionRepo) *UserHandler {
	return &UserHandler{Users: u, Sessions: s}
}

type profile struct {
	ID           uint64     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Phone        *string    `json:"phone"`
	Address      *string    `json:"address"`
	UserType     string     `json:"userType"`
	ProfileImage *string    `json:"profileImage"`
	IsVerified   bool       `json:"isVerified"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func profileResp(u model.User) profile {
	return profile{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Address:      u.Address,
		UserType:     u.UserType,
		ProfileImage: u.ProfileImage,
		IsVerified:   u.IsVerified,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
	}
}

// GetProfile returns the caller's profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	au := middleware.CurrentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, au.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profileResp(u)})
}

type updateProfileReq struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UpdateProfile applies the provided fields. Absent fields stay unchanged;
// a body with no updatable field at all is rejected.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	au := middleware.CurrentUser(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.FullName == nil && req.Phone == nil && req.Address == nil {
		return apperror.New(http.StatusBadRequest, "NO_UPDATE_FIELDS", "No fields to update")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return validationError(map[string]string{"fullName": "Full name cannot be empty"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, au.ID, req.FullName, req.Phone, req.Address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "NOT_FOUND", "User not found")
		}
		return err
	}

	u, err := h.Users.GetByID(ctx, au.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    profileResp(u),
	})
}

type adminUserResp struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"fullName"`
	UserType   string     `json:"userType"`
	IsVerified bool       `json:"isVerified"`
	IsActive   bool       `json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ListAll returns every account, newest-first, with optional search and
// userType filters. Admin only.
func (h *UserHandler) ListAll(c echo.Context) error {
	p := parsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, c.QueryParam("search"), c.QueryParam("userType"), p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			FullName:   u.FullName,
			UserType:   u.UserType,
			IsVerified: u.IsVerified,
			IsActive:   u.IsActive,
			LastLogin:  u.LastLogin,
			CreatedAt:  u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      out,
		"pagination": newPageMeta(p, total),
	})
}

type updateStatusReq struct {
	IsActive   *bool `json:"isActive"`
	IsVerified *bool `json:"isVerified"`
}

// UpdateStatus activates or deactivates an account and optionally flips
// its verified flag. Deactivating also logs the user out everywhere.
// Admin only; admins cannot modify themselves.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.IsActive == nil {
		return validationError(map[string]string{"isActive": "isActive is required"})
	}
	if id == au.ID {
		return apperror.New(http.StatusBadRequest, "CANNOT_MODIFY_SELF", "Cannot modify your own status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, *req.IsActive, req.IsVerified); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		}
		return err
	}
	if !*req.IsActive {
		if err := h.Sessions.DeactivateAllForUser(ctx, id); err != nil {
			c.Logger().Warnf("session sweep failed for user %d: %v", id, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User status updated successfully"})
}

// Delete removes an account; related rows go with it through the schema's
// cascading foreign keys. Admin only; admins cannot delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if id == au.ID {
		return apperror.New(http.StatusBadRequest, "CANNOT_DELETE_SELF", "Cannot delete your own account")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User account deleted successfully"})
}

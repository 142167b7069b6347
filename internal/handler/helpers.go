// Package handler implements the HTTP endpoints of the API.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pagination holds the normalized page/limit query parameters.
type pagination struct {
	Page   int
	Limit  int
	Offset int
}

// parsePagination reads page and limit, clamping to sane bounds.
func parsePagination(c echo.Context) pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// pageMeta is the pagination block attached to list responses.
type pageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func newPageMeta(p pagination, total int) pageMeta {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return pageMeta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// validationError builds the 400 VALIDATION_ERROR response carrying
// per-field messages.
func validationError(fields map[string]string) error {
	return apperror.New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed").
		WithDetails(fields)
}

func badRequest(message string) error {
	return apperror.New(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

func strPtr(s string) *string { return &s }

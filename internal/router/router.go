// Package router defines how HTTP routes are registered for the API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/config"
	"github.com/nyayamitra/nyaya-mitra/internal/handler"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Documents     *handler.DocumentHandler
	Cases         *handler.CaseHandler
	SOS           *handler.SOSHandler
	Feedback      *handler.FeedbackHandler
	Whistleblower *handler.WhistleblowerHandler
	Consultations *handler.ConsultationHandler
	Notifications *handler.NotificationHandler
}

// New builds the Echo instance with all middleware and routes mounted.
// rdb may be nil; rate limiting and response caching then degrade to
// pass-throughs.
func New(cfg config.Config, sessions *repository.SessionRepo, rdb *redis.Client, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(cfg.Env)

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	strict := middleware.NewTokenBucket(config.LoadStrictRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	auth := middleware.Auth(cfg.JWTSecret, sessions)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret, sessions)

	e.GET("/api/health", handler.Health)

	api := e.Group("/api")

	// Auth. Login and register carry the strict limiter against credential
	// stuffing.
	ag := api.Group("/auth")
	ag.POST("/register", h.Auth.Register, strict)
	ag.POST("/login", h.Auth.Login, strict)
	ag.POST("/refresh-token", h.Auth.RefreshToken)
	// Logout is idempotent: it succeeds with or without a usable token, so
	// the identity is attached best-effort only.
	ag.POST("/logout", h.Auth.Logout, optionalAuth)
	ag.GET("/me", h.Auth.Me, auth)

	// Profile, plus the admin-only user management surface.
	ug := api.Group("/users", auth)
	ug.GET("/profile", h.Users.GetProfile)
	ug.PUT("/profile", h.Users.UpdateProfile)
	ug.GET("/all", h.Users.ListAll, middleware.AdminOnly())
	ug.PUT("/:id/status", h.Users.UpdateStatus, middleware.AdminOnly())
	ug.DELETE("/:id", h.Users.Delete, middleware.AdminOnly())

	// Documents. The body limit leaves headroom above the 10 MiB file cap
	// for the multipart framing.
	dg := api.Group("/documents", auth)
	dg.POST("/upload", h.Documents.Upload, echomw.BodyLimit("11M"))
	dg.GET("", h.Documents.List)
	dg.GET("/:id/analysis", h.Documents.GetAnalysis)
	dg.POST("/:id/re-analyze", h.Documents.ReAnalyze)
	dg.DELETE("/:id", h.Documents.Delete)

	// Cases.
	cg := api.Group("/cases", auth)
	cg.GET("", h.Cases.List)
	cg.POST("", h.Cases.Create)

	// SOS. The helpline directory is public and cached.
	sg := api.Group("/sos")
	sg.POST("/alert", h.SOS.CreateAlert, auth)
	sg.GET("/alerts", h.SOS.ListAlerts, auth)
	sg.PUT("/alerts/:id", h.SOS.UpdateAlert, auth)
	sg.DELETE("/alerts/:id", h.SOS.DeleteAlert, auth)
	sg.GET("/stats", h.SOS.Stats, auth)
	sg.GET("/emergency-contacts", h.SOS.EmergencyContacts, cache)

	// Civic feedback accepts anonymous submissions.
	fg := api.Group("/feedback")
	fg.POST("", h.Feedback.Create, optionalAuth)
	fg.GET("", h.Feedback.ListMine, auth)

	// Whistleblower reports: anonymous submission, public status lookup.
	wg := api.Group("/whistleblower")
	wg.POST("/report", h.Whistleblower.Create, optionalAuth)
	wg.GET("/status/:reportId", h.Whistleblower.Status, cache)

	// Consultations.
	kg := api.Group("/consultations", auth)
	kg.GET("", h.Consultations.List)
	kg.POST("/book", h.Consultations.Book)

	// Notifications.
	ng := api.Group("/notifications", auth)
	ng.GET("", h.Notifications.List)
	ng.PUT("/:id/read", h.Notifications.MarkRead)
	ng.POST("/mark-all-read", h.Notifications.MarkAllRead)

	// Unknown API paths get the envelope instead of Echo's default body.
	e.Any("/api/*", func(c echo.Context) error {
		return apperror.New(http.StatusNotFound, "NOT_FOUND", "API endpoint not found")
	})

	return e
}

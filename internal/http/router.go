package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Apply session middleware if enabled
	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)

		// API token management endpoints
		tokenController := auth.NewAPITokenController(cfg.AuthService)
		router.POST("/api/auth/token", tokenController.GenerateToken)
		router.DELETE("/api/auth/token", tokenController.RevokeToken)

		// Profile routes
		profileController := NewProfileController(cfg.AuthService, cfg.SessionManager, cfg.ProgressStore, cfg.Auditor)
		router.POST("/api/profile/password", profileController.ChangePassword)
		router.DELETE("/api/account", profileController.DeleteAccount)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book lookup endpoint
	if cfg.BooksClient != nil {
		searchController := NewSearchController(cfg.BooksClient)
		router.GET("/api/search", searchController.Search)
	}

	// Progress endpoints
	if cfg.ProgressStore != nil {
		favouritesController := NewFavouritesController(cfg.ProgressStore, cfg.Auditor)
		router.GET("/api/favourites", favouritesController.ListFavourites)
		router.POST("/api/favourites/:bookId", favouritesController.AddFavourite)
		router.DELETE("/api/favourites/:bookId", favouritesController.RemoveFavourite)

		bookmarksController := NewBookmarksController(cfg.ProgressStore, cfg.Auditor)
		router.GET("/api/bookmarks", bookmarksController.ListBookmarks)
		router.PUT("/api/bookmarks/:bookId", bookmarksController.UpdateBookmark)

		notesController := NewNotesController(cfg.ProgressStore, cfg.Auditor)
		router.GET("/api/notes", notesController.ListNotes)
		router.POST("/api/notes/:bookId", notesController.AddNote)

		activityController := NewActivityController(cfg.ProgressStore, cfg.Auditor)
		router.GET("/api/activity", activityController.GetStreak)
		router.POST("/api/activity", activityController.RecordActivity)

		dashboardController := NewDashboardController(cfg.ProgressStore)
		router.GET("/api/dashboard", dashboardController.Dashboard)
	}

	return router
}

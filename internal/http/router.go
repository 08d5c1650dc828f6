package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
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
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
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
		// No auth - inject default librarian ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyLibrarianID, auth.DefaultLibrarianID)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Catalog)
	shelvesController := NewShelvesController(cfg.Catalog)
	membersController := NewMembersController(cfg.Members)
	circulationController := NewCirculationController(cfg.Circulation)
	archiveController := NewArchiveController(cfg.Archive)
	dashboardController := NewDashboardController(cfg.Reports)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog endpoints
	router.GET("/api/books", booksController.ListBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Shelf endpoints
	router.GET("/api/shelves", shelvesController.ListShelves)
	router.POST("/api/shelves", shelvesController.CreateShelf)
	router.GET("/api/shelves/:id", shelvesController.GetShelf)
	router.DELETE("/api/shelves/:id", shelvesController.DeleteShelf)

	// Member endpoints
	router.GET("/api/members", membersController.ListMembers)
	router.POST("/api/members", membersController.CreateMember)
	router.GET("/api/members/:id", membersController.GetMember)
	router.PUT("/api/members/:id", membersController.UpdateMember)
	router.DELETE("/api/members/:id", membersController.DeleteMember)

	// Circulation endpoints
	router.GET("/api/transactions", circulationController.ListTransactions)
	router.POST("/api/transactions", circulationController.Borrow)
	router.GET("/api/transactions/:id", circulationController.GetTransaction)
	router.POST("/api/transactions/:id/return", circulationController.Return)
	router.DELETE("/api/transactions/:id", circulationController.DeleteTransaction)

	// Archive endpoints
	router.GET("/api/archive/:type", archiveController.List)
	router.POST("/api/archive/:type/:id/restore", archiveController.Restore)

	// Dashboard endpoints
	router.GET("/api/dashboard/counts", dashboardController.Counts)
	router.GET("/api/dashboard/due-soon", dashboardController.DueSoon)

	// Digest endpoints
	if cfg.DigestScheduler != nil {
		digestController := NewDigestController(cfg.DigestScheduler)
		router.GET("/api/digest/status", digestController.Status)
		router.POST("/api/digest/run", digestController.RunNow)
	}

	return router
}

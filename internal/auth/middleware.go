package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/config"
)

// Context keys for the resolved tenant
const (
	ContextKeyLibrarianID = "auth_librarian_id"
	ContextKeyUsername    = "auth_username"
)

// DefaultLibrarianID is used when authentication is disabled.
const DefaultLibrarianID = uint(0)

// Middleware resolves the librarian id for every request and rejects
// unauthenticated ones.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/ping":        true,
		"/api/auth":    true, // Login and signup prefix
		"/favicon.ico": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

// noAuthHandler injects DefaultLibrarianID when auth is disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyLibrarianID, DefaultLibrarianID)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		librarianID := m.sessionManager.GetLibrarianID(c.Request)
		if librarianID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyLibrarianID, librarianID)
		c.Set(ContextKeyUsername, m.sessionManager.GetString(c.Request.Context(), SessionKeyUsername))
		c.Next()
	}
}

func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	for prefix := range m.publicPaths {
		if strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// LibrarianID extracts the resolved tenant id from the Gin context.
func LibrarianID(c *gin.Context) uint {
	if v, exists := c.Get(ContextKeyLibrarianID); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return DefaultLibrarianID
}

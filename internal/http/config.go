package http

import (
	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/database"
	"github.com/shelfward/shelfward/internal/database/archive"
	"github.com/shelfward/shelfward/internal/database/catalog"
	"github.com/shelfward/shelfward/internal/database/circulation"
	"github.com/shelfward/shelfward/internal/database/members"
	"github.com/shelfward/shelfward/internal/database/reports"
	"github.com/shelfward/shelfward/internal/scheduler"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core stores
	Catalog     *catalog.Repository
	Members     *members.Repository
	Circulation *circulation.Engine
	Archive     *archive.Repository
	Reports     *reports.Repository
	Database    *database.Database

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Background digest scheduler (optional)
	DigestScheduler *scheduler.OverdueDigestScheduler

	// Application info
	Version string
}

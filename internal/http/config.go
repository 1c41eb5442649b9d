package http

import (
	"github.com/shelfmate/shelfmate/internal/audit"
	"github.com/shelfmate/shelfmate/internal/auth"
	"github.com/shelfmate/shelfmate/internal/books"
	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/database"
	"github.com/shelfmate/shelfmate/internal/progress"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	ProgressStore *progress.Store
	BooksClient   *books.Client
	Auditor       *audit.Auditor

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}

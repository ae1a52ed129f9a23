package http

import (
	"github.com/dangcap/market/internal/auth"
	"github.com/dangcap/market/internal/database"
	"github.com/dangcap/market/internal/uploads"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	UserStore     UserStore
	CategoryStore CategoryStore
	ProductStore  ProductStore

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	TokenIssuer    *auth.TokenIssuer
	Gate           *auth.Gate
	CSRFSecret     []byte
	SecureCookies  bool

	// Image uploads (nil disables multipart image handling)
	ImageStore *uploads.Store

	// UI paths
	TemplatesPath string
	StaticPath    string

	// CORS allow-list for the SPA frontend
	CORSOrigins []string

	// Application info
	Version string
}

// Package auth provides authentication and authorization for the application.
//
// Two credential kinds are accepted:
//   - Session cookies, issued at login and held server-side (scs/sqlite3store)
//   - Bearer JWTs, issued at API login and verified statelessly
//
// The Gate composes both into four route predicates: RequireUser and
// RequireAdmin for page routes (redirect to login / rendered 403), and
// RequireUserAPI and RequireAdminAPI for API routes (JSON 401/403). API
// predicates check the bearer token first and fall back to the session; an
// invalid token is treated as absent, never as an outright rejection.
//
// # Configuration
//
//	SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	SESSION_LIFETIME=24h           # Fixed session lifetime from creation
//	JWT_SECRET=<string>            # Auto-generated if empty (tokens then die with the process)
//	JWT_EXPIRY=24h                 # Bearer token lifetime
//	BCRYPT_COST=10                 # bcrypt cost factor
//	SECURE_COOKIES=false           # Set true behind HTTPS
//
// # Usage
//
// Wire the gate in the entrypoint:
//
//	service := auth.NewService(usersRepo, cfg.Auth)
//	gate := auth.NewGate(sessionManager, tokenIssuer)
//	admin := api.Group("/categories", gate.RequireAdminAPI())
//
// Extract the caller in handlers:
//
//	username := auth.GetUsername(c)
//	role := auth.GetUserRole(c)
package auth

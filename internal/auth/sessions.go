package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyRole     = "role"
	SessionKeyReturnTo = "return_to"
)

func init() {
	// Register types that will be stored in sessions
	gob.Register(entities.UserRole(""))
}

// SessionManager wraps scs.SessionManager with application-specific methods.
// Sessions carry the identity and a role snapshot taken at login; a role
// change does not propagate to active sessions until the user logs in again.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// application's SQLite database.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	// Fixed lifetime from creation, no idle timeout
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = 0

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession creates a new session for a user after successful
// authentication. The session token is renewed to prevent fixation; any
// stashed return path from before the login survives the renewal.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	returnTo := sm.GetString(r.Context(), SessionKeyReturnTo)

	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	// Store user ID as int to match GetInt() retrieval
	sm.Put(r.Context(), SessionKeyUserID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyRole, user.Role)
	if returnTo != "" {
		sm.Put(r.Context(), SessionKeyReturnTo, returnTo)
	}

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID retrieves the user ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

// GetUsername retrieves the username from the session.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// GetUserRole retrieves the user role snapshot from the session.
func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.UserRole)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated returns true if the request has a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}

// StashReturnTo records the path an anonymous request was denied on, so the
// login handler can send the user back there after authentication.
func (sm *SessionManager) StashReturnTo(r *http.Request, path string) {
	sm.Put(r.Context(), SessionKeyReturnTo, path)
}

// PopReturnTo consumes the stashed return path. The path is cleared on read
// so the redirect-back happens exactly once; subsequent logins go to "/".
func (sm *SessionManager) PopReturnTo(r *http.Request) string {
	return sm.PopString(r.Context(), SessionKeyReturnTo)
}

package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/entities"
)

// Context keys for the authenticated identity
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyMethod   = "auth_method"
)

// LoginPath is where page-style denials redirect anonymous users.
const LoginPath = "/users/login"

// AuthMethod indicates which credential authenticated the request.
type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodBearer  AuthMethod = "bearer"
)

// Identity is the result of a successful credential check.
type Identity struct {
	UserID   uint // 0 for bearer credentials, which carry no database ID
	Username string
	Role     entities.UserRole
	Method   AuthMethod
}

// credentialProvider inspects a request for one kind of credential.
// It returns (nil, nil) when no credential of its kind is offered, and
// (nil, err) when a credential is present but fails verification.
type credentialProvider func(c *gin.Context) (*Identity, error)

// Gate is the authorization layer in front of the handlers. It composes the
// session manager and token issuer into tiered predicates for page and API
// routes.
//
// Credential precedence is an ordered chain: bearer token first, then session
// cookie, stopping at the first identity. An invalid bearer token is treated
// exactly like an absent one - it is logged and the chain moves on to the
// session. Tightening that (rejecting on a bad token even when a valid
// session exists) would break clients that send stale tokens alongside live
// cookies, so the fallback is intentional.
type Gate struct {
	sessions  *SessionManager
	tokens    *TokenIssuer
	forbidden func(c *gin.Context, message string)
}

// NewGate creates the access gate from its two credential sources.
func NewGate(sessions *SessionManager, tokens *TokenIssuer) *Gate {
	g := &Gate{sessions: sessions, tokens: tokens}
	g.forbidden = func(c *gin.Context, message string) {
		c.String(http.StatusForbidden, "Access Denied: %s", message)
	}
	return g
}

// SetForbiddenRenderer replaces the default plain-text 403 page, letting the
// page controllers render their error template instead.
func (g *Gate) SetForbiddenRenderer(fn func(c *gin.Context, message string)) {
	if fn != nil {
		g.forbidden = fn
	}
}

// identify folds over the credential chain and returns the first identity.
func (g *Gate) identify(c *gin.Context) *Identity {
	providers := []credentialProvider{g.bearerCredential, g.sessionCredential}
	for _, provider := range providers {
		identity, err := provider(c)
		if identity != nil {
			return identity
		}
		if err != nil {
			// Invalid credential: log and fall through to the next provider
			log.Printf("auth: credential rejected for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
	}
	return nil
}

// bearerCredential verifies an Authorization: Bearer header if one is present.
func (g *Gate) bearerCredential(c *gin.Context) (*Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, nil
	}

	claims, err := g.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	return &Identity{
		Username: claims.Username,
		Role:     claims.Role,
		Method:   AuthMethodBearer,
	}, nil
}

// sessionCredential reads the session loaded by LoadAndSave.
func (g *Gate) sessionCredential(c *gin.Context) (*Identity, error) {
	if g.sessions == nil {
		return nil, nil
	}

	userID := g.sessions.GetUserID(c.Request)
	if userID == 0 {
		return nil, nil
	}

	return &Identity{
		UserID:   userID,
		Username: g.sessions.GetUsername(c.Request),
		Role:     g.sessions.GetUserRole(c.Request),
		Method:   AuthMethodSession,
	}, nil
}

// redirectToLogin stashes the denied path and sends the browser to the login
// form. The stashed path is consumed once by the login success handler.
func (g *Gate) redirectToLogin(c *gin.Context) {
	if g.sessions != nil {
		g.sessions.StashReturnTo(c.Request, c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// RequireUser guards page routes that need an authenticated session.
// Anonymous requests are redirected to the login form.
func (g *Gate) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := g.sessionCredential(c)
		if identity == nil {
			g.redirectToLogin(c)
			return
		}
		g.setIdentity(c, identity)
		c.Next()
	}
}

// RequireAdmin guards page routes that need an admin session. Anonymous
// requests are redirected to login; authenticated non-admins get a rendered
// 403 page.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := g.sessionCredential(c)
		if identity == nil {
			g.redirectToLogin(c)
			return
		}
		if identity.Role != entities.UserRoleAdmin {
			log.Printf("auth: %s (role %s) denied admin page %s", identity.Username, identity.Role, c.Request.URL.Path)
			g.forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		g.setIdentity(c, identity)
		c.Next()
	}
}

// RequireUserAPI guards API routes that need any authenticated caller.
// Accepts a valid bearer token or, failing that, a session cookie.
func (g *Gate) RequireUserAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := g.identify(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required. Please login.",
			})
			return
		}
		g.setIdentity(c, identity)
		c.Next()
	}
}

// RequireAdminAPI guards API routes that need an admin caller. The first
// valid credential in the chain decides: no credential at all is 401, a
// credential with the wrong role is 403.
func (g *Gate) RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := g.identify(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required. Please login.",
			})
			return
		}
		if identity.Role != entities.UserRoleAdmin {
			log.Printf("auth: %s (role %s, via %s) denied admin API %s", identity.Username, identity.Role, identity.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required. You do not have permission.",
			})
			return
		}
		g.setIdentity(c, identity)
		c.Next()
	}
}

// setIdentity stores the resolved identity in the Gin context.
func (g *Gate) setIdentity(c *gin.Context, identity *Identity) {
	c.Set(ContextKeyUserID, identity.UserID)
	c.Set(ContextKeyUsername, identity.Username)
	c.Set(ContextKeyRole, identity.Role)
	c.Set(ContextKeyMethod, identity.Method)
}

// Helper functions to extract the identity from the Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 when unauthenticated or authenticated via bearer token.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthMethod retrieves the credential kind that authenticated the request.
func GetAuthMethod(c *gin.Context) AuthMethod {
	if m, exists := c.Get(ContextKeyMethod); exists {
		if method, ok := m.(AuthMethod); ok {
			return method
		}
	}
	return ""
}

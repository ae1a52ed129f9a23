package http

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/auth"
)

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com) and anything with a scheme
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthPagesController serves the login/register/logout forms for the
// server-rendered admin pages.
type AuthPagesController struct {
	service   *auth.Service
	sessions  *auth.SessionManager
	templates *template.Template
}

// NewAuthPagesController creates the controller, parsing the auth templates
// if present. Without templates every page falls back to JSON, which is how
// the handler tests exercise it.
func NewAuthPagesController(service *auth.Service, sessions *auth.SessionManager, templatesPath string) *AuthPagesController {
	pattern := filepath.Join(templatesPath, "users", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		tmpl = nil
	}

	return &AuthPagesController{
		service:   service,
		sessions:  sessions,
		templates: tmpl,
	}
}

// RegisterRoutes registers the auth page routes on the router.
func (ac *AuthPagesController) RegisterRoutes(router *gin.Engine) {
	router.GET("/users/login", ac.LoginPage)
	router.POST("/users/login", ac.Login)
	router.GET("/users/register", ac.RegisterPage)
	router.POST("/users/register", ac.Register)
	router.GET("/users/logout", ac.Logout)
}

// LoginPage renders the login form.
func (ac *AuthPagesController) LoginPage(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderTemplate(c, "login.html", gin.H{
		"Title":     "Login",
		"CSRFToken": auth.GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Login handles the login form submission. On success it redirects to the
// stashed return path (set when an anonymous request hit a protected page)
// or to the root; the stash is consumed so the redirect-back happens once.
func (ac *AuthPagesController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.renderTemplate(c, "login.html", gin.H{
			"Title":     "Login",
			"Username":  username,
			"CSRFToken": auth.GetCSRFToken(c),
			"Error":     "Invalid username or password.",
		})
		return
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		ac.renderTemplate(c, "login.html", gin.H{
			"Title":     "Login",
			"Username":  username,
			"CSRFToken": auth.GetCSRFToken(c),
			"Error":     "Failed to create session.",
		})
		return
	}

	next := sanitizeRedirectPath(ac.sessions.PopReturnTo(c.Request))
	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form.
func (ac *AuthPagesController) RegisterPage(c *gin.Context) {
	ac.renderTemplate(c, "register.html", gin.H{
		"Title":     "Register",
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// Register handles the registration form submission and redirects to login.
func (ac *AuthPagesController) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	password2 := c.PostForm("password2")

	_, err := ac.service.Register(username, password, password2)
	if err != nil {
		errorMsg := "An error occurred. Please try again."
		switch {
		case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, auth.ErrPasswordRequired):
			errorMsg = "Username and password are required."
		case errors.Is(err, auth.ErrPasswordMismatch):
			errorMsg = "Passwords do not match."
		case errors.Is(err, auth.ErrUserExists):
			errorMsg = "Username already taken."
		}

		ac.renderTemplate(c, "register.html", gin.H{
			"Title":     "Register",
			"Username":  username,
			"CSRFToken": auth.GetCSRFToken(c),
			"Error":     errorMsg,
		})
		return
	}

	c.Redirect(http.StatusFound, auth.LoginPath)
}

// Logout destroys the session and redirects to login.
func (ac *AuthPagesController) Logout(c *gin.Context) {
	_ = ac.sessions.DestroySession(c.Request)
	c.Redirect(http.StatusFound, auth.LoginPath)
}

// RenderForbidden renders the access-denied page. Wired into the gate as the
// 403 renderer for admin page routes.
func (ac *AuthPagesController) RenderForbidden(c *gin.Context, message string) {
	ac.renderTemplateStatus(c, http.StatusForbidden, "error.html", gin.H{
		"Title":   "Access Denied",
		"Message": "Access Denied",
		"Detail":  message,
	})
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *AuthPagesController) renderTemplate(c *gin.Context, name string, data gin.H) {
	ac.renderTemplateStatus(c, http.StatusOK, name, data)
}

func (ac *AuthPagesController) renderTemplateStatus(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}

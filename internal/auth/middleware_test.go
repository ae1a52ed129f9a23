package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupGate(t *testing.T) (*Gate, *SessionManager, *TokenIssuer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg := config.Auth{
		SessionLifetime: 24 * time.Hour,
		SecureCookies:   false,
	}

	sessions, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	tokens := NewTokenIssuer("test-secret", time.Hour)

	return NewGate(sessions, tokens), sessions, tokens
}

// gateRouter wires a login route plus one route per predicate.
func gateRouter(gate *Gate, sessions *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sessions.LoadAndSave())

	router.POST("/login/:role", func(c *gin.Context) {
		role := entities.UserRole(c.Param("role"))
		user := &entities.User{ID: 7, Username: "tester", Role: role}
		if err := sessions.CreateSession(c.Request, user); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": GetUsername(c),
			"role":     string(GetUserRole(c)),
			"method":   string(GetAuthMethod(c)),
		})
	}

	router.GET("/page/user", gate.RequireUser(), ok)
	router.GET("/page/admin", gate.RequireAdmin(), ok)
	router.GET("/api/user", gate.RequireUserAPI(), ok)
	router.GET("/api/admin", gate.RequireAdminAPI(), ok)

	return router
}

// loginCookie performs a login request and returns the session cookie.
func loginCookie(t *testing.T, router *gin.Engine, role string) *http.Cookie {
	t.Helper()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login/"+role, nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("login returned %d", rr.Code)
	}
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func TestGate_AnonymousAPI_Returns401(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)

	for _, path := range []string{"/api/user", "/api/admin"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, "Authentication required. Please login.") {
				t.Errorf("unexpected body: %s", body)
			}
		})
	}
}

func TestGate_UserSessionOnAdminAPI_Returns403(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)

	cookie := loginCookie(t, router, "user")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Admin access required. You do not have permission.") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestGate_AdminSessionOnAdminAPI_Succeeds(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)

	cookie := loginCookie(t, router, "admin")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"method":"session"`) {
		t.Errorf("expected session method, got %s", rr.Body.String())
	}
}

func TestGate_BearerToken(t *testing.T) {
	gate, sessions, tokens := setupGate(t)
	router := gateRouter(gate, sessions)

	adminToken, err := tokens.Issue("tester", entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	userToken, err := tokens.Issue("tester", entities.UserRoleUser)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"admin token on admin API", "/api/admin", adminToken, http.StatusOK},
		{"user token on admin API", "/api/admin", userToken, http.StatusForbidden},
		{"user token on user API", "/api/user", userToken, http.StatusOK},
		{"garbage token, no session", "/api/user", "garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
		})
	}
}

// An invalid bearer token is treated like an absent one when a valid session
// cookie accompanies it.
func TestGate_InvalidBearerFallsBackToSession(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)

	cookie := loginCookie(t, router, "admin")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer this-is-not-a-jwt")
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 via session fallback, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"method":"session"`) {
		t.Errorf("expected session method, got %s", rr.Body.String())
	}
}

func TestGate_BearerTakesPrecedenceOverSession(t *testing.T) {
	gate, sessions, tokens := setupGate(t)
	router := gateRouter(gate, sessions)

	cookie := loginCookie(t, router, "user")
	adminToken, err := tokens.Issue("tester", entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 via bearer, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"method":"bearer"`) {
		t.Errorf("expected bearer method, got %s", rr.Body.String())
	}
}

func TestGate_AnonymousPage_RedirectsToLogin(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)

	for _, path := range []string{"/page/user", "/page/admin"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusFound {
				t.Errorf("Expected 302, got %d", rr.Code)
			}
			if location := rr.Header().Get("Location"); location != LoginPath {
				t.Errorf("Expected redirect to %s, got %s", LoginPath, location)
			}
		})
	}
}

func TestGate_PageRedirect_StashesReturnTo(t *testing.T) {
	gate, sessions, _ := setupGate(t)
	router := gateRouter(gate, sessions)
	router.GET("/whereami", func(c *gin.Context) {
		c.String(http.StatusOK, sessions.PopReturnTo(c.Request))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page/user?tab=two", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", rr.Code)
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("redirect did not set a session cookie for the stash")
	}

	// First read returns the stashed path
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whereami", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)
	if got := rr.Body.String(); got != "/page/user?tab=two" {
		t.Errorf("stashed path = %q, want /page/user?tab=two", got)
	}

	// Pop clears it; the second read is empty
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whereami", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)
	if got := rr.Body.String(); got != "" {
		t.Errorf("second read = %q, want empty", got)
	}
}

func TestGate_UserSessionOnAdminPage_RendersForbidden(t *testing.T) {
	gate, sessions, _ := setupGate(t)

	rendered := false
	gate.SetForbiddenRenderer(func(c *gin.Context, message string) {
		rendered = true
		c.String(http.StatusForbidden, "custom: %s", message)
	})

	router := gateRouter(gate, sessions)
	cookie := loginCookie(t, router, "user")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page/admin", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
	if !rendered {
		t.Error("custom forbidden renderer was not called")
	}
}

// Bearer tokens never satisfy the page predicates; those are session-only.
func TestGate_BearerTokenOnPageRoute_Redirects(t *testing.T) {
	gate, sessions, tokens := setupGate(t)
	router := gateRouter(gate, sessions)

	token, err := tokens.Issue("tester", entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Errorf("Expected 302, got %d", rr.Code)
	}
}


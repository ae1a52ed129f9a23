package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/auth"
	"github.com/dangcap/market/internal/entities"
)

// UserStore defines the user management operations the admin endpoints need.
type UserStore interface {
	ListUsers() ([]entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateRole(id uint, role entities.UserRole) (*entities.User, error)
	DeleteUser(id uint) error
}

// UserPayload is the public shape of a user in API responses.
type UserPayload struct {
	ID       uint              `json:"id"`
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
}

func userPayload(user *entities.User) UserPayload {
	return UserPayload{ID: user.ID, Username: user.Username, Role: user.Role}
}

// UsersController handles registration, login and admin user management.
type UsersController struct {
	service  *auth.Service
	sessions *auth.SessionManager
	tokens   *auth.TokenIssuer
	store    UserStore
}

func NewUsersController(service *auth.Service, sessions *auth.SessionManager, tokens *auth.TokenIssuer, store UserStore) *UsersController {
	return &UsersController{service: service, sessions: sessions, tokens: tokens, store: store}
}

type registerRequest struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	Password2 string `json:"password2" form:"password2"`
}

// Register creates a new account with role "user".
// POST /api/register
func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Username and password required")
		return
	}

	user, err := uc.service.Register(req.Username, req.Password, req.Password2)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, auth.ErrPasswordRequired):
			respondBadRequest(c, "Username and password required")
		case errors.Is(err, auth.ErrPasswordMismatch):
			respondBadRequest(c, "Passwords do not match")
		case errors.Is(err, auth.ErrUserExists):
			respondBadRequest(c, "Username already exists")
		default:
			respondInternalError(c, err, "register")
		}
		return
	}

	log.Printf("User registered: %s", user.Username)
	respondMessage(c, http.StatusCreated, "User registered successfully", userPayload(user))
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// loginResponse carries both credentials the backend issues: the session is
// set as a cookie, the token is returned in the body for the SPA.
type loginResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
	Token   string      `json:"token"`
}

// Login verifies credentials, creates a session and issues a bearer token.
// POST /api/login
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Username and password required")
		return
	}

	user, err := uc.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid username or password"})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	if err := uc.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	token, err := uc.tokens.Issue(user.Username, user.Role)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Success: true,
		User:    userPayload(user),
		Token:   token,
	})
}

// Logout destroys the caller's session. The bearer token, if any, stays
// valid until it expires; there is no revocation list.
// POST /api/logout
func (uc *UsersController) Logout(c *gin.Context) {
	if err := uc.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	respondMessage(c, http.StatusOK, "Logged out", nil)
}

// ListUsers returns all users with the credential field excluded.
// GET /api/users (admin)
func (uc *UsersController) ListUsers(c *gin.Context) {
	users, err := uc.store.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	respondData(c, http.StatusOK, users)
}

// UpdateRole changes a user's role. Active sessions keep their old role
// snapshot until the user logs in again.
// PUT /api/users/:id/role (admin)
func (uc *UsersController) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role entities.UserRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Role.IsValid() {
		respondBadRequest(c, "role must be 'user' or 'admin'")
		return
	}

	user, err := uc.store.UpdateRole(id, req.Role)
	if err != nil {
		respondNotFound(c, "User")
		return
	}

	log.Printf("Role of %s changed to %s by %s", user.Username, user.Role, auth.GetUsername(c))
	respondData(c, http.StatusOK, userPayload(user))
}

// DeleteUser removes a user account.
// DELETE /api/users/:id (admin)
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := uc.store.DeleteUser(id); err != nil {
		respondNotFound(c, "User")
		return
	}

	respondMessage(c, http.StatusOK, "User deleted successfully", nil)
}

package auth

import (
	"errors"
	"testing"

	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/entities"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	users  map[string]*entities.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*entities.User), nextID: 1}
}

func (f *fakeUserStore) CreateUser(username, password string, role entities.UserRole) (*entities.User, error) {
	if _, exists := f.users[username]; exists {
		return nil, errors.New("UNIQUE constraint failed: users.username")
	}
	user := &entities.User{ID: f.nextID, Username: username, Password: password, Role: role}
	f.nextID++
	f.users[username] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByUsername(username string) (*entities.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(id uint) (*entities.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

func newTestService() (*Service, *fakeUserStore) {
	store := newFakeUserStore()
	cfg := config.Auth{BcryptCost: 4} // Low cost for faster tests
	return NewService(store, cfg), store
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		password2 string
		wantErr   error
	}{
		{"valid", "alice", "password123", "password123", nil},
		{"valid without confirmation", "bob", "password123", "", nil},
		{"missing username", "", "password123", "password123", ErrUsernameRequired},
		{"missing password", "carol", "", "", ErrPasswordRequired},
		{"mismatched confirmation", "dave", "password123", "different", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService()

			user, err := service.Register(tt.username, tt.password, tt.password2)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				return
			}
			if tt.wantErr != nil {
				return
			}

			if user.Username != tt.username {
				t.Errorf("Username = %q, want %q", user.Username, tt.username)
			}
			if user.Role != entities.UserRoleUser {
				t.Errorf("Role = %q, want user", user.Role)
			}
			if CredentialKindOf(user.Password) != CredentialBcrypt {
				t.Error("stored credential is not a bcrypt hash")
			}
			if user.Password == tt.password {
				t.Error("password was stored in plaintext")
			}
		})
	}
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Register("alice", "password123", "password123"); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}

	if _, err := service.Register("alice", "otherpassword", "otherpassword"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() = %v, want ErrUserExists", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Register("alice", "password123", "password123"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	user, err := service.Authenticate("alice", "password123")
	if err != nil {
		t.Fatalf("Authenticate() with correct credentials: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}

	if _, err := service.Authenticate("alice", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() wrong password = %v, want ErrInvalidCredentials", err)
	}

	if _, err := service.Authenticate("nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() unknown user = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Authenticate_LegacyPlaintext(t *testing.T) {
	service, store := newTestService()

	// Simulate a record migrated with its password stored as-is
	if _, err := store.CreateUser("legacy", "oldplainpassword", entities.UserRoleUser); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	if _, err := service.Authenticate("legacy", "oldplainpassword"); err != nil {
		t.Errorf("Authenticate() plaintext record = %v, want nil", err)
	}

	if _, err := service.Authenticate("legacy", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() plaintext wrong password = %v, want ErrInvalidCredentials", err)
	}
}

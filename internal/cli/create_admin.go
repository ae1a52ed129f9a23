package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/dangcap/market/internal/auth"
	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/database"
	"github.com/dangcap/market/internal/database/users"
	"github.com/dangcap/market/internal/entities"
)

// CreateAdminCommand seeds an administrator account. Registration through
// the API always yields role "user" and role changes are admin-only, so the
// first admin has to come from here.
type CreateAdminCommand struct {
	Username     string
	Password     string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the admin account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the admin account (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the application database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 10, "bcrypt cost factor for the password hash")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account, or promote an existing user to admin.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)

	// Promote instead of failing when the user already exists
	if existing, err := repo.GetUserByUsername(cmd.Username); err == nil {
		if existing.Role == entities.UserRoleAdmin {
			fmt.Printf("User %s is already an admin\n", cmd.Username)
			return nil
		}
		if _, err := repo.UpdateRole(existing.ID, entities.UserRoleAdmin); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
		fmt.Printf("Promoted %s to admin\n", cmd.Username)
		return nil
	}

	hash, err := auth.HashPassword(cmd.Password, cmd.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := repo.CreateUser(cmd.Username, hash, entities.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Created admin account %s (id %d)\n", user.Username, user.ID)
	return nil
}

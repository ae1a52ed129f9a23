// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── users/           # User accounts and role management
//	└── catalog/         # Categories and products
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./market.db")
//	usersRepo := users.NewRepository(db.DB)
//	catalogRepo := catalog.NewRepository(db.DB)
//
//	user, err := usersRepo.GetUserByUsername("alice")
//	products, err := catalogRepo.ListProducts(0)
//
// # Interface Implementations
//
//   - users.Repository: implements auth.UserStore and http.UserStore
//   - catalog.Repository: implements http.CategoryStore and http.ProductStore
//
// Handlers and the auth layer depend on those interfaces rather than the
// repositories directly, so tests can substitute in-memory fakes.
package database

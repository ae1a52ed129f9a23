package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved on
	// top of CSRF's request replacement
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSave())
	}

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.CSRFTokenHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Serve uploaded images and frontend assets
	if cfg.StaticPath != "" {
		router.Static("/images", cfg.StaticPath+"/images")
		router.Static("/static", cfg.StaticPath+"/static")
	}

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	users := NewUsersController(cfg.AuthService, cfg.SessionManager, cfg.TokenIssuer, cfg.UserStore)
	categories := NewCategoriesController(cfg.CategoryStore, cfg.ProductStore)
	products := NewProductsController(cfg.ProductStore, cfg.ImageStore)

	// The server-rendered pages start at the category index
	router.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/category")
	})

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	gate := cfg.Gate

	// API routes consumed by the SPA frontend
	api := router.Group("/api")
	{
		api.POST("/register", users.Register)
		api.POST("/login", users.Login)
		api.POST("/logout", users.Logout)

		// User management (admin only)
		api.GET("/users", gate.RequireAdminAPI(), users.ListUsers)
		api.PUT("/users/:id/role", gate.RequireAdminAPI(), users.UpdateRole)
		api.DELETE("/users/:id", gate.RequireAdminAPI(), users.DeleteUser)

		// Catalog reads are public; the storefront browses anonymously
		api.GET("/categories", categories.List)
		api.GET("/categories/:id", categories.Get)
		api.GET("/categories/:id/products", categories.ListProducts)
		api.GET("/products", products.List)
		api.GET("/products/:id", products.Get)

		// Catalog mutations (admin only)
		api.POST("/categories", gate.RequireAdminAPI(), categories.Create)
		api.PUT("/categories/:id", gate.RequireAdminAPI(), categories.Update)
		api.DELETE("/categories/:id", gate.RequireAdminAPI(), categories.Delete)
		api.POST("/products", gate.RequireAdminAPI(), products.Create)
		api.PUT("/products/:id", gate.RequireAdminAPI(), products.Update)
		api.DELETE("/products/:id", gate.RequireAdminAPI(), products.Delete)
	}

	// Server-rendered admin pages
	authPages := NewAuthPagesController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath)
	authPages.RegisterRoutes(router)
	gate.SetForbiddenRenderer(authPages.RenderForbidden)

	catalogPages := NewCatalogPagesController(cfg.CategoryStore, cfg.ProductStore, cfg.ImageStore, cfg.TemplatesPath)
	catalogPages.RegisterRoutes(router, gate)

	return router
}

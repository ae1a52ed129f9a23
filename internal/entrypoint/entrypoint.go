package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/dangcap/market/internal/auth"
	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/database"
	"github.com/dangcap/market/internal/database/catalog"
	"github.com/dangcap/market/internal/database/users"
	http_controllers "github.com/dangcap/market/internal/http"
	"github.com/dangcap/market/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Market v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	usersRepo := users.NewRepository(db.DB)
	catalogRepo := catalog.NewRepository(db.DB)

	// Auth service over the credential store
	authService := auth.NewService(usersRepo, cfg.Auth)

	// Session manager shares the application's SQLite database
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Bearer token issuer. Without a configured secret tokens die with the
	// process, which is fine for development.
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("Generated JWT secret (set JWT_SECRET to persist tokens across restarts)")
	}
	tokenIssuer := auth.NewTokenIssuer(jwtSecret, cfg.Auth.JWTExpiry)

	gate := auth.NewGate(sessionManager, tokenIssuer)

	// CSRF secret for the server-rendered forms
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set SESSION_SECRET to persist)")
	}

	// Product image store
	imageStore, err := uploads.NewStore(cfg.Uploads.Dir, "/images", cfg.Uploads.MaxSizeBytes)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// Periodic sweep of uploaded images no product references anymore
	var scheduler *cron.Cron
	if cfg.Uploads.CleanupEnabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Uploads.CleanupSchedule, func() {
			referenced, err := catalogRepo.ListProductImages()
			if err != nil {
				log.Printf("Upload cleanup: failed to list product images: %v", err)
				return
			}
			removed, err := imageStore.CleanupOrphans(referenced)
			if err != nil {
				log.Printf("Upload cleanup failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("Upload cleanup: removed %d orphaned images", removed)
			}
		})
		if err != nil {
			log.Fatalf("Invalid upload cleanup schedule %q: %v", cfg.Uploads.CleanupSchedule, err)
		}
		scheduler.Start()
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		UserStore:      usersRepo,
		CategoryStore:  catalogRepo,
		ProductStore:   catalogRepo,
		AuthService:    authService,
		SessionManager: sessionManager,
		TokenIssuer:    tokenIssuer,
		Gate:           gate,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		ImageStore:     imageStore,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		CORSOrigins:    cfg.CORS.Origins,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if scheduler != nil {
			stopCtx := scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
		}
	}

	Serve(router, cfg, onShutdown)
}

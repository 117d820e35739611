//	@title			FileLink API
//	@version		1.0
//	@description	File sharing service: upload a file, get a permanent link with optional password and expiry.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/filelink/service/internal/auth"
	"github.com/filelink/service/internal/config"
	"github.com/filelink/service/internal/db"
	"github.com/filelink/service/internal/link"
	appMiddleware "github.com/filelink/service/internal/middleware"
	"github.com/filelink/service/internal/share"
	"github.com/filelink/service/internal/storage"
	"github.com/filelink/service/internal/upload"
	"github.com/filelink/service/internal/user"

	_ "github.com/filelink/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	organizer := storage.NewOrganizer(cfg.UploadDir, cfg.MaxUploadBytes)
	if err := organizer.EnsureTree(); err != nil {
		log.Fatalf("storage tree init failed: %v", err)
	}
	legacy := storage.NewLegacyLocator(cfg.UploadDir)

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, cfg)
	authHandler := auth.NewHandler(authSvc)

	linkSvc := link.NewService(link.NewPostgresRepository(pool))
	linkHandler := link.NewHandler(linkSvc)

	uploadSvc := upload.NewService(linkSvc, organizer, userSvc, cfg.PublicBaseURL, log)
	uploadHandler := upload.NewHandler(uploadSvc, cfg.MaxUploadBytes)

	shareSvc := share.NewService(linkSvc, organizer, legacy, log)
	shareHandler := share.NewHandler(shareSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public share endpoints
	r.Route("/r/{slug}", func(r chi.Router) {
		r.Get("/", shareHandler.View)
		r.Get("/download", shareHandler.Download)
		r.Get("/preview", shareHandler.Preview)
		r.Get("/info", shareHandler.Info)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Uploads work anonymously; a valid token scopes them to the user.
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.OptionalAuth(cfg.JWTSecret))
			r.Post("/upload", uploadHandler.Process)
			r.Post("/upload/bulk", uploadHandler.Bulk)
		})

		r.Get("/stats", linkHandler.GetStats)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			r.Get("/users/me", userHandler.GetMe)
			r.Delete("/links/{slug}", linkHandler.Deactivate)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Minute, // large uploads ride the request body
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Infof("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

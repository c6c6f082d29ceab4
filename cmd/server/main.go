package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/jmalik/taskly-backend/internal/config"
	"github.com/jmalik/taskly-backend/internal/database"
	"github.com/jmalik/taskly-backend/internal/handlers"
	"github.com/jmalik/taskly-backend/internal/mailer"
	"github.com/jmalik/taskly-backend/internal/middleware"
	"github.com/jmalik/taskly-backend/internal/routes"
	"github.com/jmalik/taskly-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	client, db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect(client)
	log.Println("Connected to MongoDB")

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		indexCancel()
		log.Fatal("Failed to ensure indexes:", err)
	}
	indexCancel()

	// Notification mail runs as a background dispatch; requests never
	// wait on it.
	mail, err := mailer.New(mailer.Config{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		From:         cfg.MailFrom,
	})
	if err != nil {
		log.Fatal("Failed to initialize mailer:", err)
	}
	defer mail.Close()
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP not configured, notification mail will be logged only")
	}

	// Services and handlers
	secret := []byte(cfg.JWTSecret)
	userService := services.NewUserService(db, secret)
	taskService := services.NewTaskService(db)

	userHandler := handlers.NewUserHandler(userService, mail)
	taskHandler := handlers.NewTaskHandler(taskService)

	authGuard := middleware.Auth(secret, userService)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, userHandler, taskHandler, authGuard)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Taskly backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

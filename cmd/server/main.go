package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taskquest/internal/db"
	"taskquest/internal/handlers"
	"taskquest/internal/ledger"
	mw "taskquest/internal/middleware"
	"taskquest/internal/stats"
	"taskquest/internal/store"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	port := mustGetenv("PORT", "8080")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		logger.Fatal("failed to ping db", zap.Error(err))
	}
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	st := store.NewPostgres(dbConn)
	engine := ledger.New(st, nil)
	statsSvc := stats.New(st, nil)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(dbConn, []byte(jwtSecret))
	userHandler := handlers.NewUserHandler(dbConn, engine)
	taskHandler := handlers.NewTaskHandler(dbConn, engine)
	rewardHandler := handlers.NewRewardHandler(dbConn, engine)
	avatarHandler := handlers.NewAvatarHandler(engine)
	statsHandler := handlers.NewStatsHandler(statsSvc)
	proofHandler := handlers.NewProofHandler(dbConn)
	adminHandler := handlers.NewAdminHandler(dbConn)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Get("/users/me", userHandler.GetMe)
			pr.Put("/users/me", userHandler.UpdateMe)
			pr.Put("/users/me/avatar", userHandler.SetAvatar)

			pr.Get("/tasks", taskHandler.List)
			pr.Post("/tasks", taskHandler.Create)
			pr.Post("/tasks/import", taskHandler.Import)
			pr.Put("/tasks/{id}", taskHandler.Update)
			pr.Delete("/tasks/{id}", taskHandler.Delete)
			pr.Post("/tasks/{id}/complete", taskHandler.Complete)

			pr.Get("/rewards", rewardHandler.List)
			pr.Post("/rewards", rewardHandler.Create)
			pr.Get("/rewards/redeemed", rewardHandler.ListRedeemed)
			pr.Delete("/rewards/{id}", rewardHandler.Delete)
			pr.Post("/rewards/{id}/redeem", rewardHandler.Redeem)

			pr.Get("/avatars", avatarHandler.List)

			pr.Get("/stats", statsHandler.Overview)
			pr.Get("/stats/weekly", statsHandler.Weekly)
			pr.Get("/stats/top-tasks", statsHandler.TopTasks)
			pr.Get("/stats/time-of-day", statsHandler.TimeOfDay)

			pr.Post("/completions/{id}/proof", proofHandler.Add)
			pr.Delete("/proofs/{id}", proofHandler.Delete)

			pr.Get("/admin/overview", adminHandler.Overview)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("server stopped")
}

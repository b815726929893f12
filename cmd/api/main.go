package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/splitnest/splitnest/docs"
	"github.com/splitnest/splitnest/internal/auth"
	"github.com/splitnest/splitnest/internal/balance"
	"github.com/splitnest/splitnest/internal/config"
	"github.com/splitnest/splitnest/internal/database"
	"github.com/splitnest/splitnest/internal/expense"
	"github.com/splitnest/splitnest/internal/notification"
	"github.com/splitnest/splitnest/internal/observability"
	"github.com/splitnest/splitnest/internal/participant"
)

// @title           SplitNest API
// @version         1.0
// @description     Shared-house expense ledger with exact-cent splitting, payment tracking and a derived netted balance view.
// @BasePath        /api/v1
// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
func main() {
	// Load .env if present; otherwise rely on the process environment.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	metrics := observability.NewMetrics()

	// Auth
	authService := auth.NewService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(authService)

	// Participant feature
	participantRepo := participant.NewRepository(db)
	participantService := participant.NewService(participantRepo)
	participantHandler := participant.NewHandler(participantService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, logger)
	notificationHandler := notification.NewHandler(notificationService)

	// Expense feature (the ledger)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, notificationService, metrics, logger)
	expenseHandler := expense.NewHandler(expenseService)

	// Balance feature (derived netted view over the same store)
	balanceService := balance.NewService(expenseRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/participants", participantHandler.Routes(authService.RequireAdmin))
		r.Mount("/expenses", expenseHandler.Routes(authService.RequireAdmin))
		r.Mount("/balances", balanceHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

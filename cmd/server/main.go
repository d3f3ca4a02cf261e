// plantrack - delivery schedule tracking server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmatos-dev/plantrack/internal/api"
	"github.com/dmatos-dev/plantrack/internal/calendar"
	"github.com/dmatos-dev/plantrack/internal/config"
	"github.com/dmatos-dev/plantrack/internal/lifecycle"
	"github.com/dmatos-dev/plantrack/internal/middleware"
	"github.com/dmatos-dev/plantrack/internal/progress"
	"github.com/dmatos-dev/plantrack/internal/prompt"
	"github.com/dmatos-dev/plantrack/internal/report"
	"github.com/dmatos-dev/plantrack/internal/seed"
	"github.com/dmatos-dev/plantrack/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := st.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Load the delivery plan if one is configured. The loader is a no-op
	// when tasks already exist.
	if cfg.PlanFile != "" {
		if err := seed.New(st).Load(context.Background(), cfg.PlanFile); err != nil {
			slog.Error("Failed to load plan file", "error", err, "path", cfg.PlanFile)
			os.Exit(1)
		}
	}

	// Initialize services.
	lifecycleSvc := lifecycle.New(st)
	aggregator := progress.New(st, progress.Config{
		ProjectName:       cfg.Project.Name,
		Client:            cfg.Project.Client,
		TotalSessions:     cfg.Project.TotalSessions,
		TotalHoursPlanned: cfg.Project.TotalHours,
		StartDate:         cfg.Project.StartDate,
		TargetDate:        cfg.Project.TargetDate,
	})
	materializer := calendar.New(st)
	promptBuilder := prompt.New(st, cfg.Project.Context, cfg.Project.TotalSessions)
	reportGen := report.New(st)

	// Initialize handlers.
	taskHandler := api.NewTaskHandler(lifecycleSvc, aggregator, promptBuilder)
	sprintHandler := api.NewSprintHandler(lifecycleSvc, aggregator)
	dashboardHandler := api.NewDashboardHandler(aggregator)
	calendarHandler := api.NewCalendarHandler(materializer)
	promptHandler := api.NewPromptHandler(promptBuilder)
	reportHandler := api.NewReportHandler(reportGen)
	healthHandler := api.NewHealthHandler(st)
	dashboardStream := api.NewDashboardStream(aggregator, cfg.Dashboard.PushInterval)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigins(cfg)))

	healthHandler.RegisterHealth(r)
	taskHandler.RegisterRoutes(r)
	sprintHandler.RegisterRoutes(r)
	dashboardHandler.RegisterRoutes(r)
	calendarHandler.RegisterRoutes(r)
	promptHandler.RegisterRoutes(r)
	reportHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/dashboard", dashboardStream.ServeHTTP)

	// Create server. WriteTimeout stays at zero so the websocket stream is
	// not cut off mid-push.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL != "" {
		return []string{cfg.FrontendURL}
	}
	return []string{"*"}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathquest/internal/api"
	"mathquest/internal/api/middleware"
	"mathquest/internal/app/service"
	"mathquest/internal/domain/repository"
	"mathquest/internal/llm"
	"mathquest/internal/platform/cache"
	"mathquest/internal/platform/config"
	"mathquest/internal/platform/database"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Math word problem API server",
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API (default)",
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	})
	return rootCmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	config.Load()
	database.Connect()
	defer database.Close()

	if err := database.Migrate(cmd.Context(), database.DB, config.AppConfig.DBDriver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("Migrations applied.")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(ctx, database.DB, config.AppConfig.DBDriver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("Database connected and migrated.")

	// 3. Initialize Redis (optional)
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 4. Initialize Content Generator
	generator, err := llm.NewProvider(ctx, llm.ConfigFrom(config.AppConfig))
	if err != nil {
		return fmt.Errorf("content generator: %w", err)
	}
	fmt.Printf("Content generator ready (%s, %s).\n", config.AppConfig.LLMProvider, generator.ModelID())

	// 5. Initialize Repositories
	sessionRepo := repository.NewSessionRepository(database.DB)
	problemRepo := repository.NewProblemRepository(database.DB)
	submissionRepo := repository.NewSubmissionRepository(database.DB)

	// 6. Initialize Caches and Limits
	var viewCache service.ProblemViewCache
	var limiter middleware.Limiter
	if cache.RDB != nil {
		viewCache = cache.NewProblemCache(cache.RDB, config.AppConfig.ProblemCacheTTL)
		limiter = cache.NewRateLimiter(cache.RDB, config.AppConfig.RateLimitPerMinute, time.Minute)
	} else {
		viewCache = cache.NewMemoryProblemCache(config.AppConfig.ProblemCacheSize, config.AppConfig.ProblemCacheTTL)
	}

	// 7. Initialize Services
	rnd := service.NewSystemRandom()
	catalog := service.DefaultCatalog()
	hints := service.HintPolicy{InitialCredits: config.AppConfig.HintCreditsInitial, Cap: config.AppConfig.HintCreditsCap}

	sessionService := service.NewSessionService(sessionRepo, submissionRepo, rnd, hints)
	problemService := service.NewProblemService(problemRepo, sessionRepo, submissionRepo, generator, catalog, rnd, viewCache, database.DB)
	historyService := service.NewHistoryService(submissionRepo)
	topicService := service.NewTopicService(catalog)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(sessionService, problemService, historyService, topicService, limiter)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // generator calls are slow
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped gracefully.")
	return nil
}

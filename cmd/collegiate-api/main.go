package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/collegiate-app/collegiate/internal/database"
	"github.com/collegiate-app/collegiate/internal/identity"
	"github.com/collegiate-app/collegiate/internal/logging"
	"github.com/collegiate-app/collegiate/internal/openai"
	"github.com/collegiate-app/collegiate/internal/scorecard"
	"github.com/collegiate-app/collegiate/internal/server"
)

func main() {
	// Local development keeps secrets in a .env next to the binary.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("COLLEGIATE_LOG_LEVEL"), os.Getenv("COLLEGIATE_LOG_FORMAT"))

	port := os.Getenv("COLLEGIATE_API_PORT")
	if port == "" {
		port = "5001"
	}

	dbPath := os.Getenv("COLLEGIATE_DB_PATH")
	if dbPath == "" {
		dbPath = "collegiate.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scorecardClient := scorecard.NewClient(scorecard.Config{
		APIKey:  os.Getenv("COLLEGE_SCORECARD_API_KEY"),
		BaseURL: os.Getenv("COLLEGE_SCORECARD_BASE_URL"),
	})
	if !scorecardClient.Configured() {
		logger.Warn("COLLEGE_SCORECARD_API_KEY not set, college search will fail")
	}

	aiClient := openai.NewClient(openai.Config{
		APIKey: os.Getenv("OPENAI_API_KEY"),
		Model:  os.Getenv("OPENAI_MODEL"),
	})
	if !aiClient.Configured() {
		logger.Warn("OPENAI_API_KEY not set, guidance endpoints will fail")
	}

	identityClient := identity.NewClient(identity.Config{
		URL:     os.Getenv("SUPABASE_URL"),
		AnonKey: os.Getenv("SUPABASE_KEY"),
	})
	if !identityClient.Configured() {
		logger.Warn("SUPABASE_URL or SUPABASE_KEY not set, saved-college routes will reject all tokens")
	}

	srv := server.New(db, scorecardClient, aiClient, identityClient, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // AI endpoints can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Periodic rate limiter cleanup
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	go func() {
		fmt.Printf("Collegiate API running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

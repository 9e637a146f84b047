package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"yoxo/internal/advice"
	"yoxo/internal/assessment"
	"yoxo/internal/assessment/memstore"
	"yoxo/internal/assessment/postgresstore"
	"yoxo/internal/config"
	"yoxo/internal/intake"
	"yoxo/internal/logging"
	serverHTTP "yoxo/internal/server/http"
)

func main() {
	logger := logging.NewComponentLogger("Main")
	logger.Info("Starting yoxo assessment server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Info("Environment: %s, port: %s", cfg.Environment, cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer cleanup()

	serviceOpts := []assessment.ServiceOption{
		assessment.WithAdviceTimeout(cfg.AdviceTimeout),
	}
	if enricher := buildEnricher(cfg, repo, logger); enricher != nil {
		serviceOpts = append(serviceOpts, assessment.WithEnricher(enricher))
	}
	service := assessment.NewService(repo, serviceOpts...)

	sessions, err := intake.NewStore(intake.StoreConfig{
		MaxSessions: cfg.IntakeMaxSessions,
		TTL:         cfg.IntakeSessionTTL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize intake store: %v", err)
	}

	router := serverHTTP.NewRouter(serverHTTP.RouterConfig{
		Service:        service,
		Sessions:       sessions,
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

// buildRepository connects to Postgres when a DSN is configured and falls
// back to the in-memory store otherwise. The fallback keeps local development
// a single-binary affair; assessments then do not survive a restart.
func buildRepository(ctx context.Context, cfg *config.Config, logger logging.Logger) (assessment.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No database configured, using in-memory store; assessments will not survive restarts")
		return memstore.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := postgresstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("Connected to Postgres")
	return store, pool.Close, nil
}

// buildEnricher wires the advice service when configured. Enrichment is
// optional; without it submissions simply carry no advice.
func buildEnricher(cfg *config.Config, repo assessment.Repository, logger logging.Logger) assessment.Enricher {
	if cfg.AdviceServiceURL == "" {
		logger.Info("Advice service not configured, enrichment disabled")
		return nil
	}

	client, err := advice.NewClient(advice.ClientConfig{
		BaseURL: cfg.AdviceServiceURL,
		APIKey:  cfg.AdviceServiceKey,
		Timeout: cfg.AdviceTimeout,
	})
	if err != nil {
		logger.Warn("Advice client misconfigured, enrichment disabled: %v", err)
		return nil
	}

	logger.Info("Advice enrichment enabled via %s", cfg.AdviceServiceURL)
	return advice.NewEnricher(client, repo)
}

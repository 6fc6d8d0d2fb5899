package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"automl-orchestrator/internal/adapters/primary/http/handlers"
	"automl-orchestrator/internal/adapters/primary/http/middleware"
	"automl-orchestrator/internal/adapters/secondary/postgres"
	"automl-orchestrator/internal/config"
	output "automl-orchestrator/internal/core/ports/output"
	"automl-orchestrator/internal/core/services"
	"automl-orchestrator/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(os.Getenv("AUTOML_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Ledger database (optional)
	var pool *pgxpool.Pool
	var pipelineRepo output.PipelineRepository
	if cfg.Database.Enabled {
		pool, err = newPool(context.Background(), cfg.Database)
		if err != nil {
			log.Fatalf("connect ledger db: %v", err)
		}
		defer pool.Close()
		pipelineRepo = postgres.NewPipelineRepository(pool)
		log.Info("database connection established")
	} else {
		log.Info("pipeline ledger disabled")
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	ledgerSvc := services.NewLedgerService(pipelineRepo)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.NewRegistry())

	h := handlers.New(ledgerSvc)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(httpMetrics), gin.Recovery())

	api := router.Group("/api/v1/automl")
	h.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ledger": pool != nil})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

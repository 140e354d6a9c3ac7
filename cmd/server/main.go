package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dengue-triage/internal/agent"
	"dengue-triage/internal/config"
	"dengue-triage/internal/encounter"
	"dengue-triage/internal/platform/logger"
	"dengue-triage/internal/platform/messaging"
	"dengue-triage/internal/platform/response"
	"dengue-triage/internal/platform/storage"
	"dengue-triage/internal/platform/telegram"
	"dengue-triage/internal/questionbank"
	"dengue-triage/internal/report"
	"dengue-triage/internal/triage"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	// 1. Engine
	bank, triageCfg, err := questionbank.LoadFile(cfg.Triage.BankPath)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	if t := cfg.Triage.ConfidenceThreshold; t != nil {
		triageCfg.ConfidenceThreshold = *t
	}
	engine, err := triage.NewEngine(bank, triageCfg)
	if err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}
	zlog.Info("question bank loaded", zap.Int("questions", bank.Len()),
		zap.Float64("confidence_threshold", triageCfg.ConfidenceThreshold))

	reportFrom, ok := triage.ParseClassification(cfg.Triage.ReportFrom)
	if !ok {
		return fmt.Errorf("TRIAGE_REPORT_FROM: unknown classification %q", cfg.Triage.ReportFrom)
	}

	// 2. Infrastructure
	repo := encounter.NewMemoryRepository()
	if db := connectDB(cfg, zlog); db != nil {
		defer db.Close()
		runMigrations(cfg, zlog)
		repo = encounter.NewRepository(db)
	}

	store := encounter.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unavailable, keeping sessions in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			store = encounter.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL)
			zlog.Info("redis session store enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var publisher encounter.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := messaging.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			zlog.Warn("rabbitmq unavailable, results will not be published", zap.Error(err))
		} else {
			defer conn.Close()
			pub, err := messaging.NewPublisher(conn, cfg.RabbitMQ.ResultsQueue, zlog)
			if err != nil {
				return err
			}
			defer pub.Close()
			publisher = pub
		}
	}

	var objects storage.ObjectStore
	if cfg.Minio.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err == nil {
			objects, err = storage.NewMinioStorage(ctx, client, cfg.Minio.Bucket)
		}
		if err != nil {
			zlog.Warn("minio unavailable, reports will not be archived", zap.Error(err))
			objects = nil
		}
	}

	// 3. Clients
	advisor := agent.NewDeepSeekClient(cfg.DeepSeek.APIKey, cfg.DeepSeek.BaseURL, cfg.DeepSeek.Model)

	tgClient := telegram.NewClient(cfg.Telegram.Token)
	if cfg.Telegram.DoctorChatID == 0 {
		zlog.Warn("DOCTOR_CHAT_ID is not set, reports will not be sent to Telegram")
	}

	// 4. Services
	reportSvc := report.NewService(tgClient, objects, cfg.Telegram.DoctorChatID, reportFrom, cfg.Triage.FontPath, zlog)
	triageSvc := encounter.NewService(engine, store, repo, advisor, reportSvc, publisher, zlog)
	defer triageSvc.Close()
	handler := encounter.NewHandler(triageSvc, response.NewWriter(zlog, cfg.App.Env == "production"))

	// 5. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.App.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.App.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(cfg.App.RateLimit, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		encounter.RegisterRoutes(r, handler)
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	zlog.Info("waiting for pending requests to finish")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zlog.Info("server exiting")
	return nil
}

// connectDB returns nil when no database is configured or reachable; results
// then live in memory.
func connectDB(cfg *config.Config, zlog *zap.Logger) *sql.DB {
	if cfg.Postgres.URL == "" {
		zlog.Info("DATABASE_URL not set, archiving results in memory")
		return nil
	}

	var db *sql.DB
	var err error
	for i := 0; i < cfg.Postgres.ConnectRetries; i++ {
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			zlog.Info("connected to database")
			return db
		}
		if db != nil {
			_ = db.Close()
		}
		zlog.Info("waiting for database", zap.Int("attempt", i+1), zap.Int("of", cfg.Postgres.ConnectRetries))
		time.Sleep(2 * time.Second)
	}
	zlog.Warn("could not connect to database, archiving results in memory", zap.Error(err))
	return nil
}

func runMigrations(cfg *config.Config, zlog *zap.Logger) {
	m, err := migrate.New(cfg.Postgres.MigrationsPath, cfg.Postgres.URL)
	if err != nil {
		zlog.Error("migration init failed", zap.Error(err))
		return
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		zlog.Error("migration up failed", zap.Error(err))
		return
	}
	zlog.Info("migrations applied")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/notarly/backoffice/internal/api"
	"github.com/notarly/backoffice/internal/appointment"
	"github.com/notarly/backoffice/internal/config"
	"github.com/notarly/backoffice/internal/credential"
	"github.com/notarly/backoffice/internal/db"
	"github.com/notarly/backoffice/internal/docstore"
	"github.com/notarly/backoffice/internal/logging"
	"github.com/notarly/backoffice/internal/places"
	redisclient "github.com/notarly/backoffice/internal/redis"
	"github.com/notarly/backoffice/internal/schedule"
)

const version = "1.4.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log := logging.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("document_store", cfg.DocumentStore),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres and bring the schema up to date
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, int32(cfg.PgMaxConns))
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()

	if err := db.Migrate(rootCtx, pgPool); err != nil {
		log.Fatal("migration error", zap.Error(err))
	}
	log.Info("connected to Postgres, schema up to date")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("error closing redis", zap.Error(err))
		}
	}()
	log.Info("connected to Redis")

	// Document store
	var store docstore.Store
	if cfg.DocumentStore == "fs" {
		store = docstore.NewFSStore(cfg.DocumentDir)
	} else {
		s3Store, err := docstore.NewS3Store(rootCtx, cfg.StoreTimeout)
		if err != nil {
			log.Fatal("s3 store error", zap.Error(err))
		}
		store = s3Store
	}

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)

	mutator := schedule.NewMutator(store, locker, cfg.DocumentBucket, schedule.Keys{
		BusinessHours: cfg.BusinessHoursKey,
		BlockedDates:  cfg.BlockedDatesKey,
		BlockedTimes:  cfg.BlockedTimesKey,
		Pending:       cfg.PendingKey,
	}, log)

	apptSvc := appointment.NewService(appointment.NewPgRepository(pgPool), locker, log)
	verifier := credential.NewVerifier(credential.NewPgSource(pgPool))
	placesClient := places.NewClient(cfg.PlacesAPIKey, cfg.OriginAddress, cfg.StoreTimeout)

	router := api.NewRouter(api.RouterConfig{
		Appointments: apptSvc,
		Schedule:     mutator,
		Credentials:  verifier,
		Places:       placesClient,
		PgPool:       pgPool,
		Redis:        rdb,
		Logger:       log,
		Env:          cfg.Env,
		Version:      version,
		LoginRPS:     cfg.LoginRPS,
		LoginBurst:   cfg.LoginBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()

	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/admin"
	"github.com/careloop/patient-intake/internal/api"
	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/config"
	"github.com/careloop/patient-intake/internal/db"
	"github.com/careloop/patient-intake/internal/document"
	"github.com/careloop/patient-intake/internal/notify"
	"github.com/careloop/patient-intake/internal/patient"
	redisclient "github.com/careloop/patient-intake/internal/redis"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := newLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	var notifier notify.Notifier
	if cfg.SMSAPIKey != "" {
		notifier = notify.NewSMSClient(cfg.SMSAPIKey, cfg.SMSSender, log)
	} else {
		notifier = notify.LogNotifier{Log: log}
	}

	patientRepo := patient.NewPgRepository(pgPool)
	patientSvc := patient.NewService(patientRepo, log)

	guard := redisclient.NewRedisSubmitGuard(rdb, cfg.SubmitGuardTTL)
	apptRepo := appointment.NewPgRepository(pgPool)
	apptSvc := appointment.NewService(apptRepo, patientSvc, guard, notifier, log)

	router := api.NewRouter(api.RouterConfig{
		Patients:     patientSvc,
		Appointments: apptSvc,
		Documents:    document.NewPgStore(pgPool),
		Gate:         admin.NewGate(cfg.AdminPasskey),
		PgPool:       pgPool,
		Redis:        rdb,
		Log:          log,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	log.Info().Msg("api-server stopped")
}

func newLogger(env string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

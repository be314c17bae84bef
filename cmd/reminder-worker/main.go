package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/config"
	"github.com/careloop/patient-intake/internal/db"
	"github.com/careloop/patient-intake/internal/notify"
	"github.com/careloop/patient-intake/internal/patient"
	redisclient "github.com/careloop/patient-intake/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "reminder-worker").Logger()
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("window", cfg.ReminderWindow).
		Msg("reminder-worker starting up")

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

	var notifier notify.Notifier
	if cfg.SMSAPIKey != "" {
		notifier = notify.NewSMSClient(cfg.SMSAPIKey, cfg.SMSSender, log)
	} else {
		notifier = notify.LogNotifier{Log: log}
	}

	patientRepo := patient.NewPgRepository(pgPool)
	patientSvc := patient.NewService(patientRepo, log)

	apptRepo := appointment.NewPgRepository(pgPool)
	svc := appointment.NewService(apptRepo, patientSvc, redisclient.PassthroughGuard{}, notifier, log)

	// Run once at startup
	runOnce(rootCtx, svc, cfg.ReminderWindow, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, cfg.ReminderWindow, log)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, window time.Duration, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := svc.SendReminders(runCtx, window); err != nil {
		log.Error().Err(err).Msg("reminder run error")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("reminder run complete")
}

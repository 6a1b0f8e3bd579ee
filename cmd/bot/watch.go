package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sodium-tycoon/internal/health"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the open contest and serve decisions until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context())
	},
}

func runWatch(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"strategy":    cfg.Engine.Strategy,
		"version":     Version,
	}).Info("Sodium Tycoon bot starting")

	a, err := buildApp(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.service.ReloadCoefficients(ctx); err != nil {
		appLog.WithError(err).Warn("Starting with configured coefficients")
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Decisions:   a.service,
	}
	if a.db != nil {
		healthCfg.DB = a.db
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsHandler = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	server := health.NewServer(healthCfg)
	if err := server.Start(ctx); err != nil {
		return err
	}

	sched := scheduler.NewScheduler(a.service, appLog)
	if err := sched.SchedulePolling(cfg.Scheduler.PollIntervalSeconds); err != nil {
		return err
	}
	if a.db != nil && cfg.Scheduler.CoefficientRefresh != "" {
		if err := sched.ScheduleCoefficientRefresh(cfg.Scheduler.CoefficientRefresh); err != nil {
			return err
		}
	}
	if err := sched.Start(); err != nil {
		return err
	}
	server.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"poll_interval_seconds": cfg.Scheduler.PollIntervalSeconds,
		"database":              a.db != nil,
		"circuit_breaker":       a.breaker.GetState().String(),
	}).Info("Bot is running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	server.SetReady(false)

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	appLog.WithField("stats", a.service.Stats()).Info("Sodium Tycoon bot shut down")
	return nil
}

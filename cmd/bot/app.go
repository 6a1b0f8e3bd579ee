package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/bot"
	"github.com/yourusername/sodium-tycoon/internal/calibration"
	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/database"
	"github.com/yourusername/sodium-tycoon/internal/datasource"
	"github.com/yourusername/sodium-tycoon/internal/engine"
	"github.com/yourusername/sodium-tycoon/internal/logger"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/repository"
	"github.com/yourusername/sodium-tycoon/internal/service"
	"github.com/yourusername/sodium-tycoon/internal/strategy"
)

// app is the wired dependency graph shared by the subcommands
type app struct {
	db      *database.DB
	source  *datasource.SaltyBoyClient
	service *service.DecisionService
	breaker *bot.CircuitBreaker
}

func buildApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	st, err := strategy.New(&cfg.Engine)
	if err != nil {
		return nil, err
	}
	strategyLog := logger.NewStrategyLogger(log)
	strategyLog.LogStrategyActivation(st.Name(), "startup", st.GetParameters())

	var (
		cal   engine.CalibrationSource
		cache *calibration.Cache
	)
	if cfg.CalibrationCache.Enabled {
		cache = calibration.NewCache(time.Duration(cfg.CalibrationCache.TTLSeconds)*time.Second, cfg.CalibrationCache.MaxSize)
		cal = cache
	}

	risk := bot.NewRiskManager(&cfg.Staking, log)
	eng := engine.New(st, risk, cal, log)

	breaker := bot.NewCircuitBreaker(cfg.CircuitBreaker, log)
	audit := logger.NewAuditLogger(log)
	breaker.RegisterTripCallback(func(event bot.TripEvent) {
		audit.LogCircuitBreakerEvent("trip", event.Reason, map[string]interface{}{
			"drawdown":      event.Drawdown,
			"bankroll":      event.Bankroll,
			"failure_count": event.FailureCount,
		}, "force_minimum_stake")
		if cfg.CircuitBreaker.MaxDrawdownPercent > 0 && event.Drawdown >= cfg.CircuitBreaker.MaxDrawdownPercent {
			strategyLog.LogBankrollDrawdown(event.Drawdown*100, event.Bankroll)
		}
	})

	a := &app{
		source:  datasource.NewSaltyBoyClientFromConfig(cfg.SaltyBoy, log),
		breaker: breaker,
	}
	opts := service.Options{Cache: cache, Breaker: breaker}

	if cfg.Features.DatabaseEnabled {
		a.db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("Database connection established")

		repos, err := repository.NewRepositories(a.db)
		if err != nil {
			a.close()
			return nil, err
		}
		opts.History = repository.NewHistoryStore(repos.Fighter, repos.Match, cfg.Database.MatchHistoryLimit, log)
		opts.Coefficients = repos.ModelWeight
		if cfg.Features.PersistWagers {
			opts.Recorder = service.NewDecisionRecorder(repos.Wager, log)
		}
		if !cfg.Features.RecordHistory {
			opts.History = readOnlyHistory{opts.History}
		}
	}

	a.service = service.NewDecisionService(a.source, eng, cfg, opts, log)
	return a, nil
}

func (a *app) close() {
	if a.source != nil {
		_ = a.source.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// readOnlyHistory enriches decisions from stored history without writing results back
type readOnlyHistory struct {
	service.HistorySource
}

func (readOnlyHistory) RecordResult(context.Context, models.MatchResult) (*models.Match, error) {
	return nil, nil
}

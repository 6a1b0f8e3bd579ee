package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sodium-tycoon/internal/backtest"
	"github.com/yourusername/sodium-tycoon/internal/bot"
	"github.com/yourusername/sodium-tycoon/internal/engine"
	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/strategy"
)

var backtestOpts struct {
	results   string
	startDate string
	endDate   string
	bankroll  int64
	equityCSV string
	jsonOut   bool
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay recorded results through the engine and report performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		btConfig, err := buildBacktestConfig()
		if err != nil {
			return err
		}
		results, err := readResults(backtestOpts.results)
		if err != nil {
			return err
		}

		st, err := strategy.New(&cfg.Engine)
		if err != nil {
			return err
		}
		decider := engine.New(st, bot.NewRiskManager(&cfg.Staking, appLog), nil, appLog)

		runner, err := backtest.NewEngine(btConfig, decider, appLog)
		if err != nil {
			return err
		}

		appLog.WithFields(logrus.Fields{"strategy": st.Name(), "results": len(results)}).Info("Starting backtest")
		state, metrics, err := runner.Run(cmd.Context(), results)
		if err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}

		if backtestOpts.equityCSV != "" {
			if err := backtest.WriteEquityCSV(state.EquityCurve, backtestOpts.equityCSV); err != nil {
				return fmt.Errorf("failed to write equity curve: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if backtestOpts.jsonOut {
			_, err = fmt.Fprintln(out, metrics.ToJSON())
			return err
		}
		_, err = fmt.Fprint(out, backtest.GenerateConsoleReport(metrics))
		return err
	},
}

func init() {
	f := backtestCmd.Flags()
	f.StringVarP(&backtestOpts.results, "results", "r", "", "Path to a JSON array of recorded results")
	f.StringVar(&backtestOpts.startDate, "start-date", "", "Replay results from this date (YYYY-MM-DD)")
	f.StringVar(&backtestOpts.endDate, "end-date", "", "Replay results up to the end of this date (YYYY-MM-DD)")
	f.Int64Var(&backtestOpts.bankroll, "bankroll", 0, "Starting bankroll (defaults to saltyboy.default_bankroll)")
	f.StringVar(&backtestOpts.equityCSV, "equity-csv", "", "Write the equity curve to this CSV file")
	f.BoolVar(&backtestOpts.jsonOut, "json", false, "Print metrics as JSON")
	_ = backtestCmd.MarkFlagRequired("results")
}

func buildBacktestConfig() (backtest.BacktestConfig, error) {
	bt := backtest.BacktestConfig{
		InitialBankroll: backtestOpts.bankroll,
		MatchLimit:      cfg.Database.MatchHistoryLimit,
	}
	if bt.InitialBankroll <= 0 {
		bt.InitialBankroll = cfg.SaltyBoy.DefaultBankroll
	}
	if backtestOpts.startDate != "" {
		parsed, err := time.Parse("2006-01-02", backtestOpts.startDate)
		if err != nil {
			return bt, fmt.Errorf("invalid start date: %w", err)
		}
		bt.StartDate = parsed
	}
	if backtestOpts.endDate != "" {
		parsed, err := time.Parse("2006-01-02", backtestOpts.endDate)
		if err != nil {
			return bt, fmt.Errorf("invalid end date: %w", err)
		}
		bt.EndDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return bt, bt.Validate()
}

func readResults(path string) ([]models.MatchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	var results []models.MatchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return results, nil
}

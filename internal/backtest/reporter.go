package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats metrics for terminal output
func GenerateConsoleReport(m Metrics) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Strategy: %s\n", m.Strategy))
	builder.WriteString(fmt.Sprintf("Balance: %d -> %d\n", m.InitialBalance, m.FinalBalance))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", m.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Bets: %d (fail-safe %d, skipped %d)\n", m.TotalBets, m.FailSafes, m.Skipped))
	builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", m.Accuracy*100))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", m.ROI*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))
	if m.Busted {
		builder.WriteString("Bankroll exhausted before the end of the replay\n")
	}
	return builder.String()
}

// WriteEquityCSV exports the equity curve for spreadsheets
func WriteEquityCSV(curve EquityCurve, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(curve.ToCSV()), 0o644)
}

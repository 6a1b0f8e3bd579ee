package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/sodium-tycoon/internal/models"
)

var inputFile string

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide one contest from a JSON snapshot and print the wager",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readInput(inputFile)
		if err != nil {
			return err
		}
		if in.Bankroll <= 0 {
			in.Bankroll = cfg.SaltyBoy.DefaultBankroll
		}

		a, err := buildApp(cmd.Context(), cfg, appLog)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.service.ReloadCoefficients(cmd.Context()); err != nil {
			appLog.WithError(err).Warn("Deciding with configured coefficients")
		}

		w, err := a.service.Evaluate(cmd.Context(), *in)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(w)
	},
}

func init() {
	decideCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Path to a JSON decision snapshot")
	_ = decideCmd.MarkFlagRequired("input")
}

// readInput loads a snapshot and validates any fighter it carries
func readInput(path string) (*models.DecisionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var in models.DecisionInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	for _, f := range []*models.Fighter{in.Red, in.Blue} {
		if f == nil {
			continue
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	return &in, nil
}

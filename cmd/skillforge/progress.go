package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jonathan/skillforge/internal/observability"
	"github.com/jonathan/skillforge/internal/progress"
	"github.com/spf13/cobra"
)

var progressJSON bool

var progressCmd = &cobra.Command{
	Use:   "progress <points>",
	Short: "Show the level and badges a point total earns",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgress,
}

func init() {
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	points, err := strconv.Atoi(args[0])
	if err != nil || points < 0 {
		return fmt.Errorf("points must be a non-negative integer, got %q", args[0])
	}

	calc := progress.DefaultCalculator()
	if !progressJSON {
		observability.NewPrinter(cmd.OutOrStdout()).PrintProgress(points, calc)
		return nil
	}

	state, _, err := calc.AddPoints(progress.UserProgress{}, points)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Status progress.LevelStatus `json:"status"`
		Badges []string             `json:"badges"`
	}{progress.StatusFor(points), state.Badges})
}

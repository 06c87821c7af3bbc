package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/predict"
)

var predictInput predict.Input

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run the classifier models once",
	Long: `Load the classifier models from the model directory, evaluate one
feature vector against each and print the predictions as JSON.`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	f := predictCmd.Flags()
	f.Float64Var(&predictInput.Weight, "weight", 0, "Current weight")
	f.Float64Var(&predictInput.Height, "height", 0, "Height")
	f.Float64Var(&predictInput.HeartRate, "heart-rate", 0, "Resting heart rate")
	f.Float64Var(&predictInput.TargetWeight, "target-weight", 0, "Target weight")
	f.Float64Var(&predictInput.TargetDuration, "target-duration", 0, "Target duration")
	f.Float64Var(&predictInput.WorkoutDays, "workout-days", 0, "Workout days per week")
	f.Float64Var(&predictInput.WorkoutTime, "workout-time", 0, "Workout time per session")
	for _, name := range []string{"weight", "height", "heart-rate", "target-weight", "target-duration", "workout-days", "workout-time"} {
		predictCmd.MarkFlagRequired(name)
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	dir, err := document.BaseDir(cfg.Models.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve model directory: %w", err)
	}
	models := predict.NewCache(ctx, dir, predict.DefaultModels, logger.New(logger.ComponentPredict))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.Predict(ctx, predictInput))
}

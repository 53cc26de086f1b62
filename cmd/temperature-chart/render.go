package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// renderCmd writes the chart page once and exits
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Read the export and write the chart HTML file",
	Long: `Reads the configured export, keeps the date and temperature columns and
writes an interactive line chart to the output file.

Example:
  temperature-chart render --input kobe.csv --output temperature.html
  temperature-chart render --input data.csv --encoding utf-8 --skip-rows ""`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	series, err := service.RenderFile(ctx, cfg.Output)
	if err != nil {
		logger.Error("render failed", zap.String("input", cfg.Input), zap.Error(err))
		return err
	}

	logger.Debug("render complete", zap.Int("readings", len(series.Readings)))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved interactive plot to %s\n", cfg.Output)
	return nil
}

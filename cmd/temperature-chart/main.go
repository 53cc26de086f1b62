package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/temperature-chart/internal/chart"
	"github.com/i474232898/temperature-chart/internal/config"
	"github.com/i474232898/temperature-chart/internal/source"
	"github.com/i474232898/temperature-chart/internal/weather"
)

var (
	// Global flags
	verbose     bool
	profilePath string

	// Layout overrides, applied on top of config.Load
	input       string
	output      string
	encoding    string
	skipRows    string
	dateColumn  string
	valueColumn string
	dateLayout  string
	title       string
	port        string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "temperature-chart",
	Short: "Render a weather-station temperature export as an interactive HTML chart",
	Long: `temperature-chart reads a weather-station CSV export (JMA layout by default),
keeps the date and average-temperature columns, coerces malformed cells to
null and writes an interactive line chart as a standalone HTML page.

Run without a subcommand to render.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.With(zap.String("run_id", uuid.NewString()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRender,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&profilePath, "config", "", "YAML profile describing the export layout and chart labels")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&input, "input", "i", "", "CSV export path or http(s) URL")
	pf.StringVar(&encoding, "encoding", "", "character encoding of the export (e.g. shift_jis, utf-8)")
	pf.StringVar(&skipRows, "skip-rows", "", "comma separated 0-based line indices to drop before the header")
	pf.StringVar(&dateColumn, "date-column", "", "header name of the date column")
	pf.StringVar(&valueColumn, "value-column", "", "header name of the temperature column")
	pf.StringVar(&dateLayout, "date-layout", "", "Go time layout of the date column")
	pf.StringVar(&title, "title", "", "chart title")

	renderCmd.Flags().StringVarP(&output, "output", "o", "", "HTML file to write")
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on")

	rootCmd.Flags().AddFlagSet(renderCmd.Flags())

	rootCmd.AddCommand(renderCmd, serveCmd)
}

// loadConfig merges the profile, the environment and any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(profilePath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	override("input", &cfg.Input, input)
	override("output", &cfg.Output, output)
	override("encoding", &cfg.Encoding, encoding)
	override("date-column", &cfg.DateColumn, dateColumn)
	override("value-column", &cfg.ValueColumn, valueColumn)
	override("date-layout", &cfg.DateLayout, dateLayout)
	override("title", &cfg.Title, title)
	override("port", &cfg.Port, port)

	if flags.Changed("skip-rows") {
		rows, err := config.ParseSkipRows(skipRows)
		if err != nil {
			return nil, fmt.Errorf("invalid --skip-rows: %w", err)
		}
		cfg.SkipRows = rows
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newService builds the pipeline described by cfg.
func newService(cfg *config.Config) (*weather.Service, error) {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	src, err := source.New(cfg.Input, httpClient)
	if err != nil {
		return nil, err
	}

	renderer := chart.NewLineRenderer(cfg.ChartOptions(), logger)
	return weather.NewService(src, cfg.ParseOptions(), renderer, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

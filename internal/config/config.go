package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/temperature-chart/internal/chart"
	"github.com/i474232898/temperature-chart/internal/weather"
)

var validate = validator.New()

// Config holds everything needed to turn one export into one chart page.
type Config struct {
	Input  string `yaml:"input" validate:"required"`
	Output string `yaml:"output" validate:"required"`

	Encoding    string `yaml:"encoding" validate:"required"`
	SkipRows    []int  `yaml:"skip_rows" validate:"dive,gte=0"`
	DateColumn  string `yaml:"date_column" validate:"required"`
	ValueColumn string `yaml:"value_column" validate:"required,nefield=DateColumn"`
	DateLayout  string `yaml:"date_layout" validate:"required"`

	Title      string `yaml:"title"`
	XLabel     string `yaml:"x_label"`
	YLabel     string `yaml:"y_label"`
	AssetsHost string `yaml:"assets_host" validate:"omitempty,url"`

	// HTTPTimeout bounds a download when Input is a URL.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	Port string `yaml:"port" validate:"required,numeric"`
}

// Default returns the layout of a JMA daily-temperature export.
func Default() *Config {
	return &Config{
		Input:       "kobe.csv",
		Output:      "temperature.html",
		Encoding:    "shift_jis",
		SkipRows:    []int{0, 1, 2, 4, 5},
		DateColumn:  "年月日",
		ValueColumn: "平均気温(℃)",
		DateLayout:  "2006/1/2",
		Title:       chart.DefaultTitle,
		XLabel:      chart.DefaultXLabel,
		YLabel:      chart.DefaultYLabel,
		AssetsHost:  chart.DefaultAssetsHost,
		HTTPTimeout: 30 * time.Second,
		Port:        "8080",
	}
}

// Load starts from Default, applies the YAML profile at profilePath (if
// non-empty), then the environment (including a .env file if present).
func Load(profilePath string) (*Config, error) {
	cfg := Default()

	if profilePath != "" {
		data, err := os.ReadFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", profilePath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", profilePath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Input = getenvDefault("INPUT_CSV", c.Input)
	c.Output = getenvDefault("OUTPUT_HTML", c.Output)
	c.Encoding = getenvDefault("CSV_ENCODING", c.Encoding)
	c.DateColumn = getenvDefault("DATE_COLUMN", c.DateColumn)
	c.ValueColumn = getenvDefault("VALUE_COLUMN", c.ValueColumn)
	c.DateLayout = getenvDefault("DATE_LAYOUT", c.DateLayout)
	c.Title = getenvDefault("CHART_TITLE", c.Title)
	c.XLabel = getenvDefault("CHART_X_LABEL", c.XLabel)
	c.YLabel = getenvDefault("CHART_Y_LABEL", c.YLabel)
	c.AssetsHost = getenvDefault("CHART_ASSETS_HOST", c.AssetsHost)
	c.Port = getenvDefault("PORT", c.Port)

	if v := os.Getenv("CSV_SKIP_ROWS"); v != "" {
		rows, err := ParseSkipRows(v)
		if err != nil {
			return fmt.Errorf("invalid CSV_SKIP_ROWS: %w", err)
		}
		c.SkipRows = rows
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// Validate checks the configuration after all overrides have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParseOptions returns the export layout part of the configuration.
func (c *Config) ParseOptions() weather.ParseOptions {
	return weather.ParseOptions{
		Encoding:    c.Encoding,
		SkipRows:    c.SkipRows,
		DateColumn:  c.DateColumn,
		ValueColumn: c.ValueColumn,
		DateLayout:  c.DateLayout,
	}
}

// ChartOptions returns the chart labelling part of the configuration.
func (c *Config) ChartOptions() chart.Options {
	return chart.Options{
		Title:      c.Title,
		XLabel:     c.XLabel,
		YLabel:     c.YLabel,
		AssetsHost: c.AssetsHost,
	}
}

// ParseSkipRows parses a comma separated list of line indices such as "0,1,2,4,5".
// An empty string means no lines are skipped.
func ParseSkipRows(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	rows := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("line index %q: %w", p, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("line index %d is negative", n)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

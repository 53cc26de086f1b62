package chart

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/i474232898/temperature-chart/internal/weather"
)

const (
	DefaultTitle  = "平均気温の推移"
	DefaultXLabel = "日付"
	DefaultYLabel = "平均気温 (℃)"

	// DefaultAssetsHost serves echarts.min.js from a CDN.
	DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

	chartID = "temperature_chart"

	// missingValue is how ECharts marks a gap in a series.
	missingValue = "-"
)

// Options controls chart labels and where the page loads its scripts from.
type Options struct {
	Title      string
	XLabel     string
	YLabel     string
	HoverLabel string // tooltip word for the value; defaults to "気温"
	Unit       string // tooltip unit suffix; defaults to "℃"
	AssetsHost string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.XLabel == "" {
		o.XLabel = DefaultXLabel
	}
	if o.YLabel == "" {
		o.YLabel = DefaultYLabel
	}
	if o.HoverLabel == "" {
		o.HoverLabel = "気温"
	}
	if o.Unit == "" {
		o.Unit = "℃"
	}
	if o.AssetsHost == "" {
		o.AssetsHost = DefaultAssetsHost
	}
	return o
}

// LineRenderer draws a series as an interactive ECharts line chart.
type LineRenderer struct {
	opts   Options
	logger *zap.Logger
}

func NewLineRenderer(opts Options, logger *zap.Logger) *LineRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineRenderer{opts: opts.withDefaults(), logger: logger}
}

// Render writes a standalone HTML page to w. Points sit on a time axis at
// their dates, so skipped days show as spacing and rows keep their export
// order. Readings without a date cannot be placed and are left out; readings
// without a temperature become gaps in the line.
func (r *LineRenderer) Render(w io.Writer, series weather.Series) error {
	data, undated := points(series)
	if undated > 0 {
		r.logger.Warn("readings without a date are not plotted", zap.Int("count", undated))
	}

	formatter := tooltipFormatter(r.opts.XLabel, r.opts.HoverLabel, r.opts.Unit)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  r.opts.Title,
			Width:      "100%",
			Height:     "600px",
			ChartID:    chartID,
			AssetsHost: r.opts.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: r.opts.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "axis",
			Formatter: opts.FuncOpts(formatter),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      r.opts.XLabel,
			Type:      "time",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      r.opts.YLabel,
			Type:      "value",
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)

	line.AddSeries(r.opts.YLabel, data).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol:   opts.Bool(true),
				ConnectNulls: opts.Bool(false),
			}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("echarts render: %w", err)
	}
	return nil
}

// points returns [date, temperature] pairs in series order.
func points(series weather.Series) (data []opts.LineData, undated int) {
	data = make([]opts.LineData, 0, len(series.Readings))
	for _, rd := range series.Readings {
		if !rd.HasDate() {
			undated++
			continue
		}
		var y interface{} = missingValue
		if rd.HasTemperature() {
			y = rd.Temperature
		}
		data = append(data, opts.LineData{
			Value: []interface{}{rd.Date.Format(weather.DateFormat), y},
		})
	}
	return data, undated
}

// tooltipFormatter renders "<xLabel>: YYYY-MM-DD<br><hover>: <value> <unit>".
// Labels are spelled out with String.fromCharCode because the function body
// is embedded in the JSON options verbatim, where quotes and backslashes
// would be escaped.
func tooltipFormatter(xLabel, hover, unit string) string {
	return fmt.Sprintf(`function (params) {
	var p = Array.isArray(params) ? params[0] : params;
	var v = p ? p.value : null;
	if (!v || v[1] === '%s' || v[1] == null) { return ''; }
	return %s + v[0] + %s + v[1] + %s;
}`, missingValue, jsString(xLabel+": "), jsString("<br>"+hover+": "), jsString(" "+unit))
}

func jsString(s string) string {
	units := utf16.Encode([]rune(s))
	codes := make([]string, len(units))
	for i, u := range units {
		codes[i] = strconv.Itoa(int(u))
	}
	return "String.fromCharCode(" + strings.Join(codes, ",") + ")"
}

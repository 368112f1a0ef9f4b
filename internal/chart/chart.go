// Package chart renders a table into a self-contained HTML page: candlestick
// price chart with SMA overlays, volume bars, the rolling-volatility line and
// a daily-return distribution histogram. The artifact is ephemeral and
// regenerated on every query.
package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"tickerdash/internal/analysis"
	"tickerdash/internal/dataset"
)

const (
	chartWidth  = "1100px"
	chartHeight = "420px"

	histogramBins = 30
)

// Render writes the chart page for a built table.
func Render(w io.Writer, table *dataset.Table, summary analysis.Summary) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s price history", table.Ticker)

	page.AddCharts(
		priceChart(table, summary),
		volumeChart(table),
		volatilityChart(table),
		returnsChart(table),
	)

	return page.Render(w)
}

func dates(table *dataset.Table) []string {
	x := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		x[i] = r.Date
	}
	return x
}

func priceChart(table *dataset.Table, summary analysis.Summary) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s close price and moving averages", table.Ticker),
			Subtitle: fmt.Sprintf("%d sessions | mean daily return %.4f%% | annualized volatility %.2f%%",
				summary.Rows, summary.MeanDailyReturn*100, summary.AnnualizedVolatility*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	klineData := make([]opts.KlineData, len(table.Rows))
	for i, r := range table.Rows {
		// echarts kline order: open, close, low, high
		klineData[i] = opts.KlineData{Value: [4]float64{r.Open, r.Close, r.Low, r.High}}
	}
	kline.SetXAxis(dates(table)).AddSeries(table.Ticker, klineData)

	kline.Overlap(smaLine(table, fmt.Sprintf("SMA %d", table.Windows.Short), func(r dataset.Row) *float64 { return r.SMAShort }))
	kline.Overlap(smaLine(table, fmt.Sprintf("SMA %d", table.Windows.Long), func(r dataset.Row) *float64 { return r.SMALong }))

	return kline
}

func smaLine(table *dataset.Table, name string, pick func(dataset.Row) *float64) *charts.Line {
	line := charts.NewLine()
	data := make([]opts.LineData, len(table.Rows))
	for i, r := range table.Rows {
		if v := pick(r); v != nil {
			data[i] = opts.LineData{Value: *v}
		} else {
			// "-" is the echarts convention for a gap
			data[i] = opts.LineData{Value: "-"}
		}
	}
	line.SetXAxis(dates(table)).AddSeries(name, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

func volumeChart(table *dataset.Table) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: "220px"}),
		charts.WithTitleOpts(opts.Title{Title: "Volume"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	data := make([]opts.BarData, len(table.Rows))
	for i, r := range table.Rows {
		data[i] = opts.BarData{Value: r.Volume}
	}
	bar.SetXAxis(dates(table)).AddSeries("volume", data)
	return bar
}

func returnsChart(table *dataset.Table) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: "220px"}),
		charts.WithTitleOpts(opts.Title{Title: "Daily return distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var returns []float64
	for _, r := range table.Rows {
		if r.DailyReturn != nil {
			returns = append(returns, *r.DailyReturn)
		}
	}

	labels, counts := bucket(returns, histogramBins)
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("sessions", data)
	return bar
}

// bucket splits values into equal-width bins; labels carry the bin midpoint
// as a percentage.
func bucket(values []float64, bins int) ([]string, []int) {
	if len(values) == 0 {
		return nil, nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []string{fmt.Sprintf("%.2f%%", lo*100)}, []int{len(values)}
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f%%", (lo+(float64(i)+0.5)*width)*100)
	}
	return labels, counts
}

func volatilityChart(table *dataset.Table) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: "220px"}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Rolling volatility (%d sessions)", table.Windows.Vol),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	data := make([]opts.LineData, len(table.Rows))
	for i, r := range table.Rows {
		if r.RollingVol != nil {
			data[i] = opts.LineData{Value: *r.RollingVol}
		} else {
			data[i] = opts.LineData{Value: "-"}
		}
	}
	line.SetXAxis(dates(table)).AddSeries("rolling volatility", data)
	return line
}

package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"tickerdash/internal/analysis"
	"tickerdash/internal/dataset"
	"tickerdash/internal/domain"
)

const previewRows = 15

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>tickerdash</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
form { margin-bottom: 1.5em; }
label { margin-right: 0.4em; }
input, select { margin-right: 1.2em; }
.error { color: #b00020; border: 1px solid #b00020; padding: 0.8em; margin-bottom: 1em; }
.stats span { display: inline-block; margin-right: 2.5em; }
.stats b { display: block; font-size: 1.3em; }
table { border-collapse: collapse; margin-top: 1em; }
td, th { border: 1px solid #ccc; padding: 0.25em 0.6em; text-align: right; }
th { background: #f4f4f4; }
iframe { border: none; width: 100%; height: 960px; margin-top: 1em; }
</style>
</head>
<body>
<h1>tickerdash</h1>
<form method="get" action="/">
  <label for="ticker">Ticker</label><input id="ticker" name="ticker" value="{{.Ticker}}">
  <label for="start">Start</label><input id="start" name="start" type="date" value="{{.Start}}">
  <label for="end">End</label><input id="end" name="end" type="date" value="{{.End}}">
  <label for="interval">Interval</label>
  <select id="interval" name="interval">
    <option value="d1"{{if eq .Interval "d1"}} selected{{end}}>daily</option>
    <option value="w1"{{if eq .Interval "w1"}} selected{{end}}>weekly</option>
    <option value="M1"{{if eq .Interval "M1"}} selected{{end}}>monthly</option>
  </select>
  <label for="short">Short SMA</label><input id="short" name="short" size="3" value="{{.Short}}">
  <label for="long">Long SMA</label><input id="long" name="long" size="3" value="{{.Long}}">
  <label for="vol">Vol window</label><input id="vol" name="vol" size="3" value="{{.Vol}}">
  <button type="submit">Load</button>
</form>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
{{if .HasReport}}
<div class="stats">
  <span><b>{{.RowCount}}</b>rows</span>
  <span><b>{{printf "%.4f%%" .MeanDailyReturnPct}}</b>mean daily return</span>
  <span><b>{{printf "%.2f%%" .AnnualizedVolPct}}</b>annualized volatility</span>
  <span><a href="/export/csv?{{.RawQuery}}">download CSV</a></span>
  <span><a href="/export/chart?{{.RawQuery}}">download chart</a></span>
</div>
<iframe src="/chart?{{.RawQuery}}"></iframe>
<h2>Last rows</h2>
<table>
<tr><th>date</th><th>open</th><th>high</th><th>low</th><th>close</th><th>volume</th></tr>
{{range .Preview}}<tr><td>{{.Date}}</td><td>{{printf "%.2f" .Open}}</td><td>{{printf "%.2f" .High}}</td><td>{{printf "%.2f" .Low}}</td><td>{{printf "%.2f" .Close}}</td><td>{{.Volume}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

type dashboardData struct {
	Ticker   string
	Start    string
	End      string
	Interval string
	Short    int
	Long     int
	Vol      int

	Error string

	HasReport          bool
	RowCount           int
	MeanDailyReturnPct float64
	AnnualizedVolPct   float64
	RawQuery           template.URL
	Preview            []dataset.Row
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	defaults := analysis.DefaultWindows()
	data := dashboardData{
		Ticker:   "AAPL",
		Start:    time.Now().UTC().AddDate(-1, 0, 0).Format(domain.DateFormat),
		End:      time.Now().UTC().Format(domain.DateFormat),
		Interval: domain.IntervalDaily.String(),
		Short:    defaults.Short,
		Long:     defaults.Long,
		Vol:      defaults.Vol,
	}

	if r.URL.Query().Get("ticker") != "" {
		h.fillReport(r, &data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render dashboard", "error", err)
	}
}

// fillReport runs the pipeline for the submitted query and fills the page
// data. Errors are shown inline; the chart is withheld until the query is
// valid.
func (h *Handler) fillReport(r *http.Request, data *dashboardData) {
	params := r.URL.Query()
	data.Ticker = params.Get("ticker")
	data.Start = params.Get("start")
	data.End = params.Get("end")
	if params.Get("interval") != "" {
		data.Interval = params.Get("interval")
	}

	q, windows, err := parseRequest(r)
	if err != nil {
		data.Error = err.Error()
		return
	}
	if windows != (analysis.Windows{}) {
		data.Short, data.Long, data.Vol = windows.Short, windows.Long, windows.Vol
	}

	report, err := h.runner.Run(r.Context(), q, windows)
	if err != nil {
		data.Error = err.Error()
		return
	}

	data.HasReport = true
	data.RowCount = report.Table.Len()
	data.MeanDailyReturnPct = report.Summary.MeanDailyReturn * 100
	data.AnnualizedVolPct = report.Summary.AnnualizedVolatility * 100
	data.RawQuery = template.URL(r.URL.RawQuery)

	rows := report.Table.Rows
	if len(rows) > previewRows {
		rows = rows[len(rows)-previewRows:]
	}
	data.Preview = rows
}

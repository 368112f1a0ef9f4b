package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"tickerdash/internal/analysis"
	"tickerdash/internal/dataset"
	"tickerdash/internal/domain"
	"tickerdash/internal/pipeline"
)

// Runner is the narrow interface the handlers need from the pipeline.
type Runner interface {
	Run(ctx context.Context, q domain.Query, windows analysis.Windows) (*pipeline.Report, error)
}

// Exporter persists download artifacts alongside streaming them.
type Exporter interface {
	SaveCSV(ctx context.Context, q domain.Query, table *dataset.Table) (string, error)
	SaveChart(ctx context.Context, q domain.Query, html []byte) (string, error)
}

type Handler struct {
	runner   Runner
	exporter Exporter
}

func NewHandler(runner Runner, exporter Exporter) *Handler {
	return &Handler{runner: runner, exporter: exporter}
}

// Routes mounts the dashboard surface.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.dashboard)
	mux.HandleFunc("GET /chart", h.chartPage)
	mux.HandleFunc("GET /api/v1/series", h.apiSeries)
	mux.HandleFunc("GET /export/csv", h.exportCSV)
	mux.HandleFunc("GET /export/chart", h.exportChart)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type seriesResponse struct {
	Ticker      string           `json:"ticker"`
	Interval    string           `json:"interval"`
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Summary     analysis.Summary `json:"summary"`
	Rows        []dataset.Row    `json:"rows"`
	GeneratedAt string           `json:"generated_at"`
}

// parseRequest builds the query and windows from URL parameters. Absent
// window parameters yield zero Windows, which the pipeline defaults.
func parseRequest(r *http.Request) (domain.Query, analysis.Windows, error) {
	params := r.URL.Query()

	q, err := domain.ParseQuery(
		params.Get("ticker"),
		params.Get("interval"),
		params.Get("start"),
		params.Get("end"),
	)
	if err != nil {
		return domain.Query{}, analysis.Windows{}, err
	}

	windows := analysis.Windows{}
	if params.Get("short") != "" || params.Get("long") != "" || params.Get("vol") != "" {
		windows = analysis.DefaultWindows()
		if windows.Short, err = windowParam(params.Get("short"), windows.Short); err != nil {
			return domain.Query{}, analysis.Windows{}, err
		}
		if windows.Long, err = windowParam(params.Get("long"), windows.Long); err != nil {
			return domain.Query{}, analysis.Windows{}, err
		}
		if windows.Vol, err = windowParam(params.Get("vol"), windows.Vol); err != nil {
			return domain.Query{}, analysis.Windows{}, err
		}
	}

	return q, windows, nil
}

func windowParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: window %q is not a number", domain.ErrInvalidQuery, raw)
	}
	return n, nil
}

func (h *Handler) apiSeries(w http.ResponseWriter, r *http.Request) {
	q, windows, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.runner.Run(r.Context(), q, windows)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, seriesResponse{
		Ticker:      report.Table.Ticker,
		Interval:    report.Query.Interval.String(),
		Start:       report.Query.Start.Format(domain.DateFormat),
		End:         report.Query.End.Format(domain.DateFormat),
		Summary:     report.Summary,
		Rows:        report.Table.Rows,
		GeneratedAt: report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) chartPage(w http.ResponseWriter, r *http.Request) {
	q, windows, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.runner.Run(r.Context(), q, windows)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.ChartHTML)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	q, windows, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.runner.Run(r.Context(), q, windows)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.exporter.SaveCSV(r.Context(), q, report.Table); err != nil {
		slog.WarnContext(r.Context(), "failed to persist csv artifact", "error", err)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment(q, "csv"))
	if err := report.Table.WriteCSV(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to stream csv", "error", err)
	}
}

func (h *Handler) exportChart(w http.ResponseWriter, r *http.Request) {
	q, windows, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.runner.Run(r.Context(), q, windows)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.exporter.SaveChart(r.Context(), q, report.ChartHTML); err != nil {
		slog.WarnContext(r.Context(), "failed to persist chart artifact", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(q, "html"))
	w.Write(report.ChartHTML)
}

func attachment(q domain.Query, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s_%s_%s.%s"`,
		q.Ticker, q.Start.Format(domain.DateFormat), q.End.Format(domain.DateFormat), ext)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Everything
// is surfaced to the caller; nothing is retried.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownTicker), errors.Is(err, domain.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

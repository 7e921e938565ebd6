package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	energyapp "home-energy/internal/energy/application"
	energy "home-energy/internal/energy/domain"
	"home-energy/internal/energy/interfaces"
	"home-energy/internal/observability/metrics"
)

// SummaryHandler serves period summaries and cost reports.
type SummaryHandler struct {
	service  *energyapp.Service
	currency string
}

// NewSummaryHandler constructs a handler.
func NewSummaryHandler(service *energyapp.Service, currency string) (*SummaryHandler, error) {
	if service == nil {
		return nil, errors.New("summary handler: nil service")
	}
	if currency == "" {
		currency = "EUR"
	}
	return &SummaryHandler{service: service, currency: currency}, nil
}

// ServeHTTP dispatches summary and report routes.
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/summary":
		h.handleSummary(w, r)
	case "/api/v1/readings/report":
		h.handleReport(w, r)
	case "/api/v1/reports/daily-costs":
		h.handleDailyCosts(w, r)
	case "/api/v1/reports/daily-costs.xlsx":
		h.handleDailyCostsExport(w, r, "xlsx")
	case "/api/v1/reports/daily-costs.pdf":
		h.handleDailyCostsExport(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *SummaryHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := energy.Period(r.URL.Query().Get("period"))
	if period != "" && !period.IsValid() {
		http.Error(w, "unknown period", http.StatusBadRequest)
		return
	}
	reference, err := parseReference(r.URL.Query().Get("ref"))
	if err != nil {
		http.Error(w, "invalid ref date", http.StatusBadRequest)
		return
	}

	summary, err := h.service.Summary(r.Context(), period, reference)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

func (h *SummaryHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func (h *SummaryHandler) handleDailyCosts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.DailyCosts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *SummaryHandler) handleDailyCostsExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	rows, err := h.service.DailyCosts(r.Context())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "xlsx":
		data, err = interfaces.BuildDailyCostsXLSX(rows, h.currency)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = interfaces.BuildDailyCostsPDF(rows, h.currency)
		contentType = "application/pdf"
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseReference(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

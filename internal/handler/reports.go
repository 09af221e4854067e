package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/streetbite-pos/api/internal/enum"
	"github.com/streetbite-pos/api/internal/service"
)

// ReportServicer defines the service methods needed by report handlers.
// Satisfied by *service.ReportService; narrow interface for testability.
type ReportServicer interface {
	Report(ctx context.Context, filter string) (*service.Report, error)
	ExportCSV(ctx context.Context, filter string) ([]byte, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportServicer
}

func NewReportsHandler(svc ReportServicer) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// RegisterRoutes registers the report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/report_data", h.ReportData)
	r.Get("/export_report", h.ExportReport)
}

// ReportData handles GET /api/report_data?filter=day|week|all.
func (h *ReportsHandler) ReportData(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = enum.ReportFilterDay
	}

	report, err := h.svc.Report(r.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: report data: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ExportReport handles GET /export_report?filter=... and streams the
// filtered order set as a CSV attachment.
func (h *ReportsHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = enum.ReportFilterDay
	}

	csv, err := h.svc.ExportCSV(r.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: export report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.csv", filter))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(csv); err != nil {
		log.Printf("ERROR: write CSV response: %v", err)
	}
}

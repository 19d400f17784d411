package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"timesheet/apperr"
	"timesheet/export"
	"timesheet/models"
	"timesheet/services"
	"timesheet/timeutil"
)

type ReportHandler struct {
	reports *services.ReportService
	log     zerolog.Logger
}

func NewReportHandler(reports *services.ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// reportFilters reads the shared query parameters of the report endpoints.
// Missing from/to default to the last 30 days.
func reportFilters(r *http.Request) (services.ReportFilters, error) {
	var f services.ReportFilters

	q := r.URL.Query()
	now := time.Now().UTC()
	f.From = now.AddDate(0, 0, -30)
	f.To = now

	if v := q.Get("from"); v != "" {
		parsed, err := timeutil.ParseDate(v)
		if err != nil {
			return f, apperr.Validation("from must be YYYY-MM-DD")
		}
		f.From = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := timeutil.ParseDate(v)
		if err != nil {
			return f, apperr.Validation("to must be YYYY-MM-DD")
		}
		f.To = parsed
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apperr.Validation("invalid user_id")
		}
		uid := uint(id)
		f.UserID = &uid
	}
	if v := q.Get("project_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apperr.Validation("invalid project_id")
		}
		pid := uint(id)
		f.ProjectID = &pid
	}
	if v := q.Get("status"); v != "" {
		status := models.TimesheetStatus(v)
		f.Status = &status
	}
	return f, nil
}

func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	filters, err := reportFilters(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	report, err := h.reports.Generate(a.OrgID, filters, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	filters, err := reportFilters(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	report, err := h.reports.Generate(a.OrgID, filters, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	filename := fmt.Sprintf("timesheet-report-%s-%s.csv",
		timeutil.DateString(filters.From), timeutil.DateString(filters.To))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteReportCSV(w, report); err != nil {
		h.log.Error().Err(err).Msg("failed to write report csv")
	}
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	a := actor(r)

	q := r.URL.Query()
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	targetUserID := a.UserID

	if v := q.Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, h.log, apperr.Validation("invalid year"))
			return
		}
		year = parsed
	}
	if v := q.Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, h.log, apperr.Validation("invalid month"))
			return
		}
		month = parsed
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(w, h.log, apperr.Validation("invalid user_id"))
			return
		}
		targetUserID = uint(id)
	}

	data, err := h.reports.GenerateMonthly(a.OrgID, targetUserID, year, month, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if q.Get("format") == "csv" {
		filename := fmt.Sprintf("monthly-timesheet-%04d-%02d.csv", year, month)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := export.WriteMonthlyCSV(w, data); err != nil {
			h.log.Error().Err(err).Msg("failed to write monthly csv")
		}
		return
	}
	respondJSON(w, http.StatusOK, data)
}

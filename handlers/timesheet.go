package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/services"
	"timesheet/timeutil"
)

type TimesheetHandler struct {
	timesheets *services.TimesheetService
	log        zerolog.Logger
}

func NewTimesheetHandler(timesheets *services.TimesheetService, log zerolog.Logger) *TimesheetHandler {
	return &TimesheetHandler{timesheets: timesheets, log: log}
}

func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	sheets, meta, err := h.timesheets.List(a.OrgID, a.UserID, pageParams(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: sheets, Meta: meta})
}

func (h *TimesheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ts, err := h.timesheets.Get(a.OrgID, a.UserID, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req struct {
		WeekStartDate string `json:"week_start_date"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	weekStart, err := timeutil.ParseDate(req.WeekStartDate)
	if err != nil {
		respondError(w, h.log, apperr.Validation("week_start_date must be YYYY-MM-DD"))
		return
	}

	ts, err := h.timesheets.Create(a.OrgID, a.UserID, weekStart)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, ts)
}

func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		WeekStartDate *string `json:"week_start_date"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	var weekStart *time.Time
	if req.WeekStartDate != nil {
		parsed, err := timeutil.ParseDate(*req.WeekStartDate)
		if err != nil {
			respondError(w, h.log, apperr.Validation("week_start_date must be YYYY-MM-DD"))
			return
		}
		weekStart = &parsed
	}

	ts, err := h.timesheets.Update(a.OrgID, a.UserID, id, weekStart)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.timesheets.Delete(a.OrgID, a.UserID, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "timesheet deleted"})
}

func (h *TimesheetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ts, err := h.timesheets.Submit(a.OrgID, a.UserID, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (h *TimesheetHandler) CopyPreviousWeek(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req struct {
		WeekStartDate string `json:"week_start_date"`
		Force         bool   `json:"force"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	weekStart, err := timeutil.ParseDate(req.WeekStartDate)
	if err != nil {
		respondError(w, h.log, apperr.Validation("week_start_date must be YYYY-MM-DD"))
		return
	}

	result, err := h.timesheets.CopyPreviousWeek(a.OrgID, a.UserID, weekStart, a.Role, req.Force)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// dayFields is the per-weekday slice of an entry request. All fields are
// optional; absent ones keep their stored value on update.
type dayFields struct {
	MonHours *float64 `json:"mon_hours"`
	MonDesc  *string  `json:"mon_desc"`
	TueHours *float64 `json:"tue_hours"`
	TueDesc  *string  `json:"tue_desc"`
	WedHours *float64 `json:"wed_hours"`
	WedDesc  *string  `json:"wed_desc"`
	ThuHours *float64 `json:"thu_hours"`
	ThuDesc  *string  `json:"thu_desc"`
	FriHours *float64 `json:"fri_hours"`
	FriDesc  *string  `json:"fri_desc"`
	SatHours *float64 `json:"sat_hours"`
	SatDesc  *string  `json:"sat_desc"`
	SunHours *float64 `json:"sun_hours"`
	SunDesc  *string  `json:"sun_desc"`
}

func (d dayFields) patches() [models.DaysPerWeek]services.DayPatch {
	return [models.DaysPerWeek]services.DayPatch{
		{Hours: d.MonHours, Desc: d.MonDesc},
		{Hours: d.TueHours, Desc: d.TueDesc},
		{Hours: d.WedHours, Desc: d.WedDesc},
		{Hours: d.ThuHours, Desc: d.ThuDesc},
		{Hours: d.FriHours, Desc: d.FriDesc},
		{Hours: d.SatHours, Desc: d.SatDesc},
		{Hours: d.SunHours, Desc: d.SunDesc},
	}
}

func (h *TimesheetHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	timesheetID, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	entries, err := h.timesheets.ListEntries(a.OrgID, a.UserID, timesheetID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *TimesheetHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	timesheetID, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ProjectID uint  `json:"project_id"`
		Billable  *bool `json:"billable"`
		dayFields
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if req.ProjectID == 0 {
		respondError(w, h.log, apperr.Validation("project_id is required"))
		return
	}

	entry, err := h.timesheets.CreateEntry(a.OrgID, a.UserID, timesheetID, services.EntryInput{
		ProjectID: req.ProjectID,
		Billable:  req.Billable,
		Days:      req.patches(),
	}, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *TimesheetHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	timesheetID, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	entryID, err := idParam(r, "entryID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ProjectID *uint `json:"project_id"`
		Billable  *bool `json:"billable"`
		dayFields
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	entry, err := h.timesheets.UpdateEntry(a.OrgID, a.UserID, timesheetID, entryID, services.EntryPatch{
		ProjectID: req.ProjectID,
		Billable:  req.Billable,
		Days:      req.patches(),
	}, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	timesheetID, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	entryID, err := idParam(r, "entryID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.timesheets.DeleteEntry(a.OrgID, a.UserID, timesheetID, entryID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/apperr"
	"timesheet/services"
	"timesheet/timeutil"
)

type SettingsHandler struct {
	settings *services.SettingsService
	holidays *services.HolidayService
	log      zerolog.Logger
}

func NewSettingsHandler(settings *services.SettingsService, holidays *services.HolidayService, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, holidays: holidays, log: log}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	settings, err := h.settings.Get(a.OrgID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req struct {
		WorkWeekStart     *string  `json:"work_week_start"`
		MaxHoursPerDay    *float64 `json:"max_hours_per_day"`
		MaxHoursPerWeek   *float64 `json:"max_hours_per_week"`
		AllowBackdated    *bool    `json:"allow_backdated"`
		MandatoryDesc     *bool    `json:"mandatory_desc"`
		AllowCopyWeek     *bool    `json:"allow_copy_week"`
		CopyPreviousHours *bool    `json:"copy_previous_hours"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	settings, err := h.settings.Update(a.OrgID, services.UpdateSettingsInput{
		WorkWeekStart:     req.WorkWeekStart,
		MaxHoursPerDay:    req.MaxHoursPerDay,
		MaxHoursPerWeek:   req.MaxHoursPerWeek,
		AllowBackdated:    req.AllowBackdated,
		MandatoryDesc:     req.MandatoryDesc,
		AllowCopyWeek:     req.AllowCopyWeek,
		CopyPreviousHours: req.CopyPreviousHours,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	holidays, err := h.holidays.List(a.OrgID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, holidays)
}

func (h *SettingsHandler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req struct {
		Name      string `json:"name"`
		Date      string `json:"date"`
		Recurring bool   `json:"recurring"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		respondError(w, h.log, apperr.Validation("date must be YYYY-MM-DD"))
		return
	}

	holiday, err := h.holidays.Create(a.OrgID, req.Name, date, req.Recurring)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, holiday)
}

func (h *SettingsHandler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.holidays.Delete(a.OrgID, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "holiday deleted"})
}

package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/models"
	"timesheet/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
	log      zerolog.Logger
}

func NewProjectHandler(projects *services.ProjectService, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

type projectRequest struct {
	Code        *string               `json:"code"`
	Name        *string               `json:"name"`
	Client      *string               `json:"client"`
	BudgetHours *float64              `json:"budget_hours"`
	Status      *models.ProjectStatus `json:"status"`
	ManagerIDs  *[]uint               `json:"manager_ids"`
}

func (req projectRequest) input() services.ProjectInput {
	in := services.ProjectInput{
		Code:        req.Code,
		Name:        req.Name,
		Client:      req.Client,
		BudgetHours: req.BudgetHours,
		Status:      req.Status,
	}
	if req.ManagerIDs != nil {
		in.ManagerIDs = *req.ManagerIDs
		in.ReplaceManagers = true
	}
	return in
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	projects, meta, err := h.projects.List(a.OrgID, a.UserID, a.Role, pageParams(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: projects, Meta: meta})
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req projectRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	project, err := h.projects.Create(a.OrgID, req.input(), a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req projectRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	project, err := h.projects.Update(a.OrgID, id, req.input())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.projects.Delete(a.OrgID, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

func (h *ProjectHandler) ReplaceEmployees(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		EmployeeIDs []uint `json:"employee_ids"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.projects.ReplaceEmployees(a.OrgID, id, req.EmployeeIDs); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "employees assigned"})
}

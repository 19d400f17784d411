package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/services"
)

type TeamHandler struct {
	team *services.TeamService
	log  zerolog.Logger
}

func NewTeamHandler(team *services.TeamService, log zerolog.Logger) *TeamHandler {
	return &TeamHandler{team: team, log: log}
}

// Members lists the actor's direct reports.
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	members, err := h.team.TeamMembers(a.OrgID, a.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// Managers lists the managers of a user.
func (h *TeamHandler) Managers(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	userID, err := idParam(r, "userID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	managers, err := h.team.ManagersOf(a.OrgID, userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, managers)
}

// AssignManagers replaces a user's manager set.
func (h *TeamHandler) AssignManagers(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	userID, err := idParam(r, "userID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ManagerIDs []uint `json:"manager_ids"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.team.AssignManagers(a.OrgID, userID, req.ManagerIDs); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "managers assigned"})
}

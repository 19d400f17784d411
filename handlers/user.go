package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/models"
	"timesheet/services"
)

type UserHandler struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewUserHandler(users *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	users, meta, err := h.users.List(a.OrgID, a.UserID, a.Role, pageParams(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: users, Meta: meta})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	user, err := h.users.Get(a.OrgID, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	user, err := h.users.Get(a.OrgID, a.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req struct {
		Name       string      `json:"name"`
		Email      string      `json:"email"`
		Password   string      `json:"password"`
		Role       models.Role `json:"role"`
		Department string      `json:"department"`
		ManagerIDs []uint      `json:"manager_ids"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, err := h.users.Create(a.OrgID, services.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		ManagerIDs: req.ManagerIDs,
	}, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Name       *string            `json:"name"`
		Role       *models.Role       `json:"role"`
		Department *string            `json:"department"`
		Status     *models.UserStatus `json:"status"`
		ManagerIDs *[]uint            `json:"manager_ids"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	in := services.UpdateUserInput{
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Status:     req.Status,
	}
	if req.ManagerIDs != nil {
		in.ManagerIDs = *req.ManagerIDs
		in.ReplaceManagers = true
	}

	user, err := h.users.Update(a.OrgID, id, in, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.users.Deactivate(a.OrgID, id, a.UserID, a.Role); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deactivated"})
}

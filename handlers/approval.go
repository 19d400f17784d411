package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/services"
)

type ApprovalHandler struct {
	approvals *services.ApprovalService
	log       zerolog.Logger
}

func NewApprovalHandler(approvals *services.ApprovalService, log zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals, log: log}
}

func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	sheets, meta, err := h.approvals.ListPending(a.OrgID, a.UserID, a.Role, pageParams(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: sheets, Meta: meta})
}

func (h *ApprovalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	stats, err := h.approvals.Stats(a.OrgID, a.UserID, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	ts, err := h.approvals.Approve(a.OrgID, a.UserID, id, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	ts, err := h.approvals.Reject(a.OrgID, a.UserID, id, req.Reason, a.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

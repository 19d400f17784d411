package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"timesheet/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           zerolog.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	notifications, err := h.notifications.List(a.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	n, err := h.notifications.MarkRead(a.UserID, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	if err := h.notifications.MarkAllRead(a.UserID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked read"})
}

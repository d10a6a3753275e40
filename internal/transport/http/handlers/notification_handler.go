package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/service"
	"github.com/njerikim/baraza/internal/transport/http/middleware"
	"github.com/njerikim/baraza/internal/util"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's notifications, newest first. Fetched notifications
// are marked read as a side effect; the returned read flags are the values
// from before this call so clients can still highlight the unseen ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notifications, err := h.notificationService.List(r.Context(), userID)
	if err != nil {
		util.Logger.Error("list notifications failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		case errors.Is(err, service.ErrNotNotificationOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Notification belongs to another user")
		default:
			util.Logger.Error("mark notification read failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

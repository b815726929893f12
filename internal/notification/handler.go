package notification

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitnest/splitnest/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/participants/{participantId}", h.ListByParticipant)
	r.Get("/participants/{participantId}/unread-count", h.UnreadCount)
	r.Post("/participants/{participantId}/read-all", h.MarkAllAsRead)
	r.Post("/{id}/read", h.MarkAsRead)

	return r
}

// ListByParticipant handles GET /notifications/participants/{participantId}
// @Summary      List notifications for a participant
// @Tags         notifications
// @Produce      json
// @Param        participantId path string true "Participant ID"
// @Param        unread_only query bool false "Only unread notifications"
// @Success      200 {object} response.APIResponse{data=[]Notification}
// @Router       /notifications/participants/{participantId} [get]
func (h *Handler) ListByParticipant(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantId")
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, err := h.service.ListByRecipientID(r.Context(), participantID, unreadOnly)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	if notifications == nil {
		notifications = []*Notification{}
	}
	response.JSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /notifications/participants/{participantId}/unread-count
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Param        participantId path string true "Participant ID"
// @Success      200 {object} response.APIResponse
// @Router       /notifications/participants/{participantId}/unread-count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetUnreadCount(r.Context(), chi.URLParam(r, "participantId"))
	if err != nil {
		response.InternalError(w, "Failed to count notifications")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Param        participant_id query string true "Recipient participant ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	participantID := r.URL.Query().Get("participant_id")

	if err := h.service.MarkAsRead(r.Context(), id, participantID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotRecipient) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles POST /notifications/participants/{participantId}/read-all
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Param        participantId path string true "Participant ID"
// @Success      200 {object} response.APIResponse
// @Router       /notifications/participants/{participantId}/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllAsRead(r.Context(), chi.URLParam(r, "participantId")); err != nil {
		response.InternalError(w, "Failed to mark notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// internal/handler/notification_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/model"
	"github.com/mkandie/concierge-backend/internal/repository"
)

// NotificationHandler serves the user-facing feed. Upsert follows the
// campaign store's merge rule; the feed has no due-time semantics.
type NotificationHandler struct {
	Repo repository.NotificationRepositoryInterface
}

func NewNotificationHandler(repo repository.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

func (h *NotificationHandler) UpsertNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var payload model.NotificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, item, err := h.Repo.Upsert(r.Context(), payload)
	if err != nil {
		http.Error(w, "failed to upsert notification: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"created": created,
		"item":    item,
	})
}

func (h *NotificationHandler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	notifications, err := h.Repo.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to fetch notifications: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": notifications,
	})
}

func (h *NotificationHandler) GetNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch notification: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

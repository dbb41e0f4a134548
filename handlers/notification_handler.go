// handlers/notification_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/utils"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifications, err := st.Notifications.ListByUser(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := st.Notifications.MarkRead(r.Context(), mux.Vars(r)["id"], user.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := st.Notifications.MarkAllRead(r.Context(), user.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
}

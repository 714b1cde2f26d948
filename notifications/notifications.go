package notifications

import (
	"context"
	"log"
	"net/http"
	"time"

	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/rdx"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Emit appends a notification for userID. Best effort: a failed insert is
// logged and never propagated to the transition that triggered it.
func Emit(ctx context.Context, userID, ntype, title, message, link string) {
	n := models.Notification{
		NotificationID: utils.GenerateID("n"),
		UserID:         userID,
		Type:           ntype,
		Title:          title,
		Message:        message,
		Read:           false,
		Link:           link,
		CreatedAt:      time.Now(),
	}

	if _, err := db.NotificationsCollection.InsertOne(ctx, n); err != nil {
		log.Printf("notification insert failed for %s: %v", userID, err)
		return
	}
	rdx.IncrUnread(userID)
}

// GET /api/notifications?unreadOnly=true
func GetNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)

	filter := bson.M{"userid": userID}
	if r.URL.Query().Get("unreadOnly") == "true" {
		filter["read"] = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdat", Value: -1}}).
		SetLimit(50)
	cur, err := db.NotificationsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	defer cur.Close(ctx)

	notifications := []models.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse notifications")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"notifications": notifications})
}

// GET /api/notifications/unread-count
func GetUnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)

	if count, ok := rdx.GetUnread(userID); ok {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"count": count})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.NotificationsCollection.CountDocuments(ctx, bson.M{"userid": userID, "read": false})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	rdx.SetUnread(userID, count)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"count": count})
}

// POST /api/notifications/mark-read/:id
func MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := middleware.ActorID(r)
	id := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.NotificationsCollection.UpdateOne(ctx,
		bson.M{"notificationid": id, "userid": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	rdx.ClearUnread(userID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// POST /api/notifications/mark-all-read
func MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.NotificationsCollection.UpdateMany(ctx,
		bson.M{"userid": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	rdx.SetUnread(userID, 0)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// DELETE /api/notifications/:id
func DeleteNotification(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := middleware.ActorID(r)
	id := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.NotificationsCollection.DeleteOne(ctx, bson.M{"notificationid": id, "userid": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	rdx.ClearUnread(userID)

	w.WriteHeader(http.StatusNoContent)
}

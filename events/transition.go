package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"campium/apperr"
	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/mq"
	"campium/notifications"
	"campium/utils"
	"campium/workflow"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PATCH /api/events/:eventid/status
func TransitionEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	actorID := middleware.ActorID(r)
	actorRole := middleware.ActorRole(r)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	actor := workflow.Actor{UserID: actorID, Role: actorRole, Owner: event.Organizer == actorID}
	if err := workflow.Check(workflow.KindEvent, event.Status, req.Status, actor); err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}

	// Guarded on the status we validated against so a racing transition
	// cannot be double-applied.
	res, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "status": event.Status},
		bson.M{"$set": bson.M{"status": req.Status, "updatedat": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, apperr.Status(apperr.ErrIllegalTransition), apperr.ErrIllegalTransition.Error())
		return
	}
	event.Status = req.Status

	notifications.Emit(ctx, event.Organizer, "event",
		"Event "+req.Status,
		fmt.Sprintf("%q is now %s", event.Title, req.Status),
		"/events/"+eventID)
	mq.Emit(ctx, models.WorkflowEvent{
		EntityType: "event", EntityID: eventID,
		Action: req.Status, ActorID: actorID, At: time.Now().Unix(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"event": event})
}

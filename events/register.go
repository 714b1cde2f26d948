package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"campium/apperr"
	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/mq"
	"campium/notifications"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// registerFilter matches the event only while registration is actually
// possible: approved, user absent, and below capacity when a limit is set.
// Running the guards inside the update filter makes the check-and-increment
// a single atomic operation, so concurrent registrations cannot oversell.
func registerFilter(eventID, userID string) bson.M {
	return bson.M{
		"eventid":      eventID,
		"status":       models.EventApproved,
		"participants": bson.M{"$ne": userID},
		"$or": []bson.M{
			{"maxparticipants": bson.M{"$exists": false}},
			{"maxparticipants": 0},
			{"$expr": bson.M{"$lt": []interface{}{"$currentparticipants", "$maxparticipants"}}},
		},
	}
}

// classifyRegisterFailure re-reads the event to report why the guarded
// update matched nothing.
func classifyRegisterFailure(ctx context.Context, eventID, userID string) error {
	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.ErrNotFound
		}
		return err
	}
	if utils.Contains(event.Participants, userID) {
		return apperr.ErrAlreadyRegistered
	}
	if event.Status != models.EventApproved {
		return apperr.ErrEventNotOpen
	}
	if event.MaxParticipants > 0 && event.CurrentParticipants >= event.MaxParticipants {
		return apperr.ErrEventFull
	}
	return apperr.ErrStoreUnavailable
}

// POST /api/events/:eventid/register
func RegisterForEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.EventsCollection.UpdateOne(ctx,
		registerFilter(eventID, userID),
		bson.M{
			"$addToSet": bson.M{"participants": userID},
			"$inc":      bson.M{"currentparticipants": 1},
			"$set":      bson.M{"updatedat": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}
	if res.ModifiedCount == 0 {
		ferr := classifyRegisterFailure(ctx, eventID, userID)
		utils.RespondWithError(w, apperr.Status(ferr), ferr.Error())
		return
	}

	// Mirror the registration on the user record; roll the event update back
	// if this second write fails so the two records never diverge.
	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$addToSet": bson.M{"registeredevents": eventID}},
	)
	if err != nil {
		if _, rbErr := db.EventsCollection.UpdateOne(ctx,
			bson.M{"eventid": eventID, "participants": userID},
			bson.M{
				"$pull": bson.M{"participants": userID},
				"$inc":  bson.M{"currentparticipants": -1},
			},
		); rbErr != nil {
			log.Printf("rollback of registration %s/%s failed: %v", eventID, userID, rbErr)
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	var event models.Event
	if err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	notifications.Emit(ctx, event.Organizer, "event",
		"New registration",
		fmt.Sprintf("A participant registered for %q (%d registered)", event.Title, event.CurrentParticipants),
		"/events/"+eventID)
	mq.Emit(ctx, models.WorkflowEvent{
		EntityType: "event", EntityID: eventID,
		Action: "registered", ActorID: userID, At: time.Now().Unix(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"event": event})
}

// POST /api/events/:eventid/unregister
func UnregisterFromEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "participants": userID},
		bson.M{
			"$pull": bson.M{"participants": userID},
			"$inc":  bson.M{"currentparticipants": -1},
			"$set":  bson.M{"updatedat": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unregister")
		return
	}
	if res.ModifiedCount == 0 {
		var event models.Event
		ferr := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
		if errors.Is(ferr, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Not registered for this event")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$pull": bson.M{"registeredevents": eventID}},
	); err != nil {
		log.Printf("failed to mirror unregistration %s/%s: %v", eventID, userID, err)
	}

	var event models.Event
	if err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"event": event})
}

package bookings

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createRequest struct {
	EventID   string    `json:"eventId,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Purpose   string    `json:"purpose,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// POST /api/resources/:resourceid/bookings
func CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("resourceid")
	userID := middleware.ActorID(r)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := ValidateInterval(req.StartTime, req.EndTime); err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var resource models.Resource
	err := db.ResourcesCollection.FindOne(ctx, bson.M{"resourceid": resourceID}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch resource")
		return
	}
	if !resource.Available {
		utils.RespondWithError(w, http.StatusBadRequest, "Resource is not available for booking")
		return
	}

	// Serialize check-then-insert per resource so two overlapping requests
	// cannot both pass the conflict check.
	unlock := resourceLocks.lock(resourceID)
	defer unlock()

	conflict, err := hasConflict(ctx, resourceID, req.StartTime, req.EndTime, "", activeStatuses)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check availability")
		return
	}
	if conflict {
		utils.RespondWithError(w, apperr.Status(apperr.ErrConflictDetected), apperr.ErrConflictDetected.Error())
		return
	}

	now := time.Now()
	booking := models.Booking{
		BookingID:  utils.GenerateID("b"),
		ResourceID: resourceID,
		UserID:     userID,
		EventID:    req.EventID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     models.BookingPending,
		Purpose:    req.Purpose,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := db.BookingsCollection.InsertOne(ctx, booking); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	notifications.Emit(ctx, userID, "booking",
		"Booking submitted",
		fmt.Sprintf("Your booking for %s is pending approval", resource.Name),
		"/bookings")
	mq.Emit(ctx, models.WorkflowEvent{
		EntityType: "booking", EntityID: booking.BookingID,
		Action: "created", ActorID: userID, At: now.Unix(),
	})

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"booking": booking})
}

// GET /api/bookings?status=&resourceId=
// Non-admin callers only ever see their own bookings.
func GetBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

	filter := bson.M{}
	if role == models.RoleAdmin {
		if uid := r.URL.Query().Get("userId"); uid != "" {
			filter["userid"] = uid
		}
	} else {
		filter["userid"] = userID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if resourceID := r.URL.Query().Get("resourceId"); resourceID != "" {
		filter["resourceid"] = resourceID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	cur, err := db.BookingsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer cur.Close(ctx)

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse bookings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}

// GET /api/resources/:resourceid/bookings?status=
func GetResourceBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filter := bson.M{"resourceid": ps.ByName("resourceid")}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if uid := r.URL.Query().Get("userId"); uid != "" {
		filter["userid"] = uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "starttime", Value: 1}})
	cur, err := db.BookingsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer cur.Close(ctx)

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse bookings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}

// PATCH /api/bookings/:bookingid/status
func TransitionBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("bookingid")
	actorID := middleware.ActorID(r)
	actorRole := middleware.ActorRole(r)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var booking models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch booking")
		return
	}

	actor := workflow.Actor{UserID: actorID, Role: actorRole, Owner: booking.UserID == actorID}
	if err := workflow.Check(workflow.KindBooking, booking.Status, req.Status, actor); err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}

	// Approval re-runs the conflict check under the resource lock, against
	// approved bookings only: two pending bookings may overlap, and approving
	// the first must succeed while approving the second then fails.
	if req.Status == models.BookingApproved {
		unlock := resourceLocks.lock(booking.ResourceID)
		defer unlock()

		conflict, err := hasConflict(ctx, booking.ResourceID, booking.StartTime, booking.EndTime, booking.BookingID, approvedOnly)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check availability")
			return
		}
		if conflict {
			utils.RespondWithError(w, apperr.Status(apperr.ErrConflictDetected), apperr.ErrConflictDetected.Error())
			return
		}
	}

	// Guard on the status we validated against; a concurrent transition
	// leaves MatchedCount at zero instead of silently double-applying.
	res, err := db.BookingsCollection.UpdateOne(ctx,
		bson.M{"bookingid": bookingID, "status": booking.Status},
		bson.M{"$set": bson.M{"status": req.Status, "updatedat": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, apperr.Status(apperr.ErrIllegalTransition), apperr.ErrIllegalTransition.Error())
		return
	}
	booking.Status = req.Status

	notifications.Emit(ctx, booking.UserID, "booking",
		"Booking "+req.Status,
		fmt.Sprintf("Your booking %s is now %s", booking.BookingID, req.Status),
		"/bookings")
	mq.Emit(ctx, models.WorkflowEvent{
		EntityType: "booking", EntityID: bookingID,
		Action: req.Status, ActorID: actorID, At: time.Now().Unix(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"booking": booking})
}

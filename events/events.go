package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createEventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Location        string    `json:"location"`
	Club            string    `json:"club,omitempty"`
	Category        string    `json:"category,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	Budget          float64   `json:"budget,omitempty"`
	MaxParticipants int       `json:"maxParticipants,omitempty"`
}

// POST /api/events
// Events are always created as drafts; submission is a separate transition.
func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	organizer := middleware.ActorID(r)

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" || req.Location == "" || req.StartDate.IsZero() || req.EndDate.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.EndDate.Before(req.StartDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "End date must not precede start date")
		return
	}
	if req.MaxParticipants < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid participant limit")
		return
	}

	now := time.Now()
	event := models.Event{
		EventID:         utils.GenerateID("e"),
		Title:           req.Title,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Location:        req.Location,
		Organizer:       organizer,
		Club:            req.Club,
		Status:          models.EventDraft,
		Category:        req.Category,
		Tags:            req.Tags,
		Budget:          req.Budget,
		MaxParticipants: req.MaxParticipants,
		Participants:    []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.EventsCollection.InsertOne(ctx, event); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"event": event})
}

// GET /api/events?page=&limit=&status=&club=&organizer=&category=
func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit := utils.ParsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	skip := int64((page - 1) * limit)
	int64Limit := int64(limit)

	// closed filter set; anything else on the query string is ignored
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if club := r.URL.Query().Get("club"); club != "" {
		filter["club"] = club
	}
	if organizer := r.URL.Query().Get("organizer"); organizer != "" {
		filter["organizer"] = organizer
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.EventsCollection.Find(ctx, filter, &options.FindOptions{
		Skip:  &skip,
		Limit: &int64Limit,
		Sort:  bson.D{{Key: "createdat", Value: -1}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"events": events, "page": page, "limit": limit})
}

// GET /api/events/:eventid
func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": ps.ByName("eventid")}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"event": event})
}

// PUT /api/events/:eventid
// Only the organizer or an admin may edit; status is not editable here.
func EditEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	actorID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !req.EndDate.IsZero() && !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "End date must not precede start date")
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
	if event.Organizer != actorID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Only the organizer may edit this event")
		return
	}

	update := bson.M{"updatedat": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if !req.StartDate.IsZero() {
		update["startdate"] = req.StartDate
	}
	if !req.EndDate.IsZero() {
		update["enddate"] = req.EndDate
	}
	if req.Location != "" {
		update["location"] = req.Location
	}
	if req.Category != "" {
		update["category"] = req.Category
	}
	if req.Tags != nil {
		update["tags"] = req.Tags
	}
	if req.Budget != 0 {
		update["budget"] = req.Budget
	}
	if req.MaxParticipants > 0 {
		update["maxparticipants"] = req.MaxParticipants
	}

	if _, err := db.EventsCollection.UpdateOne(ctx, bson.M{"eventid": eventID}, bson.M{"$set": update}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	if err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"event": event})
}

// DELETE /api/events/:eventid
func DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	actorID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

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
	if event.Organizer != actorID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Only the organizer may delete this event")
		return
	}

	if _, err := db.EventsCollection.DeleteOne(ctx, bson.M{"eventid": eventID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

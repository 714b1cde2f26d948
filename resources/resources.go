package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"campium/db"
	"campium/models"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var resourceTypes = map[string]bool{
	"auditorium":      true,
	"lab":             true,
	"classroom":       true,
	"sports-facility": true,
	"equipment":       true,
	"other":           true,
}

type resourceRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  string   `json:"description,omitempty"`
	Capacity     int      `json:"capacity,omitempty"`
	Location     string   `json:"location,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Available    *bool    `json:"available,omitempty"`
	PricePerHour float64  `json:"pricePerHour,omitempty"`
}

// POST /api/resources (admin only, wired in routes)
func CreateResource(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" || !resourceTypes[req.Type] {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and a valid type are required")
		return
	}

	resource := models.Resource{
		ResourceID:   utils.GenerateID("r"),
		Name:         req.Name,
		Type:         req.Type,
		Description:  req.Description,
		Capacity:     req.Capacity,
		Location:     req.Location,
		Amenities:    req.Amenities,
		Available:    true,
		PricePerHour: req.PricePerHour,
		CreatedAt:    time.Now(),
	}
	if req.Available != nil {
		resource.Available = *req.Available
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.ResourcesCollection.InsertOne(ctx, resource); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create resource")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"resource": resource})
}

// GET /api/resources?type=&available=
func GetResources(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if rtype := r.URL.Query().Get("type"); rtype != "" {
		filter["type"] = rtype
	}
	if avail := r.URL.Query().Get("available"); avail != "" {
		filter["available"] = avail == "true"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := db.ResourcesCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch resources")
		return
	}
	defer cur.Close(ctx)

	resources := []models.Resource{}
	if err := cur.All(ctx, &resources); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse resources")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"resources": resources})
}

// GET /api/resources/:resourceid
func GetResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var resource models.Resource
	err := db.ResourcesCollection.FindOne(ctx, bson.M{"resourceid": ps.ByName("resourceid")}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch resource")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"resource": resource})
}

// PUT /api/resources/:resourceid (admin only, wired in routes)
// Toggling available only affects new bookings; existing ones keep their state.
func EditResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("resourceid")

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Type != "" && !resourceTypes[req.Type] {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid resource type")
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Type != "" {
		update["type"] = req.Type
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Capacity > 0 {
		update["capacity"] = req.Capacity
	}
	if req.Location != "" {
		update["location"] = req.Location
	}
	if req.Amenities != nil {
		update["amenities"] = req.Amenities
	}
	if req.Available != nil {
		update["available"] = *req.Available
	}
	if req.PricePerHour > 0 {
		update["priceperhour"] = req.PricePerHour
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ResourcesCollection.UpdateOne(ctx, bson.M{"resourceid": resourceID}, bson.M{"$set": update})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update resource")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
		return
	}

	var resource models.Resource
	if err := db.ResourcesCollection.FindOne(ctx, bson.M{"resourceid": resourceID}).Decode(&resource); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch resource")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"resource": resource})
}

// DELETE /api/resources/:resourceid (admin only, wired in routes)
// Refused while active bookings exist so a claimed calendar never dangles.
func DeleteResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("resourceid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	active, err := db.BookingsCollection.CountDocuments(ctx, bson.M{
		"resourceid": resourceID,
		"status":     bson.M{"$in": []string{models.BookingPending, models.BookingApproved}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check bookings")
		return
	}
	if active > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Resource has active bookings")
		return
	}

	res, err := db.ResourcesCollection.DeleteOne(ctx, bson.M{"resourceid": resourceID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete resource")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

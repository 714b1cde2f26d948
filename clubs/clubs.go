package clubs

import (
	"context"
	"encoding/json"
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
	"campium/rdx"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Email       string `json:"email,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Linkedin    string `json:"linkedin,omitempty"`
	Website     string `json:"website,omitempty"`
}

// POST /api/clubs
// The creator becomes president and the first member. Clubs are active on
// creation; there is no pending-club review step.
func CreateClub(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	president := middleware.ActorID(r)

	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" || req.Category == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and category are required")
		return
	}

	now := time.Now()
	club := models.Club{
		ClubID:      utils.GenerateID("c"),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		President:   president,
		Members:     []string{president},
		MemberCount: 1,
		Email:       req.Email,
		Instagram:   req.Instagram,
		Linkedin:    req.Linkedin,
		Website:     req.Website,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.ClubsCollection.InsertOne(ctx, club); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "A club with this name already exists")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create club")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": president},
		bson.M{"$addToSet": bson.M{"clubmemberships": club.ClubID}},
	); err != nil {
		log.Printf("failed to mirror club creation for %s: %v", president, err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"club": club})
}

// GET /api/clubs?category=
func GetClubs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"isactive": true}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := db.ClubsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch clubs")
		return
	}
	defer cur.Close(ctx)

	clubs := []models.Club{}
	if err := cur.All(ctx, &clubs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to parse clubs")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"clubs": clubs})
}

// GET /api/clubs/:clubid
func GetClub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var club models.Club
	err := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": ps.ByName("clubid")}).Decode(&club)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Club not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch club")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"club": club})
}

// PUT /api/clubs/:clubid
// Only the president or an admin may edit.
func EditClub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	clubID := ps.ByName("clubid")
	actorID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var club models.Club
	err := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Club not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch club")
		return
	}
	if club.President != actorID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Only the president may edit this club")
		return
	}

	update := bson.M{"updatedat": time.Now()}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Category != "" {
		update["category"] = req.Category
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Instagram != "" {
		update["instagram"] = req.Instagram
	}
	if req.Linkedin != "" {
		update["linkedin"] = req.Linkedin
	}
	if req.Website != "" {
		update["website"] = req.Website
	}

	if _, err := db.ClubsCollection.UpdateOne(ctx, bson.M{"clubid": clubID}, bson.M{"$set": update}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update club")
		return
	}

	if err := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch club")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"club": club})
}

// DELETE /api/clubs/:clubid (admin only, wired in routes)
func DeleteClub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ClubsCollection.DeleteOne(ctx, bson.M{"clubid": ps.ByName("clubid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete club")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Club not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/clubs/:clubid/join
// The membership guard runs inside the update filter so concurrent joins
// cannot double-add a member or drift the member count.
func JoinClub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	clubID := ps.ByName("clubid")
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ClubsCollection.UpdateOne(ctx,
		bson.M{"clubid": clubID, "isactive": true, "members": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$inc":      bson.M{"membercount": 1},
			"$set":      bson.M{"updatedat": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to join club")
		return
	}
	if res.ModifiedCount == 0 {
		var club models.Club
		ferr := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club)
		if errors.Is(ferr, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Club not found")
			return
		}
		if !club.IsActive {
			utils.RespondWithError(w, http.StatusBadRequest, "Club is not active")
			return
		}
		utils.RespondWithError(w, apperr.Status(apperr.ErrAlreadyMember), apperr.ErrAlreadyMember.Error())
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$addToSet": bson.M{"clubmemberships": clubID}},
	); err != nil {
		log.Printf("failed to mirror club join %s/%s: %v", clubID, userID, err)
	}

	var club models.Club
	if err := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch club")
		return
	}

	// cached at login; fall back to the raw id on a cold cache
	joiner, rerr := rdx.RdxGet(fmt.Sprintf("users:%s", userID))
	if rerr != nil || joiner == "" {
		joiner = userID
	}
	notifications.Emit(ctx, club.President, "club",
		"New member",
		fmt.Sprintf("%s joined %s (%d members)", joiner, club.Name, club.MemberCount),
		"/clubs/"+clubID)
	mq.Emit(ctx, models.WorkflowEvent{
		EntityType: "club", EntityID: clubID,
		Action: "joined", ActorID: userID, At: time.Now().Unix(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"club": club})
}

// POST /api/clubs/:clubid/leave
// The president cannot leave; clubs always keep their lead reference valid.
func LeaveClub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	clubID := ps.ByName("clubid")
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ClubsCollection.UpdateOne(ctx,
		bson.M{"clubid": clubID, "members": userID, "president": bson.M{"$ne": userID}},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$inc":  bson.M{"membercount": -1},
			"$set":  bson.M{"updatedat": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to leave club")
		return
	}
	if res.ModifiedCount == 0 {
		var club models.Club
		ferr := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club)
		if errors.Is(ferr, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Club not found")
			return
		}
		if club.President == userID {
			utils.RespondWithError(w, http.StatusBadRequest, "The president cannot leave the club")
			return
		}
		utils.RespondWithError(w, apperr.Status(apperr.ErrNotMember), apperr.ErrNotMember.Error())
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$pull": bson.M{"clubmemberships": clubID}},
	); err != nil {
		log.Printf("failed to mirror club leave %s/%s: %v", clubID, userID, err)
	}

	var club models.Club
	if err := db.ClubsCollection.FindOne(ctx, bson.M{"clubid": clubID}).Decode(&club); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch club")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"club": club})
}

package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	eventPicDir = "static/eventpic"
	clubPicDir  = "static/clubpic"
	thumbWidth  = 300
	maxUpload   = 8 << 20 // 8 MiB
)

// saveImage decodes the multipart upload, writes the full image and a
// thumbnail, and returns the stored filename.
func saveImage(r *http.Request, field, dir string) (string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return "", fmt.Errorf("parse form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing file field %q: %w", field, err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := utils.GenerateID("img") + filepath.Ext(header.Filename)
	if err := imaging.Save(img, filepath.Join(dir, filename)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(dir, "thumb_"+filename)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return filename, nil
}

// POST /api/events/:eventid/image
func UploadEventImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	actorID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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
		utils.RespondWithError(w, http.StatusForbidden, "Only the organizer may change the image")
		return
	}

	filename, err := saveImage(r, "image", eventPicDir)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID},
		bson.M{"$set": bson.M{"image": filename, "updatedat": time.Now()}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": filename})
}

// POST /api/clubs/:clubid/logo
func UploadClubLogo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	clubID := ps.ByName("clubid")
	actorID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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
		utils.RespondWithError(w, http.StatusForbidden, "Only the president may change the logo")
		return
	}

	filename, err := saveImage(r, "logo", clubPicDir)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := db.ClubsCollection.UpdateOne(ctx,
		bson.M{"clubid": clubID},
		bson.M{"$set": bson.M{"logo": filename, "updatedat": time.Now()}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update club")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"logo": filename})
}

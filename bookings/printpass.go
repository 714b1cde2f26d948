package bookings

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"campium/db"
	"campium/middleware"
	"campium/models"
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func passSecret() []byte {
	if s := os.Getenv("PASS_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("campium_pass_secret")
}

// signPassPayload returns "bookingID|resourceID|start|sig" so the front desk
// can verify a printed pass offline.
func signPassPayload(bookingID, resourceID string, start time.Time) string {
	data := fmt.Sprintf("%s|%s|%d", bookingID, resourceID, start.Unix())
	h := hmac.New(sha256.New, passSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// GET /api/bookings/:bookingid/pass
// Only approved bookings print; the pass belongs to the booking owner.
func PrintBookingPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("bookingid")
	userID := middleware.ActorID(r)
	role := middleware.ActorRole(r)

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

	if booking.UserID != userID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Not your booking")
		return
	}
	if booking.Status != models.BookingApproved {
		utils.RespondWithError(w, http.StatusBadRequest, "Only approved bookings can be printed")
		return
	}

	var resource models.Resource
	if err := db.ResourcesCollection.FindOne(ctx, bson.M{"resourceid": booking.ResourceID}).Decode(&resource); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch resource")
		return
	}

	qrPNG, err := qrcode.Encode(signPassPayload(booking.BookingID, booking.ResourceID, booking.StartTime), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Resource Booking Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Resource: %s (%s)", resource.Name, resource.Type))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Location: %s", resource.Location))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("From: %s", booking.StartTime.Format("Mon, 02 Jan 2006 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("To:   %s", booking.EndTime.Format("Mon, 02 Jan 2006 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", booking.BookingID))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+booking.BookingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

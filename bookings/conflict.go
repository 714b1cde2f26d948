package bookings

import (
	"context"
	"time"

	"campium/apperr"
	"campium/db"
	"campium/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Statuses that hold a claim on the resource's calendar at creation time.
// Rejected, completed and cancelled bookings never block a new reservation.
var activeStatuses = []string{models.BookingPending, models.BookingApproved}

// At approval time only already-approved bookings block: two overlapping
// pendings may coexist, and approving one must not be refused because of
// the other.
var approvedOnly = []string{models.BookingApproved}

// ValidateInterval rejects zero-length and reversed intervals before any
// conflict check runs.
func ValidateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return apperr.ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether [start, end) overlaps any of the given bookings,
// treating intervals as half-open: a booking ending exactly at start does not
// conflict. excludeID lets a booking being re-checked ignore itself.
func Overlaps(existing []models.Booking, start, end time.Time, excludeID string) bool {
	for _, b := range existing {
		if b.BookingID == excludeID {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true
		}
	}
	return false
}

// hasConflict loads the resource's bookings in the given statuses and applies
// the overlap test. Callers must hold the resource lock across the check and
// the write that depends on it.
func hasConflict(ctx context.Context, resourceID string, start, end time.Time, excludeID string, statuses []string) (bool, error) {
	cur, err := db.BookingsCollection.Find(ctx, bson.M{
		"resourceid": resourceID,
		"status":     bson.M{"$in": statuses},
		"starttime":  bson.M{"$lt": end},
		"endtime":    bson.M{"$gt": start},
	})
	if err != nil {
		return false, err
	}
	defer cur.Close(ctx)

	var clashing []models.Booking
	if err := cur.All(ctx, &clashing); err != nil {
		return false, err
	}
	return Overlaps(clashing, start, end, excludeID), nil
}

package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campium/db"
	"campium/globals"
	"campium/models"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// These tests need a running MongoDB (MONGODB_URI or localhost:27017) and are
// skipped otherwise.

func requireMongo(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}
}

func seedResource(t *testing.T, resourceID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.BookingsCollection.DeleteMany(ctx, bson.M{"resourceid": resourceID}); err != nil {
		t.Fatalf("clean bookings: %v", err)
	}
	if _, err := db.ResourcesCollection.DeleteMany(ctx, bson.M{"resourceid": resourceID}); err != nil {
		t.Fatalf("clean resources: %v", err)
	}
	res := models.Resource{
		ResourceID: resourceID,
		Name:       "Test Auditorium",
		Type:       "auditorium",
		Capacity:   300,
		Available:  true,
		CreatedAt:  time.Now(),
	}
	if _, err := db.ResourcesCollection.InsertOne(ctx, res); err != nil {
		t.Fatalf("seed resource: %v", err)
	}
}

func doCreate(resourceID, userID string, start, end time.Time) *httptest.ResponseRecorder {
	body, _ := json.Marshal(createRequest{StartTime: start, EndTime: end, Purpose: "test"})
	req := httptest.NewRequest(http.MethodPost, "/api/resources/"+resourceID+"/bookings", bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, models.RoleParticipant)
	rec := httptest.NewRecorder()
	CreateBooking(rec, req.WithContext(ctx), httprouter.Params{{Key: "resourceid", Value: resourceID}})
	return rec
}

func doTransition(bookingID, actorID, role, status string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"status": status})
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/"+bookingID+"/status", bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), globals.UserIDKey, actorID)
	ctx = context.WithValue(ctx, globals.RoleKey, role)
	rec := httptest.NewRecorder()
	TransitionBooking(rec, req.WithContext(ctx), httprouter.Params{{Key: "bookingid", Value: bookingID}})
	return rec
}

func TestConcurrentBookingCreation(t *testing.T) {
	requireMongo(t)
	const resourceID = "r-conctest"
	seedResource(t, resourceID)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	const workers = 10
	var created, conflicted int64

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			rec := doCreate(resourceID, fmt.Sprintf("u-%d", i), start, end)
			switch rec.Code {
			case http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case http.StatusConflict:
				atomic.AddInt64(&conflicted, 1)
			default:
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || conflicted != workers-1 {
		t.Fatalf("created=%d conflicted=%d, want 1 and %d", created, conflicted, workers-1)
	}

	count, err := db.BookingsCollection.CountDocuments(context.Background(),
		bson.M{"resourceid": resourceID, "status": bson.M{"$in": activeStatuses}})
	if err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 1 {
		t.Fatalf("active bookings = %d, want 1", count)
	}
}

func TestTouchingIntervalsAccepted(t *testing.T) {
	requireMongo(t)
	const resourceID = "r-touchtest"
	seedResource(t, resourceID)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	if rec := doCreate(resourceID, "u-1", start, start.Add(2*time.Hour)); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: status %d: %s", rec.Code, rec.Body.String())
	}
	// starts exactly where the first ends
	if rec := doCreate(resourceID, "u-2", start.Add(2*time.Hour), start.Add(4*time.Hour)); rec.Code != http.StatusCreated {
		t.Fatalf("touching booking: status %d: %s", rec.Code, rec.Body.String())
	}
	// but the overlap is still caught
	if rec := doCreate(resourceID, "u-3", start.Add(time.Hour), start.Add(3*time.Hour)); rec.Code != http.StatusConflict {
		t.Fatalf("overlapping booking: status %d, want 409", rec.Code)
	}
}

func TestApprovalRechecksConflict(t *testing.T) {
	requireMongo(t)
	const resourceID = "r-apprtest"
	seedResource(t, resourceID)

	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	// two overlapping pending bookings may coexist; seed them directly
	now := time.Now()
	first := models.Booking{
		BookingID: "b-appr-1", ResourceID: resourceID, UserID: "u-1",
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: models.BookingPending, CreatedAt: now, UpdatedAt: now,
	}
	second := models.Booking{
		BookingID: "b-appr-2", ResourceID: resourceID, UserID: "u-2",
		StartTime: start.Add(time.Hour), EndTime: start.Add(3 * time.Hour),
		Status: models.BookingPending, CreatedAt: now, UpdatedAt: now,
	}
	if _, err := db.BookingsCollection.InsertOne(ctx, first); err != nil {
		t.Fatalf("seed first: %v", err)
	}
	if _, err := db.BookingsCollection.InsertOne(ctx, second); err != nil {
		t.Fatalf("seed second: %v", err)
	}

	if rec := doTransition(first.BookingID, "admin-1", models.RoleAdmin, models.BookingApproved); rec.Code != http.StatusOK {
		t.Fatalf("approve first: status %d: %s", rec.Code, rec.Body.String())
	}
	// approving the overlapping second must fail, not double-book
	if rec := doTransition(second.BookingID, "admin-1", models.RoleAdmin, models.BookingApproved); rec.Code != http.StatusConflict {
		t.Fatalf("approve second: status %d, want 409", rec.Code)
	}

	// and a rejected booking can never come back
	if rec := doTransition(second.BookingID, "admin-1", models.RoleAdmin, models.BookingRejected); rec.Code != http.StatusOK {
		t.Fatalf("reject second: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doTransition(second.BookingID, "admin-1", models.RoleAdmin, models.BookingApproved); rec.Code != http.StatusConflict {
		t.Fatalf("approve rejected: status %d, want 409", rec.Code)
	}
}

func TestOwnerCancelsPendingBooking(t *testing.T) {
	requireMongo(t)
	const resourceID = "r-canceltest"
	seedResource(t, resourceID)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	rec := doCreate(resourceID, "u-owner", start, start.Add(time.Hour))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	var resp struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	if rec := doTransition(resp.Booking.BookingID, "u-other", models.RoleParticipant, models.BookingCancelled); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger cancel: status %d, want 403", rec.Code)
	}
	if rec := doTransition(resp.Booking.BookingID, "u-owner", models.RoleParticipant, models.BookingCancelled); rec.Code != http.StatusOK {
		t.Fatalf("owner cancel: status %d: %s", rec.Code, rec.Body.String())
	}

	// cancelled slot is free again
	if rec := doCreate(resourceID, "u-next", start, start.Add(time.Hour)); rec.Code != http.StatusCreated {
		t.Fatalf("rebook after cancel: status %d", rec.Code)
	}
}

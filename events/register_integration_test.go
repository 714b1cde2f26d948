package events

import (
	"context"
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
	"campium/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Needs a running MongoDB; skipped otherwise.

func requireMongo(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}
}

func seedEvent(t *testing.T, eventID string, status string, maxParticipants int) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.EventsCollection.DeleteMany(ctx, bson.M{"eventid": eventID}); err != nil {
		t.Fatalf("clean events: %v", err)
	}
	now := time.Now()
	event := models.Event{
		EventID:         eventID,
		Title:           "Test Event",
		Description:     "capacity test",
		StartDate:       now.Add(48 * time.Hour),
		EndDate:         now.Add(50 * time.Hour),
		Location:        "Main Hall",
		Organizer:       "u-org",
		Status:          status,
		MaxParticipants: maxParticipants,
		Participants:    []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := db.EventsCollection.InsertOne(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func doRegister(eventID, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/events/"+eventID+"/register", nil)
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, models.RoleParticipant)
	rec := httptest.NewRecorder()
	RegisterForEvent(rec, req.WithContext(ctx), httprouter.Params{{Key: "eventid", Value: eventID}})
	return rec
}

func TestConcurrentRegistrationRespectsCapacity(t *testing.T) {
	requireMongo(t)
	const eventID = "e-captest"
	const capacity = 5
	const users = 20
	seedEvent(t, eventID, models.EventApproved, capacity)

	var success, full int64
	var wg sync.WaitGroup
	wg.Add(users)
	for i := 0; i < users; i++ {
		go func(i int) {
			defer wg.Done()
			rec := doRegister(eventID, fmt.Sprintf("u-cap-%d", i))
			switch rec.Code {
			case http.StatusOK:
				atomic.AddInt64(&success, 1)
			case http.StatusBadRequest:
				atomic.AddInt64(&full, 1)
			default:
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
		}(i)
	}
	wg.Wait()

	if success != capacity || full != users-capacity {
		t.Fatalf("success=%d full=%d, want %d and %d", success, full, capacity, users-capacity)
	}

	var event models.Event
	if err := db.EventsCollection.FindOne(context.Background(), bson.M{"eventid": eventID}).Decode(&event); err != nil {
		t.Fatalf("fetch event: %v", err)
	}
	if event.CurrentParticipants != capacity {
		t.Fatalf("currentparticipants = %d, want %d", event.CurrentParticipants, capacity)
	}
	if len(event.Participants) != event.CurrentParticipants {
		t.Fatalf("derived counter drift: %d participants vs count %d", len(event.Participants), event.CurrentParticipants)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	requireMongo(t)
	const eventID = "e-duptest"
	seedEvent(t, eventID, models.EventApproved, 0)

	if rec := doRegister(eventID, "u-dup"); rec.Code != http.StatusOK {
		t.Fatalf("first registration: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doRegister(eventID, "u-dup"); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate registration: status %d, want 400", rec.Code)
	}

	var event models.Event
	if err := db.EventsCollection.FindOne(context.Background(), bson.M{"eventid": eventID}).Decode(&event); err != nil {
		t.Fatalf("fetch event: %v", err)
	}
	if event.CurrentParticipants != 1 || len(event.Participants) != 1 {
		t.Fatalf("participants = %d / count %d, want 1 / 1", len(event.Participants), event.CurrentParticipants)
	}
}

func TestRegisterRequiresApprovedEvent(t *testing.T) {
	requireMongo(t)
	const eventID = "e-draftreg"
	seedEvent(t, eventID, models.EventDraft, 0)

	rec := doRegister(eventID, "u-early")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("registering for draft event: status %d, want 400", rec.Code)
	}
}

func TestRegisterMissingEvent(t *testing.T) {
	requireMongo(t)
	rec := doRegister("e-"+utils.GenerateID("missing"), "u-x")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("registering for missing event: status %d, want 404", rec.Code)
	}
}

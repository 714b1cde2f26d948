package clubs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

// Needs a running MongoDB; skipped otherwise.

func requireMongo(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}
}

func seedClub(t *testing.T, clubID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.ClubsCollection.DeleteMany(ctx, bson.M{"clubid": clubID}); err != nil {
		t.Fatalf("clean clubs: %v", err)
	}
	now := time.Now()
	club := models.Club{
		ClubID:      clubID,
		Name:        "Test Club " + clubID,
		Category:    "tech",
		President:   "u-pres",
		Members:     []string{"u-pres"},
		MemberCount: 1,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := db.ClubsCollection.InsertOne(ctx, club); err != nil {
		t.Fatalf("seed club: %v", err)
	}
}

func doJoin(clubID, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/clubs/"+clubID+"/join", nil)
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, models.RoleParticipant)
	rec := httptest.NewRecorder()
	JoinClub(rec, req.WithContext(ctx), httprouter.Params{{Key: "clubid", Value: clubID}})
	return rec
}

func doLeave(clubID, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/clubs/"+clubID+"/leave", nil)
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, models.RoleParticipant)
	rec := httptest.NewRecorder()
	LeaveClub(rec, req.WithContext(ctx), httprouter.Params{{Key: "clubid", Value: clubID}})
	return rec
}

func TestJoinIsIdempotentChecked(t *testing.T) {
	requireMongo(t)
	const clubID = "c-jointest"
	seedClub(t, clubID)

	if rec := doJoin(clubID, "u-member"); rec.Code != http.StatusOK {
		t.Fatalf("first join: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJoin(clubID, "u-member"); rec.Code != http.StatusBadRequest {
		t.Fatalf("second join: status %d, want 400", rec.Code)
	}

	var club models.Club
	if err := db.ClubsCollection.FindOne(context.Background(), bson.M{"clubid": clubID}).Decode(&club); err != nil {
		t.Fatalf("fetch club: %v", err)
	}
	if club.MemberCount != 2 || len(club.Members) != 2 {
		t.Fatalf("members=%d count=%d, want 2/2", len(club.Members), club.MemberCount)
	}
}

func TestJoinInactiveClub(t *testing.T) {
	requireMongo(t)
	const clubID = "c-inactivetest"
	seedClub(t, clubID)
	if _, err := db.ClubsCollection.UpdateOne(context.Background(),
		bson.M{"clubid": clubID}, bson.M{"$set": bson.M{"isactive": false}},
	); err != nil {
		t.Fatalf("deactivate club: %v", err)
	}

	rec := doJoin(clubID, "u-late")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("join inactive: status %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, "not active") {
		t.Fatalf("join inactive: body %q should name the inactive club, not membership", got)
	}
}

func TestConcurrentJoinsKeepCounterConsistent(t *testing.T) {
	requireMongo(t)
	const clubID = "c-conctest"
	seedClub(t, clubID)

	const joiners = 20
	var joined int64
	var wg sync.WaitGroup
	wg.Add(joiners)
	for i := 0; i < joiners; i++ {
		go func(i int) {
			defer wg.Done()
			if rec := doJoin(clubID, fmt.Sprintf("u-j-%d", i)); rec.Code == http.StatusOK {
				atomic.AddInt64(&joined, 1)
			}
		}(i)
	}
	wg.Wait()

	if joined != joiners {
		t.Fatalf("joined = %d, want %d", joined, joiners)
	}

	var club models.Club
	if err := db.ClubsCollection.FindOne(context.Background(), bson.M{"clubid": clubID}).Decode(&club); err != nil {
		t.Fatalf("fetch club: %v", err)
	}
	if club.MemberCount != len(club.Members) {
		t.Fatalf("derived counter drift: count=%d members=%d", club.MemberCount, len(club.Members))
	}
	if club.MemberCount != joiners+1 { // +1 president
		t.Fatalf("membercount = %d, want %d", club.MemberCount, joiners+1)
	}
}

func TestLeaveRules(t *testing.T) {
	requireMongo(t)
	const clubID = "c-leavetest"
	seedClub(t, clubID)

	if rec := doLeave(clubID, "u-stranger"); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-member leave: status %d, want 400", rec.Code)
	}
	if rec := doLeave(clubID, "u-pres"); rec.Code != http.StatusBadRequest {
		t.Fatalf("president leave: status %d, want 400", rec.Code)
	}

	doJoin(clubID, "u-temp")
	if rec := doLeave(clubID, "u-temp"); rec.Code != http.StatusOK {
		t.Fatalf("member leave: status %d: %s", rec.Code, rec.Body.String())
	}

	var club models.Club
	if err := db.ClubsCollection.FindOne(context.Background(), bson.M{"clubid": clubID}).Decode(&club); err != nil {
		t.Fatalf("fetch club: %v", err)
	}
	if club.MemberCount != 1 || len(club.Members) != 1 {
		t.Fatalf("members=%d count=%d after leave, want 1/1", len(club.Members), club.MemberCount)
	}
}

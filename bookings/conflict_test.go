package bookings

import (
	"errors"
	"testing"
	"time"

	"campium/apperr"
	"campium/models"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidateInterval(t *testing.T) {
	start := ts("2026-03-15T10:00:00Z")

	if err := ValidateInterval(start, start.Add(time.Hour)); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}
	if err := ValidateInterval(start, start); !errors.Is(err, apperr.ErrInvalidInterval) {
		t.Fatalf("zero-length interval: got %v, want ErrInvalidInterval", err)
	}
	if err := ValidateInterval(start.Add(time.Hour), start); !errors.Is(err, apperr.ErrInvalidInterval) {
		t.Fatalf("reversed interval: got %v, want ErrInvalidInterval", err)
	}
}

func TestOverlaps(t *testing.T) {
	existing := []models.Booking{{
		BookingID:  "b-1",
		ResourceID: "r-1",
		StartTime:  ts("2026-03-15T10:00:00Z"),
		EndTime:    ts("2026-03-15T14:00:00Z"),
		Status:     models.BookingApproved,
	}}

	cases := []struct {
		name       string
		start, end time.Time
		exclude    string
		want       bool
	}{
		{"partial overlap at tail", ts("2026-03-15T13:00:00Z"), ts("2026-03-15T15:00:00Z"), "", true},
		{"partial overlap at head", ts("2026-03-15T09:00:00Z"), ts("2026-03-15T11:00:00Z"), "", true},
		{"fully contained", ts("2026-03-15T11:00:00Z"), ts("2026-03-15T12:00:00Z"), "", true},
		{"fully containing", ts("2026-03-15T09:00:00Z"), ts("2026-03-15T15:00:00Z"), "", true},
		{"identical interval", ts("2026-03-15T10:00:00Z"), ts("2026-03-15T14:00:00Z"), "", true},
		{"touching at end is free", ts("2026-03-15T14:00:00Z"), ts("2026-03-15T16:00:00Z"), "", false},
		{"touching at start is free", ts("2026-03-15T08:00:00Z"), ts("2026-03-15T10:00:00Z"), "", false},
		{"disjoint after", ts("2026-03-15T15:00:00Z"), ts("2026-03-15T16:00:00Z"), "", false},
		{"disjoint before", ts("2026-03-15T07:00:00Z"), ts("2026-03-15T08:00:00Z"), "", false},
		{"self excluded", ts("2026-03-15T10:00:00Z"), ts("2026-03-15T14:00:00Z"), "b-1", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(existing, c.start, c.end, c.exclude); got != c.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", c.start, c.end, got, c.want)
			}
		})
	}
}

// filterStatus mirrors the status filter hasConflict pushes into the query.
func filterStatus(bookings []models.Booking, statuses []string) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		for _, s := range statuses {
			if b.Status == s {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// Two overlapping pending bookings may coexist. Approving the first checks
// against approved bookings only, so the other pending one does not block it;
// once the first is approved, approving the second must conflict.
func TestApprovalStatusSets(t *testing.T) {
	a := models.Booking{
		BookingID: "b-a", ResourceID: "r-1",
		StartTime: ts("2026-03-15T10:00:00Z"), EndTime: ts("2026-03-15T14:00:00Z"),
		Status: models.BookingPending,
	}
	b := models.Booking{
		BookingID: "b-b", ResourceID: "r-1",
		StartTime: ts("2026-03-15T13:00:00Z"), EndTime: ts("2026-03-15T15:00:00Z"),
		Status: models.BookingPending,
	}
	existing := []models.Booking{a, b}

	// creation-time check sees both pendings
	if !Overlaps(filterStatus(existing, activeStatuses), a.StartTime, a.EndTime, a.BookingID) {
		t.Error("a new overlapping request should conflict with a pending booking")
	}

	// approving a: only approved bookings block, and there are none yet
	if Overlaps(filterStatus(existing, approvedOnly), a.StartTime, a.EndTime, a.BookingID) {
		t.Error("approving the first of two overlapping pendings must not be refused")
	}

	// approving b after a was approved
	existing[0].Status = models.BookingApproved
	if !Overlaps(filterStatus(existing, approvedOnly), b.StartTime, b.EndTime, b.BookingID) {
		t.Error("approving the second pending must conflict with the approved one")
	}
}

func TestOverlapsMultiple(t *testing.T) {
	existing := []models.Booking{
		{BookingID: "b-1", StartTime: ts("2026-03-15T08:00:00Z"), EndTime: ts("2026-03-15T09:00:00Z")},
		{BookingID: "b-2", StartTime: ts("2026-03-15T12:00:00Z"), EndTime: ts("2026-03-15T13:00:00Z")},
	}

	// the gap between the two is exactly free
	if Overlaps(existing, ts("2026-03-15T09:00:00Z"), ts("2026-03-15T12:00:00Z"), "") {
		t.Error("gap between back-to-back bookings should be free")
	}
	if !Overlaps(existing, ts("2026-03-15T09:00:00Z"), ts("2026-03-15T12:30:00Z"), "") {
		t.Error("interval reaching into the second booking should conflict")
	}
}

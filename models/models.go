package models

import "time"

// Roles
const (
	RoleAdmin       = "admin"
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

// Event statuses
const (
	EventDraft     = "draft"
	EventPending   = "pending"
	EventApproved  = "approved"
	EventRejected  = "rejected"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Booking statuses
const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

type User struct {
	UserID           string    `json:"userid" bson:"userid"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	Password         string    `json:"-" bson:"password"`
	Role             string    `json:"role" bson:"role"`
	Avatar           string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Phone            string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Department       string    `json:"department,omitempty" bson:"department,omitempty"`
	Year             int       `json:"year,omitempty" bson:"year,omitempty"`
	RegisteredEvents []string  `json:"registeredEvents" bson:"registeredevents"`
	ClubMemberships  []string  `json:"clubMemberships" bson:"clubmemberships"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdat"`
	LastLogin        time.Time `json:"lastLogin,omitempty" bson:"lastlogin,omitempty"`
}

type Club struct {
	ClubID      string    `json:"clubid" bson:"clubid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	President   string    `json:"president" bson:"president"`
	Members     []string  `json:"members" bson:"members"`
	MemberCount int       `json:"memberCount" bson:"membercount"`
	Logo        string    `json:"logo,omitempty" bson:"logo,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty" bson:"coverimage,omitempty"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Instagram   string    `json:"instagram,omitempty" bson:"instagram,omitempty"`
	Linkedin    string    `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Website     string    `json:"website,omitempty" bson:"website,omitempty"`
	IsActive    bool      `json:"isActive" bson:"isactive"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedat"`
}

type Event struct {
	EventID             string    `json:"eventid" bson:"eventid"`
	Title               string    `json:"title" bson:"title"`
	Description         string    `json:"description" bson:"description"`
	StartDate           time.Time `json:"startDate" bson:"startdate"`
	EndDate             time.Time `json:"endDate" bson:"enddate"`
	Location            string    `json:"location" bson:"location"`
	Organizer           string    `json:"organizer" bson:"organizer"`
	Club                string    `json:"club,omitempty" bson:"club,omitempty"`
	Status              string    `json:"status" bson:"status"`
	Category            string    `json:"category,omitempty" bson:"category,omitempty"`
	Tags                []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Image               string    `json:"image,omitempty" bson:"image,omitempty"`
	Budget              float64   `json:"budget,omitempty" bson:"budget,omitempty"`
	MaxParticipants     int       `json:"maxParticipants,omitempty" bson:"maxparticipants,omitempty"`
	CurrentParticipants int       `json:"currentParticipants" bson:"currentparticipants"`
	Participants        []string  `json:"participants" bson:"participants"`
	Collaborators       []string  `json:"collaborators,omitempty" bson:"collaborators,omitempty"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt           time.Time `json:"updatedAt" bson:"updatedat"`
}

type Resource struct {
	ResourceID   string    `json:"resourceid" bson:"resourceid"`
	Name         string    `json:"name" bson:"name"`
	Type         string    `json:"type" bson:"type"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Capacity     int       `json:"capacity,omitempty" bson:"capacity,omitempty"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Amenities    []string  `json:"amenities,omitempty" bson:"amenities,omitempty"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Available    bool      `json:"available" bson:"available"`
	PricePerHour float64   `json:"pricePerHour" bson:"priceperhour"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdat"`
}

type Booking struct {
	BookingID  string    `json:"bookingid" bson:"bookingid"`
	ResourceID string    `json:"resourceid" bson:"resourceid"`
	UserID     string    `json:"userid" bson:"userid"`
	EventID    string    `json:"eventid,omitempty" bson:"eventid,omitempty"`
	StartTime  time.Time `json:"startTime" bson:"starttime"`
	EndTime    time.Time `json:"endTime" bson:"endtime"`
	Status     string    `json:"status" bson:"status"`
	Purpose    string    `json:"purpose,omitempty" bson:"purpose,omitempty"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedat"`
}

type Notification struct {
	NotificationID string    `json:"notificationid" bson:"notificationid"`
	UserID         string    `json:"userId" bson:"userid"`
	Type           string    `json:"type" bson:"type"`
	Title          string    `json:"title" bson:"title"`
	Message        string    `json:"message" bson:"message"`
	Read           bool      `json:"read" bson:"read"`
	Link           string    `json:"link,omitempty" bson:"link,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdat"`
}

// WorkflowEvent is the payload published to the workflow channel whenever an
// entity changes status or membership.
type WorkflowEvent struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	ActorID    string `json:"actor_id"`
	At         int64  `json:"at"`
}

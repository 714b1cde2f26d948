package routes

import (
	"net/http"

	"campium/auth"
	"campium/bookings"
	"campium/clubs"
	"campium/events"
	"campium/media"
	"campium/middleware"
	"campium/models"
	"campium/notifications"
	"campium/ratelim"
	"campium/resources"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/eventpic/*filepath", http.Dir("static/eventpic"))
	router.ServeFiles("/static/clubpic/*filepath", http.Dir("static/clubpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.GET("/api/users/me", middleware.Authenticate(auth.Me))
}

func AddClubRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/clubs", rl.Limit(middleware.Authenticate(
		middleware.RequireRole(clubs.CreateClub, models.RoleOrganizer, models.RoleAdmin))))
	router.GET("/api/clubs", clubs.GetClubs)
	router.GET("/api/clubs/:clubid", clubs.GetClub)
	router.PUT("/api/clubs/:clubid", middleware.Authenticate(clubs.EditClub))
	router.DELETE("/api/clubs/:clubid", middleware.Authenticate(
		middleware.RequireRole(clubs.DeleteClub, models.RoleAdmin)))
	router.POST("/api/clubs/:clubid/join", rl.Limit(middleware.Authenticate(clubs.JoinClub)))
	router.POST("/api/clubs/:clubid/leave", rl.Limit(middleware.Authenticate(clubs.LeaveClub)))
	router.POST("/api/clubs/:clubid/logo", middleware.Authenticate(media.UploadClubLogo))
}

func AddEventsRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/events", rl.Limit(middleware.Authenticate(
		middleware.RequireRole(events.CreateEvent, models.RoleOrganizer, models.RoleAdmin))))
	router.GET("/api/events", events.GetEvents)
	router.GET("/api/events/:eventid", events.GetEvent)
	router.PUT("/api/events/:eventid", middleware.Authenticate(events.EditEvent))
	router.DELETE("/api/events/:eventid", middleware.Authenticate(events.DeleteEvent))
	router.PATCH("/api/events/:eventid/status", middleware.Authenticate(events.TransitionEvent))
	router.POST("/api/events/:eventid/register", rl.Limit(middleware.Authenticate(events.RegisterForEvent)))
	router.POST("/api/events/:eventid/unregister", rl.Limit(middleware.Authenticate(events.UnregisterFromEvent)))
	router.POST("/api/events/:eventid/image", middleware.Authenticate(media.UploadEventImage))
}

func AddResourceRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/resources", middleware.Authenticate(
		middleware.RequireRole(resources.CreateResource, models.RoleAdmin)))
	router.GET("/api/resources", resources.GetResources)
	router.GET("/api/resources/:resourceid", resources.GetResource)
	router.PUT("/api/resources/:resourceid", middleware.Authenticate(
		middleware.RequireRole(resources.EditResource, models.RoleAdmin)))
	router.DELETE("/api/resources/:resourceid", middleware.Authenticate(
		middleware.RequireRole(resources.DeleteResource, models.RoleAdmin)))

	router.GET("/api/resources/:resourceid/bookings", middleware.Authenticate(bookings.GetResourceBookings))
	router.POST("/api/resources/:resourceid/bookings", rl.Limit(middleware.Authenticate(bookings.CreateBooking)))
}

func AddBookingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/bookings", middleware.Authenticate(bookings.GetBookings))
	router.PATCH("/api/bookings/:bookingid/status", rl.Limit(middleware.Authenticate(bookings.TransitionBooking)))
	router.GET("/api/bookings/:bookingid/pass", middleware.Authenticate(bookings.PrintBookingPass))
}

func AddNotificationRoutes(router *httprouter.Router) {
	router.GET("/api/notifications", middleware.Authenticate(notifications.GetNotifications))
	router.GET("/api/notifications/unread-count", middleware.Authenticate(notifications.GetUnreadCount))
	router.POST("/api/notifications/mark-all-read", middleware.Authenticate(notifications.MarkAllRead))
	router.POST("/api/notifications/mark-read/:id", middleware.Authenticate(notifications.MarkRead))
	router.DELETE("/api/notifications/:id", middleware.Authenticate(notifications.DeleteNotification))
}

package routes

import (
	"net/http"

	"parkly/admin"
	"parkly/auth"
	"parkly/bookings"
	"parkly/i18n"
	"parkly/middleware"
	"parkly/notify"
	"parkly/parking"
	"parkly/pay"
	"parkly/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/slotpic/*filepath", http.Dir("static/slotpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", auth.LogoutUser)
	router.POST("/api/auth/refresh", auth.RefreshToken)
}

func AddParkingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/parking/slots", rl.Limit(parking.GetParkingSlots))
	router.GET("/api/parking/my-slots", middleware.Authenticate(parking.GetMySlots))
	router.POST("/api/parking/slot", middleware.Authenticate(middleware.AdminOnly(parking.CreateParkingSlot)))
	router.GET("/api/parking/slot/:id", middleware.OptionalAuth(parking.GetParkingSlot))
	router.PUT("/api/parking/slot/:id", middleware.Authenticate(parking.UpdateParkingSlot))
	router.DELETE("/api/parking/slot/:id", middleware.Authenticate(parking.DeleteParkingSlot))

	router.POST("/api/parking/slot/:id/photos", middleware.Authenticate(parking.UploadSlotPhotos))
	router.GET("/api/parking/slot/:id/quote", parking.GetPriceQuote)
	router.POST("/api/parking/slot/:id/reviews", middleware.Authenticate(parking.AddReview))
	router.GET("/api/parking/slot/:id/reviews", parking.GetReviews)
}

func AddBookingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *bookings.Handlers) {
	router.POST("/api/bookings/booking", rl.Limit(middleware.Authenticate(h.CreateBooking)))
	router.GET("/api/bookings/booking/:id", middleware.Authenticate(h.GetBooking))
	router.PUT("/api/bookings/booking/:id/cancel", middleware.Authenticate(h.CancelBooking))
	router.PUT("/api/bookings/booking/:id/confirm", middleware.Authenticate(h.ConfirmBookingPayment))
	router.PUT("/api/bookings/booking/:id/complete", middleware.Authenticate(h.CompleteBooking))
	router.GET("/api/bookings/booking/:id/pass", middleware.Authenticate(h.PrintPass))
	router.GET("/api/bookings/my", middleware.Authenticate(h.GetMyBookings))
	router.GET("/api/bookings/today", middleware.Authenticate(h.GetTodayBookings))
	router.GET("/api/bookings/analytics", middleware.Authenticate(h.GetAnalytics))
}

func AddPaymentRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, h *pay.Handlers) {
	router.POST("/api/payments/session", rl.Limit(middleware.Authenticate(h.CreateSession)))
	router.POST("/api/payments/verify", rl.Limit(middleware.Authenticate(h.VerifyPayment)))
}

func AddAdminRoutes(router *httprouter.Router) {
	router.GET("/api/admin/dashboard", middleware.Authenticate(middleware.AdminOnly(admin.GetDashboard)))
	router.GET("/api/admin/users", middleware.Authenticate(middleware.AdminOnly(admin.GetUsers)))
	router.GET("/api/admin/bookings", middleware.Authenticate(middleware.AdminOnly(admin.GetAllBookings)))
	router.GET("/api/admin/slots/:id/bookings", middleware.Authenticate(middleware.AdminOnly(admin.GetSlotBookings)))
}

func AddTranslationRoutes(router *httprouter.Router) {
	router.GET("/api/translation/:lang", i18n.GetTranslations)
}

func AddNotifyRoutes(router *httprouter.Router, hub *notify.Hub) {
	router.GET("/ws/slots/:slotid", hub.HandleSlotWS)
	router.GET("/ws/updates", hub.HandleWS)
}

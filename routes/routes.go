package routes

import (
	handlers "tricy/internal/handlers/shared"
	"tricy/internal/middleware"
	"tricy/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	OAuth         *handlers.OAuthHandler
	Users         *handlers.UserHandler
	Drivers       *handlers.DriverHandler
	Bookings      *handlers.BookingHandler
	Transactions  *handlers.TransactionHandler
	Notifications *handlers.NotificationHandler
	Health        *handlers.HealthHandler
	WebSocket     *websocket.Handler
}

// Setup registers every route on r. Paths carry no version prefix.
func Setup(r gin.IRouter, h *Handlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.Health.Health)

	SetupAuthRoutes(r, h.Auth)
	if h.OAuth != nil {
		SetupOAuthRoutes(r, h.OAuth)
	}

	authed := r.Group("")
	authed.Use(middleware.AuthRequired(tokens))
	{
		SetupUserRoutes(authed, h.Users)
		SetupDriverRoutes(authed, h.Drivers)
		SetupBookingRoutes(authed, h.Bookings)
		SetupTransactionRoutes(authed, h.Transactions)
		SetupNotificationRoutes(authed, h.Notifications)

		if h.WebSocket != nil {
			authed.GET("/ws", h.WebSocket.HandleWebSocket)
		}
	}
}

func SetupAuthRoutes(r gin.IRouter, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

func SetupOAuthRoutes(r gin.IRouter, oauthHandler *handlers.OAuthHandler) {
	google := r.Group("/auth/google")
	{
		google.GET("", oauthHandler.Begin)
		google.GET("/callback", oauthHandler.Callback)
	}
}

func SetupUserRoutes(r gin.IRouter, userHandler *handlers.UserHandler) {
	users := r.Group("/users")
	{
		users.GET("", middleware.AdminRequired(), userHandler.ListUsers)
		users.GET("/:id", middleware.SelfOrAdmin("id"), userHandler.GetUser)
		users.PATCH("/:id", middleware.SelfOrAdmin("id"), userHandler.UpdateUser)
		users.DELETE("/:id", middleware.SelfOrAdmin("id"), userHandler.DeleteUser)
	}
}

func SetupDriverRoutes(r gin.IRouter, driverHandler *handlers.DriverHandler) {
	drivers := r.Group("/drivers")
	{
		drivers.POST("", driverHandler.CreateDriver)
		drivers.GET("/:id", driverHandler.GetDriver)
	}
}

func SetupBookingRoutes(r gin.IRouter, bookingHandler *handlers.BookingHandler) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.ListBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.GET("/status/:status", bookingHandler.ListBookingsByStatus)
		bookings.GET("/driver/:driver_id", bookingHandler.ListDriverBookings)
		bookings.POST("/:id/cancel", bookingHandler.CancelBooking)

		// Driver-side lifecycle
		bookings.POST("/:id/assign/:driver_id", middleware.DriverRequired(), bookingHandler.AssignDriver)
		bookings.POST("/:id/complete", middleware.DriverRequired(), bookingHandler.CompleteBooking)
	}
}

func SetupTransactionRoutes(r gin.IRouter, transactionHandler *handlers.TransactionHandler) {
	transactions := r.Group("/transactions")
	{
		transactions.POST("", transactionHandler.CreateTransaction)
		transactions.POST("/:id/confirm", middleware.DriverRequired(), transactionHandler.ConfirmCash)
		transactions.GET("/:id/receipt", transactionHandler.GetReceipt)
		transactions.GET("/user/:user_id", transactionHandler.ListUserTransactions)
		transactions.GET("/driver/:driver_id", transactionHandler.ListDriverTransactions)
		transactions.GET("/daily/:date", middleware.AdminRequired(), transactionHandler.DailyTotal)
	}
}

func SetupNotificationRoutes(r gin.IRouter, notificationHandler *handlers.NotificationHandler) {
	notifications := r.Group("/notifications")
	{
		notifications.POST("", middleware.AdminRequired(), notificationHandler.SendNotification)
		notifications.GET("/user/:user_id", middleware.SelfOrAdmin("user_id"), notificationHandler.ListUserNotifications)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}
}

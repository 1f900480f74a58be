package utils

import "time"

// Application Constants
const (
	AppName    = "Tricy"
	AppVersion = "1.0.0"

	DefaultTimeZone = "UTC"
	DateLayout      = "2006-01-02"

	// Pagination
	DefaultSkip     = 0
	DefaultPageSize = 100
	MaxPageSize     = 500
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 60 * time.Minute
	PasswordMinLength = 6
	PasswordMaxLength = 72 // bcrypt input limit
	TokenTypeBearer   = "bearer"

	// Notification
	NotificationTimeout = 30 * time.Second

	// Cache
	BookingCacheTTL = 10 * time.Minute
	OAuthStateTTL   = 10 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgUserNotFound       = "user not found"
	MsgUserExists         = "user already exists"
	MsgInvalidToken       = "invalid token"
	MsgTokenExpired       = "token expired"
	MsgInternalServer     = "internal server error"
	MsgUnauthorized       = "unauthorized"
	MsgForbidden          = "forbidden"
	MsgNotFound           = "not found"
	MsgConflict           = "conflict"
	MsgValidationFailed   = "validation failed"
	MsgBookingNotFound    = "booking not found"
	MsgDriverNotFound     = "driver not found"
)

// Cache Keys
const (
	CacheBookingPrefix    = "booking:"
	CacheOAuthStatePrefix = "oauth_state:"
)

// Event Types
const (
	EventUserRegistered       = "user_registered"
	EventUserLogin            = "user_login"
	EventBookingRequested     = "booking_requested"
	EventBookingAccepted      = "booking_accepted"
	EventBookingCompleted     = "booking_completed"
	EventBookingCancelled     = "booking_cancelled"
	EventTransactionCreated   = "transaction_created"
	EventTransactionConfirmed = "transaction_confirmed"
)

// Notification categories
const (
	NotificationInfo    = "info"
	NotificationBooking = "booking"
	NotificationPayment = "payment"
)

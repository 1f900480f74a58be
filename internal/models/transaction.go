package models

import (
	"strings"
	"time"
)

type PaymentMode string
type PaymentStatus string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
)

// ParsePaymentMode accepts cash or online in any letter case.
func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch mode := PaymentMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case PaymentModeCash, PaymentModeOnline:
		return mode, true
	}
	return "", false
}

// InitialStatus is pending for cash until the driver confirms it, success
// for online payments.
func (m PaymentMode) InitialStatus() PaymentStatus {
	if m == PaymentModeCash {
		return PaymentStatusPending
	}
	return PaymentStatusSuccess
}

type Transaction struct {
	TransactionID string        `json:"transaction_id"`
	BookingID     string        `json:"booking_id"`
	UserID        string        `json:"user_id"`
	DriverID      string        `json:"driver_id"`
	PaymentMode   PaymentMode   `json:"payment_mode"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Amount        float64       `json:"amount"`
	CreatedAt     time.Time     `json:"created_at"`

	// PaymentReference is the gateway payment id for verified online payments.
	PaymentReference string `json:"payment_reference,omitempty"`
}

type CreateTransactionRequest struct {
	BookingID        string  `json:"booking_id" binding:"required"`
	UserID           string  `json:"user_id" binding:"required"`
	DriverID         string  `json:"driver_id" binding:"required"`
	PaymentMode      string  `json:"payment_mode" binding:"required,payment_mode"`
	Amount           float64 `json:"amount" binding:"gte=0"`
	PaymentReference string  `json:"payment_reference" binding:"omitempty,max=255"`
}

// Receipt is the archived proof of a settled payment.
type Receipt struct {
	TransactionID string      `json:"transaction_id"`
	BookingID     string      `json:"booking_id"`
	UserID        string      `json:"user_id"`
	DriverID      string      `json:"driver_id"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	Amount        float64     `json:"amount"`
	RecordedAt    time.Time   `json:"recorded_at"`
	IssuedAt      time.Time   `json:"issued_at"`
}

type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

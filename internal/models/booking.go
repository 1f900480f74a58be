package models

import (
	"fmt"
	"time"

	"tricy/internal/utils"
)

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "requested"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusOngoing   BookingStatus = "ongoing"
	BookingStatusCompleted BookingStatus = "completed"
	// BookingStatusCancelled is part of the stored vocabulary but never
	// written: cancelling deletes the booking.
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusRequested, BookingStatusAccepted, BookingStatusOngoing,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	BookingID       string        `json:"booking_id"`
	UserID          string        `json:"user_id"`
	PickupLocation  string        `json:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location"`
	PickupLat       *float64      `json:"pickup_lat"`
	PickupLng       *float64      `json:"pickup_lng"`
	DropoffLat      *float64      `json:"dropoff_lat"`
	DropoffLng      *float64      `json:"dropoff_lng"`
	Fare            float64       `json:"fare"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	AssignedAt      *time.Time    `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

type CreateBookingRequest struct {
	UserID          string   `json:"user_id" binding:"required"`
	PickupLocation  string   `json:"pickup_location" binding:"required"`
	DropoffLocation string   `json:"dropoff_location" binding:"required"`
	Fare            float64  `json:"fare" binding:"gte=0"`
	PickupLat       *float64 `json:"pickup_lat" binding:"omitempty,latitude"`
	PickupLng       *float64 `json:"pickup_lng" binding:"omitempty,longitude"`
	DropoffLat      *float64 `json:"dropoff_lat" binding:"omitempty,latitude"`
	DropoffLng      *float64 `json:"dropoff_lng" binding:"omitempty,longitude"`
}

// CanAssign decides whether driverID may accept a booking currently in
// status with the given drivers already attached. Re-assigning the same
// driver is allowed and idempotent.
func CanAssign(status BookingStatus, acceptedBy []string, driverID string) error {
	for _, existing := range acceptedBy {
		if existing == driverID {
			return nil
		}
	}

	if status == BookingStatusCompleted {
		return utils.NewError(utils.KindInvalidTransition, "booking is already completed")
	}
	if len(acceptedBy) > 0 {
		return utils.NewError(utils.KindConflict,
			fmt.Sprintf("booking already accepted by driver %s", acceptedBy[0]))
	}
	return nil
}

// CanComplete allows completion from accepted or ongoing, and repeating it
// on a completed booking.
func CanComplete(status BookingStatus) error {
	switch status {
	case BookingStatusAccepted, BookingStatusOngoing, BookingStatusCompleted:
		return nil
	default:
		return utils.NewError(utils.KindInvalidTransition,
			fmt.Sprintf("cannot complete a booking in status %q", status))
	}
}

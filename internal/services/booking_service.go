package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/logger"
	"tricy/pkg/maps"

	"github.com/google/uuid"
)

type BookingService interface {
	Create(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Booking, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Booking, error)
	ListForDriver(ctx context.Context, driverID string) ([]*models.Booking, error)

	// Lifecycle
	Assign(ctx context.Context, bookingID, driverID string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*models.Booking, error)
}

// Reconnector rebuilds the store connection after it became unavailable.
// The generation read before an operation lets concurrent failures share a
// single rebuild.
type Reconnector interface {
	Generation() uint64
	ReconnectIfCurrent(ctx context.Context, generation uint64) error
}

type bookingService struct {
	bookingRepo   interfaces.BookingRepository
	notifications NotificationSender
	events        EventDispatcher
	reconnector   Reconnector
	geocoder      maps.Geocoder
	logger        *logger.Logger
	now           func() time.Time
	// dispatch runs background work; tests swap it for a synchronous call.
	dispatch func(func())
}

// NewBookingService builds the lifecycle service. events, reconnector and
// geocoder may be nil.
func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	notifications NotificationSender,
	events EventDispatcher,
	reconnector Reconnector,
	geocoder maps.Geocoder,
	log *logger.Logger,
) BookingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &bookingService{
		bookingRepo:   bookingRepo,
		notifications: notifications,
		events:        events,
		reconnector:   reconnector,
		geocoder:      geocoder,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
		dispatch:      func(fn func()) { go fn() },
	}
}

func (s *bookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookingID:       uuid.NewString(),
		UserID:          req.UserID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		Fare:            req.Fare,
		Status:          models.BookingStatusRequested,
		CreatedAt:       s.now(),
	}
	s.fillCoordinates(ctx, booking)

	booking, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(booking.BookingID, utils.EventBookingRequested, map[string]interface{}{
		"user_id": booking.UserID,
		"fare":    booking.Fare,
	})
	s.emit(ctx, utils.EventBookingRequested, booking)
	return booking, nil
}

// fillCoordinates geocodes an endpoint only when the caller sent neither of
// its coordinates. Lookup failures leave the booking without them.
func (s *bookingService) fillCoordinates(ctx context.Context, b *models.Booking) {
	if s.geocoder == nil {
		return
	}
	if b.PickupLat == nil && b.PickupLng == nil {
		b.PickupLat, b.PickupLng = s.geocode(ctx, b.PickupLocation)
	}
	if b.DropoffLat == nil && b.DropoffLng == nil {
		b.DropoffLat, b.DropoffLng = s.geocode(ctx, b.DropoffLocation)
	}
}

func (s *bookingService) geocode(ctx context.Context, address string) (*float64, *float64) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.WithError(err).WithField("address", address).Warn("Failed to geocode booking location")
		return nil, nil
	}
	return &loc.Latitude, &loc.Longitude
}

func (s *bookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Booking, error) {
	if params == nil {
		params = &utils.PaginationParams{Skip: utils.DefaultSkip, Limit: utils.DefaultPageSize}
	}
	return s.bookingRepo.List(ctx, params)
}

func (s *bookingService) ListByStatus(ctx context.Context, status string) ([]*models.Booking, error) {
	bookingStatus := models.BookingStatus(status)
	if !bookingStatus.IsValid() {
		return nil, utils.ValidationError(fmt.Sprintf("unknown booking status %q", status))
	}
	return s.bookingRepo.ListByStatus(ctx, bookingStatus)
}

func (s *bookingService) ListForDriver(ctx context.Context, driverID string) ([]*models.Booking, error) {
	return s.bookingRepo.ListByDriver(ctx, driverID)
}

func (s *bookingService) Assign(ctx context.Context, bookingID, driverID string) (*models.Booking, error) {
	if driverID == "" {
		return nil, utils.ValidationError("driver_id is required")
	}

	booking, accepted, err := s.bookingRepo.Assign(ctx, bookingID, driverID, s.now())
	if err != nil {
		return nil, err
	}
	// Repeating an assignment accepts nothing new, so the rider hears about
	// it once.
	if !accepted {
		return booking, nil
	}

	s.logger.LogBookingEvent(bookingID, utils.EventBookingAccepted, map[string]interface{}{
		"driver_id": driverID,
	})
	s.emit(ctx, utils.EventBookingAccepted, booking)
	s.notifyAsync(ctx, booking.UserID, bookingID, "Driver Assigned",
		fmt.Sprintf("Your ride has been accepted by driver %s.", driverID))
	return booking, nil
}

// Complete retries once after rebuilding the connection when the store was
// unavailable. A second failure is returned as is.
func (s *bookingService) Complete(ctx context.Context, bookingID string) (*models.Booking, error) {
	var generation uint64
	if s.reconnector != nil {
		generation = s.reconnector.Generation()
	}

	booking, err := s.bookingRepo.Complete(ctx, bookingID, s.now())
	if err != nil && errors.Is(err, utils.ErrUnavailable) && s.reconnector != nil {
		s.logger.WithError(err).WithBookingID(bookingID).Warn("Store unavailable while completing booking, reconnecting")
		if reconnectErr := s.reconnector.ReconnectIfCurrent(ctx, generation); reconnectErr != nil {
			return nil, reconnectErr
		}
		booking, err = s.bookingRepo.Complete(ctx, bookingID, s.now())
	}
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, utils.EventBookingCompleted, nil)
	s.emit(ctx, utils.EventBookingCompleted, booking)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	snapshot, err := s.bookingRepo.Delete(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, utils.EventBookingCancelled, map[string]interface{}{
		"status": string(snapshot.Status),
	})
	s.emit(ctx, utils.EventBookingCancelled, snapshot)
	return snapshot, nil
}

func (s *bookingService) emit(ctx context.Context, event string, booking *models.Booking) {
	if s.events != nil {
		s.events.BookingChanged(ctx, event, booking)
	}
}

// notifyAsync tells the requesting user about their booking without holding
// up the request. The send gets its own deadline detached from ctx.
func (s *bookingService) notifyAsync(ctx context.Context, userID, bookingID, title, message string) {
	if s.notifications == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(detached, utils.NotificationTimeout)
		defer cancel()

		if _, err := s.notifications.Notify(ctx, userID, title, message, utils.NotificationBooking); err != nil {
			s.logger.WithError(err).WithBookingID(bookingID).WithUserID(userID).Warn("Failed to send booking notification")
		}
	})
}

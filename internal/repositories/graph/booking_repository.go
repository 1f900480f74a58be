package graph

import (
	"context"
	"fmt"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/cache"
	"tricy/pkg/database"
	"tricy/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	createBookingQuery = `
MATCH (u:User {user_id: $user_id})
CREATE (b:Booking {
	booking_id: $booking_id,
	user_id: $user_id,
	pickup_location: $pickup_location,
	dropoff_location: $dropoff_location,
	pickup_lat: $pickup_lat,
	pickup_lng: $pickup_lng,
	dropoff_lat: $dropoff_lat,
	dropoff_lng: $dropoff_lng,
	fare: $fare,
	status: $status,
	created_at: $created_at
})
CREATE (u)-[:REQUESTED]->(b)
RETURN b`

	getBookingQuery = `MATCH (b:Booking {booking_id: $booking_id}) RETURN b LIMIT 1`

	listBookingsQuery = `MATCH (b:Booking) RETURN b SKIP $skip LIMIT $limit`

	listBookingsByStatusQuery = `
MATCH (b:Booking {status: $status})
RETURN b ORDER BY b.created_at DESC`

	listBookingsByDriverQuery = `
MATCH (:Driver {driver_id: $driver_id})-[:ACCEPTED]->(b:Booking)
RETURN b ORDER BY b.created_at DESC`

	// Touching a property takes the node's write lock, so concurrent
	// assignments of the same booking serialize here.
	lockBookingQuery = `
MATCH (b:Booking {booking_id: $booking_id})
SET b._lock = true
REMOVE b._lock
WITH b
OPTIONAL MATCH (d:Driver)-[:ACCEPTED]->(b)
RETURN b, collect(d.driver_id) AS drivers`

	assignBookingQuery = `
MATCH (b:Booking {booking_id: $booking_id})
MERGE (d:Driver {driver_id: $driver_id})
MERGE (d)-[:ACCEPTED]->(b)
SET b.status = $status, b.assigned_at = $assigned_at
RETURN b`

	completeBookingQuery = `
MATCH (b:Booking {booking_id: $booking_id})
SET b.status = $status, b.completed_at = $completed_at
RETURN b`

	deleteBookingQuery = `
MATCH (b:Booking {booking_id: $booking_id})
WITH b, properties(b) AS snapshot
DETACH DELETE b
RETURN snapshot`
)

type bookingRepository struct {
	db     *database.GraphDB
	cache  cache.Cache
	logger *logger.Logger
}

func NewBookingRepository(db *database.GraphDB, c cache.Cache, log *logger.Logger) interfaces.BookingRepository {
	return &bookingRepository{db: db, cache: c, logger: log}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	params := map[string]any{
		"booking_id":       booking.BookingID,
		"user_id":          booking.UserID,
		"pickup_location":  booking.PickupLocation,
		"dropoff_location": booking.DropoffLocation,
		"pickup_lat":       floatParam(booking.PickupLat),
		"pickup_lng":       floatParam(booking.PickupLng),
		"dropoff_lat":      floatParam(booking.DropoffLat),
		"dropoff_lng":      floatParam(booking.DropoffLng),
		"fare":             booking.Fare,
		"status":           string(booking.Status),
		"created_at":       booking.CreatedAt,
	}

	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, createBookingQuery, params, "b", bookingFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	created := result.(*models.Booking)
	if created == nil {
		return nil, utils.NotFoundError("user")
	}
	return created, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	if booking := r.getBookingFromCache(ctx, bookingID); booking != nil {
		return booking, nil
	}

	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, getBookingQuery, map[string]any{"booking_id": bookingID}, "b", bookingFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking := result.(*models.Booking)
	if booking == nil {
		return nil, utils.NotFoundError("booking")
	}

	r.cacheBooking(ctx, booking)
	return booking, nil
}

func (r *bookingRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Booking, error) {
	return r.list(ctx, listBookingsQuery, map[string]any{
		"skip":  int64(params.Skip),
		"limit": int64(params.Limit),
	})
}

func (r *bookingRepository) ListByStatus(ctx context.Context, status models.BookingStatus) ([]*models.Booking, error) {
	return r.list(ctx, listBookingsByStatusQuery, map[string]any{"status": string(status)})
}

func (r *bookingRepository) ListByDriver(ctx context.Context, driverID string) ([]*models.Booking, error) {
	return r.list(ctx, listBookingsByDriverQuery, map[string]any{"driver_id": driverID})
}

func (r *bookingRepository) list(ctx context.Context, query string, params map[string]any) ([]*models.Booking, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, query, params, "b", bookingFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return result.([]*models.Booking), nil
}

type assignOutcome struct {
	booking  *models.Booking
	accepted bool
}

func (r *bookingRepository) Assign(ctx context.Context, bookingID, driverID string, assignedAt time.Time) (*models.Booking, bool, error) {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		current, drivers, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return nil, err
		}
		if err := models.CanAssign(current.Status, drivers, driverID); err != nil {
			return nil, err
		}
		// Same driver on a finished booking: nothing left to change.
		if current.Status == models.BookingStatusCompleted {
			return assignOutcome{booking: current}, nil
		}

		booking, err := single(ctx, tx, assignBookingQuery, map[string]any{
			"booking_id":  bookingID,
			"driver_id":   driverID,
			"status":      string(models.BookingStatusAccepted),
			"assigned_at": assignedAt,
		}, "b", bookingFromProps)
		if err != nil {
			return nil, err
		}
		return assignOutcome{booking: booking, accepted: current.Status == models.BookingStatusRequested}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to assign booking: %w", err)
	}

	outcome := result.(assignOutcome)
	r.invalidateBookingCache(ctx, bookingID)
	return outcome.booking, outcome.accepted, nil
}

func (r *bookingRepository) Complete(ctx context.Context, bookingID string, completedAt time.Time) (*models.Booking, error) {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		current, _, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return nil, err
		}
		if err := models.CanComplete(current.Status); err != nil {
			return nil, err
		}

		return single(ctx, tx, completeBookingQuery, map[string]any{
			"booking_id":   bookingID,
			"status":       string(models.BookingStatusCompleted),
			"completed_at": completedAt,
		}, "b", bookingFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}

	r.invalidateBookingCache(ctx, bookingID)
	return result.(*models.Booking), nil
}

func (r *bookingRepository) Delete(ctx context.Context, bookingID string) (*models.Booking, error) {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, deleteBookingQuery, map[string]any{"booking_id": bookingID}, "snapshot", bookingFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	r.invalidateBookingCache(ctx, bookingID)

	snapshot := result.(*models.Booking)
	if snapshot == nil {
		return nil, utils.NotFoundError("booking")
	}
	return snapshot, nil
}

// lockBooking write-locks the booking node and returns it together with the
// ids of drivers already attached through ACCEPTED.
func lockBooking(ctx context.Context, tx neo4j.ManagedTransaction, bookingID string) (*models.Booking, []string, error) {
	result, err := tx.Run(ctx, lockBookingQuery, map[string]any{"booking_id": bookingID})
	if err != nil {
		return nil, nil, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		// Single fails on an empty result; distinguish that from real errors.
		if neo4j.IsUsageError(err) {
			return nil, nil, utils.NotFoundError("booking")
		}
		return nil, nil, err
	}

	props, err := nodeProps(record, "b")
	if err != nil {
		return nil, nil, err
	}

	var drivers []string
	if raw, ok := record.Get("drivers"); ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if id, ok := item.(string); ok {
					drivers = append(drivers, id)
				}
			}
		}
	}
	return bookingFromProps(props), drivers, nil
}

// Only GetByID fills the cache. Writes invalidate after commit, since two
// writers can finish their requests in a different order than they committed.
func (r *bookingRepository) cacheBooking(ctx context.Context, booking *models.Booking) {
	if r.cache == nil || booking == nil {
		return
	}
	if err := r.cache.Set(ctx, bookingCacheKey(booking.BookingID), booking, utils.BookingCacheTTL); err != nil {
		r.logger.WithError(err).WithBookingID(booking.BookingID).Debug("Failed to cache booking")
	}
}

func (r *bookingRepository) getBookingFromCache(ctx context.Context, bookingID string) *models.Booking {
	if r.cache == nil {
		return nil
	}

	var booking models.Booking
	if err := r.cache.Get(ctx, bookingCacheKey(bookingID), &booking); err != nil {
		return nil
	}
	return &booking
}

func (r *bookingRepository) invalidateBookingCache(ctx context.Context, bookingID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, bookingCacheKey(bookingID)); err != nil {
		r.logger.WithError(err).WithBookingID(bookingID).Debug("Failed to invalidate booking cache")
	}
}

func bookingCacheKey(bookingID string) string {
	return utils.CacheBookingPrefix + bookingID
}

package interfaces

import (
	"context"
	"time"

	"tricy/internal/models"
	"tricy/internal/utils"
)

type BookingRepository interface {
	// Create stores the booking and its REQUESTED edge from the owning user.
	// A missing user yields utils.ErrNotFound.
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Booking, error)
	ListByStatus(ctx context.Context, status models.BookingStatus) ([]*models.Booking, error)
	ListByDriver(ctx context.Context, driverID string) ([]*models.Booking, error)

	// Lifecycle transitions. Guards are evaluated inside the write
	// transaction. Assign reports accepted=true only when this call moved
	// the booking out of requested; repeating it for the same driver is
	// allowed but accepts nothing new.
	Assign(ctx context.Context, bookingID, driverID string, assignedAt time.Time) (*models.Booking, bool, error)
	Complete(ctx context.Context, bookingID string, completedAt time.Time) (*models.Booking, error)
	Delete(ctx context.Context, bookingID string) (*models.Booking, error)
}

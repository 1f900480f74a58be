package interfaces

import (
	"context"

	"tricy/internal/models"
)

type DriverRepository interface {
	// Create stores the driver profile with an IS_DRIVER edge from its user.
	Create(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	GetByID(ctx context.Context, driverID string) (*models.Driver, error)
}

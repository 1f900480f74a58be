package graph

import (
	"context"
	"fmt"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/database"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	createDriverQuery = `
MATCH (u:User {user_id: $user_id})
CREATE (d:Driver {
	driver_id: $driver_id,
	user_id: $user_id,
	license_number: $license_number,
	vehicle_plate: $vehicle_plate,
	availability_status: $availability_status,
	rating: 0.0
})
CREATE (u)-[:IS_DRIVER]->(d)
RETURN d`

	getDriverQuery = `MATCH (d:Driver {driver_id: $driver_id}) RETURN d LIMIT 1`
)

type driverRepository struct {
	db *database.GraphDB
}

func NewDriverRepository(db *database.GraphDB) interfaces.DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	params := map[string]any{
		"driver_id":           driver.DriverID,
		"user_id":             driver.UserID,
		"license_number":      driver.LicenseNumber,
		"vehicle_plate":       driver.VehiclePlate,
		"availability_status": string(driver.AvailabilityStatus),
	}

	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, createDriverQuery, params, "d", driverFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	created := result.(*models.Driver)
	if created == nil {
		return nil, utils.NotFoundError("user")
	}
	return created, nil
}

func (r *driverRepository) GetByID(ctx context.Context, driverID string) (*models.Driver, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, getDriverQuery, map[string]any{"driver_id": driverID}, "d", driverFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	driver := result.(*models.Driver)
	if driver == nil {
		return nil, utils.NotFoundError("driver")
	}
	return driver, nil
}

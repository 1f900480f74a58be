package services

import (
	"context"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/pkg/logger"

	"github.com/google/uuid"
)

type DriverService interface {
	Create(ctx context.Context, req *models.CreateDriverRequest) (*models.Driver, error)
	Get(ctx context.Context, driverID string) (*models.Driver, error)
}

type driverService struct {
	driverRepo interfaces.DriverRepository
	logger     *logger.Logger
}

func NewDriverService(driverRepo interfaces.DriverRepository, log *logger.Logger) DriverService {
	if log == nil {
		log = logger.NewNop()
	}
	return &driverService{driverRepo: driverRepo, logger: log}
}

func (s *driverService) Create(ctx context.Context, req *models.CreateDriverRequest) (*models.Driver, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	availability := req.AvailabilityStatus
	if availability == "" {
		availability = models.AvailabilityOffline
	}

	driver, err := s.driverRepo.Create(ctx, &models.Driver{
		DriverID:           uuid.NewString(),
		UserID:             req.UserID,
		LicenseNumber:      req.LicenseNumber,
		VehiclePlate:       req.VehiclePlate,
		AvailabilityStatus: availability,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(req.UserID).WithField("driver_id", driver.DriverID).Info("Driver registered")
	return driver, nil
}

func (s *driverService) Get(ctx context.Context, driverID string) (*models.Driver, error) {
	return s.driverRepo.GetByID(ctx, driverID)
}

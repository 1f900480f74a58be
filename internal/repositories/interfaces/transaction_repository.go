package interfaces

import (
	"context"
	"time"

	"tricy/internal/models"
)

type TransactionRepository interface {
	// Create links the transaction to its booking, payer and payee in one
	// statement. If any of the three is missing nothing is written and
	// utils.ErrNotFound is returned.
	Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status models.PaymentStatus) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	ListByDriver(ctx context.Context, driverID string) ([]*models.Transaction, error)
	SumForDate(ctx context.Context, day time.Time) (float64, error)
}

package interfaces

import (
	"context"

	"tricy/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*models.Notification, error)
}

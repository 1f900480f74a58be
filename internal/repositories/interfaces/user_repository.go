package interfaces

import (
	"context"

	"tricy/internal/models"
	"tricy/internal/utils"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

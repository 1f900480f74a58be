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
	createNotificationQuery = `
MATCH (u:User {user_id: $user_id})
CREATE (n:Notification {
	notification_id: $notification_id,
	user_id: $user_id,
	title: $title,
	message: $message,
	type: $type,
	read: false,
	created_at: $created_at
})
CREATE (u)-[:HAS_NOTIFICATION]->(n)
RETURN n`

	listNotificationsQuery = `
MATCH (:User {user_id: $user_id})-[:HAS_NOTIFICATION]->(n:Notification)
RETURN n ORDER BY n.created_at DESC`

	markNotificationReadQuery = `
MATCH (n:Notification {notification_id: $notification_id})
SET n.read = true
RETURN n`
)

type notificationRepository struct {
	db *database.GraphDB
}

func NewNotificationRepository(db *database.GraphDB) interfaces.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	params := map[string]any{
		"notification_id": notification.NotificationID,
		"user_id":         notification.UserID,
		"title":           notification.Title,
		"message":         notification.Message,
		"type":            notification.Type,
		"created_at":      notification.CreatedAt,
	}

	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, createNotificationQuery, params, "n", notificationFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	created := result.(*models.Notification)
	if created == nil {
		return nil, utils.NotFoundError("user")
	}
	return created, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, listNotificationsQuery, map[string]any{"user_id": userID}, "n", notificationFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result.([]*models.Notification), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, markNotificationReadQuery, map[string]any{"notification_id": notificationID}, "n", notificationFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	notification := result.(*models.Notification)
	if notification == nil {
		return nil, utils.NotFoundError("notification")
	}
	return notification, nil
}

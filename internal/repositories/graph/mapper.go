package graph

import (
	"context"
	"fmt"
	"time"

	"tricy/internal/models"
	"tricy/pkg/database"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// nodeProps pulls the node bound to key out of a record and normalizes its
// properties.
func nodeProps(record *neo4j.Record, key string) (map[string]any, error) {
	value, ok := record.Get(key)
	if !ok {
		return nil, fmt.Errorf("record has no %q column", key)
	}
	switch v := value.(type) {
	case neo4j.Node:
		return database.NormalizeProps(v.Props), nil
	case map[string]any:
		return database.NormalizeProps(v), nil
	default:
		return nil, fmt.Errorf("column %q holds %T, not a node", key, value)
	}
}

// collect runs a query inside tx and maps every record's node column.
func collect[T any](ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any, key string, mapFn func(map[string]any) *T) ([]*T, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, len(records))
	for _, record := range records {
		props, err := nodeProps(record, key)
		if err != nil {
			return nil, err
		}
		items = append(items, mapFn(props))
	}
	return items, nil
}

// single runs a query and maps the first record, returning nil when the
// query matched nothing.
func single[T any](ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any, key string, mapFn func(map[string]any) *T) (*T, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	props, err := nodeProps(result.Record(), key)
	if err != nil {
		return nil, err
	}
	// Drain so the driver does not keep the cursor open.
	if _, err := result.Consume(ctx); err != nil {
		return nil, err
	}
	return mapFn(props), nil
}

func getString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func getFloatPtr(props map[string]any, key string) *float64 {
	if _, ok := props[key]; !ok || props[key] == nil {
		return nil
	}
	v := getFloat(props, key)
	return &v
}

func getBool(props map[string]any, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func getTime(props map[string]any, key string) time.Time {
	if v, ok := props[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func getTimePtr(props map[string]any, key string) *time.Time {
	v, ok := props[key].(time.Time)
	if !ok {
		return nil
	}
	return &v
}

func bookingFromProps(props map[string]any) *models.Booking {
	return &models.Booking{
		BookingID:       getString(props, "booking_id"),
		UserID:          getString(props, "user_id"),
		PickupLocation:  getString(props, "pickup_location"),
		DropoffLocation: getString(props, "dropoff_location"),
		PickupLat:       getFloatPtr(props, "pickup_lat"),
		PickupLng:       getFloatPtr(props, "pickup_lng"),
		DropoffLat:      getFloatPtr(props, "dropoff_lat"),
		DropoffLng:      getFloatPtr(props, "dropoff_lng"),
		Fare:            getFloat(props, "fare"),
		Status:          models.BookingStatus(getString(props, "status")),
		CreatedAt:       getTime(props, "created_at"),
		AssignedAt:      getTimePtr(props, "assigned_at"),
		CompletedAt:     getTimePtr(props, "completed_at"),
	}
}

func transactionFromProps(props map[string]any) *models.Transaction {
	return &models.Transaction{
		TransactionID:    getString(props, "transaction_id"),
		BookingID:        getString(props, "booking_id"),
		UserID:           getString(props, "user_id"),
		DriverID:         getString(props, "driver_id"),
		PaymentMode:      models.PaymentMode(getString(props, "payment_mode")),
		PaymentStatus:    models.PaymentStatus(getString(props, "payment_status")),
		Amount:           getFloat(props, "amount"),
		PaymentReference: getString(props, "payment_reference"),
		CreatedAt:        getTime(props, "created_at"),
	}
}

func userFromProps(props map[string]any) *models.User {
	return &models.User{
		UserID:         getString(props, "user_id"),
		Name:           getString(props, "name"),
		Email:          getString(props, "email"),
		PhoneNumber:    getString(props, "phone_number"),
		PasswordHash:   getString(props, "password_hash"),
		Role:           models.UserRole(getString(props, "role")),
		DeviceToken:    getString(props, "device_token"),
		DevicePlatform: getString(props, "device_platform"),
		CreatedAt:      getTime(props, "created_at"),
	}
}

func driverFromProps(props map[string]any) *models.Driver {
	return &models.Driver{
		DriverID:           getString(props, "driver_id"),
		UserID:             getString(props, "user_id"),
		LicenseNumber:      getString(props, "license_number"),
		VehiclePlate:       getString(props, "vehicle_plate"),
		AvailabilityStatus: models.AvailabilityStatus(getString(props, "availability_status")),
		Rating:             getFloat(props, "rating"),
	}
}

func notificationFromProps(props map[string]any) *models.Notification {
	return &models.Notification{
		NotificationID: getString(props, "notification_id"),
		UserID:         getString(props, "user_id"),
		Title:          getString(props, "title"),
		Message:        getString(props, "message"),
		Type:           getString(props, "type"),
		Read:           getBool(props, "read"),
		CreatedAt:      getTime(props, "created_at"),
	}
}

// floatParam keeps absent coordinates absent: a nil parameter in a CREATE
// map leaves the property unset.
func floatParam(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

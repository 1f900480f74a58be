package graph

import (
	"testing"
	"time"

	"tricy/internal/models"
	"tricy/internal/utils"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingFromProps(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	record := &neo4j.Record{
		Keys: []string{"b"},
		Values: []any{neo4j.Node{Props: map[string]any{
			"booking_id":       "B1",
			"user_id":          "U1",
			"pickup_location":  "Plaza",
			"dropoff_location": "Market",
			"pickup_lat":       14.6,
			"fare":             int64(50),
			"status":           "requested",
			"created_at":       created.Add(500 * time.Nanosecond),
		}}},
	}

	props, err := nodeProps(record, "b")
	require.NoError(t, err)
	booking := bookingFromProps(props)

	assert.Equal(t, "B1", booking.BookingID)
	assert.Equal(t, models.BookingStatusRequested, booking.Status)
	assert.Equal(t, 50.0, booking.Fare)
	require.NotNil(t, booking.PickupLat)
	assert.Equal(t, 14.6, *booking.PickupLat)
	assert.Nil(t, booking.PickupLng)
	assert.Equal(t, created, booking.CreatedAt)
	assert.Nil(t, booking.AssignedAt)
	assert.Nil(t, booking.CompletedAt)
}

func TestNodePropsAcceptsMaps(t *testing.T) {
	record := &neo4j.Record{
		Keys:   []string{"snapshot"},
		Values: []any{map[string]any{"booking_id": "B1"}},
	}

	props, err := nodeProps(record, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, "B1", props["booking_id"])
}

func TestNodePropsRejectsOtherValues(t *testing.T) {
	record := &neo4j.Record{Keys: []string{"b"}, Values: []any{"scalar"}}

	_, err := nodeProps(record, "b")
	assert.Error(t, err)

	_, err = nodeProps(record, "missing")
	assert.Error(t, err)
}

func TestTransactionFromProps(t *testing.T) {
	tx := transactionFromProps(map[string]any{
		"transaction_id": "T1",
		"payment_mode":   "cash",
		"payment_status": "pending",
		"amount":         50.0,
	})

	assert.Equal(t, "T1", tx.TransactionID)
	assert.Equal(t, models.PaymentModeCash, tx.PaymentMode)
	assert.Equal(t, models.PaymentStatusPending, tx.PaymentStatus)
	assert.Equal(t, 50.0, tx.Amount)
}

func TestUserFromPropsKeepsHash(t *testing.T) {
	user := userFromProps(map[string]any{"user_id": "U1", "password_hash": "hash", "role": "driver"})

	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, models.UserRoleDriver, user.Role)
}

func TestBuildUserUpdate(t *testing.T) {
	query, params, err := buildUserUpdate("U1", map[string]interface{}{
		"name":  "Ana",
		"email": "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "MATCH (u:User {user_id: $user_id}) SET u.email = $email, u.name = $name RETURN u", query)
	assert.Equal(t, "U1", params["user_id"])
	assert.Equal(t, "Ana", params["name"])
}

func TestBuildUserUpdateRejectsUnknownFields(t *testing.T) {
	_, _, err := buildUserUpdate("U1", map[string]interface{}{"role": "admin"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, _, err = buildUserUpdate("U1", map[string]interface{}{})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

package graph

import (
	"context"
	"fmt"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/database"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	// The payee is matched as a User keyed by the driver id.
	createTransactionQuery = `
MATCH (b:Booking {booking_id: $booking_id})
MATCH (u:User {user_id: $user_id})
MATCH (p:User {user_id: $driver_id})
CREATE (t:Transaction {
	transaction_id: $transaction_id,
	booking_id: $booking_id,
	user_id: $user_id,
	driver_id: $driver_id,
	payment_mode: $payment_mode,
	payment_status: $payment_status,
	amount: $amount,
	payment_reference: $payment_reference,
	created_at: $created_at
})
CREATE (u)-[:MADE]->(t)
CREATE (b)-[:HAS_TRANSACTION]->(t)
CREATE (p)-[:RECEIVED]->(t)
RETURN t`

	getTransactionQuery = `MATCH (t:Transaction {transaction_id: $transaction_id}) RETURN t LIMIT 1`

	updateTransactionStatusQuery = `
MATCH (t:Transaction {transaction_id: $transaction_id})
SET t.payment_status = $payment_status
RETURN t`

	listTransactionsByUserQuery = `
MATCH (:User {user_id: $user_id})-[:MADE]->(t:Transaction)
RETURN t ORDER BY t.created_at DESC`

	listTransactionsByDriverQuery = `
MATCH (:User {user_id: $driver_id})-[:RECEIVED]->(t:Transaction)
RETURN t ORDER BY t.created_at DESC`

	dailyTotalQuery = `
MATCH (t:Transaction)
WHERE date(t.created_at) = date($date)
RETURN toFloat(coalesce(sum(t.amount), 0)) AS total`
)

type transactionRepository struct {
	db *database.GraphDB
}

func NewTransactionRepository(db *database.GraphDB) interfaces.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	params := map[string]any{
		"transaction_id":    transaction.TransactionID,
		"booking_id":        transaction.BookingID,
		"user_id":           transaction.UserID,
		"driver_id":         transaction.DriverID,
		"payment_mode":      string(transaction.PaymentMode),
		"payment_status":    string(transaction.PaymentStatus),
		"amount":            transaction.Amount,
		"payment_reference": transaction.PaymentReference,
		"created_at":        transaction.CreatedAt,
	}

	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, createTransactionQuery, params, "t", transactionFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	created := result.(*models.Transaction)
	if created == nil {
		return nil, utils.NotFoundError("booking, user or driver")
	}
	return created, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, getTransactionQuery, map[string]any{"transaction_id": transactionID}, "t", transactionFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	transaction := result.(*models.Transaction)
	if transaction == nil {
		return nil, utils.NotFoundError("transaction")
	}
	return transaction, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, transactionID string, status models.PaymentStatus) (*models.Transaction, error) {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, updateTransactionStatusQuery, map[string]any{
			"transaction_id": transactionID,
			"payment_status": string(status),
		}, "t", transactionFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	transaction := result.(*models.Transaction)
	if transaction == nil {
		return nil, utils.NotFoundError("transaction")
	}
	return transaction, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return r.list(ctx, listTransactionsByUserQuery, map[string]any{"user_id": userID})
}

func (r *transactionRepository) ListByDriver(ctx context.Context, driverID string) ([]*models.Transaction, error) {
	return r.list(ctx, listTransactionsByDriverQuery, map[string]any{"driver_id": driverID})
}

func (r *transactionRepository) list(ctx context.Context, query string, params map[string]any) ([]*models.Transaction, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, query, params, "t", transactionFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return result.([]*models.Transaction), nil
}

func (r *transactionRepository) SumForDate(ctx context.Context, day time.Time) (float64, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, dailyTotalQuery, map[string]any{"date": day.Format(utils.DateLayout)})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total, _ := record.Get("total")
		return total, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}

	switch v := result.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, nil
	}
}

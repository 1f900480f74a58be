package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tricy/internal/models"
	"tricy/internal/utils"
	"tricy/pkg/logger"
	"tricy/pkg/payment"
	"tricy/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionFixture(t *testing.T) (*memStore, TransactionService) {
	t.Helper()
	store := newMemStore()
	store.addUser("U1", "")
	store.addUser("D1", "")
	store.bookings["B1"] = &models.Booking{BookingID: "B1", UserID: "U1", Fare: 50, Status: models.BookingStatusCompleted}
	return store, NewTransactionService(&fakeTransactionRepo{memStore: store}, &recordingEvents{}, nil, nil, logger.NewNop())
}

func transactionRequest(mode string, amount float64) *models.CreateTransactionRequest {
	return &models.CreateTransactionRequest{
		BookingID:   "B1",
		UserID:      "U1",
		DriverID:    "D1",
		PaymentMode: mode,
		Amount:      amount,
	}
}

func TestCreateTransactionInitialStatus(t *testing.T) {
	_, service := newTransactionFixture(t)

	tests := []struct {
		mode   string
		want   models.PaymentMode
		status models.PaymentStatus
	}{
		{"cash", models.PaymentModeCash, models.PaymentStatusPending},
		{"CASH", models.PaymentModeCash, models.PaymentStatusPending},
		{"online", models.PaymentModeOnline, models.PaymentStatusSuccess},
		{"Online", models.PaymentModeOnline, models.PaymentStatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			tx, err := service.Create(context.Background(), transactionRequest(tt.mode, 50))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tx.PaymentMode)
			assert.Equal(t, tt.status, tx.PaymentStatus)
		})
	}
}

func TestCreateTransactionRejectsUnknownMode(t *testing.T) {
	store, service := newTransactionFixture(t)

	_, err := service.Create(context.Background(), transactionRequest("card", 50))

	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Empty(t, store.transactions)
}

func TestCreateTransactionMissingAnchors(t *testing.T) {
	_, service := newTransactionFixture(t)

	req := transactionRequest("cash", 50)
	req.BookingID = "missing"
	_, err := service.Create(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	req = transactionRequest("cash", 50)
	req.DriverID = "missing"
	_, err = service.Create(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestConfirmCash(t *testing.T) {
	_, service := newTransactionFixture(t)
	tx, err := service.Create(context.Background(), transactionRequest("cash", 50))
	require.NoError(t, err)

	confirmed, err := service.ConfirmCash(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, confirmed.PaymentStatus)

	_, err = service.ConfirmCash(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDailyTotal(t *testing.T) {
	_, service := newTransactionFixture(t)
	_, err := service.Create(context.Background(), transactionRequest("cash", 50))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), transactionRequest("online", 25.5))
	require.NoError(t, err)

	today := time.Now().UTC().Format(utils.DateLayout)
	total, err := service.DailyTotal(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, today, total.Date)
	assert.Equal(t, 75.5, total.Total)

	empty, err := service.DailyTotal(context.Background(), "1999-01-01")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)

	_, err = service.DailyTotal(context.Background(), "01/02/2024")
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestListTransactions(t *testing.T) {
	_, service := newTransactionFixture(t)
	_, err := service.Create(context.Background(), transactionRequest("cash", 50))
	require.NoError(t, err)

	forUser, err := service.ListForUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, forUser, 1)

	forDriver, err := service.ListForDriver(context.Background(), "D1")
	require.NoError(t, err)
	assert.Len(t, forDriver, 1)

	none, err := service.ListForDriver(context.Background(), "U1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReceiptArchivedWhenSettled(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "")
	store.addUser("D1", "")
	store.bookings["B1"] = &models.Booking{BookingID: "B1", UserID: "U1", Fare: 50, Status: models.BookingStatusCompleted}
	archive, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	service := NewTransactionService(&fakeTransactionRepo{memStore: store}, nil, archive, nil, logger.NewNop())
	ctx := context.Background()

	cash, err := service.Create(ctx, transactionRequest("cash", 50))
	require.NoError(t, err)
	_, err = service.Receipt(ctx, cash.TransactionID)
	assert.ErrorIs(t, err, utils.ErrNotFound, "pending cash has no receipt")

	_, err = service.ConfirmCash(ctx, cash.TransactionID)
	require.NoError(t, err)
	receipt, err := service.Receipt(ctx, cash.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "B1", receipt.BookingID)
	assert.Equal(t, models.PaymentModeCash, receipt.PaymentMode)
	assert.Equal(t, 50.0, receipt.Amount)

	// A repeated confirmation keeps the first receipt.
	_, err = service.ConfirmCash(ctx, cash.TransactionID)
	require.NoError(t, err)
	again, err := service.Receipt(ctx, cash.TransactionID)
	require.NoError(t, err)
	assert.True(t, receipt.IssuedAt.Equal(again.IssuedAt))

	online, err := service.Create(ctx, transactionRequest("online", 30))
	require.NoError(t, err)
	receipt, err = service.Receipt(ctx, online.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentModeOnline, receipt.PaymentMode)

	_, err = service.Receipt(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestReceiptWithoutArchive(t *testing.T) {
	_, service := newTransactionFixture(t)
	tx, err := service.Create(context.Background(), transactionRequest("online", 30))
	require.NoError(t, err)

	_, err = service.Receipt(context.Background(), tx.TransactionID)

	assert.ErrorIs(t, err, utils.ErrNotFound)
}

type stubVerifier struct {
	charges map[string]*payment.Charge
	err     error
}

func (v *stubVerifier) Verify(ctx context.Context, reference string) (*payment.Charge, error) {
	if v.err != nil {
		return nil, v.err
	}
	charge, ok := v.charges[reference]
	if !ok {
		return nil, payment.ErrChargeNotFound
	}
	return charge, nil
}

func (v *stubVerifier) Name() string { return "stub" }

func TestOnlinePaymentVerification(t *testing.T) {
	store, _ := newTransactionFixture(t)
	verifier := &stubVerifier{charges: map[string]*payment.Charge{
		"pi_ok":      {Reference: "pi_ok", Status: "succeeded", Settled: true, Amount: 50},
		"pi_pending": {Reference: "pi_pending", Status: "processing", Amount: 50},
	}}
	service := NewTransactionService(&fakeTransactionRepo{memStore: store}, nil, nil, verifier, logger.NewNop())
	ctx := context.Background()

	withRef := func(ref string, amount float64) *models.CreateTransactionRequest {
		req := transactionRequest("online", amount)
		req.PaymentReference = ref
		return req
	}

	tx, err := service.Create(ctx, withRef("pi_ok", 50))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, tx.PaymentStatus)
	assert.Equal(t, "pi_ok", tx.PaymentReference)

	_, err = service.Create(ctx, withRef("", 50))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = service.Create(ctx, withRef("pi_unknown", 50))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = service.Create(ctx, withRef("pi_pending", 50))
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = service.Create(ctx, withRef("pi_ok", 80))
	assert.ErrorIs(t, err, utils.ErrValidation)

	verifier.err = errors.New("timeout")
	_, err = service.Create(ctx, withRef("pi_ok", 50))
	assert.ErrorIs(t, err, utils.ErrUnavailable)

	// Cash never touches the gateway.
	_, err = service.Create(ctx, transactionRequest("cash", 50))
	assert.NoError(t, err)
	assert.Len(t, store.transactions, 2)
}

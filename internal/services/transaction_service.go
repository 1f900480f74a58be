package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/internal/validators"
	"tricy/pkg/logger"
	"tricy/pkg/payment"
	"tricy/pkg/storage"

	"github.com/google/uuid"
)

type TransactionService interface {
	Create(ctx context.Context, req *models.CreateTransactionRequest) (*models.Transaction, error)
	ConfirmCash(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	ListForDriver(ctx context.Context, driverID string) ([]*models.Transaction, error)
	DailyTotal(ctx context.Context, date string) (*models.DailyTotal, error)
	Receipt(ctx context.Context, transactionID string) (*models.Receipt, error)
}

type transactionService struct {
	transactionRepo interfaces.TransactionRepository
	events          EventDispatcher
	receipts        storage.Store
	payments        payment.Verifier
	logger          *logger.Logger
	now             func() time.Time
}

// NewTransactionService builds the ledger service. Without receipts settled
// payments are not archived; without payments online payments are recorded
// as reported.
func NewTransactionService(
	transactionRepo interfaces.TransactionRepository,
	events EventDispatcher,
	receipts storage.Store,
	payments payment.Verifier,
	log *logger.Logger,
) TransactionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &transactionService{
		transactionRepo: transactionRepo,
		events:          events,
		receipts:        receipts,
		payments:        payments,
		logger:          log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *transactionService) Create(ctx context.Context, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	mode, ok := models.ParsePaymentMode(req.PaymentMode)
	if !ok {
		return nil, utils.ValidationError(fmt.Sprintf("invalid payment mode %q, use cash or online", req.PaymentMode))
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if mode == models.PaymentModeOnline {
		if err := s.verifyOnlinePayment(ctx, req); err != nil {
			return nil, err
		}
	}

	transaction, err := s.transactionRepo.Create(ctx, &models.Transaction{
		TransactionID:    uuid.NewString(),
		BookingID:        req.BookingID,
		UserID:           req.UserID,
		DriverID:         req.DriverID,
		PaymentMode:      mode,
		PaymentStatus:    mode.InitialStatus(),
		Amount:           req.Amount,
		PaymentReference: req.PaymentReference,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogTransactionEvent(transaction.TransactionID, utils.EventTransactionCreated, transaction.Amount, string(mode))
	s.publish(ctx, utils.EventTransactionCreated, transaction)
	if transaction.PaymentStatus == models.PaymentStatusSuccess {
		s.archiveReceipt(ctx, transaction)
	}
	return transaction, nil
}

// ConfirmCash marks a transaction as paid. Repeating it is harmless.
func (s *transactionService) ConfirmCash(ctx context.Context, transactionID string) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.UpdateStatus(ctx, transactionID, models.PaymentStatusSuccess)
	if err != nil {
		return nil, err
	}

	s.logger.LogTransactionEvent(transactionID, utils.EventTransactionConfirmed, transaction.Amount, string(transaction.PaymentMode))
	s.publish(ctx, utils.EventTransactionConfirmed, transaction)
	s.archiveReceipt(ctx, transaction)
	return transaction, nil
}

func (s *transactionService) ListForUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.transactionRepo.ListByUser(ctx, userID)
}

func (s *transactionService) ListForDriver(ctx context.Context, driverID string) ([]*models.Transaction, error) {
	return s.transactionRepo.ListByDriver(ctx, driverID)
}

func (s *transactionService) DailyTotal(ctx context.Context, date string) (*models.DailyTotal, error) {
	day, err := validators.ParseDate(date)
	if err != nil {
		return nil, err
	}

	total, err := s.transactionRepo.SumForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return &models.DailyTotal{Date: day.Format(utils.DateLayout), Total: total}, nil
}

func (s *transactionService) publish(ctx context.Context, event string, transaction *models.Transaction) {
	if s.events != nil {
		s.events.Publish(ctx, event, transaction)
	}
}

// verifyOnlinePayment checks the gateway when one is configured. The payment
// must be settled and cover the recorded amount.
func (s *transactionService) verifyOnlinePayment(ctx context.Context, req *models.CreateTransactionRequest) error {
	if s.payments == nil {
		return nil
	}
	if req.PaymentReference == "" {
		return utils.ValidationError("payment_reference is required for online payments")
	}

	charge, err := s.payments.Verify(ctx, req.PaymentReference)
	if errors.Is(err, payment.ErrChargeNotFound) {
		return utils.ValidationError("payment reference not found")
	}
	if err != nil {
		return utils.WrapError(utils.KindUnavailable, "payment gateway unavailable", err)
	}

	log := s.logger.WithField("payment_reference", req.PaymentReference).WithField("gateway", s.payments.Name())
	if !charge.Settled {
		log.WithField("status", charge.Status).Warn("Online payment not settled")
		return utils.NewError(utils.KindConflict, fmt.Sprintf("payment is %s, not settled", charge.Status))
	}
	if math.Abs(charge.Amount-req.Amount) > 0.005 {
		log.WithField("charged", charge.Amount).Warn("Online payment amount mismatch")
		return utils.ValidationError("amount does not match the payment")
	}
	return nil
}

func (s *transactionService) Receipt(ctx context.Context, transactionID string) (*models.Receipt, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if s.receipts == nil || transaction.PaymentStatus != models.PaymentStatusSuccess {
		return nil, utils.NotFoundError("receipt")
	}

	body, err := s.receipts.Get(ctx, receiptKey(transaction))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, utils.NotFoundError("receipt")
	}
	if err != nil {
		return nil, utils.WrapError(utils.KindUnavailable, "receipt archive unavailable", err)
	}

	var receipt models.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to decode receipt", err)
	}
	return &receipt, nil
}

// archiveReceipt writes the receipt once. Archive failures never fail the
// payment; they are logged and the receipt can be regenerated by confirming
// again.
func (s *transactionService) archiveReceipt(ctx context.Context, transaction *models.Transaction) {
	if s.receipts == nil {
		return
	}
	log := s.logger.WithField("transaction_id", transaction.TransactionID).WithField("store", s.receipts.Name())

	key := receiptKey(transaction)
	exists, err := s.receipts.Exists(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Failed to check receipt archive")
		return
	}
	if exists {
		return
	}

	body, err := json.Marshal(&models.Receipt{
		TransactionID: transaction.TransactionID,
		BookingID:     transaction.BookingID,
		UserID:        transaction.UserID,
		DriverID:      transaction.DriverID,
		PaymentMode:   transaction.PaymentMode,
		Amount:        transaction.Amount,
		RecordedAt:    transaction.CreatedAt,
		IssuedAt:      s.now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to encode receipt")
		return
	}

	if err := s.receipts.Put(ctx, key, "application/json", body); err != nil {
		log.WithError(err).Warn("Failed to archive receipt")
		return
	}
	log.Debug("Receipt archived")
}

func receiptKey(transaction *models.Transaction) string {
	return fmt.Sprintf("receipts/%s/%s.json", transaction.CreatedAt.UTC().Format(utils.DateLayout), transaction.TransactionID)
}

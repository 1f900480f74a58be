package handlers

import (
	"tricy/internal/models"
	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var request models.CreateTransactionRequest
	if !bindJSON(c, &request) {
		return
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Transaction recorded successfully", transaction)
}

// ConfirmCash marks a cash payment as received
func (h *TransactionHandler) ConfirmCash(c *gin.Context) {
	transaction, err := h.transactionService.ConfirmCash(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment confirmed successfully", transaction)
}

func (h *TransactionHandler) ListUserTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{Count: len(transactions)})
}

func (h *TransactionHandler) ListDriverTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListForDriver(c.Request.Context(), c.Param("driver_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{Count: len(transactions)})
}

func (h *TransactionHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.transactionService.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Receipt retrieved successfully", receipt)
}

func (h *TransactionHandler) DailyTotal(c *gin.Context) {
	total, err := h.transactionService.DailyTotal(c.Request.Context(), c.Param("date"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Daily total retrieved successfully", total)
}

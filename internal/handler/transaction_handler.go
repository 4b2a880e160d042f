package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/middleware"
	"github.com/jinyngg/account/shared/models"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	UseBalance(context.Context, cqrs.UseBalanceCommand) (*models.Transaction, error)
	CancelBalance(context.Context, cqrs.CancelBalanceCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.TransactionView, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

type UseBalanceRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,accountnumber"`
	Amount        int64  `json:"amount" validate:"min=10,max=1000000000"`
}

type CancelBalanceRequest struct {
	TransactionID string `json:"transactionId" validate:"required,len=32"`
	AccountNumber string `json:"accountNumber" validate:"required,accountnumber"`
	Amount        int64  `json:"amount" validate:"min=10,max=1000000000"`
}

// TransactionResponse is returned for both use and cancel.
type TransactionResponse struct {
	AccountNumber     string                   `json:"accountNumber"`
	TransactionResult models.TransactionResult `json:"transactionResult"`
	TransactionID     string                   `json:"transactionId"`
	Amount            int64                    `json:"amount"`
	TransactedAt      time.Time                `json:"transactedAt"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

func newTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		AccountNumber:     t.AccountNumber,
		TransactionResult: t.Result,
		TransactionID:     t.TransactionID,
		Amount:            t.Amount,
		TransactedAt:      t.TransactedAt,
	}
}

func (h *TransactionHandler) UseBalance(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req UseBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.UseBalance(c.Request.Context(), cqrs.UseBalanceCommand{
		UserID:        userID,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

func (h *TransactionHandler) CancelBalance(c *gin.Context) {
	var req CancelBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.CancelBalance(c.Request.Context(), cqrs.CancelBalanceCommand{
		TransactionID: req.TransactionID,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

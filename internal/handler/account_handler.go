package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/middleware"
	"github.com/jinyngg/account/shared/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	InitialBalance int64 `json:"initialBalance" validate:"min=100"`
}

type DeleteAccountRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,accountnumber"`
}

type CreateAccountResponse struct {
	UserID        int64     `json:"userId"`
	AccountNumber string    `json:"accountNumber"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

type DeleteAccountResponse struct {
	UserID         int64      `json:"userId"`
	AccountNumber  string     `json:"accountNumber"`
	UnregisteredAt *time.Time `json:"unregisteredAt"`
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		UserID:         userID,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateAccountResponse{
		UserID:        account.AccountUser.ID,
		AccountNumber: account.AccountNumber,
		RegisteredAt:  account.RegisteredAt,
	})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{
		UserID:        userID,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteAccountResponse{
		UserID:         account.AccountUser.ID,
		AccountNumber:  account.AccountNumber,
		UnregisteredAt: account.UnregisteredAt,
	})
}

// ListAccounts lists the caller's accounts. An explicit user_id must name the caller.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if raw := c.Query("user_id"); raw != "" {
		requested, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithAppError(c, apperror.Newf(apperror.InvalidRequest, "user_id must be a number"))
			return
		}
		if requested != userID {
			middleware.RespondWithAppError(c, apperror.New(apperror.UserAccountUnMatch))
			return
		}
	}

	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RespondWithAppError(c, apperror.Newf(apperror.InvalidRequest, "account id must be a number"))
		return
	}

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		ID:               id,
		RequestingUserID: userID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

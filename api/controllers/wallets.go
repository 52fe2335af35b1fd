package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/api/responses"
	"github.com/trongle278/seasondecorbe-sub000/api/validators"
	"github.com/trongle278/seasondecorbe-sub000/internal/settings"
	"github.com/trongle278/seasondecorbe-sub000/internal/wallet"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type refundRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	BookingID  uuid.UUID       `json:"booking_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

type orderPayRequest struct {
	ProviderID uuid.UUID       `json:"provider_id" validate:"required"`
	OrderID    uuid.UUID       `json:"order_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

type walletResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type transactionResponse struct {
	ID        uuid.UUID               `json:"id"`
	Amount    decimal.Decimal         `json:"amount"`
	Type      enums.TransactionType   `json:"type"`
	Status    enums.TransactionStatus `json:"status"`
	BookingID *uuid.UUID              `json:"booking_id,omitempty"`
	OrderID   *uuid.UUID              `json:"order_id,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

type transactionsResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// GetWallet returns the authenticated account's wallet balance.
func GetWallet(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		found, err := svc.Balance(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, walletResponse{
			AccountID: found.AccountID,
			Balance:   found.Balance,
			UpdatedAt: found.UpdatedAt,
		})
	}
}

// ListWalletTransactions returns the account's payment history, newest first.
func ListWalletTransactions(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.Transactions(r.Context(), accountID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := transactionsResponse{
			Transactions: make([]transactionResponse, 0, len(rows)),
			NextCursor:   next,
		}
		for i := range rows {
			out.Transactions = append(out.Transactions, newTransactionResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// TopUpWallet credits purchased funds into the account's wallet.
func TopUpWallet(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req topUpRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.Amount.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive"))
			return
		}
		if err := svc.TopUp(r.Context(), accountID, req.Amount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "topped_up"})
	}
}

// RefundBooking returns escrowed funds to a customer for one booking.
func RefundBooking(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.Amount.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive"))
			return
		}
		if err := svc.Refund(r.Context(), req.CustomerID, req.Amount, req.BookingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "refunded"})
	}
}

// PayOrder settles a product order through the escrow ledger at the
// platform commission rate.
func PayOrder(svc wallet.Service, rates settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req orderPayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.Amount.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive"))
			return
		}
		rate, err := rates.CommissionRate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.OrderPay(r.Context(), accountID, req.ProviderID, req.OrderID, req.Amount, rate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "paid"})
	}
}

func newTransactionResponse(t *models.PaymentTransaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Amount:    t.Amount,
		Type:      t.Type,
		Status:    t.Status,
		BookingID: t.BookingID,
		OrderID:   t.OrderID,
		CreatedAt: t.CreatedAt,
	}
}

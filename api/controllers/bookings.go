package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/api/middleware"
	"github.com/trongle278/seasondecorbe-sub000/api/responses"
	"github.com/trongle278/seasondecorbe-sub000/api/validators"
	"github.com/trongle278/seasondecorbe-sub000/internal/booking"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

type createBookingRequest struct {
	DecorServiceID uuid.UUID `json:"decor_service_id" validate:"required"`
	AddressID      uuid.UUID `json:"address_id" validate:"required"`
	SurveyDate     time.Time `json:"survey_date" validate:"required"`
	Note           *string   `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type updateBookingRequest struct {
	AddressID  *uuid.UUID `json:"address_id,omitempty"`
	SurveyDate *time.Time `json:"survey_date,omitempty"`
	Note       *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type cancellationRequest struct {
	CancelType string `json:"cancel_type" validate:"required"`
	Reason     string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type bookingsResponse struct {
	Bookings   []bookingResponse `json:"bookings"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type bookingResponse struct {
	Code          string              `json:"code"`
	Status        enums.BookingStatus `json:"status"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	DepositAmount decimal.Decimal     `json:"deposit_amount"`
	SurveyDate    time.Time           `json:"survey_date"`
	Note          *string             `json:"note,omitempty"`
	CancelType    *enums.CancelType   `json:"cancel_type,omitempty"`
	CancelReason  *string             `json:"cancel_reason,omitempty"`
	RejectReason  *string             `json:"reject_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func newBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		Code:          b.Code,
		Status:        b.Status,
		TotalPrice:    b.TotalPrice,
		DepositAmount: b.DepositAmount,
		SurveyDate:    b.SurveyDate,
		Note:          b.Note,
		CancelType:    b.CancelType,
		CancelReason:  b.CancelReason,
		RejectReason:  b.RejectReason,
		CreatedAt:     b.CreatedAt,
	}
}

// CreateBooking books a decor service for the authenticated customer.
func CreateBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), booking.CreateInput{
			CustomerID:     accountID,
			DecorServiceID: req.DecorServiceID,
			AddressID:      req.AddressID,
			SurveyDate:     req.SurveyDate,
			Note:           req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBookingResponse(created))
	}
}

// ListBookings returns the bookings the account participates in, newest
// first, with cursor pagination.
func ListBookings(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, next, err := svc.List(r.Context(), accountID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := bookingsResponse{
			Bookings:   make([]bookingResponse, 0, len(rows)),
			NextCursor: next,
		}
		for i := range rows {
			out.Bookings = append(out.Bookings, newBookingResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetBooking returns one booking by its public code.
func GetBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(found))
	}
}

// UpdateBooking amends a Pending booking request.
func UpdateBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateRequest(r.Context(), booking.UpdateInput{
			CustomerID:  accountID,
			BookingCode: chi.URLParam(r, "code"),
			AddressID:   req.AddressID,
			SurveyDate:  req.SurveyDate,
			Note:        req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(updated))
	}
}

// AdvanceBooking moves a booking to its next lifecycle state.
func AdvanceBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		advanced, err := svc.Advance(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(advanced))
	}
}

// DepositBooking settles the booking deposit through the escrow ledger.
func DepositBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid, err := svc.ProcessDeposit(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(paid))
	}
}

// FinalPayBooking settles the remaining balance through the escrow ledger.
func FinalPayBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid, err := svc.ProcessFinalPayment(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(paid))
	}
}

// RequestCancellation opens the cancellation sub-flow for a booking.
func RequestCancellation(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancellationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cancelType, err := enums.ParseCancelType(req.CancelType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cancel type"))
			return
		}

		result, err := svc.RequestCancellation(r.Context(), booking.CancellationInput{
			CustomerID:  accountID,
			BookingCode: chi.URLParam(r, "code"),
			CancelType:  cancelType,
			Reason:      req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(result))
	}
}

// ApproveCancellation lets the provider accept a pending cancellation.
func ApproveCancellation(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ApproveCancellation(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(result))
	}
}

// RevokeCancellation withdraws the customer's own cancellation request.
func RevokeCancellation(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.RevokeCancellationRequest(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(result))
	}
}

// RejectBooking lets the provider decline a booking permanently.
func RejectBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Reject(r.Context(), accountID, chi.URLParam(r, "code"), req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(result))
	}
}

func requireAccount(r *http.Request) (uuid.UUID, error) {
	accountID := middleware.AccountIDFromContext(r.Context())
	if accountID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity required")
	}
	return accountID, nil
}

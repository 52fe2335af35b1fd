package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/api/responses"
	"github.com/trongle278/seasondecorbe-sub000/api/validators"
	"github.com/trongle278/seasondecorbe-sub000/internal/quotation"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
)

type createQuotationRequest struct {
	BookingCode       string          `json:"booking_code" validate:"required"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	ConstructionCost  decimal.Decimal `json:"construction_cost"`
	ProductCost       decimal.Decimal `json:"product_cost"`
	DepositPercentage decimal.Decimal `json:"deposit_percentage"`
}

type quotationResponse struct {
	Code              string                `json:"code"`
	Status            enums.QuotationStatus `json:"status"`
	MaterialCost      decimal.Decimal       `json:"material_cost"`
	ConstructionCost  decimal.Decimal       `json:"construction_cost"`
	ProductCost       decimal.Decimal       `json:"product_cost"`
	DepositPercentage decimal.Decimal       `json:"deposit_percentage"`
	CreatedAt         time.Time             `json:"created_at"`
}

func newQuotationResponse(q *models.Quotation) quotationResponse {
	return quotationResponse{
		Code:              q.Code,
		Status:            q.Status,
		MaterialCost:      q.MaterialCost,
		ConstructionCost:  q.ConstructionCost,
		ProductCost:       q.ProductCost,
		DepositPercentage: q.DepositPercentage,
		CreatedAt:         q.CreatedAt,
	}
}

// CreateQuotation submits a provider's priced proposal for a booking.
func CreateQuotation(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createQuotationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), quotation.CreateInput{
			ProviderID:        accountID,
			BookingCode:       req.BookingCode,
			MaterialCost:      req.MaterialCost,
			ConstructionCost:  req.ConstructionCost,
			ProductCost:       req.ProductCost,
			DepositPercentage: req.DepositPercentage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newQuotationResponse(created))
	}
}

// GetQuotation returns one quotation by its public code.
func GetQuotation(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuotationResponse(found))
	}
}

// ConfirmQuotation accepts the quotation and freezes the booking total.
func ConfirmQuotation(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		confirmed, err := svc.Confirm(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuotationResponse(confirmed))
	}
}

// DenyQuotation rejects the quotation so the provider can submit a new one.
func DenyQuotation(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		denied, err := svc.Deny(r.Context(), accountID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuotationResponse(denied))
	}
}

package quotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/refcode"
)

// maxDepositPercentage caps the deposit share a provider can demand. Inputs
// above the cap are clamped, not rejected.
var maxDepositPercentage = decimal.NewFromInt(20)

const codeInsertAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the quotation lifecycle attached to a booking.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Quotation, error)
	Confirm(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error)
	Deny(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error)
	GetByCode(ctx context.Context, code string) (*models.Quotation, error)
}

// CreateInput carries a provider's priced proposal for one booking.
type CreateInput struct {
	ProviderID        uuid.UUID
	BookingCode       string
	MaterialCost      decimal.Decimal
	ConstructionCost  decimal.Decimal
	ProductCost       decimal.Decimal
	DepositPercentage decimal.Decimal
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires the quotation service with its dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil || tx == nil {
		return nil, fmt.Errorf("quotation service requires repository and tx runner")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Quotation, error) {
	if input.MaterialCost.IsNegative() || input.ConstructionCost.IsNegative() || input.ProductCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost components must not be negative")
	}
	if !input.MaterialCost.Add(input.ConstructionCost).IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material and construction costs must sum to a positive amount")
	}
	if !input.DepositPercentage.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit percentage must be positive")
	}

	depositPct := input.DepositPercentage
	if depositPct.GreaterThan(maxDepositPercentage) {
		depositPct = maxDepositPercentage
	}

	var created *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBookingByCode(ctx, input.BookingCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
		}
		if booking.Status != enums.BookingStatusQuoting {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not accepting quotations")
		}

		decorService, err := repo.FindDecorServiceByID(ctx, booking.DecorServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
		}
		if decorService.AccountID != input.ProviderID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the service provider may quote this booking")
		}

		if _, err := repo.FindActiveByBooking(ctx, booking.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "booking already has an open quotation")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check open quotations")
		}

		quotation := &models.Quotation{
			BookingID:         booking.ID,
			MaterialCost:      input.MaterialCost,
			ConstructionCost:  input.ConstructionCost,
			ProductCost:       input.ProductCost,
			DepositPercentage: depositPct,
			Status:            enums.QuotationStatusPending,
		}
		for attempt := 0; attempt < codeInsertAttempts; attempt++ {
			code, err := refcode.New(refcode.QuotationPrefix)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate quotation code")
			}
			quotation.Code = code
			if err := repo.Create(ctx, quotation); err != nil {
				if pkgerrors.IsUniqueViolation(err) {
					quotation.ID = uuid.Nil
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quotation")
			}
			created = quotation
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique quotation code")
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Confirm(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error) {
	return s.resolve(ctx, customerID, code, enums.QuotationStatusConfirmed)
}

func (s *service) Deny(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error) {
	return s.resolve(ctx, customerID, code, enums.QuotationStatusDenied)
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.Quotation, error) {
	quotation, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
	}
	return quotation, nil
}

// resolve applies the customer's decision. Confirming freezes the booking's
// total price from the quotation cost components; denying reopens the booking
// for a new proposal.
func (s *service) resolve(ctx context.Context, customerID uuid.UUID, code string, decision enums.QuotationStatus) (*models.Quotation, error) {
	var resolved *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quotation, err := repo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
		}
		if quotation.Status != enums.QuotationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has already been resolved")
		}

		booking, err := repo.FindBookingByID(ctx, quotation.BookingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
		}
		if booking.AccountID != customerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the booking customer may resolve a quotation")
		}

		if err := repo.UpdateStatus(ctx, quotation.ID, decision); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quotation status")
		}
		if decision == enums.QuotationStatusConfirmed {
			total := quotation.MaterialCost.Add(quotation.ConstructionCost).Add(quotation.ProductCost)
			if err := repo.UpdateBookingTotalPrice(ctx, booking.ID, total); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "freeze booking total")
			}
		}
		quotation.Status = decision
		resolved = quotation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

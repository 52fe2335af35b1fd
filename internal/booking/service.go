package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/internal/accounts"
	"github.com/trongle278/seasondecorbe-sub000/internal/address"
	"github.com/trongle278/seasondecorbe-sub000/internal/decorservices"
	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
	"github.com/trongle278/seasondecorbe-sub000/pkg/refcode"
)

const codeInsertAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// escrowLedger is the slice of the wallet ledger the booking flow drives.
// Both calls execute on the transaction the booking flow passes in, so the
// money movement and the status change it pays for commit or roll back as
// one unit.
type escrowLedger interface {
	Deposit(ctx context.Context, tx *gorm.DB, customerID, providerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error
	FinalPay(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, remaining decimal.Decimal, providerID, bookingID uuid.UUID, commissionRate decimal.Decimal) error
}

type commissionSource interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

// notifier is fire-and-forget; implementations must never return an error
// into the booking flow.
type notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, title, content, url string)
}

// Service drives the booking lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	UpdateRequest(ctx context.Context, input UpdateInput) (*models.Booking, error)
	Advance(ctx context.Context, bookingCode string) (*models.Booking, error)
	ProcessDeposit(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error)
	ProcessFinalPayment(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error)
	GetByCode(ctx context.Context, bookingCode string) (*models.Booking, error)
	List(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, string, error)

	RequestCancellation(ctx context.Context, input CancellationInput) (*models.Booking, error)
	ApproveCancellation(ctx context.Context, providerID uuid.UUID, bookingCode string) (*models.Booking, error)
	RevokeCancellationRequest(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error)
	Reject(ctx context.Context, providerID uuid.UUID, bookingCode string, reason string) (*models.Booking, error)
}

type service struct {
	repo      Repository
	accounts  accounts.Repository
	addresses address.Repository
	services  decorservices.Repository
	tx        txRunner
	ledger    escrowLedger
	settings  commissionSource
	notify    notifier
	cfg       config.BookingConfig
	logg      *logger.Logger
}

// Deps bundles the collaborators the booking service needs.
type Deps struct {
	Repo      Repository
	Accounts  accounts.Repository
	Addresses address.Repository
	Services  decorservices.Repository
	Tx        txRunner
	Ledger    escrowLedger
	Settings  commissionSource
	Notifier  notifier
	Config    config.BookingConfig
	Logger    *logger.Logger
}

// NewService wires the booking service.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil || deps.Accounts == nil || deps.Addresses == nil || deps.Services == nil || deps.Tx == nil {
		return nil, fmt.Errorf("booking service requires repo, directories and tx runner")
	}
	if deps.Ledger == nil || deps.Settings == nil {
		return nil, fmt.Errorf("booking service requires ledger and settings")
	}
	return &service{
		repo:      deps.Repo,
		accounts:  deps.Accounts,
		addresses: deps.Addresses,
		services:  deps.Services,
		tx:        deps.Tx,
		ledger:    deps.Ledger,
		settings:  deps.Settings,
		notify:    deps.Notifier,
		cfg:       deps.Config,
		logg:      deps.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	today := startOfDay(time.Now().UTC())
	if input.SurveyDate.Before(today) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "survey date must not be in the past")
	}

	var created *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		accounts := s.accounts.WithTx(tx)
		addresses := s.addresses.WithTx(tx)
		services := s.services.WithTx(tx)

		decorService, err := services.FindByID(ctx, input.DecorServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "decor service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
		}
		if decorService.Status != enums.DecorServiceStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "decor service is not available")
		}
		if decorService.AccountID == input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "providers cannot book their own service")
		}
		if input.SurveyDate.Before(startOfDay(decorService.StartDate)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "survey date is before the service start date")
		}

		if err := s.checkAddress(ctx, addresses, repo, input.CustomerID, input.AddressID); err != nil {
			return err
		}

		booking := &models.Booking{
			AccountID:      input.CustomerID,
			DecorServiceID: input.DecorServiceID,
			AddressID:      input.AddressID,
			Status:         enums.BookingStatusPending,
			SurveyDate:     input.SurveyDate,
			Note:           input.Note,
		}
		if err := createWithCode(ctx, repo, booking); err != nil {
			return err
		}
		if err := accounts.SetActiveBookingFlag(ctx, input.CustomerID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flag active booking")
		}
		if err := repo.CreateTimeSlot(ctx, &models.BookingTimeSlot{
			BookingID:  booking.ID,
			SurveyDate: input.SurveyDate,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create survey slot")
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusPending,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tracker")
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		decorService, err := s.services.FindByID(ctx, created.DecorServiceID)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "provider lookup for notification failed", err)
			}
		} else {
			s.notify.Notify(ctx, decorService.AccountID,
				"New booking request",
				fmt.Sprintf("Booking %s is waiting for your survey.", created.Code),
				"/bookings/"+created.Code)
		}
	}
	return created, nil
}

func (s *service) UpdateRequest(ctx context.Context, input UpdateInput) (*models.Booking, error) {
	var updated *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		addresses := s.addresses.WithTx(tx)

		booking, err := s.loadOwned(ctx, repo, input.BookingCode, input.CustomerID, true)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking can only be amended before planning starts")
		}

		updates := map[string]any{}
		if input.Note != nil {
			updates["note"] = *input.Note
		}
		if input.AddressID != nil && *input.AddressID != booking.AddressID {
			if err := s.checkAddress(ctx, addresses, repo, input.CustomerID, *input.AddressID); err != nil {
				return err
			}
			updates["address_id"] = *input.AddressID
			booking.AddressID = *input.AddressID
		}
		if input.SurveyDate != nil {
			if input.SurveyDate.Before(startOfDay(time.Now().UTC())) {
				return pkgerrors.New(pkgerrors.CodeValidation, "survey date must not be in the past")
			}
			updates["survey_date"] = *input.SurveyDate
			booking.SurveyDate = *input.SurveyDate
			if err := repo.UpdateTimeSlot(ctx, booking.ID, *input.SurveyDate); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update survey slot")
			}
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, booking.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking")
			}
		}
		if input.Note != nil {
			booking.Note = input.Note
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Advance moves a booking to the single legal successor of its current
// state. The machine picks the target; callers cannot.
func (s *service) Advance(ctx context.Context, bookingCode string) (*models.Booking, error) {
	var advanced *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := findByCode(ctx, repo, bookingCode, true)
		if err != nil {
			return err
		}
		row, ok := transitionTable()[booking.Status]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking in status %q cannot advance", booking.Status))
		}

		decorService, err := s.services.WithTx(tx).FindByID(ctx, booking.DecorServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
		}
		env := &transitionEnv{
			booking:      booking,
			decorService: decorService,
			repo:         repo,
			accounts:     s.accounts.WithTx(tx),
			services:     s.services.WithTx(tx),
		}

		if row.guard != nil {
			if err := row.guard(ctx, env); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, booking.ID, map[string]any{"status": row.next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advance booking status")
		}
		booking.Status = row.next
		if row.action != nil {
			if err := row.action(ctx, env); err != nil {
				return err
			}
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    row.next,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		advanced = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, advanced)
	return advanced, nil
}

func (s *service) ProcessDeposit(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error) {
	var paid *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The lock on the booking row serializes concurrent deposit
		// attempts; the second one sees DepositPaid and stops here.
		booking, err := s.loadOwned(ctx, repo, bookingCode, customerID, true)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusConfirm {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not awaiting its deposit")
		}
		quotation, err := repo.FindConfirmedQuotation(ctx, booking.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no confirmed quotation")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
		}
		decorService, err := s.services.WithTx(tx).FindByID(ctx, booking.DecorServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
		}

		depositAmount := DepositAmount(quotation)
		if err := s.ledger.Deposit(ctx, tx, booking.AccountID, decorService.AccountID, depositAmount, booking.ID); err != nil {
			return err
		}

		if err := repo.Update(ctx, booking.ID, map[string]any{
			"status":         enums.BookingStatusDepositPaid,
			"deposit_amount": depositAmount,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record deposit on booking")
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusDepositPaid,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		booking.Status = enums.BookingStatusDepositPaid
		booking.DepositAmount = depositAmount
		paid = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, paid)
	return paid, nil
}

func (s *service) ProcessFinalPayment(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error) {
	// The commission rate may come from a cache miss hitting the settings
	// store, so resolve it before the transaction opens.
	rate, err := s.settings.CommissionRate(ctx)
	if err != nil {
		return nil, err
	}

	var paid *models.Booking
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := s.loadOwned(ctx, repo, bookingCode, customerID, true)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusProgressing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not ready for the final payment")
		}
		remaining := booking.TotalPrice.Sub(booking.DepositAmount)
		if !remaining.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing left to pay on this booking")
		}
		decorService, err := s.services.WithTx(tx).FindByID(ctx, booking.DecorServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
		}

		if err := s.ledger.FinalPay(ctx, tx, booking.AccountID, remaining, decorService.AccountID, booking.ID, rate); err != nil {
			return err
		}

		if err := repo.Update(ctx, booking.ID, map[string]any{
			"status": enums.BookingStatusConstructionPayment,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record final payment on booking")
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusConstructionPayment,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		booking.Status = enums.BookingStatusConstructionPayment
		paid = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, paid)
	return paid, nil
}

func (s *service) GetByCode(ctx context.Context, bookingCode string) (*models.Booking, error) {
	return findByCode(ctx, s.repo, bookingCode, false)
}

func (s *service) List(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, string, error) {
	rows, next, err := s.repo.ListByAccount(ctx, accountID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings")
	}
	return rows, next, nil
}

// DepositAmount derives the escrow deposit from a quotation: material plus
// construction costs at the quoted percentage, clamped to 20.
func DepositAmount(quotation *models.Quotation) decimal.Decimal {
	pct := quotation.DepositPercentage
	if cap := decimal.NewFromInt(20); pct.GreaterThan(cap) {
		pct = cap
	}
	base := quotation.MaterialCost.Add(quotation.ConstructionCost)
	return base.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
}

func (s *service) checkAddress(ctx context.Context, addresses address.Repository, repo Repository, customerID, addressID uuid.UUID) error {
	addr, err := addresses.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if addr.AccountID != customerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "address belongs to another account")
	}
	active, err := repo.CountActiveByAddress(ctx, customerID, addressID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active bookings for address")
	}
	// With the cap disabled (the default) an address carries at most one
	// active booking; a positive cap relaxes that to the configured count.
	limit := int64(s.cfg.MaxActiveBookingsPerAddress)
	if limit <= 0 {
		limit = 1
	}
	if active >= limit {
		return pkgerrors.New(pkgerrors.CodeConflict, "address is already attached to an active booking")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, repo Repository, bookingCode string, customerID uuid.UUID, forUpdate bool) (*models.Booking, error) {
	booking, err := findByCode(ctx, repo, bookingCode, forUpdate)
	if err != nil {
		return nil, err
	}
	if booking.AccountID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
	}
	return booking, nil
}

func findByCode(ctx context.Context, repo Repository, bookingCode string, forUpdate bool) (*models.Booking, error) {
	booking, err := repo.FindByCode(ctx, bookingCode, forUpdate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
	}
	return booking, nil
}

func createWithCode(ctx context.Context, repo Repository, booking *models.Booking) error {
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code, err := refcode.New(refcode.BookingPrefix)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate booking code")
		}
		booking.Code = code
		if err := repo.Create(ctx, booking); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				booking.ID = uuid.Nil
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique booking code")
}

// notifyStatus tells the customer about a committed status change. Failures
// stay inside the dispatcher.
func (s *service) notifyStatus(ctx context.Context, booking *models.Booking) {
	if s.notify == nil || booking == nil {
		return
	}
	s.notify.Notify(ctx, booking.AccountID,
		"Booking update",
		fmt.Sprintf("Booking %s is now %s.", booking.Code, booking.Status),
		"/bookings/"+booking.Code)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

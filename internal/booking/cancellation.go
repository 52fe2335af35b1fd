package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
)

// CancellationInput is a customer's request to abandon a booking.
type CancellationInput struct {
	CustomerID  uuid.UUID
	BookingCode string
	CancelType  enums.CancelType
	Reason      string
}

// RequestCancellation starts the cancellation sub-flow. A Pending booking
// cancels immediately; a Planning booking waits for the provider's decision.
func (s *service) RequestCancellation(ctx context.Context, input CancellationInput) (*models.Booking, error) {
	if !input.CancelType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cancellation type")
	}
	if input.CancelType.RequiresReason() && strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a reason is required for this cancellation type")
	}

	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := findByCode(ctx, repo, input.BookingCode, true)
		if err != nil {
			return err
		}
		if booking.AccountID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
		}

		updates := map[string]any{
			"cancel_type":   input.CancelType,
			"cancel_reason": input.Reason,
		}
		switch booking.Status {
		case enums.BookingStatusPending:
			updates["status"] = enums.BookingStatusCanceled
		case enums.BookingStatusPlanning:
			updates["status"] = enums.BookingStatusPendingCancellation
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking can no longer be canceled by request")
		}

		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record cancellation request")
		}
		booking.Status = updates["status"].(enums.BookingStatus)
		if booking.Status == enums.BookingStatusCanceled {
			// Pending bookings cancel on the spot; the provider was never
			// engaged.
			if err := s.releaseEngagement(ctx, tx, repo, booking, false); err != nil {
				return err
			}
		}
		booking.CancelType = &input.CancelType
		if input.Reason != "" {
			booking.CancelReason = &input.Reason
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    booking.Status,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil && result.Status == enums.BookingStatusPendingCancellation {
		if decorService, err := s.services.FindByID(ctx, result.DecorServiceID); err == nil {
			s.notify.Notify(ctx, decorService.AccountID,
				"Cancellation requested",
				"Booking "+result.Code+" has a pending cancellation request.",
				"/bookings/"+result.Code)
		}
	}
	return result, nil
}

// ApproveCancellation lets the provider accept a pending cancellation.
func (s *service) ApproveCancellation(ctx context.Context, providerID uuid.UUID, bookingCode string) (*models.Booking, error) {
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, decorService, err := s.loadForProvider(ctx, tx, repo, bookingCode, providerID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusPendingCancellation {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no pending cancellation")
		}

		if err := repo.Update(ctx, booking.ID, map[string]any{
			"status": enums.BookingStatusCanceled,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel booking")
		}
		booking.Status = enums.BookingStatusCanceled
		if err := s.releaseEngagementWith(ctx, tx, repo, booking, decorService, true); err != nil {
			return err
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusCanceled,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, result)
	return result, nil
}

// RevokeCancellationRequest withdraws a pending cancellation and returns the
// booking to the start of the flow.
func (s *service) RevokeCancellationRequest(ctx context.Context, customerID uuid.UUID, bookingCode string) (*models.Booking, error) {
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := findByCode(ctx, repo, bookingCode, true)
		if err != nil {
			return err
		}
		if booking.AccountID != customerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
		}
		if booking.Status != enums.BookingStatusPendingCancellation {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no pending cancellation to revoke")
		}

		if err := repo.Update(ctx, booking.ID, map[string]any{
			"status":        enums.BookingStatusPending,
			"cancel_type":   nil,
			"cancel_reason": nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke cancellation")
		}
		booking.Status = enums.BookingStatusPending
		booking.CancelType = nil
		booking.CancelReason = nil
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusPending,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject lets the provider turn a booking down for good. There is no way
// back from Rejected.
func (s *service) Reject(ctx context.Context, providerID uuid.UUID, bookingCode string, reason string) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a rejection reason is required")
	}

	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, decorService, err := s.loadForProvider(ctx, tx, repo, bookingCode, providerID)
		if err != nil {
			return err
		}
		if booking.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has already reached a final state")
		}

		if err := repo.Update(ctx, booking.ID, map[string]any{
			"status":        enums.BookingStatusRejected,
			"reject_reason": reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reject booking")
		}
		booking.Status = enums.BookingStatusRejected
		booking.RejectReason = &reason
		if err := s.releaseEngagementWith(ctx, tx, repo, booking, decorService, true); err != nil {
			return err
		}
		if err := repo.CreateTracker(ctx, &models.BookingTracker{
			BookingID: booking.ID,
			Status:    enums.BookingStatusRejected,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transition")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, result)
	return result, nil
}

// releaseEngagement frees everything a dead booking was holding: the decor
// service, the provider if engaged, and the customer's active flag once no
// other live booking remains.
func (s *service) releaseEngagement(ctx context.Context, tx *gorm.DB, repo Repository, booking *models.Booking, providerEngaged bool) error {
	decorService, err := s.services.WithTx(tx).FindByID(ctx, booking.DecorServiceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
	}
	return s.releaseEngagementWith(ctx, tx, repo, booking, decorService, providerEngaged)
}

func (s *service) releaseEngagementWith(ctx context.Context, tx *gorm.DB, repo Repository, booking *models.Booking, decorService *models.DecorService, providerEngaged bool) error {
	accounts := s.accounts.WithTx(tx)
	services := s.services.WithTx(tx)

	if err := services.SetAvailability(ctx, decorService.ID, enums.DecorServiceStatusAvailable); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release decor service")
	}
	if providerEngaged {
		if err := accounts.SetProviderStatus(ctx, decorService.AccountID, enums.ProviderStatusIdle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release provider")
		}
	}

	remaining, err := repo.CountActiveByAccount(ctx, booking.AccountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count remaining bookings")
	}
	// The booking being released is already terminal at this point.
	if remaining == 0 {
		if err := accounts.SetActiveBookingFlag(ctx, booking.AccountID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear active booking flag")
		}
	}
	return nil
}

func (s *service) loadForProvider(ctx context.Context, tx *gorm.DB, repo Repository, bookingCode string, providerID uuid.UUID) (*models.Booking, *models.DecorService, error) {
	booking, err := findByCode(ctx, repo, bookingCode, true)
	if err != nil {
		return nil, nil, err
	}
	decorService, err := s.services.WithTx(tx).FindByID(ctx, booking.DecorServiceID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load decor service")
	}
	if decorService.AccountID != providerID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another provider")
	}
	return booking, decorService, nil
}

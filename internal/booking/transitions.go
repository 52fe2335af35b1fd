package booking

import (
	"context"
	"time"

	"github.com/trongle278/seasondecorbe-sub000/internal/accounts"
	"github.com/trongle278/seasondecorbe-sub000/internal/decorservices"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
)

// transitionEnv carries the transaction-scoped state one Advance call works
// on. Repos inside it are already bound to the open transaction.
type transitionEnv struct {
	booking      *models.Booking
	decorService *models.DecorService
	repo         Repository
	accounts     accounts.Repository
	services     decorservices.Repository
}

type guardFunc func(ctx context.Context, env *transitionEnv) error
type actionFunc func(ctx context.Context, env *transitionEnv) error

// transition is one row of the state machine: the single legal successor of
// a state, the condition that must hold, and the side effect that runs after
// the status write. Terminal and side states have no row, so Advance on them
// always fails.
type transition struct {
	next   enums.BookingStatus
	guard  guardFunc
	action actionFunc
}

func transitionTable() map[enums.BookingStatus]transition {
	return map[enums.BookingStatus]transition{
		enums.BookingStatusPending: {
			next:   enums.BookingStatusPlanning,
			action: actionEngageProvider,
		},
		enums.BookingStatusPlanning: {
			next: enums.BookingStatusQuoting,
		},
		enums.BookingStatusQuoting: {
			next:  enums.BookingStatusContracting,
			guard: guardConfirmedQuotation,
		},
		enums.BookingStatusContracting: {
			next: enums.BookingStatusConfirm,
		},
		enums.BookingStatusConfirm: {
			next:  enums.BookingStatusDepositPaid,
			guard: guardDepositRecorded,
		},
		enums.BookingStatusDepositPaid: {
			next: enums.BookingStatusPreparing,
		},
		enums.BookingStatusPreparing: {
			next:   enums.BookingStatusInTransit,
			action: actionMaterialsFulfilled,
		},
		enums.BookingStatusInTransit: {
			next: enums.BookingStatusProgressing,
		},
		enums.BookingStatusProgressing: {
			next:  enums.BookingStatusConstructionPayment,
			guard: guardFullyPaid,
		},
		enums.BookingStatusConstructionPayment: {
			next:   enums.BookingStatusCompleted,
			action: actionComplete,
		},
	}
}

func guardConfirmedQuotation(ctx context.Context, env *transitionEnv) error {
	if _, err := env.repo.FindConfirmedQuotation(ctx, env.booking.ID); err != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no confirmed quotation")
	}
	return nil
}

func guardDepositRecorded(_ context.Context, env *transitionEnv) error {
	if !env.booking.DepositAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit required before the booking can proceed")
	}
	return nil
}

func guardFullyPaid(_ context.Context, env *transitionEnv) error {
	if env.booking.DepositAmount.LessThan(env.booking.TotalPrice) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "outstanding balance remains; settle the final payment first")
	}
	return nil
}

// actionEngageProvider commits the provider and the service to this booking.
func actionEngageProvider(ctx context.Context, env *transitionEnv) error {
	if err := env.accounts.SetProviderStatus(ctx, env.decorService.AccountID, enums.ProviderStatusBusy); err != nil {
		return err
	}
	return env.services.SetAvailability(ctx, env.decorService.ID, enums.DecorServiceStatusUnavailable)
}

func actionMaterialsFulfilled(ctx context.Context, env *transitionEnv) error {
	return env.repo.MarkQuotationMaterialsFulfilled(ctx, env.booking.ID, time.Now().UTC())
}

// actionComplete settles the engagement: labor is fulfilled, the provider is
// released and rewarded.
func actionComplete(ctx context.Context, env *transitionEnv) error {
	if err := env.repo.MarkQuotationLaborFulfilled(ctx, env.booking.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := env.accounts.SetProviderStatus(ctx, env.decorService.AccountID, enums.ProviderStatusIdle); err != nil {
		return err
	}
	return env.accounts.IncrementReputation(ctx, env.decorService.AccountID, reputationRewardOnCompletion, reputationCap)
}

const (
	reputationRewardOnCompletion = 5
	reputationCap                = 100
)

package booking

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
)

func TestTransitionTable_SingleSuccessorPerState(t *testing.T) {
	table := transitionTable()

	want := map[enums.BookingStatus]enums.BookingStatus{
		enums.BookingStatusPending:             enums.BookingStatusPlanning,
		enums.BookingStatusPlanning:            enums.BookingStatusQuoting,
		enums.BookingStatusQuoting:             enums.BookingStatusContracting,
		enums.BookingStatusContracting:         enums.BookingStatusConfirm,
		enums.BookingStatusConfirm:             enums.BookingStatusDepositPaid,
		enums.BookingStatusDepositPaid:         enums.BookingStatusPreparing,
		enums.BookingStatusPreparing:           enums.BookingStatusInTransit,
		enums.BookingStatusInTransit:           enums.BookingStatusProgressing,
		enums.BookingStatusProgressing:         enums.BookingStatusConstructionPayment,
		enums.BookingStatusConstructionPayment: enums.BookingStatusCompleted,
	}
	require.Len(t, table, len(want))
	for state, next := range want {
		row, ok := table[state]
		require.True(t, ok, "missing transition from %s", state)
		assert.Equal(t, next, row.next, "successor of %s", state)
	}

	// Side and terminal states have no successor at all.
	for _, state := range []enums.BookingStatus{
		enums.BookingStatusPendingCancellation,
		enums.BookingStatusCanceled,
		enums.BookingStatusRejected,
		enums.BookingStatusCompleted,
	} {
		_, ok := table[state]
		assert.False(t, ok, "%s must not advance", state)
	}
}

func TestAdvance_EngagesProviderOnFirstStep(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)

	advanced, err := f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusPlanning, advanced.Status)

	assert.Equal(t, enums.ProviderStatusBusy, f.account(t, f.provider).ProviderStatus)
	assert.Equal(t, enums.DecorServiceStatusUnavailable, f.decorService(t).Status)
}

func TestAdvance_QuotingRequiresConfirmedQuotation(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)
	f.setStatus(t, booking.ID, enums.BookingStatusQuoting)

	_, err := f.svc.Advance(context.Background(), booking.Code)
	assert.Equal(t, pkgerrors.CodeStateConflict, errCode(err))
	assert.Equal(t, enums.BookingStatusQuoting, f.reload(t, booking.ID).Status)

	f.confirmQuotation(t, booking.ID, 1_000_000, 500_000, 15)
	advanced, err := f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusContracting, advanced.Status)
}

func TestAdvance_ConfirmRequiresDeposit(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)
	f.setStatus(t, booking.ID, enums.BookingStatusConfirm)

	_, err := f.svc.Advance(context.Background(), booking.Code)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, errCode(err))
	assert.Contains(t, err.Error(), "deposit required")
	assert.Equal(t, enums.BookingStatusConfirm, f.reload(t, booking.ID).Status)
}

func TestAdvance_MaterialsFulfilledOnTransit(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)
	f.confirmQuotation(t, booking.ID, 1_000_000, 500_000, 15)
	f.setStatus(t, booking.ID, enums.BookingStatusPreparing)

	advanced, err := f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusInTransit, advanced.Status)

	var quotation models.Quotation
	require.NoError(t, f.db.Where("booking_id = ?", booking.ID).First(&quotation).Error)
	assert.NotNil(t, quotation.MaterialsFulfilledAt)
	assert.Nil(t, quotation.LaborFulfilledAt)
}

func TestAdvance_ProgressingRequiresFullPayment(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)
	f.setStatus(t, booking.ID, enums.BookingStatusProgressing)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]any{
		"total_price":    decimal.NewFromInt(1_500_000),
		"deposit_amount": decimal.NewFromInt(500_000),
	}).Error)

	_, err := f.svc.Advance(context.Background(), booking.Code)
	assert.Equal(t, pkgerrors.CodeStateConflict, errCode(err))
}

func TestAdvance_CompletionReleasesAndRewardsProvider(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)
	f.confirmQuotation(t, booking.ID, 1_000_000, 500_000, 15)
	f.setStatus(t, booking.ID, enums.BookingStatusConstructionPayment)
	require.NoError(t, f.db.Model(&models.Account{}).
		Where("id = ?", f.provider).
		Updates(map[string]any{"provider_status": enums.ProviderStatusBusy, "reputation": 98}).Error)

	advanced, err := f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, advanced.Status)

	provider := f.account(t, f.provider)
	assert.Equal(t, enums.ProviderStatusIdle, provider.ProviderStatus)
	// 98 + 5 clamps at the cap.
	assert.Equal(t, 100, provider.Reputation)

	var quotation models.Quotation
	require.NoError(t, f.db.Where("booking_id = ?", booking.ID).First(&quotation).Error)
	assert.NotNil(t, quotation.LaborFulfilledAt)
}

func TestAdvance_TerminalStateFails(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)

	for _, status := range []enums.BookingStatus{
		enums.BookingStatusCompleted,
		enums.BookingStatusCanceled,
		enums.BookingStatusRejected,
		enums.BookingStatusPendingCancellation,
	} {
		f.setStatus(t, booking.ID, status)
		_, err := f.svc.Advance(context.Background(), booking.Code)
		assert.Equal(t, pkgerrors.CodeStateConflict, errCode(err), "status %s", status)
		assert.Equal(t, status, f.reload(t, booking.ID).Status)
	}
}

func TestAdvance_AppendsTrackerRowPerTransition(t *testing.T) {
	f := newFixture(t)
	booking := f.createBooking(t)

	_, err := f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)
	_, err = f.svc.Advance(context.Background(), booking.Code)
	require.NoError(t, err)

	var trackers []models.BookingTracker
	require.NoError(t, f.db.Where("booking_id = ?", booking.ID).Order("created_at").Find(&trackers).Error)
	// Creation plus two transitions.
	require.Len(t, trackers, 3)
	assert.Equal(t, enums.BookingStatusQuoting, trackers[2].Status)
}

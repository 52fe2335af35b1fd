package wallet

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	wallets := `
CREATE TABLE IF NOT EXISTS wallets (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL UNIQUE,
  balance NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentTransactions := `
CREATE TABLE IF NOT EXISTS payment_transactions (
  id TEXT PRIMARY KEY,
  amount NUMERIC NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  booking_id TEXT,
  order_id TEXT,
  created_at DATETIME
);`
	walletTransactions := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  wallet_id TEXT NOT NULL,
  payment_transaction_id TEXT NOT NULL,
  created_at DATETIME
);`
	for _, ddl := range []string{wallets, paymentTransactions, walletTransactions} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedWallet(t *testing.T, db *gorm.DB, balance int64) uuid.UUID {
	t.Helper()
	accountID := uuid.New()
	require.NoError(t, db.Create(&models.Wallet{
		ID:        uuid.New(),
		AccountID: accountID,
		Balance:   decimal.NewFromInt(balance),
	}).Error)
	return accountID
}

func walletBalance(t *testing.T, db *gorm.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	var w models.Wallet
	require.NoError(t, db.Where("account_id = ?", accountID).First(&w).Error)
	return w.Balance
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func newLedger(t *testing.T, db *gorm.DB, platformID uuid.UUID) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, config.LedgerConfig{
		OperationTimeout:  5 * time.Second,
		TopUpUnitScale:    1000,
		PlatformAccountID: platformID,
	}, nil)
	require.NoError(t, err)
	return svc
}

// runLedger opens the transaction that Deposit and FinalPay expect their
// caller to own.
func runLedger(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	t.Helper()
	return gormTxRunner{db: db}.WithTx(context.Background(), fn)
}

func TestDeposit_MovesFundsAndRecordsLegs(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 1_000_000)
	provider := seedWallet(t, db, 0)
	bookingID := uuid.New()
	svc := newLedger(t, db, uuid.New())

	require.NoError(t, runLedger(t, db, func(tx *gorm.DB) error {
		return svc.Deposit(context.Background(), tx, customer, provider, decimal.NewFromInt(225_000), bookingID)
	}))

	assert.True(t, walletBalance(t, db, customer).Equal(decimal.NewFromInt(775_000)))
	assert.True(t, walletBalance(t, db, provider).Equal(decimal.NewFromInt(225_000)))

	var legs []models.PaymentTransaction
	require.NoError(t, db.Where("booking_id = ?", bookingID).Order("type").Find(&legs).Error)
	require.Len(t, legs, 2)
	for _, l := range legs {
		assert.Equal(t, enums.TransactionStatusSuccess, l.Status)
		assert.True(t, l.Amount.Equal(decimal.NewFromInt(225_000)))
	}
	assert.Equal(t, enums.TransactionTypeDeposit, legs[0].Type)
	assert.Equal(t, enums.TransactionTypeRevenue, legs[1].Type)
	assert.EqualValues(t, 2, countRows(t, db, &models.WalletTransaction{}))
}

func TestDeposit_InsufficientFundsLeavesNoTrace(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 100)
	provider := seedWallet(t, db, 0)
	svc := newLedger(t, db, uuid.New())

	for i := 0; i < 2; i++ {
		err := runLedger(t, db, func(tx *gorm.DB) error {
			return svc.Deposit(context.Background(), tx, customer, provider, decimal.NewFromInt(500), uuid.New())
		})
		got := pkgerrors.As(err)
		require.NotNil(t, got)
		assert.Equal(t, pkgerrors.CodeInsufficientFunds, got.Code())
	}
	assert.True(t, walletBalance(t, db, customer).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, db, provider).IsZero())
	assert.EqualValues(t, 0, countRows(t, db, &models.PaymentTransaction{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.WalletTransaction{}))
}

func TestDeposit_MissingProviderWalletRollsBack(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 1_000)
	svc := newLedger(t, db, uuid.New())

	err := runLedger(t, db, func(tx *gorm.DB) error {
		return svc.Deposit(context.Background(), tx, customer, uuid.New(), decimal.NewFromInt(500), uuid.New())
	})
	got := pkgerrors.As(err)
	require.NotNil(t, got)
	assert.Equal(t, pkgerrors.CodeNotFound, got.Code())

	assert.True(t, walletBalance(t, db, customer).Equal(decimal.NewFromInt(1_000)))
	assert.EqualValues(t, 0, countRows(t, db, &models.PaymentTransaction{}))
}

func TestFinalPay_SplitsCommission(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 2_000_000)
	provider := seedWallet(t, db, 0)
	platform := seedWallet(t, db, 0)
	bookingID := uuid.New()
	svc := newLedger(t, db, platform)

	require.NoError(t, runLedger(t, db, func(tx *gorm.DB) error {
		return svc.FinalPay(context.Background(), tx, customer,
			decimal.NewFromInt(1_000_000), provider, bookingID, decimal.NewFromFloat(0.1))
	}))

	assert.True(t, walletBalance(t, db, customer).Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, walletBalance(t, db, provider).Equal(decimal.NewFromInt(900_000)))
	assert.True(t, walletBalance(t, db, platform).Equal(decimal.NewFromInt(100_000)))

	assert.EqualValues(t, 3, countRows(t, db, &models.PaymentTransaction{}))
	assert.EqualValues(t, 3, countRows(t, db, &models.WalletTransaction{}))

	var customerLeg models.PaymentTransaction
	require.NoError(t, db.Where("type = ?", enums.TransactionTypeFinalPay).First(&customerLeg).Error)
	assert.True(t, customerLeg.Amount.Equal(decimal.NewFromInt(1_000_000)))
	require.NotNil(t, customerLeg.BookingID)
	assert.Equal(t, bookingID, *customerLeg.BookingID)
}

func TestFinalPay_ConservationAcrossLegs(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 1_000_000)
	provider := seedWallet(t, db, 0)
	platform := seedWallet(t, db, 0)
	svc := newLedger(t, db, platform)

	// An awkward rate forces rounding; the split must still sum exactly.
	amount := decimal.NewFromInt(999_999)
	require.NoError(t, runLedger(t, db, func(tx *gorm.DB) error {
		return svc.FinalPay(context.Background(), tx, customer, amount, provider, uuid.New(), decimal.NewFromFloat(0.07))
	}))

	credited := walletBalance(t, db, provider).Add(walletBalance(t, db, platform))
	assert.True(t, credited.Equal(amount), "credits %s != debit %s", credited, amount)
}

func TestOrderPay_KeysLegsToOrder(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 500_000)
	provider := seedWallet(t, db, 0)
	platform := seedWallet(t, db, 0)
	orderID := uuid.New()
	svc := newLedger(t, db, platform)

	require.NoError(t, svc.OrderPay(context.Background(), customer, provider, orderID,
		decimal.NewFromInt(200_000), decimal.NewFromFloat(0.1)))

	var legs []models.PaymentTransaction
	require.NoError(t, db.Where("order_id = ?", orderID).Find(&legs).Error)
	require.Len(t, legs, 3)
	for _, l := range legs {
		assert.Nil(t, l.BookingID)
	}
}

func TestRefund_CappedByPriorPayments(t *testing.T) {
	db := setupWalletTestDB(t)
	customer := seedWallet(t, db, 500_000)
	provider := seedWallet(t, db, 0)
	platform := seedWallet(t, db, 1_000_000)
	bookingID := uuid.New()
	svc := newLedger(t, db, platform)

	require.NoError(t, runLedger(t, db, func(tx *gorm.DB) error {
		return svc.Deposit(context.Background(), tx, customer, provider, decimal.NewFromInt(300_000), bookingID)
	}))

	// More than was ever paid in.
	err := svc.Refund(context.Background(), customer, decimal.NewFromInt(400_000), bookingID)
	got := pkgerrors.As(err)
	require.NotNil(t, got)
	assert.Equal(t, pkgerrors.CodeValidation, got.Code())

	require.NoError(t, svc.Refund(context.Background(), customer, decimal.NewFromInt(300_000), bookingID))
	assert.True(t, walletBalance(t, db, customer).Equal(decimal.NewFromInt(500_000)))
	assert.True(t, walletBalance(t, db, platform).Equal(decimal.NewFromInt(700_000)))

	// The booking is now fully refunded; nothing more can come back.
	err = svc.Refund(context.Background(), customer, decimal.NewFromInt(1), bookingID)
	got = pkgerrors.As(err)
	require.NotNil(t, got)
	assert.Equal(t, pkgerrors.CodeValidation, got.Code())

	var refunds []models.PaymentTransaction
	require.NoError(t, db.Where("type = ?", enums.TransactionTypeRefund).Find(&refunds).Error)
	require.Len(t, refunds, 1)

	var refundLegs int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).
		Where("payment_transaction_id = ?", refunds[0].ID).Count(&refundLegs).Error)
	assert.EqualValues(t, 2, refundLegs)
}

func TestTopUp_ScalesGatewayUnits(t *testing.T) {
	db := setupWalletTestDB(t)
	account := seedWallet(t, db, 0)
	svc := newLedger(t, db, uuid.New())

	require.NoError(t, svc.TopUp(context.Background(), account, decimal.NewFromInt(500)))

	assert.True(t, walletBalance(t, db, account).Equal(decimal.NewFromInt(500_000)))

	var row models.PaymentTransaction
	require.NoError(t, db.Where("type = ?", enums.TransactionTypeTopUp).First(&row).Error)
	assert.Equal(t, enums.TransactionStatusSuccess, row.Status)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(500_000)))
}

func TestLockOrder_SameForEveryOperation(t *testing.T) {
	customer := uuid.New()
	provider := uuid.New()
	platform := uuid.New()

	// A payment locks customer/provider/platform, a refund locks
	// platform/customer. Whatever the operation, overlapping wallets must
	// come out in the same byte order or two of them can deadlock.
	settleOrder := lockOrder(map[uuid.UUID]string{
		customer: "customer", provider: "provider", platform: "platform",
	})
	refundOrder := lockOrder(map[uuid.UUID]string{
		platform: "platform", customer: "customer",
	})

	for _, order := range [][]uuid.UUID{settleOrder, refundOrder} {
		for i := 1; i < len(order); i++ {
			assert.True(t, bytes.Compare(order[i-1][:], order[i][:]) < 0,
				"wallet locks must be acquired in ascending ID order, got %v", order)
		}
	}

	require.Len(t, settleOrder, 3)
	require.Len(t, refundOrder, 2)
}

func TestTransactions_PagesNewestFirst(t *testing.T) {
	db := setupWalletTestDB(t)
	account := seedWallet(t, db, 0)
	svc := newLedger(t, db, uuid.New())

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TopUp(context.Background(), account, decimal.NewFromInt(1)))
		time.Sleep(5 * time.Millisecond)
	}

	rows, next, err := svc.Transactions(context.Background(), account, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, next)
	assert.False(t, rows[0].CreatedAt.Before(rows[1].CreatedAt))

	rest, _, err := svc.Transactions(context.Background(), account, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
}
